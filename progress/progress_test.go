package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fcopy-dev/fcopy/hk"
	"github.com/fcopy-dev/fcopy/progress"
)

func TestMain(m *testing.M) {
	hk.TestInit()
	go hk.DefaultHK.Run()
	hk.WaitStarted()
	m.Run()
}

func TestAggregatorEmitsAndFinalizes(t *testing.T) {
	agg := progress.NewAggregator(1000, 2)
	sub := agg.Subscribe()

	agg.PostFileBytes("a.bin", 500, 500, 500)
	agg.PostFileDone(0)
	agg.PostDirCreated()

	select {
	case sample := <-sub:
		if sample.TreeBytesDone != 500 {
			t.Fatalf("expected 500 bytes done, got %d", sample.TreeBytesDone)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a progress sample")
	}

	agg.PostFileBytes("b.bin", 500, 500, 500)
	agg.PostFileDone(0)

	stats := agg.Finalize()
	if stats.BytesCopied != 1000 {
		t.Fatalf("expected 1000 bytes copied, got %d", stats.BytesCopied)
	}
	if stats.FilesCopied != 2 {
		t.Fatalf("expected 2 files copied, got %d", stats.FilesCopied)
	}
	if stats.DirectoriesCreated != 1 {
		t.Fatalf("expected 1 directory created, got %d", stats.DirectoriesCreated)
	}
}

func TestAggregatorCountsAndDedupsErrors(t *testing.T) {
	agg := progress.NewAggregator(0, 0)

	agg.PostError(errors.New("permission denied: /a"))
	agg.PostError(errors.New("permission denied: /a"))
	agg.PostError(errors.New("not found: /b"))

	stats := agg.Finalize()
	if stats.Errors != 2 {
		t.Fatalf("expected 2 distinct errors, got %d", stats.Errors)
	}
}

func TestRegistryCancelAndSubscribe(t *testing.T) {
	reg := progress.NewRegistry()
	defer reg.Close()

	op := reg.Register(context.Background(), "copy_file", 100, 1)
	if _, err := reg.Subscribe(op.ID); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if err := reg.Cancel(op.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	select {
	case <-op.Context().Done():
	default:
		t.Fatal("expected operation context to be cancelled")
	}

	if err := reg.Cancel("nonexistent"); err == nil {
		t.Fatal("expected error cancelling unknown op id")
	}
}
