package xcopy_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fcopy-dev/fcopy/fs"
	"github.com/fcopy-dev/fcopy/progress"
	"github.com/fcopy-dev/fcopy/resume"
	"github.com/fcopy-dev/fcopy/xcopy"
)

func TestCopyFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.bin")
	dstPath := filepath.Join(dir, "out", "dst.bin")

	want := bytes.Repeat([]byte("fcopy-driver-test-payload"), 4096)
	if err := os.WriteFile(srcPath, want, 0o644); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	devCache := fs.New("")
	defer devCache.Close()
	agg := progress.NewAggregator(int64(len(want)), 1)
	defer agg.Finalize()

	drv := xcopy.NewDriver(devCache, agg)
	opts := xcopy.DefaultOptions()
	opts.Verify = true

	if err := drv.CopyFile(context.Background(), srcPath, dstPath, opts); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}

	got, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("destination content mismatch: got %d bytes, want %d", len(got), len(want))
	}
	if _, ok, _ := resume.Load(dstPath); ok {
		t.Fatal("expected checkpoint to be removed after a completed copy")
	}
}

func TestCopyFileRefusesExistingWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.bin")
	dstPath := filepath.Join(dir, "dst.bin")

	if err := os.WriteFile(srcPath, []byte("source"), 0o644); err != nil {
		t.Fatalf("seed source: %v", err)
	}
	if err := os.WriteFile(dstPath, []byte("already here"), 0o644); err != nil {
		t.Fatalf("seed destination: %v", err)
	}

	devCache := fs.New("")
	defer devCache.Close()

	drv := xcopy.NewDriver(devCache, nil)
	opts := xcopy.DefaultOptions()
	opts.Overwrite = false

	if err := drv.CopyFile(context.Background(), srcPath, dstPath, opts); err == nil {
		t.Fatal("expected an error when destination exists and overwrite is disabled")
	}
}

func TestCopyFileResumesFromCheckpoint(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.bin")
	dstPath := filepath.Join(dir, "dst.bin")

	want := bytes.Repeat([]byte("resume-chunk-"), 8192)
	if err := os.WriteFile(srcPath, want, 0o644); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		t.Fatalf("stat source: %v", err)
	}

	partial := want[:len(want)/2]
	if err := os.WriteFile(dstPath, partial, 0o644); err != nil {
		t.Fatalf("seed partial destination: %v", err)
	}

	srcFile, err := os.Open(srcPath)
	if err != nil {
		t.Fatalf("open source: %v", err)
	}
	digest, err := resume.DigestPrefix(srcFile)
	srcFile.Close()
	if err != nil {
		t.Fatalf("DigestPrefix: %v", err)
	}
	if err := resume.Save(resume.Checkpoint{
		SourcePath:          srcPath,
		DestinationPath:     dstPath,
		FileSize:            srcInfo.Size(),
		SourceModTime:       srcInfo.ModTime(),
		ContentDigestPrefix: digest,
		BytesCommitted:      int64(len(partial)),
	}); err != nil {
		t.Fatalf("Save checkpoint: %v", err)
	}

	devCache := fs.New("")
	defer devCache.Close()

	drv := xcopy.NewDriver(devCache, nil)
	opts := xcopy.DefaultOptions()
	opts.Overwrite = true

	if err := drv.CopyFile(context.Background(), srcPath, dstPath, opts); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}

	got, err := os.ReadFile(dstPath)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatal("resumed copy did not reproduce the full source content")
	}
}

func TestCopyFileCancellation(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.bin")
	dstPath := filepath.Join(dir, "dst.bin")

	if err := os.WriteFile(srcPath, bytes.Repeat([]byte("x"), 1<<20), 0o644); err != nil {
		t.Fatalf("seed source: %v", err)
	}

	devCache := fs.New("")
	defer devCache.Close()

	drv := xcopy.NewDriver(devCache, nil)
	opts := xcopy.DefaultOptions()
	opts.AllowZeroCopy = false
	opts.AllowMappedIO = false
	opts.DiscardPartial = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := drv.CopyFile(ctx, srcPath, dstPath, opts)
	if err == nil {
		t.Fatal("expected cancellation to produce an error")
	}
	if _, statErr := os.Stat(dstPath); !os.IsNotExist(statErr) {
		t.Fatal("expected destination to be discarded after cancellation with DiscardPartial")
	}
}
