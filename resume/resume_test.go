package resume_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fcopy-dev/fcopy/cmn/cos"
	"github.com/fcopy-dev/fcopy/resume"
)

func TestSaveLoadRemove(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(dst, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	cp := resume.Checkpoint{
		SourcePath:      "/src/big.bin",
		DestinationPath: dst,
		FileSize:        100 << 20,
		SourceModTime:   time.Now().Truncate(time.Second),
		BytesCommitted:  10 << 20,
		CreatedAt:       time.Now(),
	}
	if err := resume.Save(cp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := resume.Load(dst)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.BytesCommitted != cp.BytesCommitted {
		t.Fatalf("got %d, want %d", got.BytesCommitted, cp.BytesCommitted)
	}

	if err := resume.Remove(dst); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	_, ok, _ = resume.Load(dst)
	if ok {
		t.Fatal("expected checkpoint gone after Remove")
	}
}

func TestCheckpointIDRoundTrips(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "big.bin")
	if err := os.WriteFile(dst, []byte("partial"), 0o644); err != nil {
		t.Fatal(err)
	}

	id := resume.NewCheckpointID()
	if id == "" {
		t.Fatal("expected a non-empty checkpoint ID")
	}
	if resume.NewCheckpointID() == id {
		t.Fatal("expected two calls to NewCheckpointID to differ")
	}

	cp := resume.Checkpoint{
		CheckpointID:    id,
		SourcePath:      "/src/big.bin",
		DestinationPath: dst,
		FileSize:        100 << 20,
		SourceModTime:   time.Now().Truncate(time.Second),
		BytesCommitted:  10 << 20,
		CreatedAt:       time.Now(),
	}
	if err := resume.Save(cp); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := resume.Load(dst)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.CheckpointID != id {
		t.Fatalf("CheckpointID: got %q, want %q", got.CheckpointID, id)
	}
}

func TestDigestPrefixAndMatches(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	if err := os.WriteFile(src, []byte("hello world"), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(src)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	digest, err := resume.DigestPrefix(f)
	if err != nil {
		t.Fatalf("DigestPrefix: %v", err)
	}
	if len(digest) != 16 {
		t.Fatalf("expected 16 hex chars, got %q", digest)
	}

	now := time.Now()
	cp := resume.Checkpoint{FileSize: 11, SourceModTime: now, ContentDigestPrefix: digest}
	if !cp.Matches(11, now, digest) {
		t.Fatal("expected checkpoint to match identical source state")
	}
	if cp.Matches(12, now, digest) {
		t.Fatal("expected mismatch on different size")
	}
}

func TestIndexRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ix, err := resume.OpenIndex(dir)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()

	if err := ix.Record("abc123", "/dst/file", 4096); err != nil {
		t.Fatalf("Record: %v", err)
	}
	n, ok := ix.Lookup("abc123", "/dst/file")
	if !ok || n != 4096 {
		t.Fatalf("Lookup: n=%d ok=%v", n, ok)
	}
	if err := ix.Forget("abc123", "/dst/file"); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if _, ok := ix.Lookup("abc123", "/dst/file"); ok {
		t.Fatal("expected entry gone after Forget")
	}

	if err := ix.Forget("abc123", "/dst/file"); !cos.IsErrNotFound(err) {
		t.Fatalf("expected a *cos.ErrNotFound forgetting an already-gone entry, got %v", err)
	}
}
