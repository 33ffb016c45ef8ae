package xcopy

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSizeGuardFlagsSizeChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.bin")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	guard, err := newSizeGuard(path, 5)
	if err != nil {
		t.Skipf("size-change watch unavailable on this platform: %v", err)
	}
	defer guard.Close()

	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("mutate file: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if guard.Check() != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("expected sizeGuard to flag the size change within the deadline")
}

func TestSizeGuardQuietWhenUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "src.bin")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	guard, err := newSizeGuard(path, 5)
	if err != nil {
		t.Skipf("size-change watch unavailable on this platform: %v", err)
	}
	defer guard.Close()

	time.Sleep(50 * time.Millisecond)
	if err := guard.Check(); err != nil {
		t.Fatalf("expected no error for an untouched file, got %v", err)
	}
}
