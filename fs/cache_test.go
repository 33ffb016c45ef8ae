package fs_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fcopy-dev/fcopy/fs"
)

func TestCacheSingleFlight(t *testing.T) {
	c := fs.New("")
	defer c.Close()

	var wg sync.WaitGroup
	dir := t.TempDir()
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Get(dir)
		}()
	}
	wg.Wait()

	st := c.Stats()
	if st.Size != 1 {
		t.Fatalf("expected one cached entry, got %d", st.Size)
	}
	// every lookup is counted once, as a hit or a miss: callers that arrive
	// before insertion count as misses and share the single-flight probe,
	// the rest land after insertion and count as hits.
	if st.Misses+st.Hits != 10 {
		t.Fatalf("expected 10 accounted lookups, got misses=%d hits=%d", st.Misses, st.Hits)
	}
}

// TestCacheCoalescesSameVolume covers §4.2's "many files in one directory
// cost one probe" invariant: distinct files sharing a mount must resolve to
// the same cache entry, not one entry per path.
func TestCacheCoalescesSameVolume(t *testing.T) {
	c := fs.New("")
	defer c.Close()

	dir := t.TempDir()
	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	c.Get(filepath.Join(dir, "a.txt"))
	c.Get(filepath.Join(dir, "b.txt"))
	c.Get(filepath.Join(dir, "c.txt"))

	if st := c.Stats(); st.Size != 1 {
		t.Fatalf("expected one entry shared across files on the same volume, got %d", st.Size)
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := fs.New("")
	defer c.Close()
	dir := t.TempDir()

	c.Get(dir)
	if c.Stats().Size != 1 {
		t.Fatal("expected entry after Get")
	}
	c.Invalidate(dir)
	if c.Stats().Size != 0 {
		t.Fatal("expected entry removed after Invalidate")
	}
}
