package sched_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fcopy-dev/fcopy/ios"
	"github.com/fcopy-dev/fcopy/sched"
)

func TestClassifySize(t *testing.T) {
	cases := []struct {
		size int64
		want sched.SizeClass
	}{
		{0, sched.Small},
		{sched.SmallMax, sched.Small},
		{sched.SmallMax + 1, sched.Medium},
		{sched.MediumMax, sched.Medium},
		{sched.MediumMax + 1, sched.Large},
	}
	for _, c := range cases {
		if got := sched.ClassifySize(c.size); got != c.want {
			t.Errorf("ClassifySize(%d) = %v, want %v", c.size, got, c.want)
		}
	}
}

func TestPoolSizeCapsHddAndNetwork(t *testing.T) {
	if n := sched.PoolSize(ios.Hdd); n > 2 {
		t.Errorf("Hdd pool size %d exceeds cap of 2", n)
	}
	if n := sched.PoolSize(ios.Network); n > 8 {
		t.Errorf("Network pool size %d exceeds cap of 8", n)
	}
	if n := sched.PoolSize(ios.Ssd); n < 1 || n > 256 {
		t.Errorf("Ssd pool size %d out of [1, 256]", n)
	}
}

func buildTree(t *testing.T, root string) {
	t.Helper()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	must(os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	must(os.WriteFile(filepath.Join(root, "sub", "b.txt"), []byte("b"), 0o644))
}

func TestWalkEmitsDirBeforeContents(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root)

	entries, errCh := sched.Walk(context.Background(), root, sched.WalkOptions{})

	seenDirs := map[string]bool{}
	var order []sched.FileEntry
	for e := range entries {
		order = append(order, e)
		if e.Kind == sched.KindDir {
			seenDirs[e.Path] = true
		} else if !seenDirs[filepath.Dir(e.Path)] {
			t.Errorf("file %s observed before its parent directory was emitted", e.Path)
		}
	}
	if err := <-errCh; err != nil {
		t.Fatalf("walk error: %v", err)
	}
	if len(order) == 0 {
		t.Fatal("expected at least one entry")
	}
}

func TestSchedulerRunCopiesEveryFile(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root)

	entries, errCh := sched.Walk(context.Background(), root, sched.WalkOptions{})

	var mu sync.Mutex
	var copied []string

	err := sched.Run(context.Background(), entries, sched.Options{
		Workers:    2,
		QueueBound: 4,
		MakeDir: func(_ context.Context, e sched.FileEntry) error {
			return nil
		},
		CopyFile: func(_ context.Context, e sched.FileEntry) error {
			mu.Lock()
			copied = append(copied, e.Path)
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if walkErr := <-errCh; walkErr != nil {
		t.Fatalf("walk error: %v", walkErr)
	}
	if len(copied) != 2 {
		t.Fatalf("expected 2 files copied, got %d: %v", len(copied), copied)
	}
}

// TestWalkSkipsOnlySymlinkNotSiblings guards against the classic SkipDir
// gotcha: returning filepath.SkipDir for a non-directory dirent drops every
// remaining sibling in its containing directory, not just that entry.
func TestWalkSkipsOnlySymlinkNotSiblings(t *testing.T) {
	root := t.TempDir()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	must(os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link.txt")))
	must(os.WriteFile(filepath.Join(root, "c.txt"), []byte("c"), 0o644))

	entries, errCh := sched.Walk(context.Background(), root, sched.WalkOptions{FollowSymlinks: false})

	seen := map[string]bool{}
	for e := range entries {
		seen[filepath.Base(e.Path)] = true
	}
	if err := <-errCh; err != nil {
		t.Fatalf("walk error: %v", err)
	}
	if seen["link.txt"] {
		t.Error("expected symlink itself to be skipped")
	}
	if !seen["a.txt"] || !seen["c.txt"] {
		t.Errorf("expected siblings a.txt and c.txt to survive the symlink skip, got %v", seen)
	}
}
