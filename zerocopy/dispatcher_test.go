package zerocopy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fcopy-dev/fcopy/ios"
	"github.com/fcopy-dev/fcopy/zerocopy"
)

func TestDispatchFallsBackWhenDisallowed(t *testing.T) {
	dir := t.TempDir()
	src, dst := openPair(t, dir, "hello")

	res, err := zerocopy.Dispatch(src, dst, 5, ios.Reflink|ios.FileRangeCopy|ios.SendFile, zerocopy.Options{AllowZeroCopy: false})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Fallback {
		t.Fatal("expected fallback when AllowZeroCopy is false")
	}
}

func TestDispatchFallsBackWithNoCapabilities(t *testing.T) {
	dir := t.TempDir()
	src, dst := openPair(t, dir, "hello")

	res, err := zerocopy.Dispatch(src, dst, 5, 0, zerocopy.Options{AllowZeroCopy: true, AllowMappedIO: true})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if !res.Fallback {
		t.Fatal("expected fallback when the pair has no shared capabilities")
	}
}

func openPair(t *testing.T, dir, content string) (*os.File, *os.File) {
	t.Helper()
	srcPath := filepath.Join(dir, "src")
	if err := os.WriteFile(srcPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	src, err := os.Open(srcPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { src.Close() })

	dstPath := filepath.Join(dir, "dst")
	dst, err := os.Create(dstPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { dst.Close() })
	return src, dst
}
