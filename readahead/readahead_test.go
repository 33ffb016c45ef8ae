package readahead_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/fcopy-dev/fcopy/ios"
	"github.com/fcopy-dev/fcopy/readahead"
)

func TestEnabled(t *testing.T) {
	window := ios.ReadAheadWindowFor(ios.Ssd)
	if readahead.Enabled(ios.Ssd, window*9) {
		t.Fatal("should not enable below 10x window")
	}
	if !readahead.Enabled(ios.Ssd, window*10) {
		t.Fatal("should enable at exactly 10x window")
	}
}

func TestReaderRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789"), 20000) // spans more than one 128KiB Unknown-class window
	src := bytes.NewReader(data)

	r := readahead.New(context.Background(), src, ios.Unknown)
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestReaderCancel(t *testing.T) {
	pr, pw := io.Pipe() // never written to: the prefetch blocks forever
	defer pw.Close()
	r := readahead.New(context.Background(), pr, ios.Unknown)
	r.Cancel()

	buf := make([]byte, 1024)
	_, err := r.Read(buf)
	if err == nil {
		t.Fatal("expected an error after Cancel")
	}
}
