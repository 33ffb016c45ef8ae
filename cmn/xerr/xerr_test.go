package xerr_test

import (
	"errors"
	"testing"

	"github.com/fcopy-dev/fcopy/cmn/xerr"
)

func TestRecoverableKinds(t *testing.T) {
	cases := []struct {
		kind        xerr.Kind
		recoverable bool
	}{
		{xerr.NetworkError, true},
		{xerr.Timeout, true},
		{xerr.InsufficientSpace, true},
		{xerr.NotFound, false},
		{xerr.PermissionDenied, false},
		{xerr.VerificationError, false},
	}
	for _, c := range cases {
		e := xerr.New(c.kind, "/tmp/x", errors.New("boom"))
		if e.Recoverable() != c.recoverable {
			t.Fatalf("%s: Recoverable() = %v, want %v", c.kind, e.Recoverable(), c.recoverable)
		}
	}
}

func TestKindOfUnwraps(t *testing.T) {
	base := xerr.New(xerr.NotFound, "/a/b", errors.New("missing"))
	wrapped := xerr.Wrap(xerr.NotFound, "/a/b", base, "resolving destination")
	if xerr.KindOf(wrapped) != xerr.NotFound {
		t.Fatalf("expected NotFound, got %s", xerr.KindOf(wrapped))
	}
	if xerr.KindOf(errors.New("plain")) != xerr.Other {
		t.Fatal("expected Other for a non-taxonomy error")
	}
}
