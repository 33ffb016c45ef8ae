// Package xerr is the error taxonomy surfaced to collaborators (CLI,
// bindings, network transport): a closed set of kinds plus a cause chain,
// wrapping github.com/pkg/errors the way cmn/cos wraps stdlib errors.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package xerr

import (
	"fmt"

	"github.com/pkg/errors"
)

type Kind int

const (
	Other Kind = iota
	NotFound
	PermissionDenied
	InsufficientSpace
	InvalidPath
	NetworkError
	CompressionError
	VerificationError
	Cancelled
	Timeout
	OutOfMemory
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case PermissionDenied:
		return "PermissionDenied"
	case InsufficientSpace:
		return "InsufficientSpace"
	case InvalidPath:
		return "InvalidPath"
	case NetworkError:
		return "NetworkError"
	case CompressionError:
		return "CompressionError"
	case VerificationError:
		return "VerificationError"
	case Cancelled:
		return "Cancelled"
	case Timeout:
		return "Timeout"
	case OutOfMemory:
		return "OutOfMemory"
	default:
		return "Other"
	}
}

// recoverable marks the subset of kinds §6/§7 tag as retry-eligible.
var recoverable = map[Kind]bool{
	NetworkError:      true,
	Timeout:           true,
	InsufficientSpace: true,
}

// Error is the structured error surfaced across every External Interface
// operation (§6). It carries a Kind, an operation path for context, and
// a cause chain via github.com/pkg/errors.
type Error struct {
	Kind  Kind
	Path  string
	cause error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.cause)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Recoverable reports whether this Kind is retry-eligible per §6/§7.
func (e *Error) Recoverable() bool { return recoverable[e.Kind] }

// New wraps cause into a taxonomy Error of the given kind, attaching a
// stack trace via pkg/errors for diagnostics.
func New(kind Kind, path string, cause error) *Error {
	if cause == nil {
		cause = errors.New(kind.String())
	} else {
		cause = errors.WithStack(cause)
	}
	return &Error{Kind: kind, Path: path, cause: cause}
}

// Wrap annotates cause with msg and a stack trace, preserving kind.
func Wrap(kind Kind, path string, cause error, msg string) *Error {
	return New(kind, path, errors.Wrap(cause, msg))
}

// As reports whether err (or something it wraps) is an *Error, returning
// it for inspection. Thin convenience wrapper over errors.As.
func As(err error) (*Error, bool) {
	var xe *Error
	if errors.As(err, &xe) {
		return xe, true
	}
	return nil, false
}

// KindOf returns the taxonomy Kind of err, or Other if err is not (or does
// not wrap) an *Error.
func KindOf(err error) Kind {
	if xe, ok := As(err); ok {
		return xe.Kind
	}
	return Other
}

// IsRecoverable reports whether err is tagged recoverable, false for any
// error outside the taxonomy.
func IsRecoverable(err error) bool {
	xe, ok := As(err)
	return ok && xe.Recoverable()
}
