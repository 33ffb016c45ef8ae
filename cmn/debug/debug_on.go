//go:build debug

// Package debug provides assertions and invariants that are compiled out
// of production builds (build without the "debug" tag) and compiled in
// for development and CI (`go test -tags=debug ./...`).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package debug

import (
	"fmt"
	"net/http"
	"sync"
)

func ON() bool { return true }

func Infof(format string, a ...any) { fmt.Printf("[debug] "+format+"\n", a...) }

func Func(f func()) { f() }

func Assert(cond bool, a ...any) {
	if !cond {
		panic(fmt.Sprint("assertion failed", fmt.Sprint(a...)))
	}
}

func AssertFunc(f func() bool, a ...any) { Assert(f(), a...) }

func AssertNoErr(err error) {
	if err != nil {
		panic(err)
	}
}

func Assertf(cond bool, format string, a ...any) {
	if !cond {
		panic(fmt.Sprintf(format, a...))
	}
}

func AssertNotPstr(v any) {
	Assertf(v != nil, "expected non-nil pointer-or-struct")
}

func FailTypeCast(v any) { panic(fmt.Sprintf("unexpected type %T", v)) }

func AssertMutexLocked(m *sync.Mutex) {
	if m.TryLock() {
		m.Unlock()
		panic("mutex not locked")
	}
}

func AssertRWMutexLocked(m *sync.RWMutex) {
	if m.TryLock() {
		m.Unlock()
		panic("rwmutex not locked")
	}
}

func AssertRWMutexRLocked(m *sync.RWMutex) {
	if m.TryLock() {
		m.Unlock()
		panic("rwmutex not rlocked")
	}
}

func Handlers() map[string]http.HandlerFunc { return nil }
