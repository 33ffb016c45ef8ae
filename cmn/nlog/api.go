// Package nlog is this module's own logger, adapted from the teacher's
// package of the same name: leveled (Info/Warning/Error), timestamped,
// safe for concurrent use from every worker goroutine in the copy
// pipeline.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"flag"
	"time"

	"github.com/fcopy-dev/fcopy/cmn/mono"
)

// MaxSize is kept for API compatibility with the teacher's rotating
// implementation; this package does not rotate, so it is currently unused.
var MaxSize int64 = 4 * 1024 * 1024

func InitFlags(flset *flag.FlagSet) {
	flset.BoolVar(&toStderr, "logtostderr", false, "log to standard error instead of files")
	flset.BoolVar(&alsoToStderr, "alsologtostderr", false, "log to standard error as well as files")
}

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }

func SetLogDirRole(dir, role string) { logDir, aisrole = dir, role }
func SetTitle(s string)              { title = s }

func InfoLogName() string { return sname() + "." + sevName[sevInfo] + ".log" }
func ErrLogName() string  { return sname() + "." + sevName[sevErr] + ".log" }

// Flush forces buffered log lines to their underlying files. exit[0] == true
// additionally fsyncs and closes the files, for use on process shutdown.
func Flush(exit ...bool) {
	ex := len(exit) > 0 && exit[0]
	for _, sev := range []severity{sevInfo, sevErr} {
		flushOne(nlogs[sev], ex)
	}
}

// Since returns the larger of the two streams' times since their last
// write (that is, the age of the staler stream), used by callers that
// periodically flush on idle.
func Since() time.Duration {
	now := mono.NanoTime()
	a, b := nlogs[sevInfo].since(now), nlogs[sevErr].since(now)
	if a > b {
		return a
	}
	return b
}

// OOB reports whether either stream has encountered a write error since
// startup (out-of-band condition worth surfacing to an operator).
func OOB() bool {
	nlogs[sevInfo].mu.Lock()
	a := nlogs[sevInfo].erred
	nlogs[sevInfo].mu.Unlock()

	nlogs[sevErr].mu.Lock()
	b := nlogs[sevErr].erred
	nlogs[sevErr].mu.Unlock()

	return a || b
}
