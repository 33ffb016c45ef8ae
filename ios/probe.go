// Package ios is a collection of interfaces to the local storage subsystem;
// the package includes OS-dependent implementations for those interfaces.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package ios

import (
	"github.com/fcopy-dev/fcopy/cmn/nlog"
)

// Probe resolves path to a DeviceDescriptor. Per §4.1, a probe must never
// fail the caller's request: any internal error degrades to Unknown with
// empty capabilities, logged at debug (here: Info, since this module has
// no separate debug-log level).
func Probe(path string) DeviceDescriptor {
	d, err := probe(path)
	if err != nil {
		nlog.Infof("probe %s: %v, falling back to unknown", path, err)
		return DeviceDescriptor{Class: Unknown, Capabilities: 0, OptimalBufferSize: classBufferBounds[Unknown].Default}
	}
	return d
}
