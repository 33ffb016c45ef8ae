/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package fcopy

import "github.com/fcopy-dev/fcopy/ios"

// classExpectedRate is a static bandwidth-class heuristic (MB/s),
// resolving the §9 Open Question on how compare() estimates throughput:
// analyze() both sides and report the slower side's class as the
// bottleneck, rather than running a live probe-copy, so compare stays
// read-only and side-effect-free.
var classExpectedRate = map[ios.StorageClass]float64{
	ios.RamDisk: 2000,
	ios.Ssd:     500,
	ios.Network: 100,
	ios.Hdd:     150,
	ios.Unknown: 100,
}

// CompareResult resolves compare(src, dst): bottleneck + expected rate.
type CompareResult struct {
	SourceClass      ios.StorageClass
	DestinationClass ios.StorageClass
	Bottleneck       ios.StorageClass
	ExpectedRateMBps float64
}

// Compare resolves compare(src, dst).
func (e *Engine) Compare(src, dst string) CompareResult {
	srcDev := e.devCache.Get(src)
	dstDev := e.devCache.Get(dst)

	srcRate := classExpectedRate[srcDev.Class]
	dstRate := classExpectedRate[dstDev.Class]

	bottleneck := srcDev.Class
	expected := srcRate
	if dstRate < srcRate {
		bottleneck = dstDev.Class
		expected = dstRate
	}

	return CompareResult{
		SourceClass:      srcDev.Class,
		DestinationClass: dstDev.Class,
		Bottleneck:       bottleneck,
		ExpectedRateMBps: expected,
	}
}
