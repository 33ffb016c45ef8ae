package nlog_test

import (
	"testing"

	"github.com/fcopy-dev/fcopy/cmn/nlog"
)

func TestBasicLogging(t *testing.T) {
	nlog.Infoln("hello", "world")
	nlog.Warningf("disk %s is %d%% full", "sda1", 91)
	nlog.Errorln("probe failed")
	nlog.Flush()
	if nlog.Since() < 0 {
		t.Fatalf("Since returned negative duration")
	}
}
