package ios_test

import (
	"testing"

	"github.com/fcopy-dev/fcopy/ios"
)

func TestBufferBoundsFor(t *testing.T) {
	cases := []struct {
		class             ios.StorageClass
		min, def, max int64
	}{
		{ios.Ssd, 64 * ios.KiB, 512 * ios.KiB, 16 * ios.MiB},
		{ios.Hdd, 4 * ios.KiB, 64 * ios.KiB, 1 * ios.MiB},
		{ios.Network, 8 * ios.KiB, 128 * ios.KiB, 2 * ios.MiB},
		{ios.RamDisk, 1 * ios.MiB, 8 * ios.MiB, 64 * ios.MiB},
		{ios.Unknown, 8 * ios.KiB, 256 * ios.KiB, 4 * ios.MiB},
	}
	for _, c := range cases {
		b := ios.BufferBoundsFor(c.class)
		if b.Min != c.min || b.Default != c.def || b.Max != c.max {
			t.Fatalf("%s: got %+v, want {%d %d %d}", c.class, b, c.min, c.def, c.max)
		}
	}
}

func TestCapFlags(t *testing.T) {
	f := ios.Reflink | ios.MappedIO
	if !f.Has(ios.Reflink) || !f.Has(ios.MappedIO) {
		t.Fatal("Has returned false for set bits")
	}
	if f.Has(ios.SendFile) {
		t.Fatal("Has returned true for unset bit")
	}
	if ios.CapFlags(0).String() != "-" {
		t.Fatal("empty CapFlags should render as -")
	}
}

func TestDeviceDescriptorIntersect(t *testing.T) {
	a := ios.DeviceDescriptor{Capabilities: ios.Reflink | ios.SendFile}
	b := ios.DeviceDescriptor{Capabilities: ios.Reflink | ios.MappedIO}
	got := a.Intersect(b)
	if got != ios.Reflink {
		t.Fatalf("got %v, want Reflink only", got)
	}
}
