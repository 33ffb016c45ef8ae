package cos

import "unsafe"

// UnsafeB and UnsafeS perform zero-copy conversions between string and
// []byte, used on hot paths (digest computation, UUID generation) where an
// extra allocation would show up in throughput benchmarks. The caller must
// not mutate the returned/backing memory.

func UnsafeB(s string) []byte {
	if s == "" {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func UnsafeS(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
