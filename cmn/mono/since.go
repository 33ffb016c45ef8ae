package mono

import "time"

// Since returns the elapsed duration since a NanoTime() reading.
func Since(t int64) time.Duration { return time.Duration(NanoTime() - t) }
