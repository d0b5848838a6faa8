// Package timex holds the firmware's notion of uptime.
package timex

import "time"

var boot = time.Now()

// Boot returns the instant the program started.
func Boot() time.Time { return boot }

// UptimeMs returns milliseconds since boot, wrapping after ~49.7 days like a
// 32-bit millisecond counter.
func UptimeMs() uint32 { return SinceMs(boot, time.Now()) }

// SinceMs returns now-t in wrapping 32-bit milliseconds.
func SinceMs(t, now time.Time) uint32 { return uint32(now.Sub(t).Milliseconds()) }
