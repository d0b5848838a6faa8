package timex

import (
	"testing"
	"time"
)

func TestSinceMs(t *testing.T) {
	t0 := time.Unix(100, 0)
	if got := SinceMs(t0, t0.Add(1500*time.Millisecond)); got != 1500 {
		t.Fatalf("SinceMs = %d", got)
	}
	// 2^32 ms later the counter is back to zero.
	if got := SinceMs(t0, t0.Add((1<<32)*time.Millisecond)); got != 0 {
		t.Fatalf("wrap = %d", got)
	}
}

func TestUptimeIsMonotonic(t *testing.T) {
	if Boot().After(time.Now()) {
		t.Fatal("boot in the future")
	}
	a := UptimeMs()
	b := UptimeMs()
	if b < a {
		t.Fatalf("uptime went backwards: %d then %d", a, b)
	}
}
