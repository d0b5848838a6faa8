// Package heartbeat paces the periodic status line printed by the control
// loop. It has no goroutine of its own; the loop asks it whether a beat is
// due.
package heartbeat

import "time"

const DefaultInterval = 10 * time.Second

// Beat fires at most once per Interval.
type Beat struct {
	Interval time.Duration

	last  time.Time
	count uint32
}

// Due reports whether a beat should be emitted at now and, if so, records
// it. The first call always fires.
func (b *Beat) Due(now time.Time) bool {
	iv := b.Interval
	if iv <= 0 {
		iv = DefaultInterval
	}
	if b.count > 0 && now.Sub(b.last) < iv {
		return false
	}
	b.last = now
	b.count++
	return true
}

// Count returns the number of beats emitted.
func (b *Beat) Count() uint32 { return b.count }
