// Package encoder decodes two-line quadrature rotary encoders by polling.
//
// Each poll forms a 2-bit code (CLK<<1 | DT) and pairs it with the previous
// code into a 4-bit transition signature. Four signatures mean forward, four
// mean backward and the rest are bounces or skipped states.
//
// A tick is emitted only after two consecutive signatures in the same
// direction. Two policies are provided:
//
//	Tuning  rate-limits emitted ticks (MinInterval)
//	Pitch   waits for the raw code to settle before decoding (Settle)
//
// The state structs are owned by the caller; there is no hidden shared state,
// so any number of encoders can be polled from one loop.
package encoder

import "time"

// Defaults for the front-panel encoders.
const (
	DefaultMinInterval = 50 * time.Millisecond
	DefaultSettle      = 3 * time.Millisecond

	// Signatures required per tick.
	DefaultThreshold = 2
)

// Direction is the signed result of a poll.
type Direction int8

const (
	Backward Direction = -1
	None     Direction = 0
	Forward  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	}
	return "none"
}

// Code packs the two line levels into the 2-bit state.
func Code(clk, dt bool) uint8 {
	var c uint8
	if clk {
		c |= 0b10
	}
	if dt {
		c |= 0b01
	}
	return c
}

// Classify maps the transition prev -> cur to a direction.
func Classify(prev, cur uint8) Direction {
	switch (prev&0b11)<<2 | cur&0b11 {
	case 0b1101, 0b0100, 0b0010, 0b1011:
		return Forward
	case 0b1110, 0b0111, 0b0001, 0b1000:
		return Backward
	}
	return None
}

// Filter counts consecutive same-direction signatures. A signature in the
// other direction restarts the count, so an isolated flicker (one step out
// and back) never completes a tick.
type Filter struct {
	// Threshold is the count that completes a tick; 0 means DefaultThreshold.
	Threshold int

	dir Direction
	n   int
}

// Feed adds one classified signature and reports the direction once the
// threshold is reached. The count is held until Clear, so a caller that is
// not ready to emit keeps the completed tick.
func (f *Filter) Feed(d Direction) Direction {
	if d == None {
		return None
	}
	if d != f.dir {
		f.dir, f.n = d, 0
	}
	f.n++
	th := f.Threshold
	if th <= 0 {
		th = DefaultThreshold
	}
	if f.n >= th {
		return f.dir
	}
	return None
}

// Clear drops the count after a tick has been emitted.
func (f *Filter) Clear() { f.dir, f.n = None, 0 }

// Pending reports how many signatures have been counted toward the next tick.
func (f *Filter) Pending() int { return f.n }
