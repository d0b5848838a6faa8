package encoder

import "time"

// Tuning is the main-dial policy: two-signature filter plus a minimum
// interval between emitted ticks.
type Tuning struct {
	MinInterval time.Duration
	Filter      Filter

	last     uint8
	lastTick time.Time
}

// NewTuning returns a tuning decoder seeded from the current line levels.
func NewTuning(clk, dt bool) *Tuning {
	t := &Tuning{MinInterval: DefaultMinInterval}
	t.Reset(clk, dt)
	return t
}

// Reset seeds the previous code from the lines and clears the filter.
func (t *Tuning) Reset(clk, dt bool) {
	t.last = Code(clk, dt)
	t.Filter.Clear()
}

// Poll samples the lines once. While rate-limited the completed count is
// held, and the tick is emitted by the next same-direction signature after
// the interval has passed.
func (t *Tuning) Poll(clk, dt bool, now time.Time) Direction {
	cur := Code(clk, dt)
	d := t.Filter.Feed(Classify(t.last, cur))
	t.last = cur
	if d == None {
		return None
	}
	if !t.lastTick.IsZero() && now.Sub(t.lastTick) <= t.MinInterval {
		return None
	}
	t.Filter.Clear()
	t.lastTick = now
	return d
}

// Pitch is the BFO-offset policy: the raw code must hold for Settle before
// it is decoded, then the same two-signature filter applies.
type Pitch struct {
	Settle time.Duration
	Filter Filter

	raw       uint8
	changedAt time.Time
	last      uint8
}

// NewPitch returns a pitch decoder seeded from the current line levels.
func NewPitch(clk, dt bool) *Pitch {
	p := &Pitch{Settle: DefaultSettle}
	p.Reset(clk, dt)
	return p
}

// Reset seeds both the raw and the decoded code from the lines.
func (p *Pitch) Reset(clk, dt bool) {
	c := Code(clk, dt)
	p.raw, p.last = c, c
	p.changedAt = time.Time{}
	p.Filter.Clear()
}

// Poll samples the lines once and returns at most one tick.
func (p *Pitch) Poll(clk, dt bool, now time.Time) Direction {
	cur := Code(clk, dt)
	if cur != p.raw {
		p.raw = cur
		p.changedAt = now
		return None
	}
	if now.Sub(p.changedAt) < p.Settle || cur == p.last {
		return None
	}
	d := p.Filter.Feed(Classify(p.last, cur))
	p.last = cur
	if d != None {
		p.Filter.Clear()
	}
	return d
}
