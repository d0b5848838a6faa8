// Package frontpanel is the cooperative control loop: one Step polls both
// encoders, the push-buttons and the serial console, then gives the save
// scheduler a chance to flush. Everything runs on the caller's goroutine;
// the only other goroutine in the firmware is the serial reader feeding the
// console ring.
package frontpanel

import (
	"context"
	"time"

	"vfobfo-go/drivers/encoder"
	"vfobfo-go/services/console"
	"vfobfo-go/services/heartbeat"
	"vfobfo-go/services/radio"
	"vfobfo-go/types"
)

const (
	DefaultPollInterval = time.Millisecond
	DefaultDebounce     = 200 * time.Millisecond
)

// Pin is a digital input. machine.Pin satisfies it.
type Pin interface {
	Get() bool
}

// Inputs are the front-panel lines. Buttons are active low (pulled up,
// pressed to ground). A nil button is never pressed.
type Inputs struct {
	TuneCLK, TuneDT   Pin
	PitchCLK, PitchDT Pin

	Step, Band, Mode, AGC, ATT Pin
}

// Persister receives state snapshots; *nvstore.Manager satisfies it.
type Persister interface {
	RequestSave(st types.RXState)
	RequestQuickSave(st types.RXState)
	Update() bool
	IsSavePending() bool
}

// Config tunes the loop. Zero fields take defaults.
type Config struct {
	PollInterval time.Duration
	Debounce     time.Duration
	Heartbeat    time.Duration
}

type button struct {
	pin     Pin
	action  func() error
	name    string
	pressed bool
	last    time.Time
}

// poll reports an accepted press: a high-to-low transition at least the
// debounce time after the previous accepted press.
func (b *button) poll(now time.Time, debounce time.Duration) bool {
	if b.pin == nil {
		return false
	}
	down := !b.pin.Get()
	if !down {
		b.pressed = false
		return false
	}
	if b.pressed || (!b.last.IsZero() && now.Sub(b.last) <= debounce) {
		return false
	}
	b.pressed = true
	b.last = now
	return true
}

// Panel owns the control-loop state.
type Panel struct {
	in  Inputs
	rx  *radio.Receiver
	st  Persister
	sh  *console.Shell
	lr  *console.LineReader
	cfg Config

	tune    *encoder.Tuning
	pitch   *encoder.Pitch
	buttons []*button
	beat    heartbeat.Beat

	ticks, pitchTicks uint32
}

// New seeds both encoders from the current line levels. sh and lr may be nil
// when there is no console.
func New(in Inputs, rx *radio.Receiver, st Persister, sh *console.Shell, lr *console.LineReader, cfg Config) *Panel {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	p := &Panel{
		in:    in,
		rx:    rx,
		st:    st,
		sh:    sh,
		lr:    lr,
		cfg:   cfg,
		tune:  encoder.NewTuning(in.TuneCLK.Get(), in.TuneDT.Get()),
		pitch: encoder.NewPitch(in.PitchCLK.Get(), in.PitchDT.Get()),
		beat:  heartbeat.Beat{Interval: cfg.Heartbeat},
	}
	p.buttons = []*button{
		{pin: in.Step, name: "step", action: func() error { rx.CycleStep(); return nil }},
		{pin: in.Band, name: "band", action: rx.CycleBand},
		{pin: in.Mode, name: "mode", action: rx.CycleMode},
		{pin: in.AGC, name: "agc", action: rx.ToggleAGC},
		{pin: in.ATT, name: "att", action: rx.ToggleAttenuator},
	}
	return p
}

// Step runs one poll of every input at now.
func (p *Panel) Step(now time.Time) {
	if d := p.tune.Poll(p.in.TuneCLK.Get(), p.in.TuneDT.Get(), now); d != encoder.None {
		changed, err := p.rx.Tune(d)
		if err != nil {
			println("[panel] tune:", err.Error())
		}
		if changed {
			p.ticks++
			p.st.RequestSave(p.rx.Snapshot())
		}
	}

	if d := p.pitch.Poll(p.in.PitchCLK.Get(), p.in.PitchDT.Get(), now); d != encoder.None {
		if changed, err := p.rx.AdjustPitch(d); err != nil {
			println("[panel] pitch:", err.Error())
		} else if changed {
			p.pitchTicks++
		}
	}

	for _, b := range p.buttons {
		if !b.poll(now, p.cfg.Debounce) {
			continue
		}
		if err := b.action(); err != nil {
			println("[panel]", b.name, "button:", err.Error())
		}
		p.st.RequestQuickSave(p.rx.Snapshot())
	}

	if p.lr != nil && p.sh != nil {
		for {
			line, ok := p.lr.Next()
			if !ok {
				break
			}
			if err := p.sh.Exec(line); err != nil {
				println("[console]", line, "->", err.Error())
			}
		}
	}

	p.st.Update()

	if p.beat.Due(now) {
		st := p.rx.Snapshot()
		println("[panel] freq", st.Frequency, "mode", st.Mode.String(), "step", st.Step,
			"pitch", p.rx.Pitch(), "save_pending", p.st.IsSavePending())
	}
}

// Run calls Step every PollInterval until ctx is done.
func (p *Panel) Run(ctx context.Context) error {
	tick := time.NewTicker(p.cfg.PollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			println("[panel] stopping")
			return ctx.Err()
		case now := <-tick.C:
			p.Step(now)
		}
	}
}

// Ticks returns the number of tuning and pitch ticks applied so far.
func (p *Panel) Ticks() (tune, pitch uint32) { return p.ticks, p.pitchTicks }
