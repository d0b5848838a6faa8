// Package radio holds the live receiver state and turns encoder ticks and
// button actions into synthesizer and output-latch updates.
//
// The receiver is a superheterodyne with a 455 kHz IF: the VFO runs at the
// displayed frequency plus the IF and the BFO sits on a per-mode base plus a
// user pitch offset. AM has no BFO and no pitch.
//
// Receiver is not safe for concurrent use; it belongs to the control loop.
package radio

import (
	"vfobfo-go/drivers/encoder"
	"vfobfo-go/types"
	"vfobfo-go/x/mathx"
)

// Tuning limits and oscillator plan, in Hz.
const (
	MinFrequency = 1_000_000
	MaxFrequency = 30_000_000
	IF           = 455_000

	BFOUSB = 453_500
	BFOLSB = 456_500
	BFOCW  = 454_300

	PitchMin  = -200
	PitchMax  = 200
	PitchStep = 5

	DefaultStep = 1000
)

// Output latch bits above the 3-bit filter code.
const (
	bitModeShift = 3
	bitAGCFast   = 1 << 5
	bitAtt       = 1 << 6
	bitBFO       = 1 << 7
)

// Synth is the two-output clock generator: CLK0 is the VFO, CLK1 the BFO.
type Synth interface {
	SetVFO(hz uint32) error
	SetBFO(hz uint32) error
	EnableBFO(on bool) error
	// SetCorrection applies a reference-oscillator correction in parts per
	// billion.
	SetCorrection(ppb int32) error
}

// Outputs is the 8-bit discrete output latch. Set reports whether the pins
// were written.
type Outputs interface {
	Set(v byte) (bool, error)
}

// Receiver is the live front-panel state.
type Receiver struct {
	synth Synth
	out   Outputs

	st         types.RXState
	pitch      int32
	correction int32
	bfoOn      bool
}

// New returns a receiver at the factory defaults. Nothing is driven until
// Restore or another mutating call.
func New(synth Synth, out Outputs) *Receiver {
	return &Receiver{
		synth: synth,
		out:   out,
		st: types.RXState{
			Frequency: 7_000_000,
			Mode:      types.ModeLSB,
			Step:      DefaultStep,
			AGCFast:   true,
		},
	}
}

// Snapshot returns the persisted subset of the live state.
func (r *Receiver) Snapshot() types.RXState { return r.st }

// Restore adopts st, sanitising out-of-range values, and drives every
// output. The pitch offset is reset.
func (r *Receiver) Restore(st types.RXState) error {
	st.Frequency = clampFreq(int64(st.Frequency))
	if !st.Mode.Valid() {
		st.Mode = types.ModeLSB
	}
	if st.Step == 0 {
		st.Step = DefaultStep
	}
	r.st = st
	r.pitch = 0
	return r.applyAll()
}

func (r *Receiver) Frequency() uint32 { return r.st.Frequency }
func (r *Receiver) Mode() types.Mode  { return r.st.Mode }
func (r *Receiver) Step() uint32      { return r.st.Step }
func (r *Receiver) Pitch() int32      { return r.pitch }
func (r *Receiver) Correction() int32 { return r.correction }
func (r *Receiver) BFOEnabled() bool  { return r.bfoOn }
func (r *Receiver) VFO() uint32       { return r.st.Frequency + IF }
func (r *Receiver) Band() int         { return BandOf(r.st.Frequency) }
func (r *Receiver) OutputByte() byte  { return OutputByte(r.st, r.bfoOn) }

// BFO returns the BFO frequency for the current mode and pitch, and false in
// AM.
func (r *Receiver) BFO() (uint32, bool) {
	base, ok := bfoBase(r.st.Mode)
	if !ok {
		return 0, false
	}
	return uint32(int32(base) + r.pitch), true
}

// Tune moves the frequency one step in direction d, clamped to the tuning
// range. It reports whether the frequency changed.
func (r *Receiver) Tune(d encoder.Direction) (bool, error) {
	if d == encoder.None {
		return false, nil
	}
	f := clampFreq(int64(r.st.Frequency) + int64(d)*int64(r.st.Step))
	if f == r.st.Frequency {
		return false, nil
	}
	r.st.Frequency = f
	return true, r.applyFrequency()
}

// SetFrequency jumps to hz, clamped to the tuning range.
func (r *Receiver) SetFrequency(hz uint32) error {
	r.st.Frequency = clampFreq(int64(hz))
	return r.applyFrequency()
}

// AdjustPitch moves the BFO offset one pitch step, clamped to the pitch
// range. Ignored in modes without a BFO.
func (r *Receiver) AdjustPitch(d encoder.Direction) (bool, error) {
	if d == encoder.None || !r.st.Mode.HasPitch() {
		return false, nil
	}
	p := mathx.Clamp(r.pitch+int32(d)*PitchStep, PitchMin, PitchMax)
	if p == r.pitch {
		return false, nil
	}
	r.pitch = p
	return true, r.applyBFO()
}

// NextStep returns the tuning step after s. Unknown steps reset to 1 kHz.
func NextStep(s uint32) uint32 {
	switch s {
	case 10:
		return 100
	case 100:
		return 1000
	case 1000:
		return 10000
	case 10000:
		return 10
	}
	return DefaultStep
}

// CycleStep advances the tuning step.
func (r *Receiver) CycleStep() { r.st.Step = NextStep(r.st.Step) }

// CycleMode advances AM -> LSB -> USB -> CW -> AM and resets the pitch.
func (r *Receiver) CycleMode() error {
	r.st.Mode = r.st.Mode.Next()
	r.pitch = 0
	return firstErr(r.applyBFO(), r.applyOutputs())
}

// SetMode selects m directly and resets the pitch.
func (r *Receiver) SetMode(m types.Mode) error {
	if !m.Valid() {
		return nil
	}
	r.st.Mode = m
	r.pitch = 0
	return firstErr(r.applyBFO(), r.applyOutputs())
}

// CycleBand jumps to the home frequency of the next amateur band.
func (r *Receiver) CycleBand() error {
	return r.SetFrequency(Bands[nextBand(r.st.Frequency)].Home)
}

func (r *Receiver) ToggleAGC() error {
	r.st.AGCFast = !r.st.AGCFast
	return r.applyOutputs()
}

func (r *Receiver) ToggleAttenuator() error {
	r.st.Attenuator = !r.st.Attenuator
	return r.applyOutputs()
}

// Calibrate applies a synthesizer correction and retunes both oscillators.
func (r *Receiver) Calibrate(ppb int32) error {
	r.correction = ppb
	if err := r.synth.SetCorrection(ppb); err != nil {
		return err
	}
	return firstErr(r.synth.SetVFO(r.VFO()), r.applyBFO())
}

// OutputByte encodes st for the latch: bits 0-2 filter, 3-4 mode, 5 AGC fast,
// 6 attenuator, 7 BFO enabled.
func OutputByte(st types.RXState, bfoOn bool) byte {
	v := FilterCode(st.Frequency) | byte(st.Mode&0b11)<<bitModeShift
	if st.AGCFast {
		v |= bitAGCFast
	}
	if st.Attenuator {
		v |= bitAtt
	}
	if bfoOn && st.Mode != types.ModeAM {
		v |= bitBFO
	}
	return v
}

// ---- hardware ----

func (r *Receiver) applyAll() error {
	return firstErr(r.synth.SetVFO(r.VFO()), r.applyBFO(), r.applyOutputs())
}

func (r *Receiver) applyFrequency() error {
	// The filter bank follows the frequency.
	return firstErr(r.synth.SetVFO(r.VFO()), r.applyOutputs())
}

func (r *Receiver) applyBFO() error {
	hz, on := r.BFO()
	if !on {
		r.bfoOn = false
		return r.synth.EnableBFO(false)
	}
	if err := r.synth.SetBFO(hz); err != nil {
		return err
	}
	if !r.bfoOn {
		if err := r.synth.EnableBFO(true); err != nil {
			return err
		}
		r.bfoOn = true
	}
	return nil
}

func (r *Receiver) applyOutputs() error {
	_, err := r.out.Set(r.OutputByte())
	return err
}

func bfoBase(m types.Mode) (uint32, bool) {
	switch m {
	case types.ModeLSB:
		return BFOLSB, true
	case types.ModeUSB:
		return BFOUSB, true
	case types.ModeCW:
		return BFOCW, true
	}
	return 0, false
}

func clampFreq(f int64) uint32 {
	return uint32(mathx.Clamp(f, MinFrequency, MaxFrequency))
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			println("[radio] hardware update failed:", err.Error())
			return err
		}
	}
	return nil
}
