package radio

import (
	"errors"
	"testing"

	"vfobfo-go/drivers/eeprom24/memsim"
	"vfobfo-go/drivers/encoder"
	"vfobfo-go/drivers/pcf8574"
	"vfobfo-go/types"
)

type fakeSynth struct {
	vfo, bfo   uint32
	bfoOn      bool
	correction int32
	calls      int
	err        error
}

var _ Synth = (*fakeSynth)(nil)

func (s *fakeSynth) SetVFO(hz uint32) error      { s.calls++; s.vfo = hz; return s.err }
func (s *fakeSynth) SetBFO(hz uint32) error      { s.calls++; s.bfo = hz; return s.err }
func (s *fakeSynth) EnableBFO(on bool) error     { s.calls++; s.bfoOn = on; return s.err }
func (s *fakeSynth) SetCorrection(p int32) error { s.calls++; s.correction = p; return s.err }

type fakeOut struct {
	v      byte
	writes int
}

func (o *fakeOut) Set(v byte) (bool, error) {
	if o.writes > 0 && v == o.v {
		return false, nil
	}
	o.v = v
	o.writes++
	return true, nil
}

func newRX(t *testing.T, st types.RXState) (*Receiver, *fakeSynth, *fakeOut) {
	t.Helper()
	s, o := &fakeSynth{}, &fakeOut{}
	r := New(s, o)
	if err := r.Restore(st); err != nil {
		t.Fatal(err)
	}
	return r, s, o
}

func TestTuneClampsAtLimits(t *testing.T) {
	r, s, _ := newRX(t, types.RXState{Frequency: MaxFrequency, Mode: types.ModeUSB, Step: 1000})

	changed, err := r.Tune(encoder.Forward)
	if err != nil || changed {
		t.Fatalf("Tune at max: changed=%v err=%v", changed, err)
	}
	if r.Frequency() != MaxFrequency {
		t.Fatalf("frequency = %d", r.Frequency())
	}

	r.CycleStep() // 1000 -> 10000
	if err := r.SetFrequency(MinFrequency + 5000); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Tune(encoder.Backward); err != nil {
		t.Fatal(err)
	}
	if r.Frequency() != MinFrequency {
		t.Fatalf("frequency = %d, want clamp to %d", r.Frequency(), MinFrequency)
	}
	if s.vfo != MinFrequency+IF {
		t.Fatalf("vfo = %d", s.vfo)
	}
}

func TestTuneStepsByCurrentStep(t *testing.T) {
	r, s, _ := newRX(t, types.RXState{Frequency: 7_100_000, Mode: types.ModeLSB, Step: 100})
	for i := 0; i < 3; i++ {
		if _, err := r.Tune(encoder.Forward); err != nil {
			t.Fatal(err)
		}
	}
	if r.Frequency() != 7_100_300 || s.vfo != 7_100_300+IF {
		t.Fatalf("frequency = %d vfo = %d", r.Frequency(), s.vfo)
	}
}

func TestPitchClampsAndFollowsMode(t *testing.T) {
	r, s, _ := newRX(t, types.RXState{Frequency: 7_030_000, Mode: types.ModeCW, Step: 10})

	for i := 0; i < (PitchMax-PitchMin)/PitchStep+5; i++ {
		if _, err := r.AdjustPitch(encoder.Backward); err != nil {
			t.Fatal(err)
		}
	}
	if r.Pitch() != PitchMin {
		t.Fatalf("pitch = %d, want %d", r.Pitch(), PitchMin)
	}
	changed, _ := r.AdjustPitch(encoder.Backward)
	if changed || r.Pitch() != PitchMin {
		t.Fatal("tick past PitchMin changed the offset")
	}
	if s.bfo != BFOCW+PitchMin {
		t.Fatalf("bfo = %d", s.bfo)
	}

	if err := r.CycleMode(); err != nil { // CW -> AM
		t.Fatal(err)
	}
	if r.Pitch() != 0 || s.bfoOn || r.BFOEnabled() {
		t.Fatalf("AM: pitch=%d bfoOn=%v", r.Pitch(), s.bfoOn)
	}
	if changed, _ := r.AdjustPitch(encoder.Forward); changed || r.Pitch() != 0 {
		t.Fatal("pitch adjusted in AM")
	}

	if err := r.CycleMode(); err != nil { // AM -> LSB
		t.Fatal(err)
	}
	if !s.bfoOn || s.bfo != BFOLSB {
		t.Fatalf("LSB: bfoOn=%v bfo=%d", s.bfoOn, s.bfo)
	}
}

func TestNextStep(t *testing.T) {
	cases := []struct{ in, want uint32 }{
		{10, 100}, {100, 1000}, {1000, 10000}, {10000, 10}, {5, 1000}, {0, 1000},
	}
	for _, c := range cases {
		if got := NextStep(c.in); got != c.want {
			t.Errorf("NextStep(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestCycleBand(t *testing.T) {
	r, _, _ := newRX(t, types.RXState{Frequency: 7_050_000, Mode: types.ModeLSB, Step: 1000})
	if err := r.CycleBand(); err != nil {
		t.Fatal(err)
	}
	if r.Frequency() != 10_136_000 {
		t.Fatalf("40m -> %d, want 30m home", r.Frequency())
	}

	if err := r.SetFrequency(12_000_000); err != nil { // between bands
		t.Fatal(err)
	}
	r.CycleBand()
	if r.Frequency() != 14_200_000 {
		t.Fatalf("12 MHz -> %d, want 20m home", r.Frequency())
	}

	r.SetFrequency(29_000_000)
	r.CycleBand()
	if r.Frequency() != Bands[0].Home {
		t.Fatalf("10m -> %d, want wrap to 160m", r.Frequency())
	}
}

func TestOutputByte(t *testing.T) {
	cases := []struct {
		name string
		st   types.RXState
		bfo  bool
		want byte
	}{
		{"40m LSB agc", types.RXState{Frequency: 7_100_000, Mode: types.ModeLSB, AGCFast: true}, true, 0b1010_1011},
		{"AM masks bfo", types.RXState{Frequency: 9_500_000, Mode: types.ModeAM}, true, 0b0000_0100},
		{"out of band att", types.RXState{Frequency: 1_000_000, Mode: types.ModeCW, Attenuator: true}, false, 0b0101_1000},
		{"10m USB", types.RXState{Frequency: 28_500_000, Mode: types.ModeUSB}, true, 0b1001_0110},
	}
	for _, c := range cases {
		if got := OutputByte(c.st, c.bfo); got != c.want {
			t.Errorf("%s: OutputByte = %08b, want %08b", c.name, got, c.want)
		}
	}
}

func TestFilterCodeEdges(t *testing.T) {
	cases := []struct {
		hz   uint32
		want byte
	}{
		{1_599_999, 0}, {1_600_000, 1}, {2_500_000, 2}, {4_700_000, 3},
		{7_499_999, 3}, {7_500_000, 4}, {14_500_000, 5}, {21_500_000, 6},
		{30_000_000, 6},
	}
	for _, c := range cases {
		if got := FilterCode(c.hz); got != c.want {
			t.Errorf("FilterCode(%d) = %03b, want %03b", c.hz, got, c.want)
		}
	}
}

func TestLatchWrittenOnlyOnChange(t *testing.T) {
	bus := memsim.NewBus()
	l := &memsim.Latch{}
	bus.Attach(pcf8574.Address, l)
	out := pcf8574.New(bus)

	r := New(&fakeSynth{}, out)
	if err := r.Restore(types.RXState{Frequency: 7_100_000, Mode: types.ModeLSB, Step: 1000, AGCFast: true}); err != nil {
		t.Fatal(err)
	}
	if l.Writes() != 1 || l.Value() != 0b1010_1011 {
		t.Fatalf("writes=%d value=%08b", l.Writes(), l.Value())
	}
	// Same filter band, same byte.
	r.Tune(encoder.Forward)
	if l.Writes() != 1 {
		t.Fatalf("tune inside band wrote the latch")
	}
	r.ToggleAttenuator()
	if l.Writes() != 2 || l.Value()&bitAtt == 0 {
		t.Fatalf("attenuator: writes=%d value=%08b", l.Writes(), l.Value())
	}
}

func TestCalibrateRetunes(t *testing.T) {
	r, s, _ := newRX(t, types.RXState{Frequency: 14_074_000, Mode: types.ModeUSB, Step: 10})
	s.vfo, s.bfo = 0, 0
	if err := r.Calibrate(-1250); err != nil {
		t.Fatal(err)
	}
	if s.correction != -1250 || r.Correction() != -1250 {
		t.Fatalf("correction = %d", s.correction)
	}
	if s.vfo != 14_074_000+IF || s.bfo != BFOUSB {
		t.Fatalf("not retuned: vfo=%d bfo=%d", s.vfo, s.bfo)
	}

	s.err = errors.New("i2c nack")
	if err := r.Calibrate(0); err == nil {
		t.Fatal("synth error swallowed")
	}
}

func TestRestoreSanitises(t *testing.T) {
	r, _, _ := newRX(t, types.RXState{Frequency: 50_000_000, Mode: types.Mode(9), Step: 0})
	st := r.Snapshot()
	if st.Frequency != MaxFrequency || st.Mode != types.ModeLSB || st.Step != DefaultStep {
		t.Fatalf("sanitised = %+v", st)
	}
}
