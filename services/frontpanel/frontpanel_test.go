package frontpanel

import (
	"bytes"
	"context"
	"testing"
	"time"

	"vfobfo-go/drivers/eeprom24"
	"vfobfo-go/drivers/eeprom24/memsim"
	"vfobfo-go/nvstore"
	"vfobfo-go/services/console"
	"vfobfo-go/services/radio"
	"vfobfo-go/types"
	"vfobfo-go/x/shmring"
)

type pin struct{ level bool }

func (p *pin) Get() bool { return p.level }

type nopSynth struct{}

func (nopSynth) SetVFO(uint32) error       { return nil }
func (nopSynth) SetBFO(uint32) error       { return nil }
func (nopSynth) EnableBFO(bool) error      { return nil }
func (nopSynth) SetCorrection(int32) error { return nil }

type nopOut struct{}

func (nopOut) Set(byte) (bool, error) { return true, nil }

type bench struct {
	now   time.Time
	pins  map[string]*pin
	mgr   *nvstore.Manager
	store *nvstore.Store
	rx    *radio.Receiver
	ring  *shmring.Ring
	out   bytes.Buffer
	panel *Panel
}

func newBench(t *testing.T) *bench {
	t.Helper()
	b := &bench{now: time.Unix(1000, 0), pins: map[string]*pin{}}
	for _, n := range []string{"tclk", "tdt", "pclk", "pdt", "step", "band", "mode", "agc", "att"} {
		b.pins[n] = &pin{level: true} // idle high
	}

	bus := memsim.NewBus()
	bus.Attach(eeprom24.Address, memsim.NewEEPROM(eeprom24.DefaultSize, eeprom24.DefaultPageSize))
	dev := eeprom24.New(bus, eeprom24.Config{Sleep: func(time.Duration) {}})
	b.store = nvstore.NewStore(dev, nvstore.DefaultLayout)
	b.mgr = nvstore.NewManager(b.store, nvstore.SchedulerConfig{Now: func() time.Time { return b.now }})
	st, _ := b.mgr.LoadRXState()

	b.rx = radio.New(nopSynth{}, nopOut{})
	if err := b.rx.Restore(st); err != nil {
		t.Fatal(err)
	}
	b.ring = shmring.New(128)
	sh := console.New(b.rx, b.mgr, &b.out, func() uint32 { return 0 })

	in := Inputs{
		TuneCLK:  b.pins["tclk"],
		TuneDT:   b.pins["tdt"],
		PitchCLK: b.pins["pclk"],
		PitchDT:  b.pins["pdt"],
		Step:     b.pins["step"],
		Band:     b.pins["band"],
		Mode:     b.pins["mode"],
		AGC:      b.pins["agc"],
		ATT:      b.pins["att"],
	}
	b.panel = New(in, b.rx, b.mgr, sh, console.NewLineReader(b.ring), Config{Heartbeat: time.Hour})
	return b
}

func (b *bench) step(d time.Duration) {
	b.now = b.now.Add(d)
	b.panel.Step(b.now)
}

// turn drives one quadrature code onto an encoder's lines and polls.
func (b *bench) turn(clk, dt string, code uint8, d time.Duration) {
	b.pins[clk].level = code&0b10 != 0
	b.pins[dt].level = code&0b01 != 0
	b.step(d)
}

func TestTuningTicksMoveFrequencyAndDeferSave(t *testing.T) {
	b := newBench(t)
	start := b.rx.Frequency()

	for _, c := range []uint8{0b01, 0b00, 0b10, 0b11} {
		b.turn("tclk", "tdt", c, 100*time.Millisecond)
	}
	if got := b.rx.Frequency(); got != start+2*1000 {
		t.Fatalf("frequency = %d, want %d", got, start+2000)
	}
	if !b.mgr.IsSavePending() {
		t.Fatal("tuning did not request a save")
	}

	// Normal quiet period.
	b.step(nvstore.SaveDelay - 500*time.Millisecond)
	if !b.mgr.IsSavePending() {
		t.Fatal("flushed before the quiet period")
	}
	b.step(time.Second)
	if b.mgr.IsSavePending() {
		t.Fatal("not flushed")
	}
	rec, err := b.store.LoadConfig()
	if err != nil || rec.Frequency != start+2000 {
		t.Fatalf("stored = %d, %v", rec.Frequency, err)
	}
	if tune, _ := b.panel.Ticks(); tune != 2 {
		t.Fatalf("ticks = %d", tune)
	}
}

func TestPitchEncoder(t *testing.T) {
	b := newBench(t)
	for _, c := range []uint8{0b10, 0b00, 0b01, 0b11} { // backward
		b.turn("pclk", "pdt", c, time.Millisecond)
		b.step(5 * time.Millisecond) // settle
	}
	if b.rx.Pitch() != -2*radio.PitchStep {
		t.Fatalf("pitch = %d", b.rx.Pitch())
	}
	if b.mgr.IsSavePending() {
		t.Fatal("pitch is not persisted")
	}
}

func TestButtonDebounceAndQuickSave(t *testing.T) {
	b := newBench(t)
	stepPin := b.pins["step"]

	stepPin.level = false
	b.step(10 * time.Millisecond)
	if b.rx.Step() != 10000 {
		t.Fatalf("step = %d after one press", b.rx.Step())
	}
	if !b.mgr.IsSavePending() {
		t.Fatal("button did not request a save")
	}

	// Holding the button does not repeat.
	for i := 0; i < 50; i++ {
		b.step(10 * time.Millisecond)
	}
	if b.rx.Step() != 10000 {
		t.Fatal("held button repeated")
	}

	stepPin.level = true
	b.step(10 * time.Millisecond)
	stepPin.level = false
	b.step(10 * time.Millisecond)
	if b.rx.Step() != 10 {
		t.Fatalf("second press: step = %d", b.rx.Step())
	}

	// Contact bounce inside the debounce window.
	stepPin.level = true
	b.step(10 * time.Millisecond)
	stepPin.level = false
	b.step(10 * time.Millisecond)
	if b.rx.Step() != 10 {
		t.Fatal("bounce accepted")
	}

	// Quick-save quiet period.
	stepPin.level = true
	b.step(nvstore.QuickSaveDelay + time.Millisecond)
	rec, err := b.store.LoadConfig()
	if err != nil || rec.Step != 10 {
		t.Fatalf("stored step = %d, %v", rec.Step, err)
	}
}

func TestModeAndToggles(t *testing.T) {
	b := newBench(t)
	press := func(name string) {
		b.pins[name].level = false
		b.step(time.Millisecond)
		b.pins[name].level = true
		b.step(250 * time.Millisecond)
	}
	press("mode") // LSB -> USB
	press("agc")
	press("att")
	press("band")

	st := b.rx.Snapshot()
	want := types.RXState{Frequency: 10_136_000, Mode: types.ModeUSB, Step: 1000, AGCFast: false, Attenuator: true}
	if st != want {
		t.Fatalf("state = %+v, want %+v", st, want)
	}
}

func TestConsoleLinesAreExecuted(t *testing.T) {
	b := newBench(t)
	b.ring.Write([]byte("CAL_READ\r\n"))
	b.step(time.Millisecond)
	if got := b.out.String(); got != "CAL 0\n" {
		t.Fatalf("console output = %q", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	b := newBench(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.panel.Run(ctx) }()
	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
