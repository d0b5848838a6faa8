package nvstore

import (
	"errors"
	"testing"
	"time"

	"vfobfo-go/errcode"
	"vfobfo-go/types"
)

func TestBlankDeviceBootsWithDefaults(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.store, SchedulerConfig{})

	got, ok := m.LoadRXState()
	if ok {
		t.Fatal("blank device reported a valid configuration")
	}
	if got.Frequency != 7_000_000 || got.Mode != types.ModeLSB || got.Step != 1000 || !got.AGCFast || got.Attenuator {
		t.Fatalf("defaults = %+v", got)
	}

	// Defaults were persisted immediately.
	rec, err := f.store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig after boot: %v", err)
	}
	want := DefaultConfig()
	want.Checksum = rec.Checksum
	if rec != want {
		t.Fatalf("stored = %+v, want %+v", rec, want)
	}

	// Second boot sees the stored record.
	m2 := NewManager(f.store, SchedulerConfig{})
	if _, ok := m2.LoadRXState(); !ok {
		t.Fatal("second boot did not find the saved defaults")
	}
}

func TestCorruptRecordNeverApplied(t *testing.T) {
	f := newFixture(t)
	rec := sampleRecord()
	if err := f.store.SaveConfig(rec); err != nil {
		t.Fatal(err)
	}
	f.mem.FlipBit(0, 0)

	m := NewManager(f.store, SchedulerConfig{})
	got, ok := m.LoadRXState()
	if ok {
		t.Fatal("corrupt record accepted")
	}
	if got.Frequency != DefaultFrequency || got.Mode != DefaultMode {
		t.Fatalf("adopted fields from a corrupt record: %+v", got)
	}
}

func TestManagerDeferredSaveReachesDevice(t *testing.T) {
	f := newFixture(t)
	c := &clock{t: time.Unix(0, 0)}
	m := NewManager(f.store, SchedulerConfig{Now: c.now})
	m.LoadRXState()

	if err := m.StoreMemory(2, types.RXState{Frequency: 5_357_000, Mode: types.ModeUSB}); err != nil {
		t.Fatal(err)
	}

	st := types.RXState{Frequency: 14_200_000, Mode: types.ModeUSB, Step: 10, Attenuator: true}
	m.RequestQuickSave(st)
	if !m.IsSavePending() {
		t.Fatal("not pending")
	}
	c.advance(QuickSaveDelay + time.Millisecond)
	if !m.Update() {
		t.Fatal("no flush")
	}

	rec, err := f.store.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if rec.State() != st {
		t.Fatalf("stored state = %+v", rec.State())
	}
	if !rec.Memories[2].Valid || rec.Memories[2].Frequency != 5_357_000 {
		t.Fatal("memory stored after staging was overwritten by the flush")
	}
	if m.CurrentRXConfig().Frequency != 14_200_000 {
		t.Fatal("current record not updated after flush")
	}
}

func TestRecallMemory(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.store, SchedulerConfig{})

	if _, ok, err := m.RecallMemory(3); err != nil || ok {
		t.Fatalf("blank slot: ok=%v err=%v", ok, err)
	}
	if err := m.StoreMemory(3, types.RXState{Frequency: 10_136_000, Mode: types.ModeCW}); err != nil {
		t.Fatal(err)
	}
	ch, ok, err := m.RecallMemory(3)
	if err != nil || !ok || ch.Frequency != 10_136_000 || ch.Mode != types.ModeCW {
		t.Fatalf("RecallMemory = %+v %v %v", ch, ok, err)
	}
	if err := m.StoreMemory(10, types.RXState{}); !errors.Is(err, errcode.InvalidSlot) {
		t.Fatalf("slot 10: %v", err)
	}
}

func TestUnknownSlotModeKeepsConfig(t *testing.T) {
	f := newFixture(t)
	rec := sampleRecord()
	rec.Memories[0] = MemoryChannel{Valid: true, Mode: types.Mode(7), Frequency: 7_030_000}
	if err := f.store.SaveConfig(rec); err != nil {
		t.Fatal(err)
	}
	if err := f.store.SaveMemory(0, rec.Memories[0]); err != nil {
		t.Fatal(err)
	}

	m := NewManager(f.store, SchedulerConfig{})
	got, ok := m.LoadRXState()
	if !ok || got != rec.State() {
		t.Fatalf("LoadRXState = %+v, %v", got, ok)
	}
	if m.CurrentRXConfig().Memories[0] != rec.Memories[0] {
		t.Fatal("slot not kept as stored")
	}
	if _, ok, err := m.RecallMemory(0); err != nil || ok {
		t.Fatalf("unknown mode recalled: ok=%v err=%v", ok, err)
	}
}

func TestManagerCalibration(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.store, SchedulerConfig{})

	if _, ok := m.LoadCalibration(); ok {
		t.Fatal("calibration found on a blank device")
	}
	if err := m.SaveCalibration(-800, 5000); err != nil {
		t.Fatal(err)
	}
	k, ok := m.LoadCalibration()
	if !ok || k.Factor != -800 || k.Timestamp != 5000 {
		t.Fatalf("LoadCalibration = %+v %v", k, ok)
	}
}

func TestManagerFormat(t *testing.T) {
	f := newFixture(t)
	m := NewManager(f.store, SchedulerConfig{})
	if err := m.SaveRXState(types.RXState{Frequency: 3_700_000, Mode: types.ModeLSB, Step: 10}); err != nil {
		t.Fatal(err)
	}
	if err := m.SaveCalibration(10, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.Format(); err != nil {
		t.Fatal(err)
	}
	if _, ok := m.LoadCalibration(); ok {
		t.Fatal("calibration survived format")
	}
	got, ok := m.LoadRXState()
	if !ok || got.Frequency != DefaultFrequency {
		t.Fatalf("after format: %+v ok=%v", got, ok)
	}
}
