package nvstore

import (
	"vfobfo-go/errcode"
	"vfobfo-go/types"
)

// Manager owns the in-memory copy of the configuration record and routes
// saves through the scheduler.
type Manager struct {
	store   *Store
	sched   *Scheduler
	current ConfigRecord
}

// NewManager wires a scheduler whose flushes land in store. The current
// record starts as the factory default until LoadRXState runs.
func NewManager(store *Store, cfg SchedulerConfig) *Manager {
	m := &Manager{store: store, current: DefaultConfig()}
	m.sched = NewScheduler(SaverFunc(m.commit), m.current, cfg)
	return m
}

// commit is the scheduler sink. Memories are taken from the current record so
// that a slot stored after the request was staged is not overwritten.
func (m *Manager) commit(rec ConfigRecord) error {
	rec.Memories = m.current.Memories
	if err := m.store.SaveConfig(rec); err != nil {
		println("[nvstore] save failed:", err.Error())
		return err
	}
	m.current.Apply(rec.State())
	return nil
}

// LoadRXState reads the stored configuration. When none is valid the factory
// default is adopted and written back, and false is returned.
func (m *Manager) LoadRXState() (types.RXState, bool) {
	rec, err := m.store.LoadConfig()
	if err == nil {
		m.current = rec
		m.sched.Seed(rec)
		return rec.State(), true
	}

	if IsIntegrityError(err) {
		println("[nvstore] no valid config on file, using defaults")
	} else {
		println("[nvstore] config read failed:", err.Error())
	}
	m.current = DefaultConfig()
	if err := m.store.SaveConfig(m.current); err != nil {
		println("[nvstore] default save failed:", err.Error())
	}
	m.sched.Seed(m.current)
	return m.current.State(), false
}

// CurrentRXConfig returns a copy of the in-memory record.
func (m *Manager) CurrentRXConfig() ConfigRecord { return m.current }

// SaveRXState writes st synchronously, bypassing the scheduler.
func (m *Manager) SaveRXState(st types.RXState) error {
	rec := m.current
	rec.Apply(st)
	if err := m.store.SaveConfig(rec); err != nil {
		return err
	}
	m.current = rec
	return nil
}

func (m *Manager) RequestSave(st types.RXState)      { m.sched.RequestSave(st) }
func (m *Manager) RequestQuickSave(st types.RXState) { m.sched.RequestQuickSave(st) }
func (m *Manager) Update() bool                      { return m.sched.Update() }
func (m *Manager) Flush() error                      { return m.sched.Flush() }
func (m *Manager) IsSavePending() bool               { return m.sched.IsSavePending() }

// SaveStats reports flush attempts and requests dropped after failed flushes.
func (m *Manager) SaveStats() (flushes, dropped int) {
	return m.sched.Flushes(), m.sched.Dropped()
}

// StoreMemory writes st's frequency and mode to slot and mirrors it into the
// configuration record.
func (m *Manager) StoreMemory(slot int, st types.RXState) error {
	ch := MemoryChannel{Valid: true, Mode: st.Mode, Frequency: st.Frequency}
	if err := m.store.SaveMemory(slot, ch); err != nil {
		return err
	}
	m.current.Memories[slot] = ch
	return nil
}

// RecallMemory reads slot. ok is false for an unused slot or one whose mode
// the receiver does not know.
func (m *Manager) RecallMemory(slot int) (ch MemoryChannel, ok bool, err error) {
	ch, err = m.store.LoadMemory(slot)
	if err != nil {
		return ch, false, err
	}
	return ch, ch.Usable(), nil
}

// SaveCalibration writes the calibration record stamped with ms since boot.
func (m *Manager) SaveCalibration(factor int32, stampMs uint32) error {
	err := m.store.SaveCalibration(Calibration{Factor: factor, Timestamp: stampMs})
	if err != nil {
		println("[nvstore] calibration save failed:", err.Error())
	}
	return err
}

// LoadCalibration returns the stored calibration. ok is false when none is on
// file, which is the normal state of a new device.
func (m *Manager) LoadCalibration() (k Calibration, ok bool) {
	k, err := m.store.LoadCalibration()
	if err != nil {
		println("[nvstore] no calibration on file")
		return Calibration{}, false
	}
	return k, true
}

// Format erases the device and writes the factory configuration.
func (m *Manager) Format() error {
	if err := m.store.Format(); err != nil {
		return errcode.Wrap(errcode.Of(err), "nvstore.format", err)
	}
	m.current = DefaultConfig()
	m.sched.Seed(m.current)
	return m.store.SaveConfig(m.current)
}
