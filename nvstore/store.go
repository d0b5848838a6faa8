// Package nvstore persists receiver state in a serial EEPROM: the
// checksummed configuration record, the memory-channel table and the
// synthesizer calibration, plus the write-coalescing save scheduler that keeps
// tuning from wearing the device out.
package nvstore

import (
	"errors"
	"io"

	"vfobfo-go/errcode"
)

// Device is byte-addressable storage. eeprom24.Device satisfies it.
type Device interface {
	io.ReaderAt
	io.WriterAt
}

// filler is implemented by devices with a native erase.
type filler interface {
	Fill(b byte) error
}

// Store reads and writes records at fixed layout addresses.
type Store struct {
	dev Device
	lay Layout

	buf [ConfigRecordSize]byte
}

// NewStore binds a store to a device. The layout should have been validated
// against the device capacity.
func NewStore(dev Device, lay Layout) *Store {
	return &Store{dev: dev, lay: lay}
}

// Layout returns the layout in use.
func (s *Store) Layout() Layout { return s.lay }

// SaveConfig writes rec with a freshly computed checksum as one logical write.
func (s *Store) SaveConfig(rec ConfigRecord) error {
	rec.Checksum = 0
	rec.encode(s.buf[:])
	s.buf[ConfigRecordSize-1] = Checksum(s.buf[:ConfigRecordSize-1])
	_, err := s.dev.WriteAt(s.buf[:], int64(s.lay.Config.Base))
	return err
}

// LoadConfig reads and verifies the record. Any error means no field of the
// stored record may be used.
func (s *Store) LoadConfig() (ConfigRecord, error) {
	var rec ConfigRecord
	if _, err := s.dev.ReadAt(s.buf[:], int64(s.lay.Config.Base)); err != nil {
		return rec, err
	}
	if err := rec.UnmarshalBinary(s.buf[:]); err != nil {
		return ConfigRecord{}, errcode.Wrap(errcode.Of(err), "nvstore.load_config", nil)
	}
	return rec, nil
}

// SaveMemory writes one slot of the memory table.
func (s *Store) SaveMemory(slot int, m MemoryChannel) error {
	addr, err := s.lay.slotAddr(slot)
	if err != nil {
		return err
	}
	var b [MemoryChannelSize]byte
	m.put(b[:])
	_, err = s.dev.WriteAt(b[:], addr)
	return err
}

// LoadMemory reads one slot of the memory table as stored. Callers decide
// whether the slot is usable.
func (s *Store) LoadMemory(slot int) (MemoryChannel, error) {
	var m MemoryChannel
	addr, err := s.lay.slotAddr(slot)
	if err != nil {
		return m, err
	}
	var b [MemoryChannelSize]byte
	if _, err := s.dev.ReadAt(b[:], addr); err != nil {
		return m, err
	}
	m.get(b[:])
	return m, nil
}

// SaveCalibration writes the calibration record.
func (s *Store) SaveCalibration(k Calibration) error {
	b, _ := k.MarshalBinary()
	_, err := s.dev.WriteAt(b, int64(s.lay.Calibration.Base))
	return err
}

// LoadCalibration reads the calibration record. Both a failed read and an
// erased region report errcode.NoCalibration; neither indicates corruption.
func (s *Store) LoadCalibration() (Calibration, error) {
	var k Calibration
	var b [calibrationRecordSize]byte
	if _, err := s.dev.ReadAt(b[:], int64(s.lay.Calibration.Base)); err != nil {
		return k, errcode.Wrap(errcode.NoCalibration, "nvstore.load_calibration", err)
	}
	if err := k.UnmarshalBinary(b[:]); err != nil {
		return Calibration{}, errcode.Wrap(errcode.NoCalibration, "nvstore.load_calibration", nil)
	}
	return k, nil
}

// Format erases the device. Devices without a native fill have only the
// layout regions erased.
func (s *Store) Format() error {
	if f, ok := s.dev.(filler); ok {
		return f.Fill(0xFF)
	}
	var blank [32]byte
	for i := range blank {
		blank[i] = 0xFF
	}
	for _, r := range [...]Region{s.lay.Config, s.lay.Memories, s.lay.Calibration} {
		for off := 0; off < r.Size; off += len(blank) {
			n := min(len(blank), r.Size-off)
			if _, err := s.dev.WriteAt(blank[:n], int64(r.Base+off)); err != nil {
				return err
			}
		}
	}
	return nil
}

// IsIntegrityError reports whether err means "no valid configuration"
// rather than a device fault.
func IsIntegrityError(err error) bool {
	return errors.Is(err, errcode.Checksum) || errors.Is(err, errcode.InvalidPayload)
}
