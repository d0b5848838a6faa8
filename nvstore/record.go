package nvstore

import (
	"encoding/binary"

	"vfobfo-go/errcode"
	"vfobfo-go/types"
)

// Packed little-endian record sizes.
const (
	// valid | mode | reserved[2] | freq u32
	MemoryChannelSize = 8
	// freq u32 | mode | step u32 | agc | att | memories | checksum
	ConfigRecordSize = 4 + 1 + 4 + 1 + 1 + MemorySlots*MemoryChannelSize + 1

	// factor i32 | reserved[4] | timestamp u32
	calibrationRecordSize = 12
)

// Power-on defaults applied when no valid record is found.
const (
	DefaultFrequency = 7_000_000
	DefaultMode      = types.ModeLSB
	DefaultStep      = 1000
)

// MemoryChannel is one stored frequency/mode pair.
type MemoryChannel struct {
	Valid     bool
	Mode      types.Mode
	Frequency uint32
}

// ConfigRecord is the persisted receiver configuration.
type ConfigRecord struct {
	Frequency  uint32
	Mode       types.Mode
	Step       uint32
	AGCFast    bool
	Attenuator bool
	Memories   [MemorySlots]MemoryChannel
	Checksum   byte
}

// Calibration is the synthesizer reference correction on file.
type Calibration struct {
	Factor    int32
	Timestamp uint32 // ms since boot when saved
}

// DefaultConfig returns the factory configuration with all memories empty.
func DefaultConfig() ConfigRecord {
	return ConfigRecord{
		Frequency: DefaultFrequency,
		Mode:      DefaultMode,
		Step:      DefaultStep,
		AGCFast:   true,
	}
}

// Checksum XOR-folds b.
func Checksum(b []byte) byte {
	var c byte
	for _, v := range b {
		c ^= v
	}
	return c
}

// State returns the live-state subset of the record.
func (c *ConfigRecord) State() types.RXState {
	return types.RXState{
		Frequency:  c.Frequency,
		Mode:       c.Mode,
		Step:       c.Step,
		AGCFast:    c.AGCFast,
		Attenuator: c.Attenuator,
	}
}

// Apply overwrites the live-state fields, leaving memories untouched.
func (c *ConfigRecord) Apply(s types.RXState) {
	c.Frequency = s.Frequency
	c.Mode = s.Mode
	c.Step = s.Step
	c.AGCFast = s.AGCFast
	c.Attenuator = s.Attenuator
}

func b2u(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (m *MemoryChannel) put(b []byte) {
	b[0] = b2u(m.Valid)
	b[1] = byte(m.Mode)
	b[2], b[3] = 0, 0
	binary.LittleEndian.PutUint32(b[4:8], m.Frequency)
}

// get stores the slot as found. Erased cells read 0xFF, so only an explicit 1
// marks a used slot; mode and frequency are not interpreted here.
func (m *MemoryChannel) get(b []byte) {
	m.Valid = b[0] == 1
	m.Mode = types.Mode(b[1])
	m.Frequency = binary.LittleEndian.Uint32(b[4:8])
}

// Usable reports whether the slot holds a channel the receiver can tune to.
func (m MemoryChannel) Usable() bool { return m.Valid && m.Mode.Valid() }

// MarshalBinary encodes a memory slot.
func (m MemoryChannel) MarshalBinary() ([]byte, error) {
	b := make([]byte, MemoryChannelSize)
	m.put(b)
	return b, nil
}

// UnmarshalBinary decodes a memory slot.
func (m *MemoryChannel) UnmarshalBinary(b []byte) error {
	if len(b) < MemoryChannelSize {
		return errcode.InvalidPayload
	}
	m.get(b)
	return nil
}

// encode writes every field, including the Checksum field as stored.
func (c *ConfigRecord) encode(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], c.Frequency)
	b[4] = byte(c.Mode)
	binary.LittleEndian.PutUint32(b[5:9], c.Step)
	b[9] = b2u(c.AGCFast)
	b[10] = b2u(c.Attenuator)
	off := 11
	for i := range c.Memories {
		c.Memories[i].put(b[off : off+MemoryChannelSize])
		off += MemoryChannelSize
	}
	b[off] = c.Checksum
}

// MarshalBinary encodes a copy of the record with its checksum recomputed.
// The receiver is left unchanged.
func (c ConfigRecord) MarshalBinary() ([]byte, error) {
	b := make([]byte, ConfigRecordSize)
	c.Checksum = 0
	c.encode(b)
	b[ConfigRecordSize-1] = Checksum(b[:ConfigRecordSize-1])
	return b, nil
}

// UnmarshalBinary verifies the checksum before adopting any field. On error
// the receiver is not modified.
func (c *ConfigRecord) UnmarshalBinary(b []byte) error {
	if len(b) < ConfigRecordSize {
		return errcode.InvalidPayload
	}
	stored := b[ConfigRecordSize-1]
	if Checksum(b[:ConfigRecordSize-1]) != stored {
		return errcode.Checksum
	}

	var r ConfigRecord
	r.Frequency = binary.LittleEndian.Uint32(b[0:4])
	r.Mode = types.Mode(b[4])
	r.Step = binary.LittleEndian.Uint32(b[5:9])
	r.AGCFast = b[9] != 0
	r.Attenuator = b[10] != 0
	// An erased device passes the XOR check (91 bytes of 0xFF fold to 0xFF),
	// so the live-state domains are checked as well. Memory slots are kept
	// as stored.
	if !r.Mode.Valid() || r.Step == 0 {
		return errcode.InvalidPayload
	}
	off := 11
	for i := range r.Memories {
		r.Memories[i].get(b[off : off+MemoryChannelSize])
		off += MemoryChannelSize
	}
	r.Checksum = stored
	*c = r
	return nil
}

// MarshalBinary encodes the calibration record; the reserved word is zero.
func (k Calibration) MarshalBinary() ([]byte, error) {
	b := make([]byte, calibrationRecordSize)
	binary.LittleEndian.PutUint32(b[0:4], uint32(k.Factor))
	binary.LittleEndian.PutUint32(b[8:12], k.Timestamp)
	return b, nil
}

// UnmarshalBinary decodes a calibration record. A non-zero reserved word means
// the region was never written (erased cells) and yields errcode.NoCalibration.
func (k *Calibration) UnmarshalBinary(b []byte) error {
	if len(b) < calibrationRecordSize {
		return errcode.InvalidPayload
	}
	if binary.LittleEndian.Uint32(b[4:8]) != 0 {
		return errcode.NoCalibration
	}
	k.Factor = int32(binary.LittleEndian.Uint32(b[0:4]))
	k.Timestamp = binary.LittleEndian.Uint32(b[8:12])
	return nil
}
