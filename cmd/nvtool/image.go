package main

import (
	"fmt"
	"io"
	"strings"

	"vfobfo-go/drivers/eeprom24"
	"vfobfo-go/errcode"
	"vfobfo-go/nvstore"
	"vfobfo-go/types"
)

// memImage is an EEPROM dump held in memory; it satisfies nvstore.Device.
type memImage []byte

func blankImage(size int) memImage {
	m := make(memImage, size)
	m.Fill(0xFF)
	return m
}

func (m memImage) check(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(m)) {
		return errcode.OutOfRange
	}
	return nil
}

func (m memImage) ReadAt(p []byte, off int64) (int, error) {
	if err := m.check(p, off); err != nil {
		return 0, err
	}
	return copy(p, m[off:]), nil
}

func (m memImage) WriteAt(p []byte, off int64) (int, error) {
	if err := m.check(p, off); err != nil {
		return 0, err
	}
	return copy(m[off:], p), nil
}

func (m memImage) Fill(b byte) error {
	for i := range m {
		m[i] = b
	}
	return nil
}

// Document is the human-editable form of an image.
type Document struct {
	Config      *ConfigDoc      `yaml:"config,omitempty"`
	ConfigError string          `yaml:"config_error,omitempty"`
	Memories    []MemoryDoc     `yaml:"memories,omitempty"`
	Calibration *CalibrationDoc `yaml:"calibration,omitempty"`
}

type ConfigDoc struct {
	Frequency  uint32 `yaml:"frequency"`
	Mode       string `yaml:"mode"`
	Step       uint32 `yaml:"step"`
	AGC        string `yaml:"agc"`
	Attenuator bool   `yaml:"attenuator"`
}

type MemoryDoc struct {
	Slot      int    `yaml:"slot"`
	Frequency uint32 `yaml:"frequency"`
	Mode      string `yaml:"mode"`
}

type CalibrationDoc struct {
	Factor      int32  `yaml:"factor"`
	TimestampMs uint32 `yaml:"timestamp_ms"`
}

func agcName(fast bool) string {
	if fast {
		return "fast"
	}
	return "slow"
}

func parseMode(s string) (types.Mode, error) {
	m, ok := types.ParseMode(strings.ToUpper(s))
	if !ok {
		return 0, fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// decodeImage reads every record the firmware would read. An invalid
// configuration record is reported, not fatal.
func decodeImage(img []byte) (Document, error) {
	var doc Document
	if len(img) < nvstore.CalibrationBase+nvstore.CalibrationSize {
		return doc, fmt.Errorf("image is %d bytes, too small", len(img))
	}
	store := nvstore.NewStore(memImage(img), nvstore.DefaultLayout)

	rec, err := store.LoadConfig()
	if err != nil {
		doc.ConfigError = errcode.Of(err).Error()
	} else {
		doc.Config = &ConfigDoc{
			Frequency:  rec.Frequency,
			Mode:       rec.Mode.String(),
			Step:       rec.Step,
			AGC:        agcName(rec.AGCFast),
			Attenuator: rec.Attenuator,
		}
	}

	for slot := 0; slot < nvstore.MemorySlots; slot++ {
		ch, err := store.LoadMemory(slot)
		if err != nil {
			return doc, fmt.Errorf("memory %d: %w", slot, err)
		}
		if ch.Usable() {
			doc.Memories = append(doc.Memories, MemoryDoc{Slot: slot, Frequency: ch.Frequency, Mode: ch.Mode.String()})
		}
	}

	if k, err := store.LoadCalibration(); err == nil {
		doc.Calibration = &CalibrationDoc{Factor: k.Factor, TimestampMs: k.Timestamp}
	}
	return doc, nil
}

// buildImage writes doc into a blank image of the given size. A missing
// config section gets the factory defaults.
func buildImage(doc Document, size int) ([]byte, error) {
	if err := nvstore.DefaultLayout.Validate(size); err != nil {
		return nil, err
	}
	img := blankImage(size)
	store := nvstore.NewStore(img, nvstore.DefaultLayout)

	rec := nvstore.DefaultConfig()
	if c := doc.Config; c != nil {
		mode, err := parseMode(c.Mode)
		if err != nil {
			return nil, err
		}
		if c.Step == 0 {
			return nil, fmt.Errorf("config step must be non-zero")
		}
		rec.Frequency = c.Frequency
		rec.Mode = mode
		rec.Step = c.Step
		rec.AGCFast = !strings.EqualFold(c.AGC, "slow")
		rec.Attenuator = c.Attenuator
	}

	for _, m := range doc.Memories {
		mode, err := parseMode(m.Mode)
		if err != nil {
			return nil, fmt.Errorf("memory %d: %w", m.Slot, err)
		}
		ch := nvstore.MemoryChannel{Valid: true, Mode: mode, Frequency: m.Frequency}
		if err := store.SaveMemory(m.Slot, ch); err != nil {
			return nil, fmt.Errorf("memory %d: %w", m.Slot, err)
		}
		rec.Memories[m.Slot] = ch
	}

	if err := store.SaveConfig(rec); err != nil {
		return nil, err
	}
	if k := doc.Calibration; k != nil {
		if err := store.SaveCalibration(nvstore.Calibration{Factor: k.Factor, Timestamp: k.TimestampMs}); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func readImage(r io.Reader) ([]byte, error) {
	img, err := io.ReadAll(io.LimitReader(r, eeprom24.DefaultSize+1))
	if err != nil {
		return nil, err
	}
	if len(img) > eeprom24.DefaultSize {
		return nil, fmt.Errorf("image larger than %d bytes", eeprom24.DefaultSize)
	}
	return img, nil
}
