package types

// ---- Receive modes ----

// Mode is the demodulation mode. Values are persisted and driven onto the
// discrete outputs, so they must not be renumbered.
type Mode uint8

const (
	ModeAM  Mode = iota // 00
	ModeLSB             // 01
	ModeUSB             // 10
	ModeCW              // 11
	ModeCount
)

var modeNames = [ModeCount]string{"AM", "LSB", "USB", "CW"}

func (m Mode) String() string {
	if !m.Valid() {
		return "?"
	}
	return modeNames[m]
}

func (m Mode) Valid() bool { return m < ModeCount }

// HasPitch reports whether the mode uses the BFO (and so a pitch offset).
func (m Mode) HasPitch() bool { return m == ModeLSB || m == ModeUSB || m == ModeCW }

// Next returns the following mode, wrapping after CW.
func (m Mode) Next() Mode { return (m + 1) % ModeCount }

// ParseMode accepts the names returned by String, case-sensitive.
func ParseMode(s string) (Mode, bool) {
	for i, n := range modeNames {
		if n == s {
			return Mode(i), true
		}
	}
	return 0, false
}

// ---- Live receiver state ----

// RXState is the persisted subset of live receiver state. It is captured by
// value whenever a save is requested.
type RXState struct {
	Frequency  uint32
	Mode       Mode
	Step       uint32
	AGCFast    bool
	Attenuator bool
}
