package platform

import "vfobfo-go/services/radio"

// LogSynth stands in for the clock generator: it records and prints every
// setting. Register-level programming of the PLL lives outside this module.
type LogSynth struct {
	VFO, BFO   uint32
	BFOOn      bool
	Correction int32
	Quiet      bool
}

var _ radio.Synth = (*LogSynth)(nil)

func (s *LogSynth) SetVFO(hz uint32) error {
	s.VFO = hz
	if !s.Quiet {
		println("[synth] clk0", hz)
	}
	return nil
}

func (s *LogSynth) SetBFO(hz uint32) error {
	s.BFO = hz
	if !s.Quiet {
		println("[synth] clk1", hz)
	}
	return nil
}

func (s *LogSynth) EnableBFO(on bool) error {
	s.BFOOn = on
	if !s.Quiet {
		println("[synth] clk1 enable", on)
	}
	return nil
}

func (s *LogSynth) SetCorrection(ppb int32) error {
	s.Correction = ppb
	if !s.Quiet {
		println("[synth] correction", ppb)
	}
	return nil
}
