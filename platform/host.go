//go:build !rp2040

package platform

import (
	"context"
	"os"
	"sync/atomic"

	"vfobfo-go/drivers/eeprom24"
	"vfobfo-go/drivers/eeprom24/memsim"
	"vfobfo-go/drivers/pcf8574"
	"vfobfo-go/services/frontpanel"
	"vfobfo-go/x/shmring"
)

// ImageEnv names a file holding the simulated EEPROM. It is loaded by Open
// and written back by Close.
const ImageEnv = "VFO_EEPROM_IMAGE"

// SimPin is a front-panel line driven by software. Lines idle high.
type SimPin struct{ low atomic.Bool }

func (p *SimPin) Get() bool     { return !p.low.Load() }
func (p *SimPin) Set(high bool) { p.low.Store(!high) }

// Open simulates the board: an EEPROM and an output latch on an in-memory
// bus, idle front-panel lines, and the console on stdin/stdout.
func Open(p Plan) (*Board, error) {
	mem := memsim.NewEEPROM(eeprom24.DefaultSize, eeprom24.DefaultPageSize)
	image := os.Getenv(ImageEnv)
	if image != "" {
		if b, err := os.ReadFile(image); err == nil {
			mem.Load(0, b[:min(len(b), eeprom24.DefaultSize)])
			println("[platform] loaded", image)
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}

	sim := memsim.NewBus()
	sim.Attach(eeprom24.Address, mem)
	sim.Attach(pcf8574.Address, &memsim.Latch{})
	bus := NewBusOwner(sim, p.BusTimeout)

	pin := func(n int) frontpanel.Pin {
		if n < 0 {
			return nil
		}
		return &SimPin{}
	}
	in := frontpanel.Inputs{
		TuneCLK:  pin(p.TuneCLK),
		TuneDT:   pin(p.TuneDT),
		PitchCLK: pin(p.PitchCLK),
		PitchDT:  pin(p.PitchDT),
		Step:     pin(p.Step),
		Band:     pin(p.Band),
		Mode:     pin(p.Mode),
		AGC:      pin(p.AGC),
		ATT:      pin(p.ATT),
	}

	return &Board{
		Bus:     bus,
		Inputs:  in,
		Console: os.Stdout,
		Synth:   &LogSynth{},
		serve: func(ctx context.Context, ring *shmring.Ring) error {
			return pumpReader(ctx, os.Stdin, ring)
		},
		close: func() {
			bus.Close()
			if image == "" {
				return
			}
			if err := os.WriteFile(image, mem.Bytes(), 0o644); err != nil {
				println("[platform] save image:", err.Error())
			}
		},
	}, nil
}
