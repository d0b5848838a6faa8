// Package platform brings up the board: the shared I2C bus, the front-panel
// lines, the serial console and the synthesizer. The MCU build drives real
// peripherals; the host build simulates them so the firmware runs on a PC.
package platform

import (
	"context"
	"io"
	"time"

	"tinygo.org/x/drivers"

	"vfobfo-go/services/frontpanel"
	"vfobfo-go/services/radio"
	"vfobfo-go/x/shmring"
)

// Plan specifies wiring and operating parameters chosen by a setup.
// Pin fields are GPIO numbers; a negative button pin means not fitted.
type Plan struct {
	Name string

	I2C  I2CPlan
	UART UARTPlan

	TuneCLK, TuneDT   int
	PitchCLK, PitchDT int

	Step, Band, Mode, AGC, ATT int

	// BusTimeout bounds each I2C transaction; 0 means wait forever.
	BusTimeout time.Duration
}

type I2CPlan struct {
	SDA int
	SCL int
	Hz  uint32
}

type UARTPlan struct {
	TX   int
	RX   int
	Baud uint32
}

// Board is the opened hardware handed to the firmware.
type Board struct {
	Bus     drivers.I2C
	Inputs  frontpanel.Inputs
	Console io.Writer
	Synth   radio.Synth

	serve func(ctx context.Context, ring *shmring.Ring) error
	close func()
}

// Serve feeds console bytes into ring until ctx is done. It blocks; run it on
// its own goroutine.
func (b *Board) Serve(ctx context.Context, ring *shmring.Ring) error {
	if b.serve == nil {
		<-ctx.Done()
		return ctx.Err()
	}
	return b.serve(ctx, ring)
}

// Close releases background workers.
func (b *Board) Close() {
	if b.close != nil {
		b.close()
	}
}

// Selected returns the plan picked at build time.
func Selected() Plan { return selectedPlan }
