//go:build rp2040

package platform

import (
	"context"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"vfobfo-go/services/frontpanel"
	"vfobfo-go/x/shmring"
)

// Open configures I2C0, UART0 and the front-panel inputs from the plan.
func Open(p Plan) (*Board, error) {
	sda := machine.Pin(p.I2C.SDA)
	scl := machine.Pin(p.I2C.SCL)
	sda.Configure(machine.PinConfig{Mode: machine.PinI2C})
	scl.Configure(machine.PinConfig{Mode: machine.PinI2C})
	if err := machine.I2C0.Configure(machine.I2CConfig{
		SCL:       scl,
		SDA:       sda,
		Frequency: p.I2C.Hz,
	}); err != nil {
		return nil, err
	}
	bus := NewBusOwner(machine.I2C0, p.BusTimeout)

	u := uartx.UART0
	if err := u.Configure(uartx.UARTConfig{
		BaudRate: p.UART.Baud,
		TX:       machine.Pin(p.UART.TX),
		RX:       machine.Pin(p.UART.RX),
	}); err != nil {
		bus.Close()
		return nil, err
	}

	in := frontpanel.Inputs{
		TuneCLK:  inputPin(p.TuneCLK),
		TuneDT:   inputPin(p.TuneDT),
		PitchCLK: inputPin(p.PitchCLK),
		PitchDT:  inputPin(p.PitchDT),
		Step:     inputPin(p.Step),
		Band:     inputPin(p.Band),
		Mode:     inputPin(p.Mode),
		AGC:      inputPin(p.AGC),
		ATT:      inputPin(p.ATT),
	}

	return &Board{
		Bus:     bus,
		Inputs:  in,
		Console: u,
		Synth:   &LogSynth{},
		serve: func(ctx context.Context, ring *shmring.Ring) error {
			return pumpPort(ctx, u, ring)
		},
		close: bus.Close,
	}, nil
}

// inputPin configures n as a pulled-up input; encoders and buttons pull the
// line to ground.
func inputPin(n int) frontpanel.Pin {
	if n < 0 {
		return nil
	}
	pin := machine.Pin(n)
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return pin
}
