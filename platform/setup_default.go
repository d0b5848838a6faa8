//go:build !vfo_proto

package platform

import "time"

// selectedPlan is the production front panel on a Pico.
var selectedPlan = Plan{
	Name: "pico_vfo_bfo",
	I2C:  I2CPlan{SDA: 4, SCL: 5, Hz: 400_000},
	UART: UARTPlan{TX: 0, RX: 1, Baud: 115200},

	TuneCLK:  2,
	TuneDT:   3,
	PitchCLK: 6,
	PitchDT:  7,

	Step: 10,
	Band: 11,
	Mode: 12,
	AGC:  13,
	ATT:  14,

	BusTimeout: 250 * time.Millisecond,
}
