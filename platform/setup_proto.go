//go:build vfo_proto

package platform

import "time"

// selectedPlan is the breadboard prototype: one encoder pair moved, no
// attenuator fitted, slow bus for long jumper wires.
var selectedPlan = Plan{
	Name: "pico_vfo_bfo_proto",
	I2C:  I2CPlan{SDA: 4, SCL: 5, Hz: 100_000},
	UART: UARTPlan{TX: 0, RX: 1, Baud: 115200},

	TuneCLK:  16,
	TuneDT:   17,
	PitchCLK: 18,
	PitchDT:  19,

	Step: 10,
	Band: 11,
	Mode: 12,
	AGC:  13,
	ATT:  -1,

	BusTimeout: 500 * time.Millisecond,
}
