// Package pcf8574 drives a PCF8574 8-bit I2C port expander used as an output
// latch. Writes are skipped when the requested byte equals the last byte
// written, so callers may recompute and Set the full port on every change of
// state without generating bus traffic.
package pcf8574

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Address with A0..A2 tied low.
const Address = 0x20

var ErrBus = errors.New("pcf8574: bus error")

// Device is one expander.
type Device struct {
	bus     drivers.I2C
	Address uint16

	last  byte
	known bool // last reflects the pins
	buf   [1]byte
}

// New binds the expander; it does not touch the bus.
func New(bus drivers.I2C) *Device {
	return &Device{bus: bus, Address: Address}
}

// Configure drives every output low and forgets the cached value, so the
// next Set always reaches the pins.
func (d *Device) Configure() error {
	if err := d.write(0); err != nil {
		return err
	}
	d.known = false
	return nil
}

// Set drives the port to v. It reports whether a bus write was issued.
func (d *Device) Set(v byte) (bool, error) {
	if d.known && v == d.last {
		return false, nil
	}
	if err := d.write(v); err != nil {
		return true, err
	}
	return true, nil
}

// Value returns the last byte successfully written and whether one has been.
func (d *Device) Value() (byte, bool) { return d.last, d.known }

func (d *Device) write(v byte) error {
	d.buf[0] = v
	if err := d.bus.Tx(d.Address, d.buf[:], nil); err != nil {
		// Unknown pin state; retry on the next Set.
		d.known = false
		return ErrBus
	}
	d.last, d.known = v, true
	return nil
}
