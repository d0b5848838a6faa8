// Package eeprom24 provides a driver for 24LCxx-family serial EEPROMs with
// two-byte addressing (24LC32 .. 24LC512).
//
// Transactions follow the device protocol:
//
//	write: [addrHi addrLo data...]            (at most one page per transaction)
//	read:  [addrHi addrLo] repeated-start [n data bytes]
//
// The device is exposed as an io.ReaderAt / io.WriterAt. Requests that do not
// fit in the device fail before any bus traffic. Writes are split on the page
// grid and each chunk is followed by the write-cycle delay. There is no retry
// at this layer: the first bus error aborts the whole request.
//
// NOTE: drivers.I2C cannot report how many bytes a read returned. Buses that
// can should implement Counter; a short count is then reported as
// errcode.ShortRead.
package eeprom24

import (
	"time"

	"tinygo.org/x/drivers"

	"vfobfo-go/errcode"
)

// I2C address with A0..A2 tied low.
const Address = 0x50

const (
	// DefaultSize is the capacity of a 24LC256.
	DefaultSize       = 32768
	DefaultPageSize   = 32
	DefaultWriteCycle = 10 * time.Millisecond
	DefaultReadGap    = 5 * time.Millisecond

	// maxChunk bounds every transaction payload regardless of page size.
	maxChunk = 32
)

// Counter is implemented by buses that report the number of bytes a read
// transaction actually returned.
type Counter interface {
	TxN(addr uint16, w, r []byte) (int, error)
}

// Config controls device geometry and timing. Zero fields take defaults.
type Config struct {
	Address    uint16
	Size       int
	PageSize   int
	WriteCycle time.Duration
	ReadGap    time.Duration
	// Sleep replaces time.Sleep (tests).
	Sleep func(time.Duration)
}

// Device is a 24LCxx EEPROM on an I2C bus.
type Device struct {
	bus  drivers.I2C
	cnt  Counter
	addr uint16

	size       int
	page       int
	writeCycle time.Duration
	readGap    time.Duration
	sleep      func(time.Duration)

	w [2 + maxChunk]byte
}

// New binds a device to an already configured bus. It does not touch the bus.
func New(bus drivers.I2C, cfg Config) *Device {
	d := &Device{
		bus:        bus,
		addr:       cfg.Address,
		size:       cfg.Size,
		page:       cfg.PageSize,
		writeCycle: cfg.WriteCycle,
		readGap:    cfg.ReadGap,
		sleep:      cfg.Sleep,
	}
	if c, ok := bus.(Counter); ok {
		d.cnt = c
	}
	if d.addr == 0 {
		d.addr = Address
	}
	if d.size <= 0 || d.size > 1<<16 {
		d.size = DefaultSize
	}
	if d.page <= 0 {
		d.page = DefaultPageSize
	}
	if d.writeCycle <= 0 {
		d.writeCycle = DefaultWriteCycle
	}
	if d.readGap < 0 {
		d.readGap = 0
	} else if d.readGap == 0 {
		d.readGap = DefaultReadGap
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	return d
}

// Size returns the device capacity in bytes.
func (d *Device) Size() int { return d.size }

// PageSize returns the write page size in bytes.
func (d *Device) PageSize() int { return d.page }

func (d *Device) check(op string, off int64, n int) error {
	if off < 0 || off+int64(n) > int64(d.size) {
		return errcode.Wrap(errcode.OutOfRange, op, nil)
	}
	return nil
}

// WriteAt writes p at device offset off. On failure n is the number of bytes
// committed by completed chunks.
func (d *Device) WriteAt(p []byte, off int64) (n int, err error) {
	if err := d.check("eeprom24.write", off, len(p)); err != nil {
		return 0, err
	}
	for n < len(p) {
		a := int(off) + n
		c := d.page - a%d.page
		if c > maxChunk {
			c = maxChunk
		}
		if rem := len(p) - n; c > rem {
			c = rem
		}

		d.w[0] = byte(a >> 8)
		d.w[1] = byte(a)
		copy(d.w[2:], p[n:n+c])
		if err := d.bus.Tx(d.addr, d.w[:2+c], nil); err != nil {
			return n, errcode.Wrap(errcode.Transport, "eeprom24.write", err)
		}
		n += c
		// The device NACKs everything until its internal write cycle ends.
		d.sleep(d.writeCycle)
	}
	return n, nil
}

// ReadAt fills p from device offset off in chunks of at most 32 bytes.
func (d *Device) ReadAt(p []byte, off int64) (n int, err error) {
	if err := d.check("eeprom24.read", off, len(p)); err != nil {
		return 0, err
	}
	for n < len(p) {
		if n > 0 && d.readGap > 0 {
			d.sleep(d.readGap)
		}
		a := int(off) + n
		c := len(p) - n
		if c > maxChunk {
			c = maxChunk
		}

		d.w[0] = byte(a >> 8)
		d.w[1] = byte(a)
		chunk := p[n : n+c]
		if d.cnt != nil {
			got, err := d.cnt.TxN(d.addr, d.w[:2], chunk)
			if err != nil {
				return n, errcode.Wrap(errcode.Transport, "eeprom24.read", err)
			}
			if got != c {
				return n, errcode.Wrap(errcode.ShortRead, "eeprom24.read", nil)
			}
		} else if err := d.bus.Tx(d.addr, d.w[:2], chunk); err != nil {
			return n, errcode.Wrap(errcode.Transport, "eeprom24.read", err)
		}
		n += c
	}
	return n, nil
}

// Fill writes b to every byte of the device, one page per transaction.
func (d *Device) Fill(b byte) error {
	var blank [maxChunk]byte
	for i := range blank {
		blank[i] = b
	}
	step := d.page
	if step > maxChunk {
		step = maxChunk
	}
	for a := 0; a < d.size; a += step {
		c := step
		if a+c > d.size {
			c = d.size - a
		}
		if _, err := d.WriteAt(blank[:c], int64(a)); err != nil {
			return err
		}
	}
	return nil
}
