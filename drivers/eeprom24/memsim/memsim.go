// Package memsim emulates I2C targets in memory: a 24LCxx EEPROM with the
// chip's page-wrap behaviour and a one-byte output latch. A Bus routes
// transactions by address, keeps a transaction log and can inject faults.
//
// It backs host builds and tests; it never runs on the MCU.
package memsim

import (
	"errors"
	"sync"
)

var (
	ErrNoAck    = errors.New("memsim: no ack")
	ErrInjected = errors.New("memsim: injected fault")
	ErrProtocol = errors.New("memsim: protocol error")
)

// Target is one device on the simulated bus. It returns the number of bytes
// placed in r.
type Target interface {
	Transact(w, r []byte) (int, error)
}

// Tx records one bus transaction.
type Tx struct {
	Addr uint16
	W    []byte
	Rn   int
}

// Bus implements drivers.I2C and eeprom24.Counter.
type Bus struct {
	mu      sync.Mutex
	targets map[uint16]Target
	log     []Tx
	failIn  int // fail the failIn-th next transaction; 0 = never
	failAll bool
}

func NewBus() *Bus {
	return &Bus{targets: make(map[uint16]Target)}
}

// Attach places t at addr, replacing any previous target.
func (b *Bus) Attach(addr uint16, t Target) {
	b.mu.Lock()
	b.targets[addr] = t
	b.mu.Unlock()
}

// FailNth makes the n-th transaction from now fail (n >= 1).
func (b *Bus) FailNth(n int) {
	b.mu.Lock()
	b.failIn = n
	b.mu.Unlock()
}

// FailAll makes every transaction fail until cleared.
func (b *Bus) FailAll(on bool) {
	b.mu.Lock()
	b.failAll = on
	b.mu.Unlock()
}

func (b *Bus) Tx(addr uint16, w, r []byte) error {
	_, err := b.TxN(addr, w, r)
	return err
}

func (b *Bus) TxN(addr uint16, w, r []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.log = append(b.log, Tx{Addr: addr, W: append([]byte(nil), w...), Rn: len(r)})
	if b.failAll {
		return 0, ErrInjected
	}
	if b.failIn > 0 {
		b.failIn--
		if b.failIn == 0 {
			return 0, ErrInjected
		}
	}
	t := b.targets[addr]
	if t == nil {
		return 0, ErrNoAck
	}
	return t.Transact(w, r)
}

// Log returns a copy of the transaction log.
func (b *Bus) Log() []Tx {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Tx(nil), b.log...)
}

// Count returns the number of transactions seen, optionally for one address
// (addr < 0 counts all).
func (b *Bus) Count(addr int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if addr < 0 {
		return len(b.log)
	}
	n := 0
	for _, tx := range b.log {
		if int(tx.Addr) == addr {
			n++
		}
	}
	return n
}

// ResetLog clears the transaction log.
func (b *Bus) ResetLog() {
	b.mu.Lock()
	b.log = nil
	b.mu.Unlock()
}

// ---- EEPROM ----

// EEPROM models a 24LCxx array with two-byte addressing.
type EEPROM struct {
	mu       sync.Mutex
	mem      []byte
	pageSize int
	ptr      int

	// ShortBy truncates every read response by this many bytes.
	ShortBy int
}

// NewEEPROM returns a blank (all 0xFF) device.
func NewEEPROM(size, pageSize int) *EEPROM {
	m := make([]byte, size)
	for i := range m {
		m[i] = 0xFF
	}
	return &EEPROM{mem: m, pageSize: pageSize}
}

func (e *EEPROM) Transact(w, r []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case len(w) == 1:
		return 0, ErrProtocol
	case len(w) >= 2:
		e.ptr = (int(w[0])<<8 | int(w[1])) % len(e.mem)
		data := w[2:]
		if len(data) > 0 {
			// Page write: the low address bits roll over inside the page.
			base := e.ptr - e.ptr%e.pageSize
			off := e.ptr % e.pageSize
			for _, v := range data {
				e.mem[base+off] = v
				off = (off + 1) % e.pageSize
			}
			e.ptr = base + off
		}
	}
	if len(r) == 0 {
		return 0, nil
	}
	n := len(r) - e.ShortBy
	if n < 0 {
		n = 0
	}
	for i := 0; i < n; i++ {
		r[i] = e.mem[e.ptr]
		e.ptr = (e.ptr + 1) % len(e.mem)
	}
	return n, nil
}

// Bytes returns a copy of the array.
func (e *EEPROM) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]byte(nil), e.mem...)
}

// Load copies p into the array at off, bypassing the bus.
func (e *EEPROM) Load(off int, p []byte) {
	e.mu.Lock()
	copy(e.mem[off:], p)
	e.mu.Unlock()
}

// FlipBit inverts one bit at off, bypassing the bus.
func (e *EEPROM) FlipBit(off int, bit uint) {
	e.mu.Lock()
	e.mem[off] ^= 1 << (bit & 7)
	e.mu.Unlock()
}

// ---- Latch ----

// Latch models a quasi-bidirectional 8-bit port expander (PCF8574).
type Latch struct {
	mu     sync.Mutex
	value  byte
	writes int
}

func (l *Latch) Transact(w, r []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(w) > 0 {
		l.value = w[len(w)-1]
		l.writes++
	}
	for i := range r {
		r[i] = l.value
	}
	return len(r), nil
}

// Value returns the last byte written.
func (l *Latch) Value() byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Writes returns the number of write transactions received.
func (l *Latch) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}
