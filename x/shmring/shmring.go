// Package shmring is a lock-free single-producer, single-consumer byte ring.
//
// The serial reader goroutine is the producer and the control loop is the
// consumer: the loop drains whatever has arrived without ever blocking on the
// UART. Indices are monotonic and wrap through a power-of-two mask.
package shmring

import "sync/atomic"

// Ring is safe for exactly one writer and one reader.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32
	wr   atomic.Uint32

	dropped atomic.Uint32

	readable chan struct{}
}

// New allocates a ring. size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("shmring: size must be power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
	}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Available returns the number of unread bytes.
func (r *Ring) Available() int { return int(r.wr.Load() - r.rd.Load()) }

// Space returns the number of bytes that can be written without loss.
func (r *Ring) Space() int { return len(r.buf) - r.Available() }

// Dropped returns how many bytes Write discarded because the ring was full.
func (r *Ring) Dropped() int { return int(r.dropped.Load()) }

// TryWriteFrom copies as much of src as fits and returns the count.
func (r *Ring) TryWriteFrom(src []byte) int {
	rd := r.rd.Load()
	wr := r.wr.Load()
	before := wr - rd
	n := int(r.size() - before)
	if n > len(src) {
		n = len(src)
	}
	if n <= 0 {
		return 0
	}
	i := wr & r.mask
	first := copy(r.buf[i:], src[:n])
	copy(r.buf, src[first:n])
	r.wr.Store(wr + uint32(n))

	if before == 0 {
		select {
		case r.readable <- struct{}{}:
		default:
		}
	}
	return n
}

// Write implements io.Writer. Bytes that do not fit are dropped and counted;
// it never blocks and never fails.
func (r *Ring) Write(p []byte) (int, error) {
	n := r.TryWriteFrom(p)
	if n < len(p) {
		r.dropped.Add(uint32(len(p) - n))
	}
	return len(p), nil
}

// TryReadInto copies up to len(dst) unread bytes and returns the count.
func (r *Ring) TryReadInto(dst []byte) int {
	rd := r.rd.Load()
	n := int(r.wr.Load() - rd)
	if n > len(dst) {
		n = len(dst)
	}
	if n <= 0 {
		return 0
	}
	i := rd & r.mask
	first := copy(dst[:n], r.buf[i:])
	copy(dst[first:n], r.buf)
	r.rd.Store(rd + uint32(n))
	return n
}

// ReadByte pops one byte. ok is false when the ring is empty.
func (r *Ring) ReadByte() (b byte, ok bool) {
	rd := r.rd.Load()
	if r.wr.Load() == rd {
		return 0, false
	}
	b = r.buf[rd&r.mask]
	r.rd.Store(rd + 1)
	return b, true
}

// Readable is signalled when the ring goes from empty to non-empty.
func (r *Ring) Readable() <-chan struct{} { return r.readable }
