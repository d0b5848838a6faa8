package shmring

import (
	"sync"
	"testing"
)

func TestOrderAcrossWrap(t *testing.T) {
	r := New(16)
	const N = 1000
	src := make([]byte, N)
	for i := range src {
		src[i] = byte(i * 7)
	}

	var got []byte
	buf := make([]byte, 5)
	p := src
	for len(got) < N {
		if len(p) > 0 {
			step := 7
			if step > len(p) {
				step = len(p)
			}
			p = p[r.TryWriteFrom(p[:step]):]
		}
		n := r.TryReadInto(buf)
		got = append(got, buf[:n]...)
	}
	for i := range src {
		if got[i] != src[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], src[i])
		}
	}
}

func TestWriteDropsOverflow(t *testing.T) {
	r := New(8)
	n, err := r.Write([]byte("0123456789AB"))
	if err != nil || n != 12 {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if r.Available() != 8 || r.Space() != 0 || r.Dropped() != 4 {
		t.Fatalf("avail=%d space=%d dropped=%d", r.Available(), r.Space(), r.Dropped())
	}
	out := make([]byte, 16)
	if n := r.TryReadInto(out); string(out[:n]) != "01234567" {
		t.Fatalf("read %q", out[:n])
	}
}

func TestReadByteAndReadable(t *testing.T) {
	r := New(4)
	if _, ok := r.ReadByte(); ok {
		t.Fatal("ReadByte on empty ring")
	}
	r.TryWriteFrom([]byte("ab"))
	select {
	case <-r.Readable():
	default:
		t.Fatal("no readable edge")
	}
	if b, ok := r.ReadByte(); !ok || b != 'a' {
		t.Fatalf("ReadByte = %q %v", b, ok)
	}
}

func TestConcurrentProducerConsumer(t *testing.T) {
	r := New(32)
	const N = 20000
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < N; {
			if r.TryWriteFrom([]byte{byte(i)}) == 1 {
				i++
			}
		}
	}()
	for i := 0; i < N; {
		if b, ok := r.ReadByte(); ok {
			if b != byte(i) {
				t.Fatalf("byte %d = %d", i, b)
			}
			i++
		}
	}
	wg.Wait()
}
