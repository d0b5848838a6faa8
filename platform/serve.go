package platform

import (
	"context"
	"errors"
	"io"
	"time"

	"vfobfo-go/x/shmring"
)

// recvPoll bounds each blocking UART receive so cancellation is noticed.
const recvPoll = 250 * time.Millisecond

// port is the receive half of a UART; uartx.UART satisfies it.
type port interface {
	RecvSomeContext(ctx context.Context, buf []byte) (int, error)
}

// pumpPort copies received bytes into ring until ctx is done. Bytes that do
// not fit are dropped by the ring and counted there.
func pumpPort(ctx context.Context, p port, ring *shmring.Ring) error {
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		rctx, cancel := context.WithTimeout(ctx, recvPoll)
		n, err := p.RecvSomeContext(rctx, buf)
		cancel()
		if n > 0 {
			ring.Write(buf[:n])
		}
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			println("[platform] console rx:", err.Error())
		}
	}
}

// pumpReader copies r into ring until EOF or ctx is done. A blocked Read is
// not interrupted; the host simulator exits with the process.
func pumpReader(ctx context.Context, r io.Reader, ring *shmring.Ring) error {
	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			ring.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
