package platform

import (
	"sync"
	"sync/atomic"
	"time"

	"tinygo.org/x/drivers"

	"vfobfo-go/errcode"
)

// counter is implemented by buses that report read lengths (memsim).
type counter interface {
	TxN(addr uint16, w, r []byte) (int, error)
}

// Request states. A caller that gives up marks a queued request abandoned
// and the worker skips it.
const (
	reqQueued int32 = iota
	reqRunning
	reqAbandoned
)

// request posted to the bus worker; w and r are owned by the request
type busReq struct {
	addr  uint16
	w, r  []byte
	state atomic.Int32
	done  chan busResp // buffered(1); worker replies best-effort
}

type busResp struct {
	n   int
	err error
}

// BusOwner serialises every transaction on one I2C controller through a
// single worker goroutine. Each call is bounded by the timeout so a wedged
// bus surfaces as errcode.Timeout instead of stalling the control loop.
type BusOwner struct {
	hw      drivers.I2C
	timeout time.Duration // 0 => no deadline
	reqs    chan *busReq
	quit    chan struct{}
	once    sync.Once
}

var (
	_ drivers.I2C = (*BusOwner)(nil)
	_ counter     = (*BusOwner)(nil)
)

func NewBusOwner(hw drivers.I2C, timeout time.Duration) *BusOwner {
	o := &BusOwner{
		hw:      hw,
		timeout: timeout,
		reqs:    make(chan *busReq, 16),
		quit:    make(chan struct{}),
	}
	go o.loop()
	return o
}

func (o *BusOwner) loop() {
	cnt, hasCount := o.hw.(counter)
	for {
		select {
		case req := <-o.reqs:
			if !req.state.CompareAndSwap(reqQueued, reqRunning) {
				continue
			}
			var resp busResp
			if hasCount {
				resp.n, resp.err = cnt.TxN(req.addr, req.w, req.r)
			} else {
				resp.err = o.hw.Tx(req.addr, req.w, req.r)
				if resp.err == nil {
					resp.n = len(req.r)
				}
			}
			select {
			case req.done <- resp:
			default:
			}
		case <-o.quit:
			return
		}
	}
}

// Close stops the worker. Later calls fail with errcode.Closed.
func (o *BusOwner) Close() { o.once.Do(func() { close(o.quit) }) }

func (o *BusOwner) Tx(addr uint16, w, r []byte) error {
	_, err := o.TxN(addr, w, r)
	return err
}

// TxN posts one transaction and waits for its completion. The request works
// on copies of w and r, so a caller that times out may reuse its buffers at
// once. A request still queued at the deadline is never sent; one already on
// the wire completes with the data it was given.
func (o *BusOwner) TxN(addr uint16, w, r []byte) (int, error) {
	select {
	case <-o.quit:
		return 0, errcode.Closed
	default:
	}
	req := &busReq{addr: addr, done: make(chan busResp, 1)}
	if len(w) > 0 {
		req.w = append([]byte(nil), w...)
	}
	if len(r) > 0 {
		req.r = make([]byte, len(r))
	}

	var deadline <-chan time.Time
	if o.timeout > 0 {
		t := time.NewTimer(o.timeout)
		defer t.Stop()
		deadline = t.C
	}

	select {
	case o.reqs <- req:
	case <-o.quit:
		return 0, errcode.Closed
	case <-deadline:
		return 0, errcode.Busy
	}

	select {
	case resp := <-req.done:
		n := resp.n
		if n < 0 || n > len(r) {
			n = len(r)
		}
		copy(r, req.r[:n])
		return resp.n, resp.err
	case <-o.quit:
		req.state.CompareAndSwap(reqQueued, reqAbandoned)
		return 0, errcode.Closed
	case <-deadline:
		req.state.CompareAndSwap(reqQueued, reqAbandoned)
		return 0, errcode.Timeout
	}
}
