package nvstore

import (
	"time"

	"vfobfo-go/types"
)

// Quiet periods.
const (
	SaveDelay      = 3000 * time.Millisecond
	QuickSaveDelay = 500 * time.Millisecond

	DefaultMaxRetries = 3
	// NoRetry drops a request after its first failed flush.
	NoRetry = -1
)

// Saver is the durable sink for a staged record.
type Saver interface {
	SaveConfig(rec ConfigRecord) error
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(rec ConfigRecord) error

func (f SaverFunc) SaveConfig(rec ConfigRecord) error { return f(rec) }

// SchedulerConfig tunes the scheduler. Zero fields take defaults.
type SchedulerConfig struct {
	Delay      time.Duration
	QuickDelay time.Duration
	// MaxRetries is how many times a failed flush is retried; the request is
	// dropped on failure MaxRetries+1. NoRetry drops it on the first failure.
	MaxRetries int
	Now        func() time.Time
	// OnFlush observes every flush attempt.
	OnFlush func(rec ConfigRecord, err error)
}

// Scheduler coalesces save requests into a single deferred write.
//
// Every request overwrites the staged snapshot and restarts the quiet period;
// nothing is queued. Update, called from the control loop, flushes once the
// period has elapsed since the most recent request. Requests arriving faster
// than the period defer the write indefinitely.
//
// A failed flush keeps the request pending and re-arms the quiet period, up
// to MaxRetries times; then it is dropped and counted.
//
// Not safe for concurrent use; it lives on the control loop.
type Scheduler struct {
	sink    Saver
	now     func() time.Time
	onFlush func(ConfigRecord, error)

	normal, quick time.Duration
	maxRetries    int

	pending     bool
	requestedAt time.Time
	delay       time.Duration
	stage       ConfigRecord

	failures int
	dropped  int
	flushes  int
}

// NewScheduler stages base so that fields outside the captured live state are
// written back unchanged.
func NewScheduler(sink Saver, base ConfigRecord, cfg SchedulerConfig) *Scheduler {
	s := &Scheduler{
		sink:       sink,
		now:        cfg.Now,
		onFlush:    cfg.OnFlush,
		normal:     cfg.Delay,
		quick:      cfg.QuickDelay,
		maxRetries: cfg.MaxRetries,
		stage:      base,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.normal <= 0 {
		s.normal = SaveDelay
	}
	if s.quick <= 0 {
		s.quick = QuickSaveDelay
	}
	if s.maxRetries == 0 {
		s.maxRetries = DefaultMaxRetries
	}
	return s
}

// Seed replaces the staged base record, e.g. after boot or a format.
// A pending request is discarded.
func (s *Scheduler) Seed(rec ConfigRecord) {
	s.stage = rec
	s.pending = false
	s.failures = 0
}

// RequestSave stages st for a flush after the normal quiet period.
// Meant for continuous input such as tuning.
func (s *Scheduler) RequestSave(st types.RXState) { s.request(st, s.normal) }

// RequestQuickSave stages st for a flush after the short quiet period.
// Meant for discrete actions such as step, band or mode changes.
func (s *Scheduler) RequestQuickSave(st types.RXState) { s.request(st, s.quick) }

func (s *Scheduler) request(st types.RXState, d time.Duration) {
	s.stage.Apply(st)
	s.delay = d
	s.pending = true
	s.failures = 0
	s.requestedAt = s.now()
}

// Update flushes the staged record once the quiet period has elapsed.
// It reports whether a flush was attempted.
func (s *Scheduler) Update() bool {
	if !s.pending || s.now().Sub(s.requestedAt) <= s.delay {
		return false
	}
	s.flush()
	return true
}

// Flush writes a pending request immediately, ignoring the quiet period.
func (s *Scheduler) Flush() error {
	if !s.pending {
		return nil
	}
	return s.flush()
}

func (s *Scheduler) flush() error {
	rec := s.stage
	err := s.sink.SaveConfig(rec)
	s.flushes++
	if err == nil {
		s.pending = false
		s.failures = 0
	} else {
		s.failures++
		if s.maxRetries < 0 || s.failures > s.maxRetries {
			s.pending = false
			s.failures = 0
			s.dropped++
		} else {
			s.requestedAt = s.now()
		}
	}
	if s.onFlush != nil {
		s.onFlush(rec, err)
	}
	return err
}

// IsSavePending reports whether a flush is outstanding.
func (s *Scheduler) IsSavePending() bool { return s.pending }

// Dropped returns how many requests were abandoned after failed flushes.
func (s *Scheduler) Dropped() int { return s.dropped }

// Flushes returns the number of flush attempts so far.
func (s *Scheduler) Flushes() int { return s.flushes }
