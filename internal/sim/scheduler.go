package sim

import (
	"sync"
	"time"
)

// DefaultFrameInterval is the frame period when none is configured.
const DefaultFrameInterval = 50 * time.Millisecond

// TickFunc advances the simulation by dt seconds and reports whether it
// needs another frame.
type TickFunc func(dt float64) bool

// Scheduler calls a TickFunc on a fixed interval, but only while the tick
// keeps reporting activity. Wake starts it; it stops itself when idle. Ticks
// never overlap because they all run on the one loop goroutine.
//
// Go Learning Note — Lost wake-ups:
// A Wake that lands just after a tick reported "idle" but before the loop
// marked itself stopped would otherwise be lost. The woken flag closes that
// window: the loop only stops if nobody called Wake since the last tick.
type Scheduler struct {
	interval time.Duration
	tick     TickFunc
	now      func() time.Time

	mu      sync.Mutex
	running bool
	woken   bool
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewScheduler creates an idle scheduler. now is the clock used to compute
// dt; nil means time.Now.
func NewScheduler(interval time.Duration, tick TickFunc, now func() time.Time) *Scheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		interval: interval,
		tick:     tick,
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Wake starts the frame loop unless it is already running.
func (s *Scheduler) Wake() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.woken = true
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})
	go s.loop(s.done)
}

// Running reports whether the frame loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Close stops the loop and waits for it to exit. Later Wake calls do
// nothing.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stop)
	done := s.done
	s.mu.Unlock()

	if done != nil {
		<-done
	}
}

func (s *Scheduler) loop(done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	last := s.now()

	for {
		select {
		case <-s.stop:
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		s.woken = false
		s.mu.Unlock()

		now := s.now()
		dt := now.Sub(last).Seconds()
		last = now

		if s.tick(dt) {
			continue
		}

		s.mu.Lock()
		if s.woken {
			s.mu.Unlock()
			continue
		}
		s.running = false
		s.mu.Unlock()
		return
	}
}
