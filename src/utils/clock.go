package utils

import (
	"sync"
	"time"
)

// -----------------------------------------------------------------------------
// SystemClock is the production IClock backed by the runtime timers.
// -----------------------------------------------------------------------------

type SystemClock struct{}

func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	return time.Now()
}

func (c *SystemClock) NowMs() int64 {
	return time.Now().UnixMilli()
}

func (c *SystemClock) Ticker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

func (c *SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// -----------------------------------------------------------------------------
// FakeClock drives timers manually. Test helper, but lives here so every
// package's tests share one implementation.
// -----------------------------------------------------------------------------

type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	ch       chan time.Time
	deadline time.Time
	interval time.Duration // 0 for one-shot
	stopped  bool
}

// -----------------------------------------------------------------------------

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) NowMs() int64 {
	return c.Now().UnixMilli()
}

// -----------------------------------------------------------------------------

func (c *FakeClock) Ticker(d time.Duration) (<-chan time.Time, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := &fakeWaiter{
		ch:       make(chan time.Time, 16),
		deadline: c.now.Add(d),
		interval: d,
	}
	c.waiters = append(c.waiters, w)

	stop := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		w.stopped = true
	}
	return w.ch, stop
}

// -----------------------------------------------------------------------------

func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	w := &fakeWaiter{
		ch:       make(chan time.Time, 1),
		deadline: c.now.Add(d),
	}
	c.waiters = append(c.waiters, w)
	return w.ch
}

// -----------------------------------------------------------------------------

// Advance moves virtual time forward and fires every waiter whose deadline
// passed, in deadline order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.now.Add(d)
	for {
		fired := false
		for _, w := range c.waiters {
			if w.stopped || w.deadline.After(target) {
				continue
			}
			c.now = w.deadline
			select {
			case w.ch <- w.deadline:
			default:
			}
			if w.interval > 0 {
				w.deadline = w.deadline.Add(w.interval)
			} else {
				w.stopped = true
			}
			fired = true
		}
		if !fired {
			break
		}
	}
	c.now = target
}
