// SPDX-License-Identifier: MPL-2.0

// Package clock abstracts wall-clock reads so elapsed-time measurements and
// timestamped filenames can be made deterministic in tests.
package clock

import (
	"sync"
	"time"
)

type (
	// Clock reads the current time.
	Clock interface {
		Now() time.Time
		Since(t time.Time) time.Duration
	}

	// Real implements Clock using the system clock.
	Real struct{}

	// Fake is a manually advanced Clock. Time only moves when the test moves it.
	Fake struct {
		mu      sync.Mutex
		current time.Time
		// step is added after every Now call, which lets a test give each
		// timed section a known duration without touching the code under test.
		step time.Duration
	}
)

// Now returns the current system time.
func (Real) Now() time.Time { return time.Now() }

// Since returns the time elapsed since t.
func (Real) Since(t time.Time) time.Duration { return time.Since(t) }

// NewFake creates a Fake clock. A zero initial time defaults to a fixed
// reference instant.
func NewFake(initial time.Time) *Fake {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Fake{current: initial}
}

// Now returns the fake time, then advances it by the configured step.
func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

// Since returns the fake time elapsed since t.
func (c *Fake) Since(t time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Sub(t)
}

// Advance moves the fake time forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Set sets the fake time to t.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// SetStep makes every Now call advance the clock by d afterwards.
func (c *Fake) SetStep(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.step = d
}
