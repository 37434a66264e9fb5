// SPDX-License-Identifier: MPL-2.0

package clock

import (
	"testing"
	"time"
)

func TestFake_DefaultsToReferenceTime(t *testing.T) {
	t.Parallel()

	c := NewFake(time.Time{})
	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := c.Now(); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}

func TestFake_AdvanceAndSince(t *testing.T) {
	t.Parallel()

	c := NewFake(time.Time{})
	start := c.Now()
	c.Advance(1500 * time.Millisecond)

	if got := c.Since(start); got != 1500*time.Millisecond {
		t.Errorf("Since() = %v, want 1.5s", got)
	}

	later := time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)
	c.Set(later)
	if got := c.Now(); !got.Equal(later) {
		t.Errorf("Now() after Set = %v, want %v", got, later)
	}
}

func TestFake_Step(t *testing.T) {
	t.Parallel()

	c := NewFake(time.Time{})
	c.SetStep(42 * time.Millisecond)

	start := c.Now()
	if got := c.Since(start); got != 42*time.Millisecond {
		t.Errorf("Since() after one stepped Now = %v, want 42ms", got)
	}
}

func TestReal_Since(t *testing.T) {
	t.Parallel()

	var c Clock = Real{}
	start := c.Now()
	if c.Since(start) < 0 {
		t.Error("Since() should never be negative for the real clock")
	}
}
