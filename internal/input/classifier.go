// Package input turns discrete device events into actions: it classifies
// press durations and dispatches the resulting profile actions as synthetic
// keystrokes.
package input

import (
	"time"
)

// Classifier implements the hold-to-activate state machine. Per button the
// press moves Idle -> Pressed -> {FiredLong | ReleasedShort}: buttons in the
// hold set fire their long action while still held, once, via PollLongPress;
// all others classify short vs long at release time. The two paths are
// mutually exclusive for any single press.
type Classifier struct {
	threshold   time.Duration
	holdButtons map[int]bool

	pressStart map[int]time.Time
	fired      map[int]bool
}

// Release is the outcome of a ButtonUp.
type Release struct {
	// Duration the button was held. Zero when no press was recorded.
	Duration time.Duration
	// Long is true when the press reached the long-press threshold.
	Long bool
	// AlreadyFired is true when the hold action already ran via
	// PollLongPress; the caller must not perform any further action.
	AlreadyFired bool
}

// NewClassifier returns a classifier with the given long-press threshold and
// the set of buttons eligible for hold-to-activate firing.
func NewClassifier(threshold time.Duration, holdButtons []int) *Classifier {
	hold := make(map[int]bool, len(holdButtons))
	for _, b := range holdButtons {
		hold[b] = true
	}
	return &Classifier{
		threshold:   threshold,
		holdButtons: hold,
		pressStart:  make(map[int]time.Time),
		fired:       make(map[int]bool),
	}
}

// OnDown records the press start. No side effects.
func (c *Classifier) OnDown(button int) {
	c.pressStart[button] = time.Now()
}

// PollLongPress returns the hold-eligible buttons whose press just crossed
// the threshold. Each press fires at most once; the caller performs the
// actions. Intended to be called at high frequency from the scheduler,
// because releases are not guaranteed to arrive promptly.
func (c *Classifier) PollLongPress() []int {
	var due []int
	for button := range c.holdButtons {
		if c.fired[button] {
			continue
		}
		start, ok := c.pressStart[button]
		if !ok {
			continue
		}
		if time.Since(start) >= c.threshold {
			c.fired[button] = true
			due = append(due, button)
		}
	}
	return due
}

// OnUp removes the press record and classifies the release. A release with
// no recorded press is not an error; it classifies as a zero-duration short
// press. The fired marker, if set, is consumed here exactly once.
func (c *Classifier) OnUp(button int) Release {
	var elapsed time.Duration
	if start, ok := c.pressStart[button]; ok {
		elapsed = time.Since(start)
		delete(c.pressStart, button)
	}

	if c.fired[button] {
		delete(c.fired, button)
		return Release{Duration: elapsed, Long: true, AlreadyFired: true}
	}

	return Release{Duration: elapsed, Long: elapsed >= c.threshold}
}

// Held reports whether a press is currently recorded for the button.
func (c *Classifier) Held(button int) bool {
	_, ok := c.pressStart[button]
	return ok
}
