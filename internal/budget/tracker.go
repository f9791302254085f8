// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package budget caps the number of external search calls made for one
// research request.
package budget

// Tracker counts search calls against a fixed cap. A Tracker belongs to a
// single request and is not safe for concurrent use.
//
// RecordCall never refuses: callers check CanMakeCall first and decide what
// an exhausted budget means for them.
type Tracker struct {
	cap      int
	consumed int
}

// NewTracker returns a Tracker allowing up to cap calls. A negative cap is
// treated as zero.
func NewTracker(cap int) *Tracker {
	if cap < 0 {
		cap = 0
	}
	return &Tracker{cap: cap}
}

// CanMakeCall reports whether another call fits in the budget.
func (t *Tracker) CanMakeCall() bool {
	return t.consumed < t.cap
}

// RecordCall counts one call against the budget.
func (t *Tracker) RecordCall() {
	t.consumed++
}

// RemainingCalls returns cap minus consumed, floored at zero.
func (t *Tracker) RemainingCalls() int {
	if r := t.cap - t.consumed; r > 0 {
		return r
	}
	return 0
}

// Consumed returns the number of recorded calls.
func (t *Tracker) Consumed() int { return t.consumed }

// Cap returns the configured cap.
func (t *Tracker) Cap() int { return t.cap }
