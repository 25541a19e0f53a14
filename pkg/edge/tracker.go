// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package edge

import (
	"math"
	"time"
)

// LevelTracker turns timestamped transitions into edges. Each transition
// closes the level held since the previous one.
type LevelTracker struct {
	last   time.Duration
	seeded bool
}

// Observe records a transition to level at ts. It returns the edge that the
// transition closed; ok is false for the first transition.
func (t *LevelTracker) Observe(level bool, ts time.Duration) (e Edge, ok bool) {
	if !t.seeded {
		t.seeded = true
		t.last = ts
		return Edge{}, false
	}

	d := ts - t.last
	t.last = ts
	if d < 0 {
		d = 0
	}

	us := d.Microseconds()
	if us > math.MaxUint32 {
		us = math.MaxUint32
	}
	return Edge{Level: !level, Duration: uint32(us)}, true
}

// Reset forgets the previous transition
func (t *LevelTracker) Reset() {
	t.seeded = false
	t.last = 0
}
