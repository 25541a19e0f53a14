// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

// lineCode recovers data bits from a stream of half-bit levels.
// Every event passed to Decode is a single short (half-bit) duration.
type lineCode interface {
	// Reset restarts the automaton. level is the last level seen before data.
	Reset(level bool)
	// Decode consumes one half-bit and reports a bit when one completes.
	Decode(level bool) (bit bool, ok bool)
}

// Half-bit phases
const (
	phaseFirst = iota
	phaseSecond
)

// Manchester is a two-phase Manchester automaton over short events.
// High then low yields 1, low then high yields 0.
//
// Two equal halves are a phase violation: no bit is produced and the second
// half is taken as the first half of the next bit.
type Manchester struct {
	phase int
	first bool
}

// Reset returns the automaton to the first half-bit
func (m *Manchester) Reset(bool) {
	m.phase = phaseFirst
	m.first = false
}

// Decode consumes one half-bit level
func (m *Manchester) Decode(level bool) (bool, bool) {
	if m.phase == phaseFirst {
		m.first = level
		m.phase = phaseSecond
		return false, false
	}

	if level == m.first {
		return false, false
	}

	m.phase = phaseFirst
	return m.first, true
}

// DiffManchester decodes differential Manchester.
// Every bit has a mid-bit transition. A 1 has no transition at the start of
// the bit, a 0 has one.
type DiffManchester struct {
	phase int
	prev  bool // level of the half preceding the current bit
	first bool
}

// Reset seeds the reference level from the last sync half-bit
func (d *DiffManchester) Reset(level bool) {
	d.phase = phaseFirst
	d.prev = level
	d.first = false
}

// Decode consumes one half-bit level
func (d *DiffManchester) Decode(level bool) (bool, bool) {
	if d.phase == phaseFirst {
		d.first = level
		d.phase = phaseSecond
		return false, false
	}

	if level == d.first {
		// Missing mid-bit transition, restart the bit on this half
		d.prev = d.first
		return false, false
	}

	bit := d.first == d.prev
	d.prev = level
	d.phase = phaseFirst
	return bit, true
}

// PWM classifies pulses by the width of the high period.
// Bits are decided on the falling edge (a low event) from the preceding
// high duration: long is 1, short is 0.
type PWM struct {
	timing       Timing
	lastLevel    bool
	lastDuration uint32
}

// NewPWM creates a PWM discriminator for the given timing
func NewPWM(timing Timing) *PWM {
	return &PWM{timing: timing}
}

// Reset seeds the lookback with the given edge
func (p *PWM) Reset(level bool, duration uint32) {
	p.lastLevel = level
	p.lastDuration = duration
}

// Feed consumes one edge. valid is false when the pulse falls outside both
// tolerance windows or the gap is shorter than a short pulse; the caller must
// then resync. The gap has no upper bound so the idle after a frame still
// completes its last bit.
func (p *PWM) Feed(level bool, duration uint32) (bit, ok, valid bool) {
	prevLevel, prevDuration := p.lastLevel, p.lastDuration
	p.lastLevel = level
	p.lastDuration = duration

	if level {
		return false, false, true
	}

	if !prevLevel {
		return false, false, false
	}
	if duration+p.timing.Delta < p.timing.Short {
		return false, false, false
	}

	switch {
	case p.timing.IsLong(prevDuration):
		return true, true, true
	case p.timing.IsShort(prevDuration):
		return false, true, true
	default:
		return false, false, false
	}
}
