// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package radio

import (
	"errors"
	"fmt"
)

// HopperState is the frequency hopper state
type HopperState int

const (
	HopperOff HopperState = iota
	HopperRunning
	HopperPause
	HopperRSSITimeout
)

// String returns the state name
func (s HopperState) String() string {
	switch s {
	case HopperOff:
		return "off"
	case HopperRunning:
		return "running"
	case HopperPause:
		return "paused"
	case HopperRSSITimeout:
		return "holding"
	default:
		return "unknown"
	}
}

const (
	// RSSIThreshold is the level above which the hopper stays on a frequency
	RSSIThreshold = -90.0
	// RSSITimeoutTicks is how many updates the hopper holds after activity
	RSSITimeoutTicks = 10
)

// Hopper cycles through a frequency list, holding while there is signal
type Hopper struct {
	state       HopperState
	timeout     int
	index       int
	frequencies []uint32
}

// NewHopper creates a stopped hopper over the given frequencies
func NewHopper(frequencies []uint32) (*Hopper, error) {
	if len(frequencies) == 0 {
		return nil, errors.New("hopper needs at least one frequency")
	}
	for _, f := range frequencies {
		if !ValidFrequency(f) {
			return nil, fmt.Errorf("hopper frequency %s MHz out of range", FormatFrequency(f))
		}
	}
	return &Hopper{
		state:       HopperOff,
		frequencies: append([]uint32(nil), frequencies...),
	}, nil
}

// Start enables hopping from the current frequency
func (h *Hopper) Start() {
	h.state = HopperRunning
	h.timeout = 0
}

// Pause suspends hopping without losing position
func (h *Hopper) Pause() {
	if h.state != HopperOff {
		h.state = HopperPause
	}
}

// Stop disables hopping
func (h *Hopper) Stop() {
	h.state = HopperOff
}

// State returns the current state
func (h *Hopper) State() HopperState {
	return h.state
}

// Frequency returns the frequency the hopper currently points at
func (h *Hopper) Frequency() uint32 {
	return h.frequencies[h.index]
}

// Update runs one hopper tick with the current RSSI in dBm.
// It returns the next frequency to tune, or 0 to stay.
func (h *Hopper) Update(rssi float64) uint32 {
	switch h.state {
	case HopperOff, HopperPause:
		return 0
	case HopperRSSITimeout:
		if h.timeout != 0 {
			h.timeout--
			return 0
		}
	}

	if h.state != HopperRSSITimeout {
		if rssi > RSSIThreshold {
			h.timeout = RSSITimeoutTicks
			h.state = HopperRSSITimeout
			return 0
		}
	} else {
		h.state = HopperRunning
	}

	h.index = (h.index + 1) % len(h.frequencies)
	return h.frequencies[h.index]
}
