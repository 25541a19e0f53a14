// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package edge delivers demodulated radio edges to the TPMS decoders.
//
// Edges arrive from a capture bridge (serial or WebSocket, text in the RAW
// style), from a GPIO line wired to an OOK receiver, or from a .sub capture
// file. Every source produces the same Event stream.
package edge

import "fmt"

// Edge is one held signal level and its duration in microseconds
type Edge struct {
	Level    bool
	Duration uint32
}

// Signed returns the RAW style value: positive for high, negative for low
func (e Edge) Signed() int64 {
	if e.Level {
		return int64(e.Duration)
	}
	return -int64(e.Duration)
}

// Kind identifies what an Event carries
type Kind int

const (
	KindEdges Kind = iota
	KindRSSI
	KindFrequency
)

// String returns the kind name
func (k Kind) String() string {
	switch k {
	case KindEdges:
		return "edges"
	case KindRSSI:
		return "rssi"
	case KindFrequency:
		return "frequency"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one unit delivered by a source: a batch of edges, an RSSI report
// or a tune confirmation
type Event struct {
	Kind      Kind
	Edges     []Edge
	RSSI      float64 // dBm
	Frequency uint32  // Hz
}

// Feeder consumes edges. tpms.Receiver and every tpms.Decoder satisfy it.
type Feeder interface {
	Feed(level bool, duration uint32)
}

// FeedAll delivers a batch of edges in order
func FeedAll(f Feeder, edges []Edge) {
	for _, e := range edges {
		f.Feed(e.Level, e.Duration)
	}
}
