// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package edge

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

// ============================================================
// Line Parser Tests
// ============================================================

func TestParseLine(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		ok       bool
		expected Event
	}{
		{"blank", "   ", false, Event{}},
		{"comment", "# bridge v1", false, Event{}},
		{"bare edges", "52 -52 104", true, Event{Kind: KindEdges, Edges: []Edge{{true, 52}, {false, 52}, {true, 104}}}},
		{"raw prefix", "RAW_Data: -300 120", true, Event{Kind: KindEdges, Edges: []Edge{{false, 300}, {true, 120}}}},
		{"zero skipped", "0 50 0", true, Event{Kind: KindEdges, Edges: []Edge{{true, 50}}}},
		{"only zeros", "0 0", false, Event{}},
		{"rssi", "RSSI: -87.5", true, Event{Kind: KindRSSI, RSSI: -87.5}},
		{"rssi with unit", "RSSI: -60 dBm", true, Event{Kind: KindRSSI, RSSI: -60}},
		{"frequency hz", "Frequency: 433920000", true, Event{Kind: KindFrequency, Frequency: 433920000}},
		{"frequency mhz", "Frequency: 315.00", true, Event{Kind: KindFrequency, Frequency: 315000000}},
		{"unknown key", "Preset: FuriHalSubGhzPresetOok650Async", false, Event{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok, err := ParseLine(tt.line)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.ok {
				t.Fatalf("ok: expected %v, got %v", tt.ok, ok)
			}
			if ok && !reflect.DeepEqual(ev, tt.expected) {
				t.Errorf("expected %+v, got %+v", tt.expected, ev)
			}
		})
	}
}

func TestParseLine_Malformed(t *testing.T) {
	lines := []string{
		"52 -x 104",
		"RAW_Data: 1.5",
		"RSSI: loud",
		"Frequency: fast",
		"99999999999",
	}

	for _, line := range lines {
		_, _, err := ParseLine(line)
		if !errors.Is(err, ErrMalformedLine) {
			t.Errorf("%q: expected ErrMalformedLine, got %v", line, err)
		}
	}
}

func TestFormatEdges(t *testing.T) {
	edges := []Edge{{true, 52}, {false, 104}, {true, 1}}
	if got := FormatEdges(edges); got != "52 -104 1" {
		t.Errorf("expected %q, got %q", "52 -104 1", got)
	}

	ev, ok, err := ParseLine(FormatEdges(edges))
	if err != nil || !ok || !reflect.DeepEqual(ev.Edges, edges) {
		t.Errorf("formatted edges did not parse back: %+v %v %v", ev, ok, err)
	}
}

func TestFormatTune(t *testing.T) {
	if got := FormatTune(433920000); got != "FREQ 433920000\n" {
		t.Errorf("unexpected tune request %q", got)
	}
}

// ============================================================
// Reader Tests
// ============================================================

func TestReader_Stream(t *testing.T) {
	input := strings.Join([]string{
		"Frequency: 315000000",
		"",
		"RAW_Data: 52 -52",
		"RSSI: -70",
		"Bogus: 1",
		"-104",
	}, "\n")

	r := NewReader(strings.NewReader(input))
	kinds := []Kind{KindFrequency, KindEdges, KindRSSI, KindEdges}

	for i, want := range kinds {
		ev, err := r.Next()
		if err != nil {
			t.Fatalf("event %d: unexpected error: %v", i, err)
		}
		if ev.Kind != want {
			t.Errorf("event %d: expected %s, got %s", i, want, ev.Kind)
		}
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestReader_ContinuesAfterMalformed(t *testing.T) {
	r := NewReader(strings.NewReader("52 -52\nnot edges\n-52 52\n"))

	if _, err := r.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := r.Next()
	if !errors.Is(err, ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line: %v", err)
	}

	ev, err := r.Next()
	if err != nil || len(ev.Edges) != 2 || ev.Edges[0].Level {
		t.Errorf("reader did not resume: %+v %v", ev, err)
	}
}

type feedRecorder struct {
	edges []Edge
}

func (f *feedRecorder) Feed(level bool, duration uint32) {
	f.edges = append(f.edges, Edge{level, duration})
}

func TestFeedAll(t *testing.T) {
	edges := []Edge{{true, 1}, {false, 2}}
	var rec feedRecorder
	FeedAll(&rec, edges)

	if !reflect.DeepEqual(rec.edges, edges) {
		t.Errorf("expected %v, got %v", edges, rec.edges)
	}
}
