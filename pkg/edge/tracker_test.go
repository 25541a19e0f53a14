// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package edge

import (
	"math"
	"testing"
	"time"

	"github.com/Thermoquad/tirestat/pkg/radio"
)

func sampleSubPreset() radio.Preset {
	return radio.Preset{Name: radio.PresetAM650, Frequency: radio.Freq433}
}

func TestLevelTracker(t *testing.T) {
	var tr LevelTracker

	if _, ok := tr.Observe(true, 10*time.Microsecond); ok {
		t.Fatal("first transition should only seed")
	}

	// Falling edge closes a 52 µs high
	e, ok := tr.Observe(false, 62*time.Microsecond)
	if !ok || e != (Edge{true, 52}) {
		t.Errorf("expected high 52, got %+v ok=%v", e, ok)
	}

	// Rising edge closes a 104 µs low
	e, ok = tr.Observe(true, 166*time.Microsecond)
	if !ok || e != (Edge{false, 104}) {
		t.Errorf("expected low 104, got %+v ok=%v", e, ok)
	}
}

func TestLevelTracker_Clamps(t *testing.T) {
	var tr LevelTracker
	tr.Observe(true, time.Hour*2)

	// Timestamps going backwards give a zero duration
	if e, _ := tr.Observe(false, time.Hour); e.Duration != 0 {
		t.Errorf("expected 0, got %d", e.Duration)
	}

	// Gaps beyond uint32 µs saturate
	if e, _ := tr.Observe(true, time.Hour*3); e.Duration != math.MaxUint32 {
		t.Errorf("expected saturation, got %d", e.Duration)
	}

	tr.Reset()
	if _, ok := tr.Observe(false, 0); ok {
		t.Error("Reset should require a new seed")
	}
}

func TestEdge_Signed(t *testing.T) {
	if (Edge{true, 5}).Signed() != 5 || (Edge{false, 5}).Signed() != -5 {
		t.Error("sign mismatch")
	}
}

func TestKind_String(t *testing.T) {
	if KindRSSI.String() != "rssi" || Kind(9).String() != "kind(9)" {
		t.Error("unexpected kind names")
	}
}
