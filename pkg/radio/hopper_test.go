// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package radio

import "testing"

// ============================================================
// Hopper Tests
// ============================================================

var testHop = []uint32{Freq315, Freq433, 868350000}

func TestNewHopper_Rejects(t *testing.T) {
	if _, err := NewHopper(nil); err == nil {
		t.Error("expected error for empty list")
	}
	if _, err := NewHopper([]uint32{Freq315, 100000000}); err == nil {
		t.Error("expected error for unreceivable frequency")
	}
}

func TestHopper_StoppedDoesNothing(t *testing.T) {
	h, err := NewHopper(testHop)
	if err != nil {
		t.Fatalf("NewHopper failed: %v", err)
	}

	if h.State() != HopperOff {
		t.Fatalf("expected off, got %s", h.State())
	}
	if next := h.Update(-120); next != 0 {
		t.Errorf("stopped hopper should not tune, got %d", next)
	}
	if h.Frequency() != Freq315 {
		t.Errorf("expected first frequency, got %d", h.Frequency())
	}
}

func TestHopper_Cycles(t *testing.T) {
	h, _ := NewHopper(testHop)
	h.Start()

	expected := []uint32{Freq433, 868350000, Freq315, Freq433}
	for i, want := range expected {
		if got := h.Update(-120); got != want {
			t.Errorf("tick %d: expected %d, got %d", i, want, got)
		}
		if h.Frequency() != want {
			t.Errorf("tick %d: Frequency() = %d", i, h.Frequency())
		}
	}
}

func TestHopper_HoldsOnSignal(t *testing.T) {
	h, _ := NewHopper(testHop)
	h.Start()

	if next := h.Update(-60); next != 0 {
		t.Fatalf("signal should hold the frequency, got %d", next)
	}
	if h.State() != HopperRSSITimeout {
		t.Fatalf("expected holding, got %s", h.State())
	}

	// Held for the full timeout even once the signal is gone
	for i := 0; i < RSSITimeoutTicks; i++ {
		if next := h.Update(-120); next != 0 {
			t.Fatalf("tick %d: hopped during hold to %d", i, next)
		}
	}

	if next := h.Update(-120); next != Freq433 {
		t.Errorf("expected hop after timeout, got %d", next)
	}
	if h.State() != HopperRunning {
		t.Errorf("expected running, got %s", h.State())
	}
}

func TestHopper_ThresholdIsExclusive(t *testing.T) {
	h, _ := NewHopper(testHop)
	h.Start()

	if next := h.Update(RSSIThreshold); next == 0 {
		t.Error("RSSI equal to the threshold should not hold")
	}
}

func TestHopper_PauseResume(t *testing.T) {
	h, _ := NewHopper(testHop)

	h.Pause()
	if h.State() != HopperOff {
		t.Errorf("pausing a stopped hopper should keep it off, got %s", h.State())
	}

	h.Start()
	h.Update(-120)
	h.Pause()
	if h.State() != HopperPause {
		t.Fatalf("expected paused, got %s", h.State())
	}
	if next := h.Update(-120); next != 0 {
		t.Errorf("paused hopper tuned to %d", next)
	}

	h.Start()
	if next := h.Update(-120); next != 868350000 {
		t.Errorf("resume should continue from position, got %d", next)
	}

	h.Stop()
	if h.State() != HopperOff {
		t.Errorf("expected off, got %s", h.State())
	}
}

func TestHopperState_String(t *testing.T) {
	states := map[HopperState]string{
		HopperOff:         "off",
		HopperRunning:     "running",
		HopperPause:       "paused",
		HopperRSSITimeout: "holding",
		HopperState(99):   "unknown",
	}
	for s, want := range states {
		if s.String() != want {
			t.Errorf("expected %s, got %s", want, s.String())
		}
	}
}
