// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import (
	"strings"
	"testing"
	"time"
)

// ============================================================
// Formatter Tests
// ============================================================

func TestFormatHex(t *testing.T) {
	if got := FormatHex([]byte{0x0A, 0xFF, 0x00}); got != "0A FF 00" {
		t.Errorf("expected %q, got %q", "0A FF 00", got)
	}
	if got := FormatHex(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestFormatFlags(t *testing.T) {
	tests := []struct {
		flags    Flag
		expected string
	}{
		{ProtocolFord.Flags, "315/433 FM"},
		{ProtocolNissan.Flags, "433 AM"},
		{ProtocolToyota.Flags, "315 FM"},
		{Flag868 | FlagAM | FlagFM, "868 AM/FM"},
	}

	for _, tt := range tests {
		if got := FormatFlags(tt.flags); got != tt.expected {
			t.Errorf("expected %q, got %q", tt.expected, got)
		}
	}
}

func TestFormatTemperature(t *testing.T) {
	if got := FormatTemperature(&Reading{Temperature: 21}); got != "21°C" {
		t.Errorf("expected 21°C, got %q", got)
	}
	if got := FormatTemperature(&Reading{Temperature: TemperatureInvalid}); got != "N/A" {
		t.Errorf("expected N/A, got %q", got)
	}
}

func TestFormatReading(t *testing.T) {
	r, err := ProtocolGM.Parse(sampleGM)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	r.Received = time.Date(2025, 1, 1, 12, 30, 45, 0, time.UTC)

	out := FormatReading(r)
	for _, want := range []string{
		"[12:30:45.000] GM TPMS id=DEADBEEF bits=72",
		"Pressure: 1.800 bar (180.0 kPa, 26.1 PSI)",
		"Temperature: 67°C",
		"Status: Battery Low (0x40) battery=LOW",
		"Data: 55 5D DE AD BE EF 40 E6 6B",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatProtocol(t *testing.T) {
	got := FormatProtocol(ProtocolNissan)
	for _, want := range []string{"Nissan TPMS", "433 AM", "te=52/104±15µs", "frame=72 bits", "encode=no"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
}

func TestReading_SensorKey(t *testing.T) {
	r := &Reading{Protocol: NameFord, ID: 0xAB}
	if got := r.SensorKey(); got != "Ford TPMS/000000AB" {
		t.Errorf("unexpected key %q", got)
	}
}
