// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import "testing"

// ============================================================
// CRC Tests
// ============================================================

func TestCalculateCRC8_KnownValues(t *testing.T) {
	check := []byte("123456789")

	tests := []struct {
		name     string
		poly     byte
		init     byte
		expected byte
	}{
		{"poly 0x07", 0x07, 0x00, 0xF4},
		{"poly 0x31", 0x31, 0x00, 0xA2},
		{"Toyota", 0x07, 0x80, 0xC0},
		{"Schrader", 0x07, 0xF3, 0xD9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateCRC8(check, tt.poly, tt.init)
			if got != tt.expected {
				t.Errorf("expected 0x%02X, got 0x%02X", tt.expected, got)
			}
		})
	}
}

func TestCalculateCRC8_Empty(t *testing.T) {
	if got := CalculateCRC8(nil, 0x07, 0x5A); got != 0x5A {
		t.Errorf("empty input should return init, got 0x%02X", got)
	}
}

func TestCalculateCRC8_AppendedCRCIsZero(t *testing.T) {
	data := []byte{0x5A, 0x11, 0x22, 0x33, 0x44, 0x02, 0xD0, 0x41}
	crc := CalculateCRC8(data, 0x07, 0x00)

	if got := CalculateCRC8(append(data, crc), 0x07, 0x00); got != 0 {
		t.Errorf("residue should be zero, got 0x%02X", got)
	}
}

func TestCalculateSum8(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected byte
	}{
		{"empty", nil, 0x00},
		{"no overflow", []byte{0x01, 0x02, 0x03}, 0x06},
		{"wraps", []byte{0xFF, 0x02}, 0x01},
		{"ford sample", sampleFord[:7], 0x0C},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateSum8(tt.data); got != tt.expected {
				t.Errorf("expected 0x%02X, got 0x%02X", tt.expected, got)
			}
		})
	}
}
