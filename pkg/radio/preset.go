// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package radio

import (
	"fmt"
	"strconv"
	"strings"
)

// Short preset names
const (
	PresetAM270  = "AM270"
	PresetAM650  = "AM650"
	PresetFM238  = "FM238"
	PresetFM476  = "FM476"
	PresetCustom = "CUSTOM"
)

// driverPresets maps radio driver preset names to short names
var driverPresets = map[string]string{
	"FuriHalSubGhzPresetOok270Async":     PresetAM270,
	"FuriHalSubGhzPresetOok650Async":     PresetAM650,
	"FuriHalSubGhzPreset2FSKDev238Async": PresetFM238,
	"FuriHalSubGhzPreset2FSKDev476Async": PresetFM476,
	"FuriHalSubGhzPresetCustom":          PresetCustom,
}

// Preset is a receive configuration: frequency and modulation preset
type Preset struct {
	Name      string
	Frequency uint32 // Hz
	Data      []byte // register values for CUSTOM presets
}

// PresetFromDriverName converts a driver preset name to its short name
func PresetFromDriverName(driver string) (string, error) {
	name, ok := driverPresets[driver]
	if !ok {
		return "", fmt.Errorf("unknown preset %q", driver)
	}
	return name, nil
}

// DriverName returns the driver preset name for a short name
func DriverName(short string) (string, error) {
	for driver, name := range driverPresets {
		if name == short {
			return driver, nil
		}
	}
	return "", fmt.Errorf("unknown preset %q", short)
}

// IsPreset reports whether name is a known short preset name
func IsPreset(name string) bool {
	switch name {
	case PresetAM270, PresetAM650, PresetFM238, PresetFM476, PresetCustom:
		return true
	}
	return false
}

// Modulation returns the first two characters of the preset name (AM, FM, CU)
func (p Preset) Modulation() string {
	if len(p.Name) < 2 {
		return p.Name
	}
	return p.Name[:2]
}

// FrequencyString formats the preset frequency, e.g. "433.92"
func (p Preset) FrequencyString() string {
	return FormatFrequency(p.Frequency)
}

// String returns "433.92 AM650"
func (p Preset) String() string {
	return p.FrequencyString() + " " + p.Name
}

// FormatFrequency formats Hz as MHz with two decimals and a zero padded
// integer part, e.g. 315000000 -> "315.00"
func FormatFrequency(hz uint32) string {
	return fmt.Sprintf("%03d.%02d", hz/1000000%1000, hz/10000%100)
}

// ParseFrequency accepts Hz ("433920000") or MHz ("433.92")
func ParseFrequency(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ".") {
		mhz, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
		}
		return uint32(mhz*1000000 + 0.5), nil
	}

	hz, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid frequency %q: %w", s, err)
	}
	return uint32(hz), nil
}
