// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package radio

import (
	"strings"
	"testing"
)

func TestGuideFor(t *testing.T) {
	e, ok := GuideFor("ford tpms")
	if !ok {
		t.Fatal("Ford should have a guide entry")
	}
	if e.Preset.Name != PresetFM476 || e.Preset.Frequency != Freq315 {
		t.Errorf("unexpected Ford preset %s", e.Preset)
	}

	if _, ok := GuideFor("Subaru"); ok {
		t.Error("unexpected entry for unknown protocol")
	}
}

func TestGuide_FrequenciesValid(t *testing.T) {
	for _, e := range Guide {
		if !ValidFrequency(e.Preset.Frequency) {
			t.Errorf("%s: frequency %d not receivable", e.Vendor, e.Preset.Frequency)
		}
		if !IsPreset(e.Preset.Name) {
			t.Errorf("%s: unknown preset %s", e.Vendor, e.Preset.Name)
		}
	}
}

func TestFormatGuide(t *testing.T) {
	out := FormatGuide()
	for _, want := range []string{
		"VEHICLE SETTINGS:",
		"Ford/Lincoln/Mercury:",
		"315.00 MHz + FM476",
		"433.92 MHz + AM650",
		"Hopping mode:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("guide missing %q", want)
		}
	}
}
