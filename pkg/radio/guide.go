// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package radio

import (
	"fmt"
	"strings"
)

// GuideEntry is the recommended receive setting for a vehicle family
type GuideEntry struct {
	Vendor   string
	Protocol string
	Preset   Preset
}

// Guide lists recommended settings per vehicle family
var Guide = []GuideEntry{
	{Vendor: "Ford/Lincoln/Mercury", Protocol: "Ford TPMS", Preset: Preset{Name: PresetFM476, Frequency: Freq315}},
	{Vendor: "GM/Chevrolet/Cadillac", Protocol: "GM TPMS", Preset: Preset{Name: PresetFM238, Frequency: Freq315}},
	{Vendor: "Toyota/Lexus/Scion", Protocol: "Toyota TPMS", Preset: Preset{Name: PresetFM476, Frequency: Freq315}},
	{Vendor: "Nissan/Infiniti", Protocol: "Nissan TPMS", Preset: Preset{Name: PresetAM650, Frequency: Freq433}},
	{Vendor: "Hyundai/Kia/Genesis", Protocol: "Hyundai TPMS", Preset: Preset{Name: PresetFM238, Frequency: Freq433}},
	{Vendor: "Schrader (Aftermarket)", Protocol: "Schrader GG4", Preset: Preset{Name: PresetAM650, Frequency: Freq433}},
}

// GuideFor returns the guide entry for a protocol name
func GuideFor(protocol string) (GuideEntry, bool) {
	for _, e := range Guide {
		if strings.EqualFold(e.Protocol, protocol) {
			return e, true
		}
	}
	return GuideEntry{}, false
}

// FormatGuide renders the configuration guide
func FormatGuide() string {
	var b strings.Builder

	b.WriteString("VEHICLE SETTINGS:\n\n")
	for _, e := range Guide {
		fmt.Fprintf(&b, "  %-24s %s MHz + %s\n", e.Vendor+":", e.Preset.FrequencyString(), e.Preset.Name)
	}

	b.WriteString("\nOPERATING MODES:\n\n")
	b.WriteString("  Fixed mode (recommended):\n")
	b.WriteString("    Set your vehicle's exact frequency and preset, hopping off.\n")
	b.WriteString("  Hopping mode:\n")
	b.WriteString("    Scans all frequencies but misses most transmissions.\n")
	b.WriteString("    Good for discovery.\n")

	b.WriteString("\nWHY SIGNALS GET MISSED:\n\n")
	b.WriteString("  TPMS bursts last 10-50 ms and sensors transmit at random.\n")
	b.WriteString("  A hopper listening ~100 ms per frequency hears each one ~20% of the time.\n")

	return b.String()
}
