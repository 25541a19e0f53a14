// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import (
	"fmt"
	"strings"
)

// FormatReading formats a reading into a human-readable log entry
func FormatReading(r *Reading) string {
	timestamp := r.Received.Format("15:04:05.000")

	result := fmt.Sprintf("[%s] %s id=%08X bits=%d\n", timestamp, r.Protocol, r.ID, r.BitCount)
	result += fmt.Sprintf("  Pressure: %.3f bar (%.1f kPa, %.1f PSI)\n", r.Pressure, r.PressureKPa(), r.PressurePSI())
	result += fmt.Sprintf("  Temperature: %s\n", FormatTemperature(r))
	if r.Status != nil {
		result += fmt.Sprintf("  Status: %s (0x%02X) battery=%s\n", r.Status.Mode(), r.Status.Byte(), r.Status.Battery())
	}
	result += fmt.Sprintf("  Data: %s\n", FormatHex(r.Data))

	return result
}

// FormatTemperature returns the temperature in °C or N/A
func FormatTemperature(r *Reading) string {
	if !r.TemperatureValid() {
		return "N/A"
	}
	return fmt.Sprintf("%.0f°C", r.Temperature)
}

// FormatHex renders bytes as space separated hex pairs
func FormatHex(data []byte) string {
	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}

// FormatFlags renders protocol flags, e.g. "315/433 FM"
func FormatFlags(f Flag) string {
	var bands []string
	if f.Has(Flag315) {
		bands = append(bands, "315")
	}
	if f.Has(Flag433) {
		bands = append(bands, "433")
	}
	if f.Has(Flag868) {
		bands = append(bands, "868")
	}

	var mods []string
	if f.Has(FlagAM) {
		mods = append(mods, "AM")
	}
	if f.Has(FlagFM) {
		mods = append(mods, "FM")
	}

	return strings.Join(bands, "/") + " " + strings.Join(mods, "/")
}

// FormatProtocol describes a registry entry on one line
func FormatProtocol(p *Protocol) string {
	encode := "no"
	if p.CanEncode() {
		encode = "yes"
	}
	return fmt.Sprintf("%-14s %-10s te=%d/%d±%dµs frame=%d bits encode=%s",
		p.Name, FormatFlags(p.Flags), p.Timing.Short, p.Timing.Long, p.Timing.Delta, p.FrameBits, encode)
}

func sensorKey(protocol string, id uint32) string {
	return fmt.Sprintf("%s/%08X", protocol, id)
}
