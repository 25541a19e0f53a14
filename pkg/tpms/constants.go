// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

// Protocol names
const (
	NameSchraderGG4 = "Schrader GG4"
	NameToyota      = "Toyota TPMS"
	NameFord        = "Ford TPMS"
	NameGM          = "GM TPMS"
	NameNissan      = "Nissan TPMS"
	NameHyundai     = "Hyundai TPMS"
)

// Flag describes the bands and modulations a protocol is heard on
type Flag uint32

const (
	Flag315 Flag = 1 << iota
	Flag433
	Flag868
	FlagAM
	FlagFM
	FlagDecodable
)

// Has reports whether all bits of other are set
func (f Flag) Has(other Flag) bool {
	return f&other == other
}

// Timing holds the nominal edge durations of a protocol in microseconds
type Timing struct {
	Short uint32
	Long  uint32
	Delta uint32
}

// IsShort reports whether d is within Delta of the short duration
func (t Timing) IsShort(d uint32) bool {
	return durationDiff(d, t.Short) < t.Delta
}

// IsLong reports whether d is within Delta of the long duration
func (t Timing) IsLong(d uint32) bool {
	return durationDiff(d, t.Long) < t.Delta
}

func durationDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// Decoder framing steps
const (
	stepReset = iota
	stepSync
	stepData
)

// Unit conversions
const (
	psiToBar = 0.0689476
	kPaToBar = 0.01
)

// TemperatureInvalid marks a reading whose frame flags the temperature as unavailable
const TemperatureInvalid = -1000.0

// Per-protocol timing
var (
	timingSchrader = Timing{Short: 120, Long: 120, Delta: 55}
	timingToyota   = Timing{Short: 52, Long: 52, Delta: 15}
	timingFord     = Timing{Short: 52, Long: 52, Delta: 15}
	timingGM       = Timing{Short: 100, Long: 100, Delta: 20}
	timingNissan   = Timing{Short: 52, Long: 104, Delta: 15}
	timingHyundai  = Timing{Short: 50, Long: 50, Delta: 15}
)
