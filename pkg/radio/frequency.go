// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package radio

import "fmt"

// Band is an inclusive receivable frequency range in Hz
type Band struct {
	Min uint32
	Max uint32
}

// Bands the sub-GHz frontend can tune
var Bands = []Band{
	{Min: 300000000, Max: 348000000},
	{Min: 387000000, Max: 464000000},
	{Min: 779000000, Max: 928000000},
}

// Common TPMS frequencies
const (
	Freq315 uint32 = 315000000
	Freq433 uint32 = 433920000
)

// ValidFrequency reports whether hz falls inside a receivable band
func ValidFrequency(hz uint32) bool {
	for _, b := range Bands {
		if hz >= b.Min && hz <= b.Max {
			return true
		}
	}
	return false
}

// MustValidFrequency panics when hz cannot be received
func MustValidFrequency(hz uint32) {
	if !ValidFrequency(hz) {
		panic(fmt.Sprintf("radio: incorrect RX frequency %d", hz))
	}
}
