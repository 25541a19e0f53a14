// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

// Hyundai/Kia frame: 10 bytes, Manchester at 50 µs behind a 28-bit
// preamble and sync (0x5555556), re-inserted as bytes 0-2.
//
//	3-6  sensor ID
//	7    status: 0x80 fast, 0x40 battery low, 0x20 learn
//	8    pressure + 40 (kPa)
//	9    CRC-8 (0x31) of bytes 0-8, read as temperature + 50
var ProtocolHyundai = &Protocol{
	Name:      NameHyundai,
	Flags:     Flag433 | FlagFM | FlagDecodable,
	Timing:    timingHyundai,
	FrameBits: 80,
	layout: frameLayout{
		sync:      0x5555556,
		syncBits:  28,
		syncAfter: 28,
		ceiling:   40,
		prefix:    []byte{0x55, 0x55, 0x56},
	},
	checksum:   checkHyundai,
	analyze:    analyzeHyundai,
	display:    displayKPa,
	newDecoder: newManchesterDecoder,
}

// NewHyundaiDecoder creates a Hyundai decoder
func NewHyundaiDecoder() Decoder {
	return ProtocolHyundai.NewDecoder()
}

func checkHyundai(frame []byte) bool {
	return CalculateCRC8(frame[:9], 0x31, 0x00) == frame[9]
}

func analyzeHyundai(data []byte) (*Reading, error) {
	kpa := float64(data[8]) - 40
	if kpa < 0 {
		kpa = 0
	}

	return &Reading{
		ID:          beUint32(data[3:7]),
		Pressure:    kpa * kPaToBar,
		Temperature: float64(data[9]) - 50,
		Status:      HyundaiStatus{Raw: data[7]},
	}, nil
}
