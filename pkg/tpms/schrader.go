// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

// Schrader GG4 (aftermarket) frame: 8 bytes, Manchester at 120 µs after a
// 0x5556 sync word.
//
//	0    flags
//	1-4  sensor ID
//	5    pressure, 2.5 kPa per step
//	6    temperature + 50
//	7    CRC-8 (0x07, init 0xF3) of bytes 0-6
var ProtocolSchraderGG4 = &Protocol{
	Name:      NameSchraderGG4,
	Flags:     Flag433 | FlagAM | FlagDecodable,
	Timing:    timingSchrader,
	FrameBits: 64,
	layout: frameLayout{
		sync:      0x5556,
		syncBits:  16,
		syncAfter: 16,
		ceiling:   32,
	},
	checksum:   checkSchrader,
	analyze:    analyzeSchrader,
	display:    displayBar,
	newDecoder: newManchesterDecoder,
}

// NewSchraderGG4Decoder creates a Schrader GG4 decoder
func NewSchraderGG4Decoder() Decoder {
	return ProtocolSchraderGG4.NewDecoder()
}

func checkSchrader(frame []byte) bool {
	return CalculateCRC8(frame[:7], 0x07, 0xF3) == frame[7]
}

func analyzeSchrader(data []byte) (*Reading, error) {
	return &Reading{
		ID:          beUint32(data[1:5]),
		Pressure:    float64(data[5]) * 2.5 * kPaToBar,
		Temperature: float64(data[6]) - 50,
		Status:      SchraderStatus{Raw: data[0]},
	}, nil
}
