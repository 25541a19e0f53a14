// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import "fmt"

// GM frame: 9 bytes, Manchester at 100 µs. The 0x555D preamble and sync
// word are consumed during sync and re-inserted as bytes 0-1.
//
//	2-5  sensor ID
//	6    status: 0x80 fast transmit, 0x40 battery low
//	7    pressure + 50 (kPa)
//	8    CRC-8 (0x31) of bytes 0-7, read as temperature + 40
var ProtocolGM = &Protocol{
	Name:      NameGM,
	Flags:     Flag315 | FlagFM | FlagDecodable,
	Timing:    timingGM,
	FrameBits: 72,
	layout: frameLayout{
		sync:      0x555D,
		syncBits:  16,
		syncAfter: 16,
		ceiling:   32,
		prefix:    []byte{0x55, 0x5D},
	},
	checksum:   checkGM,
	analyze:    analyzeGM,
	display:    displayKPa,
	newDecoder: newManchesterDecoder,
}

// NewGMDecoder creates a GM decoder
func NewGMDecoder() Decoder {
	return ProtocolGM.NewDecoder()
}

func checkGM(frame []byte) bool {
	return CalculateCRC8(frame[:8], 0x31, 0x00) == frame[8]
}

func analyzeGM(data []byte) (*Reading, error) {
	return &Reading{
		ID:          beUint32(data[2:6]),
		Pressure:    (float64(data[7]) - 50) * kPaToBar,
		Temperature: float64(data[8]) - 40,
		Status:      GMStatus{Raw: data[6]},
	}, nil
}

// displayKPa is shared by the protocols that report kPa and a battery flag
func displayKPa(name string, r *Reading) string {
	mode := "Normal"
	if r.Status != nil {
		mode = r.Status.Mode()
	}
	return fmt.Sprintf("%s\nId:0x%08X\nMode:%s\nPressure:%.1f kPa\nTemp:%.0f C",
		name, r.ID, mode, r.PressureKPa(), r.Temperature)
}
