// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import "fmt"

// Toyota frame: 9 bytes, differential Manchester at 52 µs after a 12-bit
// 0xA9E sync. Pressure is sent twice: once bit-shifted across bytes 4-5 and
// once inverted in byte 7.
var ProtocolToyota = &Protocol{
	Name:      NameToyota,
	Flags:     Flag315 | FlagFM | FlagDecodable,
	Timing:    timingToyota,
	FrameBits: 72,
	layout: frameLayout{
		sync:      0xA9E,
		syncBits:  12,
		syncAfter: 12,
		ceiling:   24,
	},
	checksum:   checkToyota,
	analyze:    analyzeToyota,
	display:    displayBar,
	newDecoder: newDiffManchesterDecoder,
}

// NewToyotaDecoder creates a Toyota decoder
func NewToyotaDecoder() Decoder {
	return ProtocolToyota.NewDecoder()
}

func checkToyota(frame []byte) bool {
	return CalculateCRC8(frame[:8], 0x07, 0x80) == frame[8]
}

func analyzeToyota(data []byte) (*Reading, error) {
	status := (data[4] & 0x80) | (data[6] & 0x7F)
	pressure1 := (data[4]&0x7F)<<1 | data[5]>>7
	temp := (data[5]&0x7F)<<1 | data[6]>>7
	pressure2 := data[7] ^ 0xFF

	if pressure1 != pressure2 {
		return nil, fmt.Errorf("0x%02X vs 0x%02X: %w", pressure1, pressure2, ErrPressureMismatch)
	}

	return &Reading{
		ID:          beUint32(data[0:4]),
		Pressure:    (float64(pressure1)*0.25 - 7) * psiToBar,
		Temperature: float64(temp) - 40,
		Status:      ToyotaStatus{Raw: status},
	}, nil
}

// displayBar is used by protocols shown with a battery state and bar
func displayBar(name string, r *Reading) string {
	return fmt.Sprintf("%s\nId:0x%08X\nBat:%s\nTemp:%.1f C Bar:%.2f",
		name, r.ID, r.Battery(), r.Temperature, r.Pressure)
}
