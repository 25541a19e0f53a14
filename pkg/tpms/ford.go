// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import "fmt"

// Ford frame: 8 bytes, Manchester at 52 µs after a 0xAAA9 sync word.
//
//	0-3  sensor ID
//	4    pressure, low 8 bits (0.25 PSI)
//	5    temperature + 56, bit 7 set when invalid
//	6    flags: 0x20 pressure bit 8, 0x44 moving, 0x08 learn
//	7    sum of bytes 0-6
var ProtocolFord = &Protocol{
	Name:      NameFord,
	Flags:     Flag315 | Flag433 | FlagFM | FlagDecodable,
	Timing:    timingFord,
	FrameBits: 64,
	layout: frameLayout{
		sync:      0xAAA9,
		syncBits:  16,
		syncAfter: 16,
		ceiling:   32,
	},
	checksum:   checkFord,
	analyze:    analyzeFord,
	display:    displayFord,
	newDecoder: newManchesterDecoder,
}

// NewFordDecoder creates a Ford decoder
func NewFordDecoder() Decoder {
	return ProtocolFord.NewDecoder()
}

func checkFord(frame []byte) bool {
	return CalculateSum8(frame[:7]) == frame[7]
}

func analyzeFord(data []byte) (*Reading, error) {
	status := FordStatus{Flags: data[6]}

	raw := uint16(data[4])
	if status.PressureMSB() {
		raw |= 0x100
	}

	temperature := TemperatureInvalid
	if data[5]&0x80 == 0 {
		temperature = float64(data[5]&0x7F) - 56
	}

	return &Reading{
		ID:          beUint32(data[0:4]),
		Pressure:    float64(raw) * 0.25 * psiToBar,
		Temperature: temperature,
		Status:      status,
	}, nil
}

func displayFord(name string, r *Reading) string {
	temp := "Temp:N/A"
	if r.TemperatureValid() {
		temp = fmt.Sprintf("Temp:%.0f C", r.Temperature)
	}
	mode := "Rest"
	if r.Status != nil {
		mode = r.Status.Mode()
	}
	return fmt.Sprintf("%s\nId:0x%08X\nMode:%s\nPressure:%.1f PSI\n%s",
		name, r.ID, mode, r.PressurePSI(), temp)
}
