// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import (
	"bytes"
	"errors"
	"testing"
)

// ============================================================
// Frame Round Trip Tests
// ============================================================

func TestDecoders_RoundTrip(t *testing.T) {
	tests := []struct {
		protocol    *Protocol
		frame       []byte
		id          uint32
		pressure    float64
		temperature float64
		battery     BatteryState
		mode        string
	}{
		{ProtocolFord, sampleFord, 0x12345678, 25.0 * 0.0689476, 24, BatteryUnknown, "Moving"},
		{ProtocolGM, sampleGM, 0xDEADBEEF, 1.8, 0x6B - 40, BatteryLow, "Battery Low"},
		{ProtocolHyundai, sampleHyundai, 0x0A1B2C3D, 1.8, 0xCA - 50, BatteryOK, "Normal"},
		{ProtocolNissan, sampleNissan, 0x11223344, 1.8, 25, BatteryLow, "Battery Low"},
		{ProtocolToyota, sampleToyota, 0xABCDEF01, 31.0 * 0.0689476, 25, BatteryLow, "Battery Low"},
		{ProtocolSchraderGG4, sampleSchrader, 0x87654321, 2.0, 25, BatteryUnknown, "Normal"},
	}

	for _, tt := range tests {
		t.Run(tt.protocol.Name, func(t *testing.T) {
			d := tt.protocol.NewDecoder()
			readings := collect(d)

			feedEdges(d, encodeFrame(tt.protocol, tt.frame))

			if len(*readings) != 1 {
				t.Fatalf("expected 1 reading, got %d", len(*readings))
			}
			r := (*readings)[0]

			if r.Protocol != tt.protocol.Name {
				t.Errorf("protocol: expected %q, got %q", tt.protocol.Name, r.Protocol)
			}
			if r.ID != tt.id {
				t.Errorf("id: expected 0x%08X, got 0x%08X", tt.id, r.ID)
			}
			if !almostEqual(r.Pressure, tt.pressure) {
				t.Errorf("pressure: expected %.4f bar, got %.4f", tt.pressure, r.Pressure)
			}
			if !almostEqual(r.Temperature, tt.temperature) {
				t.Errorf("temperature: expected %.1f, got %.1f", tt.temperature, r.Temperature)
			}
			if r.Battery() != tt.battery {
				t.Errorf("battery: expected %v, got %v", tt.battery, r.Battery())
			}
			if r.Status.Mode() != tt.mode {
				t.Errorf("mode: expected %q, got %q", tt.mode, r.Status.Mode())
			}
			if r.BitCount != tt.protocol.FrameBits {
				t.Errorf("bit count: expected %d, got %d", tt.protocol.FrameBits, r.BitCount)
			}
			if !bytes.Equal(r.Data, tt.frame) {
				t.Errorf("data: expected % X, got % X", tt.frame, r.Data)
			}
			if d.Reading() != r {
				t.Error("Reading() should return the emitted reading")
			}
		})
	}
}

func TestFordDecoder_PressureMSBAndInvalidTemperature(t *testing.T) {
	frame := []byte{0x00, 0x00, 0x10, 0x01, 0x10, 0x80, 0x28, 0x00}
	frame[7] = CalculateSum8(frame[:7])

	d := NewFordDecoder()
	readings := collect(d)
	feedEdges(d, encodeFrame(ProtocolFord, frame))

	if len(*readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(*readings))
	}
	r := (*readings)[0]

	// 0x110 * 0.25 = 68 PSI
	if !almostEqual(r.PressurePSI(), 68.0) {
		t.Errorf("expected 68.0 PSI, got %.2f", r.PressurePSI())
	}
	if r.TemperatureValid() {
		t.Errorf("temperature should be invalid, got %.1f", r.Temperature)
	}
	if r.Temperature != TemperatureInvalid {
		t.Errorf("expected sentinel %.0f, got %.1f", TemperatureInvalid, r.Temperature)
	}

	status, ok := r.Status.(FordStatus)
	if !ok {
		t.Fatalf("expected FordStatus, got %T", r.Status)
	}
	if status.Flags != 0x28 {
		t.Errorf("flags: expected 0x28, got 0x%02X", status.Flags)
	}
	if status.Mode() != "Learn" {
		t.Errorf("mode: expected Learn, got %s", status.Mode())
	}
}

func TestHyundaiDecoder_PressureClamped(t *testing.T) {
	frame := append([]byte(nil), sampleHyundai...)
	frame[8] = 0x10 // 16 - 40 kPa
	frame[9] = CalculateCRC8(frame[:9], 0x31, 0x00)

	r, err := ProtocolHyundai.Parse(frame)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if r.Pressure != 0 {
		t.Errorf("negative pressure should clamp to 0, got %.3f", r.Pressure)
	}
}

func TestToyotaDecoder_PressureMismatchRejected(t *testing.T) {
	frame := append([]byte(nil), sampleToyota...)
	frame[7] ^= 0x01
	frame[8] = CalculateCRC8(frame[:8], 0x07, 0x80)

	if err := ProtocolToyota.Validate(frame); err != nil {
		t.Fatalf("CRC should pass: %v", err)
	}

	d := NewToyotaDecoder()
	readings := collect(d)
	feedEdges(d, encodeFrame(ProtocolToyota, frame))

	if len(*readings) != 0 {
		t.Fatalf("expected no reading on pressure mismatch, got %d", len(*readings))
	}

	_, err := ProtocolToyota.Parse(frame)
	if !errors.Is(err, ErrPressureMismatch) {
		t.Errorf("expected ErrPressureMismatch, got %v", err)
	}
}

func TestNissanDecoder_TrailingGap(t *testing.T) {
	tests := []struct {
		name string
		gap  uint32
	}{
		{"short", 52},
		{"long", 104},
		{"between windows", 200},
		{"idle", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := encodeFrame(ProtocolNissan, sampleNissan)
			edges[len(edges)-1].duration = tt.gap

			d := NewNissanDecoder()
			readings := collect(d)
			feedEdges(d, edges)

			if len(*readings) != 1 {
				t.Fatalf("expected 1 reading, got %d", len(*readings))
			}
			if !bytes.Equal((*readings)[0].Data, sampleNissan) {
				t.Errorf("data: expected % X, got % X", sampleNissan, (*readings)[0].Data)
			}
		})
	}
}

// ============================================================
// Framing Property Tests
// ============================================================

func TestDecoders_ResetIsIdempotent(t *testing.T) {
	for p, frame := range sampleFrames() {
		t.Run(p.Name, func(t *testing.T) {
			d := p.NewDecoder()
			edges := encodeFrame(p, frame)

			// Stop part way through the data
			feedEdges(d, edges[:len(edges)-10])
			if step, _ := decoderState(d); step != stepData {
				t.Fatalf("expected data step before reset, got %d", step)
			}

			for i := 0; i < 2; i++ {
				d.Reset()
				step, bits := decoderState(d)
				if step != stepReset || bits != 0 {
					t.Errorf("reset %d: expected step=%d bits=0, got step=%d bits=%d", i, stepReset, step, bits)
				}
				if d.Hash() != 0 {
					t.Errorf("reset %d: expected hash 0, got 0x%02X", i, d.Hash())
				}
			}

			// A full frame still decodes after reset
			readings := collect(d)
			feedEdges(d, edges)
			if len(*readings) != 1 {
				t.Errorf("expected 1 reading after reset, got %d", len(*readings))
			}
		})
	}
}

func TestDecoders_SyncReacquisition(t *testing.T) {
	for p, frame := range sampleFrames() {
		t.Run(p.Name, func(t *testing.T) {
			corrupt := append([]byte(nil), frame...)
			corrupt[len(corrupt)-2] ^= 0xFF

			d := p.NewDecoder()
			readings := collect(d)

			feedEdges(d, encodeFrame(p, corrupt))
			if len(*readings) != 0 {
				t.Fatalf("corrupt frame produced %d readings", len(*readings))
			}

			feedEdges(d, encodeFrame(p, frame))
			if len(*readings) != 1 {
				t.Fatalf("expected 1 reading after corrupt frame, got %d", len(*readings))
			}
			if !bytes.Equal((*readings)[0].Data, frame) {
				t.Errorf("stale data: expected % X, got % X", frame, (*readings)[0].Data)
			}
		})
	}
}

func TestDecoders_OverflowGuard(t *testing.T) {
	for _, p := range Registry {
		t.Run(p.Name, func(t *testing.T) {
			d := p.NewDecoder()
			readings := collect(d)

			// All-ones never matches any sync word
			var edges []edge
			for i := 0; i < 4*p.layout.ceiling; i++ {
				if p == ProtocolNissan {
					edges = append(edges, edge{true, p.Timing.Long}, edge{false, p.Timing.Short})
				} else {
					edges = append(edges, edge{true, p.Timing.Short})
				}
			}

			sawSync := false
			for _, e := range edges {
				d.Feed(e.level, e.duration)
				step, bits := decoderState(d)
				if step == stepSync {
					sawSync = true
				}
				if step == stepData {
					t.Fatalf("sync should never be found")
				}
				if bits > p.layout.ceiling {
					t.Fatalf("bit count %d exceeded ceiling %d", bits, p.layout.ceiling)
				}
			}

			if !sawSync {
				t.Error("decoder never entered sync search")
			}
			if len(*readings) != 0 {
				t.Errorf("expected no readings, got %d", len(*readings))
			}
		})
	}
}

func TestDecoders_OutOfToleranceResets(t *testing.T) {
	for p, frame := range sampleFrames() {
		t.Run(p.Name, func(t *testing.T) {
			d := p.NewDecoder()
			edges := encodeFrame(p, frame)

			feedEdges(d, edges[:len(edges)/2])
			d.Feed(false, 5000)

			step, bits := decoderState(d)
			if step != stepReset || bits != 0 {
				t.Errorf("expected reset after long gap, got step=%d bits=%d", step, bits)
			}
		})
	}
}

func TestDecoders_HashTracksAccumulator(t *testing.T) {
	d := NewFordDecoder()
	readings := collect(d)

	var hash byte
	d.SetCallback(func(dec Decoder, r *Reading) {
		hash = dec.Hash()
		*readings = append(*readings, r)
	})
	feedEdges(d, encodeFrame(ProtocolFord, sampleFord))

	if len(*readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(*readings))
	}

	// 64 bits hash all 8 register bytes
	var want byte
	for _, b := range sampleFord {
		want ^= b
	}
	if hash != want {
		t.Errorf("hash: expected 0x%02X, got 0x%02X", want, hash)
	}
}

// ============================================================
// Checksum Soundness Tests
// ============================================================

func TestProtocols_ValidateSampleFrames(t *testing.T) {
	for p, frame := range sampleFrames() {
		if err := p.Validate(frame); err != nil {
			t.Errorf("%s: sample frame should validate: %v", p.Name, err)
		}
	}
}

func TestProtocols_SingleBitFlipsFail(t *testing.T) {
	for p, frame := range sampleFrames() {
		t.Run(p.Name, func(t *testing.T) {
			for i := 0; i < len(frame)*8; i++ {
				mutated := append([]byte(nil), frame...)
				mutated[i/8] ^= 0x80 >> (i % 8)

				err := p.Validate(mutated)
				if !errors.Is(err, ErrChecksum) {
					t.Errorf("bit %d flip: expected ErrChecksum, got %v", i, err)
				}
			}
		})
	}
}

func TestProtocols_ValidateLength(t *testing.T) {
	for p, frame := range sampleFrames() {
		err := p.Validate(frame[:len(frame)-1])
		if !errors.Is(err, ErrBitCountMismatch) {
			t.Errorf("%s: expected ErrBitCountMismatch, got %v", p.Name, err)
		}
	}
}

// ============================================================
// Display Tests
// ============================================================

func TestDecoders_DisplayString(t *testing.T) {
	tests := []struct {
		protocol *Protocol
		frame    []byte
		expected string
	}{
		{ProtocolFord, sampleFord, "Ford TPMS\nId:0x12345678\nMode:Moving\nPressure:25.0 PSI\nTemp:24 C"},
		{ProtocolGM, sampleGM, "GM TPMS\nId:0xDEADBEEF\nMode:Battery Low\nPressure:180.0 kPa\nTemp:67 C"},
		{ProtocolNissan, sampleNissan, "Nissan TPMS\nId:0x11223344\nMode:Battery Low\nPressure:180.0 kPa\nTemp:25 C"},
		{ProtocolToyota, sampleToyota, "Toyota TPMS\nId:0xABCDEF01\nBat:LOW\nTemp:25.0 C Bar:2.14"},
		{ProtocolSchraderGG4, sampleSchrader, "Schrader GG4\nId:0x87654321\nBat:?\nTemp:25.0 C Bar:2.00"},
	}

	for _, tt := range tests {
		t.Run(tt.protocol.Name, func(t *testing.T) {
			d := tt.protocol.NewDecoder()
			if d.String() != tt.protocol.Name {
				t.Errorf("empty decoder should display its name, got %q", d.String())
			}

			feedEdges(d, encodeFrame(tt.protocol, tt.frame))
			if got := d.String(); got != tt.expected {
				t.Errorf("display mismatch:\nexpected %q\ngot      %q", tt.expected, got)
			}
		})
	}
}

func TestFordDecoder_DisplayInvalidTemperature(t *testing.T) {
	r := &Reading{ID: 1, Pressure: 2.0, Temperature: TemperatureInvalid, Status: FordStatus{}}
	got := ProtocolFord.Display(r)
	want := "Ford TPMS\nId:0x00000001\nMode:Rest\nPressure:29.0 PSI\nTemp:N/A"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

// ============================================================
// Encoder Tests
// ============================================================

func TestProtocols_EncodingUnsupported(t *testing.T) {
	for _, p := range Registry {
		if p.CanEncode() {
			t.Errorf("%s: CanEncode should be false", p.Name)
		}
		enc, err := p.NewEncoder()
		if enc != nil || !errors.Is(err, ErrEncodeUnsupported) {
			t.Errorf("%s: expected ErrEncodeUnsupported, got %v", p.Name, err)
		}
	}
}
