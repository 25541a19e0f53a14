// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import (
	"math"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// ============================================================
// Sample Frames
// ============================================================

var (
	// ID 0x12345678, 25.0 PSI, 24°C, moving
	sampleFord = []byte{0x12, 0x34, 0x56, 0x78, 0x64, 0x50, 0x44, 0x0C}

	// ID 0xDEADBEEF, battery low, 180 kPa, CRC byte 0x6B
	sampleGM = []byte{0x55, 0x5D, 0xDE, 0xAD, 0xBE, 0xEF, 0x40, 0xE6, 0x6B}

	// ID 0x0A1B2C3D, learn, 180 kPa, CRC byte 0xCA
	sampleHyundai = []byte{0x55, 0x55, 0x56, 0x0A, 0x1B, 0x2C, 0x3D, 0x20, 0xDC, 0xCA}

	// ID 0x11223344, 180 kPa, 25°C, CRC byte 0xAF
	sampleNissan = []byte{0x5A, 0x11, 0x22, 0x33, 0x44, 0x02, 0xD0, 0x41, 0xAF}

	// ID 0xABCDEF01, 31 PSI, 25°C, battery low
	sampleToyota = []byte{0xAB, 0xCD, 0xEF, 0x01, 0xCC, 0x20, 0x85, 0x67, 0xDB}

	// ID 0x87654321, 200 kPa, 25°C
	sampleSchrader = []byte{0x01, 0x87, 0x65, 0x43, 0x21, 0x50, 0x4B, 0x05}
)

// sampleFrames pairs every registered protocol with a valid frame
func sampleFrames() map[*Protocol][]byte {
	return map[*Protocol][]byte{
		ProtocolSchraderGG4: sampleSchrader,
		ProtocolToyota:      sampleToyota,
		ProtocolFord:        sampleFord,
		ProtocolGM:          sampleGM,
		ProtocolNissan:      sampleNissan,
		ProtocolHyundai:     sampleHyundai,
	}
}

// ============================================================
// Edge Encoders
// ============================================================

type edge struct {
	level    bool
	duration uint32
}

func bitAt(data []byte, i int) bool {
	return data[i/8]&(0x80>>(i%8)) != 0
}

// encodeFrame renders a frame as the edge sequence a sensor would produce
func encodeFrame(p *Protocol, frame []byte) []edge {
	if p == ProtocolNissan {
		return encodePWM(p, frame)
	}
	return encodeManchester(p, frame)
}

// encodeManchester emits a wake-up edge, the sync word one level per edge,
// then the data bits as half-bit edges
func encodeManchester(p *Protocol, frame []byte) []edge {
	te := p.Timing.Short
	edges := []edge{{true, te}}

	last := false
	for i := p.layout.syncBits - 1; i >= 0; i-- {
		last = (p.layout.sync>>uint(i))&1 == 1
		edges = append(edges, edge{last, te})
	}

	data := frame[len(p.layout.prefix):]
	differential := p == ProtocolToyota
	for i := 0; i < len(data)*8; i++ {
		bit := bitAt(data, i)
		var first bool
		if differential {
			first = last
			if !bit {
				first = !last
			}
		} else {
			first = bit
		}
		edges = append(edges, edge{first, te}, edge{!first, te})
		last = !first
	}
	return edges
}

// encodePWM emits a 20 bit preamble starting with a long pulse, the sync
// byte, then the data bits. Every bit is a high pulse and a short gap.
func encodePWM(p *Protocol, frame []byte) []edge {
	var edges []edge
	pulse := func(bit bool) {
		d := p.Timing.Short
		if bit {
			d = p.Timing.Long
		}
		edges = append(edges, edge{true, d}, edge{false, p.Timing.Short})
	}

	for i := 19; i >= 0; i-- {
		pulse((0xAAAAA>>uint(i))&1 == 1)
	}
	for i := 0; i < len(frame)*8; i++ {
		pulse(bitAt(frame, i))
	}
	return edges
}

func feedEdges(d Decoder, edges []edge) {
	for _, e := range edges {
		d.Feed(e.level, e.duration)
	}
}

// collect attaches a callback that records every reading
func collect(d Decoder) *[]*Reading {
	readings := &[]*Reading{}
	d.SetCallback(func(_ Decoder, r *Reading) {
		*readings = append(*readings, r)
	})
	return readings
}

// decoderState exposes the framing step and bit count for assertions
func decoderState(d Decoder) (step int, bits int) {
	switch v := d.(type) {
	case *framer:
		return v.step, v.acc.Count()
	case *NissanDecoder:
		return v.step, v.acc.Count()
	}
	panic("unknown decoder type")
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-3
}

// ============================================================
// Fuzz Helpers
// ============================================================

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}
