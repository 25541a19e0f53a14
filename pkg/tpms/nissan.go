// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

// Nissan frame: 9 bytes, PWM with 52/104 µs high pulses. A long high pulse
// starts the preamble; 0x5A after at least 20 preamble bits marks sync and
// is re-inserted as byte 0.
//
//	1-4  sensor ID
//	5-6  pressure, big endian, 0.25 kPa
//	7    temperature + 40
//	8    CRC-8 (0x07) of bytes 0-7, read as flags: 0x80 battery low, 0x40 learn
var ProtocolNissan = &Protocol{
	Name:      NameNissan,
	Flags:     Flag433 | FlagAM | FlagDecodable,
	Timing:    timingNissan,
	FrameBits: 72,
	layout: frameLayout{
		sync:      0x5A,
		syncBits:  8,
		syncAfter: 28,
		ceiling:   40,
		prefix:    []byte{0x5A},
	},
	checksum:   checkNissan,
	analyze:    analyzeNissan,
	display:    displayKPa,
	newDecoder: newNissanDecoder,
}

// NissanDecoder runs the PWM framing state machine
type NissanDecoder struct {
	decoderBase
	step int
	acc  Accumulator
	pwm  *PWM
}

// NewNissanDecoder creates a Nissan decoder
func NewNissanDecoder() Decoder {
	return ProtocolNissan.NewDecoder()
}

func newNissanDecoder(p *Protocol) Decoder {
	d := &NissanDecoder{
		decoderBase: newDecoderBase(p),
		pwm:         NewPWM(p.Timing),
	}
	d.self = d
	return d
}

// Reset returns to waiting for a preamble pulse
func (d *NissanDecoder) Reset() {
	d.step = stepReset
	d.acc.Reset()
	d.pwm.Reset(false, 0)
}

// Hash fingerprints the accumulated bits
func (d *NissanDecoder) Hash() byte {
	return d.acc.Hash()
}

// Feed advances the state machine by one edge
func (d *NissanDecoder) Feed(level bool, duration uint32) {
	timing := d.protocol.Timing
	layout := &d.protocol.layout

	switch d.step {
	case stepReset:
		if level && duration >= timing.Long-timing.Delta {
			d.step = stepSync
			d.acc.Reset()
			d.pwm.Reset(level, duration)
		}

	case stepSync:
		bit, ok, valid := d.pwm.Feed(level, duration)
		if !valid {
			d.Reset()
			return
		}
		if !ok {
			return
		}

		d.acc.AddBit(bit)

		if d.acc.Count() >= layout.syncAfter {
			if d.acc.Tail(layout.syncBits) == layout.sync {
				d.logger.Trace().Msg("sync found")
				d.step = stepData
				d.acc.Reset()
				return
			}
			if d.acc.Count() > layout.ceiling {
				d.Reset()
			}
		}

	case stepData:
		bit, ok, valid := d.pwm.Feed(level, duration)
		if !valid {
			d.logger.Debug().Int("bits", d.acc.Count()).Msg("desync during data")
			d.Reset()
			return
		}
		if !ok {
			return
		}

		d.acc.AddBit(bit)

		if d.acc.Count() >= d.protocol.DataBits() {
			frame := make([]byte, 0, d.protocol.FrameBytes())
			frame = append(frame, layout.prefix...)
			frame = append(frame, d.acc.Bytes()...)
			d.finish(frame)
			d.Reset()
		}
	}
}

func checkNissan(frame []byte) bool {
	return CalculateCRC8(frame[:8], 0x07, 0x00) == frame[8]
}

func analyzeNissan(data []byte) (*Reading, error) {
	raw := uint16(data[5])<<8 | uint16(data[6])

	return &Reading{
		ID:          beUint32(data[1:5]),
		Pressure:    float64(raw) * 0.25 * kPaToBar,
		Temperature: float64(data[7]) - 40,
		Status:      NissanStatus{Raw: data[8]},
	}, nil
}
