// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import (
	"errors"
	"fmt"
	"time"

	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/rs/zerolog"
)

// Callback is invoked synchronously from Feed once per validated frame
type Callback func(d Decoder, r *Reading)

// Decoder turns a stream of (level, duration) edges into readings.
//
// A Decoder is not safe for concurrent use. Edges must be delivered one at a
// time and in order.
type Decoder interface {
	// Protocol returns the descriptor this decoder was created from
	Protocol() *Protocol

	// Reset discards any in-flight frame
	Reset()

	// Feed consumes one edge: the signal held level for duration µs
	Feed(level bool, duration uint32)

	// Hash returns a fingerprint of the bits currently accumulated
	Hash() byte

	// Reading returns the last decoded reading, or nil
	Reading() *Reading

	// Serialize captures the last reading together with the receive preset
	Serialize(preset radio.Preset) (*Record, error)

	// Deserialize restores a reading from a record
	Deserialize(rec *Record) error

	// String renders the last reading for display
	String() string

	SetCallback(cb Callback)
	SetLogger(logger zerolog.Logger)
}

// decoderBase carries what every decoder shares: the descriptor, the
// callback and the last reading.
type decoderBase struct {
	protocol *Protocol
	callback Callback
	logger   zerolog.Logger
	reading  *Reading
	self     Decoder
}

func newDecoderBase(p *Protocol) decoderBase {
	return decoderBase{
		protocol: p,
		logger:   zerolog.Nop(),
	}
}

func (b *decoderBase) Protocol() *Protocol {
	return b.protocol
}

func (b *decoderBase) Reading() *Reading {
	return b.reading
}

func (b *decoderBase) SetCallback(cb Callback) {
	b.callback = cb
}

func (b *decoderBase) SetLogger(logger zerolog.Logger) {
	b.logger = logger.With().Str("protocol", b.protocol.Name).Logger()
}

func (b *decoderBase) String() string {
	return b.protocol.Display(b.reading)
}

// finish validates an assembled frame and emits it on success
func (b *decoderBase) finish(frame []byte) {
	r, err := b.protocol.Parse(frame)
	if err != nil {
		b.logger.Debug().Err(err).Hex("frame", frame).Msg("frame discarded")
		return
	}

	r.Received = time.Now()
	b.reading = r
	b.logger.Debug().Uint32("id", r.ID).Hex("frame", frame).Msg("frame decoded")

	if b.callback != nil {
		b.callback(b.self, r)
	}
}

// Serialize builds a record from the last reading
func (b *decoderBase) Serialize(preset radio.Preset) (*Record, error) {
	if b.reading == nil {
		return nil, fmt.Errorf("%s: %w", b.protocol.Name, ErrNoReading)
	}
	return NewRecord(b.reading, preset), nil
}

// Deserialize validates the record against the protocol's fixed width,
// re-checks the stored frame and decodes it again.
func (b *decoderBase) Deserialize(rec *Record) error {
	if rec == nil {
		return errors.New("nil record")
	}
	if rec.Protocol != b.protocol.Name {
		return fmt.Errorf("record for %q, decoder is %q: %w", rec.Protocol, b.protocol.Name, ErrProtocolMismatch)
	}
	if rec.BitCount != b.protocol.FrameBits {
		return fmt.Errorf("%s: record has %d bits, want %d: %w",
			b.protocol.Name, rec.BitCount, b.protocol.FrameBits, ErrBitCountMismatch)
	}

	r, err := b.protocol.Parse(rec.Data)
	if err != nil {
		return err
	}
	if rec.Timestamp != 0 {
		r.Received = time.Unix(rec.Timestamp, 0)
	}

	b.reading = r
	return nil
}

//////////////////////////////////////////////////////////////
// Manchester family framer
//////////////////////////////////////////////////////////////

// framer is the Reset -> Sync -> Data state machine shared by the
// Manchester coded protocols. Sync bits are raw edge levels; data bits come
// from the protocol's line code.
type framer struct {
	decoderBase
	step int
	acc  Accumulator
	code lineCode
}

func newFramer(p *Protocol, code lineCode) *framer {
	f := &framer{
		decoderBase: newDecoderBase(p),
		code:        code,
	}
	f.self = f
	return f
}

func newManchesterDecoder(p *Protocol) Decoder {
	return newFramer(p, &Manchester{})
}

func newDiffManchesterDecoder(p *Protocol) Decoder {
	return newFramer(p, &DiffManchester{})
}

// Reset returns to the initial state with no accumulated bits
func (f *framer) Reset() {
	f.step = stepReset
	f.acc.Reset()
	f.code.Reset(false)
}

// Hash fingerprints the accumulated bits
func (f *framer) Hash() byte {
	return f.acc.Hash()
}

// Feed advances the state machine by one edge
func (f *framer) Feed(level bool, duration uint32) {
	timing := f.protocol.Timing
	layout := &f.protocol.layout

	switch f.step {
	case stepReset:
		if level && timing.IsShort(duration) {
			f.step = stepSync
			f.acc.Reset()
			f.code.Reset(false)
		}

	case stepSync:
		if !timing.IsShort(duration) {
			f.Reset()
			return
		}

		f.acc.AddBit(level)

		if f.acc.Count() >= layout.syncAfter && f.acc.Tail(layout.syncBits) == layout.sync {
			f.logger.Trace().Msg("sync found")
			f.step = stepData
			f.acc.Reset()
			f.code.Reset(level)
			return
		}

		if f.acc.Count() > layout.ceiling {
			f.Reset()
		}

	case stepData:
		if !timing.IsShort(duration) {
			f.logger.Debug().Int("bits", f.acc.Count()).Msg("desync during data")
			f.Reset()
			return
		}

		bit, ok := f.code.Decode(level)
		if !ok {
			return
		}
		f.acc.AddBit(bit)

		if f.acc.Count() >= f.protocol.DataBits() {
			frame := make([]byte, 0, f.protocol.FrameBytes())
			frame = append(frame, layout.prefix...)
			frame = append(frame, f.acc.Bytes()...)
			f.finish(frame)
			f.Reset()
		}
	}
}
