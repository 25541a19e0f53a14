// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import "fmt"

// Protocol describes one sensor family: its radio flags, timing, frame
// layout and how to turn a validated frame into a Reading.
type Protocol struct {
	Name      string
	Flags     Flag
	Timing    Timing
	FrameBits int

	layout     frameLayout
	checksum   func(frame []byte) bool
	analyze    func(frame []byte) (*Reading, error)
	display    func(name string, r *Reading) string
	newDecoder func(p *Protocol) Decoder
}

// frameLayout holds the sync search parameters of a protocol
type frameLayout struct {
	sync      uint64 // literal sync pattern, compared against the most recent syncBits
	syncBits  int
	syncAfter int // minimum accumulated bits before the pattern is checked
	ceiling   int // sync search gives up once more bits than this are seen
	prefix    []byte
}

// Encoder produces edges for transmission. No protocol implements it.
type Encoder interface {
	Yield() (level bool, duration uint32, done bool)
}

// NewDecoder allocates a decoder in its reset state
func (p *Protocol) NewDecoder() Decoder {
	return p.newDecoder(p)
}

// NewEncoder always fails: TPMS transmission is not supported
func (p *Protocol) NewEncoder() (Encoder, error) {
	return nil, fmt.Errorf("%s: %w", p.Name, ErrEncodeUnsupported)
}

// CanEncode reports whether the protocol can transmit
func (p *Protocol) CanEncode() bool {
	return false
}

// DataBits returns the number of bits collected after sync
func (p *Protocol) DataBits() int {
	return p.FrameBits - 8*len(p.layout.prefix)
}

// FrameBytes returns the frame length in bytes
func (p *Protocol) FrameBytes() int {
	return p.FrameBits / 8
}

// Validate checks the frame length and checksum
func (p *Protocol) Validate(frame []byte) error {
	if len(frame)*8 != p.FrameBits {
		return fmt.Errorf("%s: frame has %d bits, want %d: %w",
			p.Name, len(frame)*8, p.FrameBits, ErrBitCountMismatch)
	}
	if !p.checksum(frame) {
		return fmt.Errorf("%s: %w", p.Name, ErrChecksum)
	}
	return nil
}

// Parse validates a complete frame and decodes it
func (p *Protocol) Parse(frame []byte) (*Reading, error) {
	if err := p.Validate(frame); err != nil {
		return nil, err
	}

	r, err := p.analyze(frame)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}

	r.Protocol = p.Name
	r.Data = append([]byte(nil), frame...)
	r.BitCount = p.FrameBits
	return r, nil
}

// Display renders a reading the way the receiver screen shows it
func (p *Protocol) Display(r *Reading) string {
	if r == nil {
		return p.Name
	}
	return p.display(p.Name, r)
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
