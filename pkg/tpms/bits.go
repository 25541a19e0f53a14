// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

// Accumulator collects recovered bits.
//
// Bits enter as the new least significant bit of a rolling 64-bit register,
// so the most recent 64 bits are always available for sync matching and
// hashing. The same bits are also packed MSB first into a byte buffer, which
// lets decoders recover frames longer than the register.
type Accumulator struct {
	value uint64
	count int
	bytes []byte
}

// AddBit appends a bit. No upper bound is enforced here.
func (a *Accumulator) AddBit(bit bool) {
	a.value <<= 1
	if bit {
		a.value |= 1
	}

	idx := a.count / 8
	if idx == len(a.bytes) {
		a.bytes = append(a.bytes, 0)
	}
	if bit {
		a.bytes[idx] |= 0x80 >> (a.count % 8)
	}
	a.count++
}

// Reset discards all accumulated bits
func (a *Accumulator) Reset() {
	a.value = 0
	a.count = 0
	a.bytes = a.bytes[:0]
}

// Count returns the number of bits added since the last reset
func (a *Accumulator) Count() int {
	return a.count
}

// Value returns the rolling register (the most recent 64 bits)
func (a *Accumulator) Value() uint64 {
	return a.value
}

// Tail returns the most recent n bits, n <= 64
func (a *Accumulator) Tail(n int) uint64 {
	if n >= 64 {
		return a.value
	}
	return a.value & (1<<uint(n) - 1)
}

// Bytes returns a copy of the packed bits, MSB first.
// A trailing partial byte is left aligned.
func (a *Accumulator) Bytes() []byte {
	out := make([]byte, len(a.bytes))
	copy(out, a.bytes)
	return out
}

// Hash XORs the low (count/8 + 1) bytes of the register, capped at 8 bytes
func (a *Accumulator) Hash() byte {
	n := a.count/8 + 1
	if n > 8 {
		n = 8
	}
	var h byte
	for i := 0; i < n; i++ {
		h ^= byte(a.value >> (8 * uint(i)))
	}
	return h
}
