// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import (
	"fmt"

	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/fxamacker/cbor/v2"
)

// Record is the persisted form of a reading: where it was received, the raw
// frame and the decoded values. Data and BitCount are authoritative;
// Deserialize re-derives everything else from them.
type Record struct {
	Protocol    string  `cbor:"1,keyasint"`
	Frequency   uint32  `cbor:"2,keyasint"`
	Preset      string  `cbor:"3,keyasint"`
	ID          uint32  `cbor:"4,keyasint"`
	BitCount    int     `cbor:"5,keyasint"`
	Data        []byte  `cbor:"6,keyasint"`
	Temperature float64 `cbor:"7,keyasint"`
	Pressure    float64 `cbor:"8,keyasint"`
	Battery     string  `cbor:"9,keyasint"`
	Timestamp   int64   `cbor:"10,keyasint,omitempty"`
}

// NewRecord captures a reading received with preset
func NewRecord(r *Reading, preset radio.Preset) *Record {
	rec := &Record{
		Protocol:    r.Protocol,
		Frequency:   preset.Frequency,
		Preset:      preset.Name,
		ID:          r.ID,
		BitCount:    r.BitCount,
		Data:        append([]byte(nil), r.Data...),
		Temperature: r.Temperature,
		Pressure:    r.Pressure,
		Battery:     r.Battery().String(),
	}
	if !r.Received.IsZero() {
		rec.Timestamp = r.Received.Unix()
	}
	return rec
}

// EncodeRecord encodes a record as CBOR
func EncodeRecord(rec *Record) ([]byte, error) {
	data, err := cbor.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// DecodeRecord decodes a CBOR record
func DecodeRecord(data []byte) (*Record, error) {
	var rec Record
	if err := cbor.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

// RestoreReading decodes a record with the decoder for its protocol
func RestoreReading(rec *Record) (Decoder, error) {
	p := LookupProtocol(rec.Protocol)
	if p == nil {
		return nil, fmt.Errorf("unknown protocol %q", rec.Protocol)
	}

	d := p.NewDecoder()
	if err := d.Deserialize(rec); err != nil {
		return nil, err
	}
	return d, nil
}
