// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import (
	"strings"

	"github.com/rs/zerolog"
)

// Registry lists every supported protocol in dispatch order
var Registry = []*Protocol{
	ProtocolSchraderGG4,
	ProtocolToyota,
	ProtocolFord,
	ProtocolGM,
	ProtocolNissan,
	ProtocolHyundai,
}

// LookupProtocol finds a protocol by name, ignoring case.
// The " TPMS" suffix may be omitted.
func LookupProtocol(name string) *Protocol {
	for _, p := range Registry {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(strings.TrimSuffix(p.Name, " TPMS"), name) {
			return p
		}
	}
	return nil
}

// FilterProtocols returns the registered protocols matching all bits of flags
func FilterProtocols(flags Flag) []*Protocol {
	var out []*Protocol
	for _, p := range Registry {
		if p.Flags.Has(flags) {
			out = append(out, p)
		}
	}
	return out
}

// Receiver fans every edge out to one decoder per protocol.
// Like the decoders it wraps, it is not safe for concurrent use.
type Receiver struct {
	decoders []Decoder
	callback Callback
}

// NewReceiver creates a decoder for each given protocol, in order.
// With no protocols, the full registry is used.
func NewReceiver(protocols ...*Protocol) *Receiver {
	if len(protocols) == 0 {
		protocols = Registry
	}

	r := &Receiver{}
	for _, p := range protocols {
		d := p.NewDecoder()
		d.Reset()
		d.SetCallback(r.dispatch)
		r.decoders = append(r.decoders, d)
	}
	return r
}

func (r *Receiver) dispatch(d Decoder, reading *Reading) {
	if r.callback != nil {
		r.callback(d, reading)
	}
}

// SetCallback sets the function called for every decoded reading
func (r *Receiver) SetCallback(cb Callback) {
	r.callback = cb
}

// SetLogger passes logger to every decoder
func (r *Receiver) SetLogger(logger zerolog.Logger) {
	for _, d := range r.decoders {
		d.SetLogger(logger)
	}
}

// Feed delivers one edge to every decoder
func (r *Receiver) Feed(level bool, duration uint32) {
	for _, d := range r.decoders {
		d.Feed(level, duration)
	}
}

// Reset resets every decoder
func (r *Receiver) Reset() {
	for _, d := range r.decoders {
		d.Reset()
	}
}

// Decoders returns the decoders in dispatch order
func (r *Receiver) Decoders() []Decoder {
	return r.decoders
}

// Decoder returns the decoder for the named protocol, or nil
func (r *Receiver) Decoder(name string) Decoder {
	p := LookupProtocol(name)
	if p == nil {
		return nil
	}
	for _, d := range r.decoders {
		if d.Protocol() == p {
			return d
		}
	}
	return nil
}
