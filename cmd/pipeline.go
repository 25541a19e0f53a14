// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Thermoquad/tirestat/pkg/edge"
	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/Thermoquad/tirestat/pkg/tpms"
)

// hopInterval is how long the hopper dwells per tick
const hopInterval = 100 * time.Millisecond

// session feeds one edge source into a receiver. All callbacks run on the
// goroutine that called run.
type session struct {
	source   edge.Source
	receiver *tpms.Receiver
	preset   radio.Preset
	hopper   *radio.Hopper
	tuner    edge.Tuner
	rssi     float64

	// OnReading is called for every decoded frame
	OnReading func(d tpms.Decoder, r *tpms.Reading, anomalies []tpms.ValidationError)

	// OnEvent is called after each source event has been handled
	OnEvent func(ev edge.Event)
}

// newSession builds a receiver for the configured protocols
func newSession(src edge.Source) (*session, error) {
	protocols, err := cfg.ProtocolSet()
	if err != nil {
		return nil, err
	}

	s := &session{
		source:   src,
		receiver: tpms.NewReceiver(protocols...),
		preset:   receivePreset(),
		rssi:     -120,
	}
	s.receiver.SetLogger(logger)
	s.receiver.SetCallback(func(d tpms.Decoder, r *tpms.Reading) {
		anomalies := tpms.ValidateReading(r)
		logger.Debug().
			Str("protocol", r.Protocol).
			Str("id", fmt.Sprintf("%08X", r.ID)).
			Int("anomalies", len(anomalies)).
			Msg("reading")
		if s.OnReading != nil {
			s.OnReading(d, r, anomalies)
		}
	})
	return s, nil
}

// enableHopping cycles the configured hop list. The source must be able to
// retune.
func (s *session) enableHopping() error {
	tuner, ok := s.source.(edge.Tuner)
	if !ok {
		return fmt.Errorf("%s cannot retune, hopping needs a bridge connection", s.source)
	}

	frequencies, err := cfg.HopFrequencies()
	if err != nil {
		return err
	}
	hopper, err := radio.NewHopper(frequencies)
	if err != nil {
		return err
	}

	s.tuner = tuner
	s.hopper = hopper
	s.hopper.Start()
	return nil
}

// hopState describes the hopper for display
func (s *session) hopState() string {
	if s.hopper == nil {
		return radio.HopperOff.String()
	}
	return s.hopper.State().String()
}

// run pumps events until the source ends or ctx is done. The end of a
// file and the end of ctx are not errors.
func (s *session) run(ctx context.Context) error {
	if s.tuner != nil {
		if err := s.tune(s.hopper.Frequency()); err != nil {
			return err
		}
	}

	events := make(chan edge.Event, 64)
	errc := make(chan error, 1)
	go func() {
		errc <- s.source.Run(ctx, events)
		close(events)
	}()

	var tick <-chan time.Time
	if s.hopper != nil {
		ticker := time.NewTicker(hopInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				err := <-errc
				if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, edge.ErrSourceClosed) {
					return nil
				}
				return err
			}
			s.handle(ev)

		case <-tick:
			if f := s.hopper.Update(s.rssi); f != 0 {
				if err := s.tune(f); err != nil {
					logger.Warn().Err(err).Msg("hop failed")
				}
			}
		}
	}
}

func (s *session) handle(ev edge.Event) {
	switch ev.Kind {
	case edge.KindEdges:
		edge.FeedAll(s.receiver, ev.Edges)
	case edge.KindRSSI:
		s.rssi = ev.RSSI
	case edge.KindFrequency:
		if ev.Frequency != s.preset.Frequency {
			logger.Info().Str("frequency", radio.FormatFrequency(ev.Frequency)).Msg("receiver tuned")
			s.preset.Frequency = ev.Frequency
			s.receiver.Reset()
		}
	}

	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}

// tune retunes the source and drops any partial frame.
// It panics when hz is outside the receivable bands.
func (s *session) tune(hz uint32) error {
	radio.MustValidFrequency(hz)
	if err := s.tuner.Tune(hz); err != nil {
		return err
	}
	s.preset.Frequency = hz
	s.receiver.Reset()

	if s.OnEvent != nil {
		s.OnEvent(edge.Event{Kind: edge.KindFrequency, Frequency: hz})
	}
	return nil
}

// repeatFilter drops the repeated copies a sensor sends of one frame
type repeatFilter struct {
	window time.Duration
	seen   map[string]time.Time
}

func newRepeatFilter(window time.Duration) *repeatFilter {
	return &repeatFilter{window: window, seen: make(map[string]time.Time)}
}

// fresh reports whether r differs from what its sensor sent within the window
func (f *repeatFilter) fresh(r *tpms.Reading) bool {
	key := r.SensorKey() + " " + tpms.FormatHex(r.Data)
	now := r.Received
	if now.IsZero() {
		now = time.Now()
	}

	last, ok := f.seen[key]
	f.seen[key] = now
	if ok && now.Sub(last) < f.window {
		return false
	}

	// Bound the map to sensors heard recently
	for k, t := range f.seen {
		if now.Sub(t) > f.window*10 {
			delete(f.seen, k)
		}
	}
	return true
}
