// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

//go:build linux

package edge

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/warthog618/go-gpiocdev"
)

// gpioBuffer is the number of pending transitions before events are dropped
const gpioBuffer = 4096

// GPIOSource watches a GPIO line driven by an OOK receiver's data output
type GPIOSource struct {
	chip   string
	offset int
	line   *gpiocdev.Line
	logger zerolog.Logger

	transitions chan gpiocdev.LineEvent
	done        chan struct{}
	dropped     uint64
	mu          sync.Mutex
	closed      bool
}

// OpenGPIOSource requests the line as an input watching both edges
func OpenGPIOSource(chip string, offset int, logger zerolog.Logger) (*GPIOSource, error) {
	s := &GPIOSource{
		chip:        chip,
		offset:      offset,
		logger:      logger,
		transitions: make(chan gpiocdev.LineEvent, gpioBuffer),
		done:        make(chan struct{}),
	}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handle))
	if err != nil {
		return nil, fmt.Errorf("failed to request %s line %d: %w", chip, offset, err)
	}
	s.line = line
	return s, nil
}

// handle runs on the gpiocdev event goroutine
func (s *GPIOSource) handle(evt gpiocdev.LineEvent) {
	select {
	case s.transitions <- evt:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// Run converts transitions into single-edge batches until ctx is done or
// the source is closed
func (s *GPIOSource) Run(ctx context.Context, out chan<- Event) error {
	var tracker LevelTracker
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return ErrSourceClosed
		case evt := <-s.transitions:
			e, ok := tracker.Observe(evt.Type == gpiocdev.LineEventRisingEdge, evt.Timestamp)
			if !ok {
				continue
			}
			if err := send(ctx, out, Event{Kind: KindEdges, Edges: []Edge{e}}); err != nil {
				return err
			}
		}
	}
}

// Dropped returns the number of transitions lost to a full buffer
func (s *GPIOSource) Dropped() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close releases the line
func (s *GPIOSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.line.Close()
	close(s.done)
	return err
}

func (s *GPIOSource) String() string {
	return fmt.Sprintf("GPIO: %s line %d", s.chip, s.offset)
}
