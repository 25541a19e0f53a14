// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package edge

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// ErrSourceClosed is returned by a source that has been closed
var ErrSourceClosed = errors.New("edge source closed")

// Source produces edge events.
//
// Run blocks, sending events on out in order, until ctx is done, the source
// is exhausted (io.EOF) or it fails. Close unblocks a pending Run.
type Source interface {
	Run(ctx context.Context, out chan<- Event) error
	Close() error
	String() string
}

// Tuner is implemented by sources that can retune the radio
type Tuner interface {
	Tune(hz uint32) error
}

// send delivers ev unless ctx is done first
func send(ctx context.Context, out chan<- Event, ev Event) error {
	select {
	case out <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

//////////////////////////////////////////////////////////////
// Stream source (serial / WebSocket bridge)
//////////////////////////////////////////////////////////////

// StreamSource reads RAW text from a bridge connection and writes tune
// requests back to it
type StreamSource struct {
	conn   io.ReadWriteCloser
	name   string
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// NewStreamSource wraps an open bridge connection
func NewStreamSource(conn io.ReadWriteCloser, name string, logger zerolog.Logger) *StreamSource {
	return &StreamSource{conn: conn, name: name, logger: logger}
}

// Run reads until the connection fails or ctx is done. Malformed lines are
// logged and skipped.
func (s *StreamSource) Run(ctx context.Context, out chan<- Event) error {
	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	reader := NewReader(s.conn)
	for {
		ev, err := reader.Next()
		if errors.Is(err, ErrMalformedLine) {
			s.logger.Warn().Err(err).Msg("skipping bridge line")
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.isClosed() {
				return ErrSourceClosed
			}
			return err
		}
		if err := send(ctx, out, ev); err != nil {
			return err
		}
	}
}

// Tune asks the bridge to retune
func (s *StreamSource) Tune(hz uint32) error {
	if s.isClosed() {
		return ErrSourceClosed
	}
	if _, err := io.WriteString(s.conn, FormatTune(hz)); err != nil {
		return fmt.Errorf("failed to send tune request: %w", err)
	}
	s.logger.Debug().Uint32("hz", hz).Msg("tune requested")
	return nil
}

// Close closes the connection. It is safe to call more than once.
func (s *StreamSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

func (s *StreamSource) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *StreamSource) String() string {
	return s.name
}

//////////////////////////////////////////////////////////////
// File source
//////////////////////////////////////////////////////////////

// fileBatch is the number of edges per event when replaying a capture
const fileBatch = 256

// FileSource replays a capture file: a .sub RAW capture or a plain RAW text
// dump. It sends the preset frequency first when the file has one.
type FileSource struct {
	path   string
	events []Event
}

// OpenFileSource loads a capture into memory
func OpenFileSource(path string) (*FileSource, error) {
	fs := &FileSource{path: path}

	if strings.EqualFold(filepath.Ext(path), ".sub") {
		sub, err := LoadSubFile(path)
		if err != nil {
			return nil, err
		}
		if sub.Preset.Frequency != 0 {
			fs.events = append(fs.events, Event{Kind: KindFrequency, Frequency: sub.Preset.Frequency})
		}
		for start := 0; start < len(sub.Edges); start += fileBatch {
			end := min(start+fileBatch, len(sub.Edges))
			fs.events = append(fs.events, Event{Kind: KindEdges, Edges: sub.Edges[start:end]})
		}
		return fs, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := NewReader(f)
	for {
		ev, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		fs.events = append(fs.events, ev)
	}
	return fs, nil
}

// Run sends every event and returns io.EOF
func (f *FileSource) Run(ctx context.Context, out chan<- Event) error {
	for _, ev := range f.events {
		if err := send(ctx, out, ev); err != nil {
			return err
		}
	}
	return io.EOF
}

// Close is a no-op; the file is read fully when opened
func (f *FileSource) Close() error {
	return nil
}

func (f *FileSource) String() string {
	return "File: " + f.path
}

// Events returns the loaded events
func (f *FileSource) Events() []Event {
	return f.events
}
