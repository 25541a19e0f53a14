// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package edge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/Thermoquad/tirestat/pkg/radio"
)

// ErrMalformedLine is returned for a line that cannot be parsed
var ErrMalformedLine = errors.New("malformed edge line")

// Line keys understood by the parser
const (
	KeyRawData   = "RAW_Data"
	KeyRSSI      = "RSSI"
	KeyFrequency = "Frequency"
)

// maxLineLength bounds a single line. Capture files can exceed the scanner default.
const maxLineLength = 1024 * 1024

// ParseLine parses one line of bridge output.
// ok is false for blank lines and keys that carry no event.
func ParseLine(line string) (ev Event, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Event{}, false, nil
	}

	key, value, hasKey := strings.Cut(line, ":")
	if !hasKey {
		return parseEdges(line)
	}

	value = strings.TrimSpace(value)
	switch strings.TrimSpace(key) {
	case KeyRawData:
		return parseEdges(value)

	case KeyRSSI:
		rssi, err := strconv.ParseFloat(strings.TrimSuffix(value, " dBm"), 64)
		if err != nil {
			return Event{}, false, fmt.Errorf("%w: rssi %q", ErrMalformedLine, value)
		}
		return Event{Kind: KindRSSI, RSSI: rssi}, true, nil

	case KeyFrequency:
		hz, err := radio.ParseFrequency(value)
		if err != nil {
			return Event{}, false, fmt.Errorf("%w: %v", ErrMalformedLine, err)
		}
		return Event{Kind: KindFrequency, Frequency: hz}, true, nil
	}

	return Event{}, false, nil
}

// parseEdges parses whitespace separated signed durations. Zero entries are
// skipped.
func parseEdges(s string) (Event, bool, error) {
	fields := strings.Fields(s)
	edges := make([]Edge, 0, len(fields))

	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return Event{}, false, fmt.Errorf("%w: %q", ErrMalformedLine, f)
		}
		if v == 0 {
			continue
		}

		level := v > 0
		if v < 0 {
			v = -v
		}
		if v > math.MaxUint32 {
			return Event{}, false, fmt.Errorf("%w: duration %s out of range", ErrMalformedLine, f)
		}
		edges = append(edges, Edge{Level: level, Duration: uint32(v)})
	}

	if len(edges) == 0 {
		return Event{}, false, nil
	}
	return Event{Kind: KindEdges, Edges: edges}, true, nil
}

// FormatEdges renders edges as a RAW line body
func FormatEdges(edges []Edge) string {
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = strconv.FormatInt(e.Signed(), 10)
	}
	return strings.Join(parts, " ")
}

// FormatTune returns the request a bridge expects to retune the radio
func FormatTune(hz uint32) string {
	return fmt.Sprintf("FREQ %d\n", hz)
}

// Reader parses a bridge stream line by line
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a reader over r
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	return &Reader{scanner: scanner}
}

// Next returns the next event. It returns io.EOF at the end of the stream.
// A malformed line returns an error wrapping ErrMalformedLine; reading may
// continue after it.
func (r *Reader) Next() (Event, error) {
	for r.scanner.Scan() {
		r.line++
		ev, ok, err := ParseLine(r.scanner.Text())
		if err != nil {
			return Event{}, fmt.Errorf("line %d: %w", r.line, err)
		}
		if ok {
			return ev, nil
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Event{}, err
	}
	return Event{}, io.EOF
}
