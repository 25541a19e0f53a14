// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package edge

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Thermoquad/tirestat/pkg/radio"
)

// SubFiletype is the header of a RAW capture file
const SubFiletype = "Flipper SubGhz RAW File"

var (
	// ErrNotRaw is returned for .sub files holding a decoded protocol instead of RAW data
	ErrNotRaw = errors.New("sub file is not a RAW capture")

	// ErrNoEdges is returned for a RAW capture without data lines
	ErrNoEdges = errors.New("sub file has no RAW_Data")
)

// SubFile is a parsed RAW capture
type SubFile struct {
	Filetype string
	Version  string
	Preset   radio.Preset
	Protocol string
	Edges    []Edge
}

// ParseSubFile reads a RAW capture from r
func ParseSubFile(r io.Reader) (*SubFile, error) {
	sub := &SubFile{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()

		key, value, _ := strings.Cut(text, ":")
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Filetype":
			sub.Filetype = value
			continue
		case "Version":
			sub.Version = value
			continue
		case "Protocol":
			sub.Protocol = value
			continue
		case "Preset":
			name, err := radio.PresetFromDriverName(value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			sub.Preset.Name = name
			continue
		case "Custom_preset_data":
			sub.Preset.Data = parseHexBytes(value)
			continue
		}

		ev, ok, err := ParseLine(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		switch ev.Kind {
		case KindFrequency:
			sub.Preset.Frequency = ev.Frequency
		case KindEdges:
			sub.Edges = append(sub.Edges, ev.Edges...)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if sub.Protocol != "" && sub.Protocol != "RAW" {
		return nil, fmt.Errorf("%w: protocol %s", ErrNotRaw, sub.Protocol)
	}
	if len(sub.Edges) == 0 {
		return nil, ErrNoEdges
	}
	return sub, nil
}

// parseHexBytes parses "02 0D 03 07" style register dumps, skipping bad pairs
func parseHexBytes(s string) []byte {
	var out []byte
	for _, f := range strings.Fields(s) {
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

// LoadSubFile reads a RAW capture from disk
func LoadSubFile(path string) (*SubFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sub, err := ParseSubFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sub, nil
}

// WriteSubFile writes edges as a RAW capture, 512 values per data line
func WriteSubFile(w io.Writer, preset radio.Preset, edges []Edge) error {
	driver, err := radio.DriverName(preset.Name)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "Filetype: %s\nVersion: 1\nFrequency: %d\nPreset: %s\nProtocol: RAW\n",
		SubFiletype, preset.Frequency, driver); err != nil {
		return err
	}

	const perLine = 512
	for start := 0; start < len(edges); start += perLine {
		end := min(start+perLine, len(edges))
		if _, err := fmt.Fprintf(w, "%s: %s\n", KeyRawData, FormatEdges(edges[start:end])); err != nil {
			return err
		}
	}
	return nil
}
