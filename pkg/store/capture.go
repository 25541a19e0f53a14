// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package store persists decoded readings: one YAML capture file per
// reading, and CBOR session logs holding many records.
package store

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

const (
	// CaptureFiletype identifies a capture file
	CaptureFiletype = "Tirestat TPMS Capture"

	// CaptureVersion is written to new capture files
	CaptureVersion = "1.0"

	// captureConstraint is the range of file versions this build reads
	captureConstraint = ">= 1.0, < 2.0"
)

var (
	// ErrFiletype is returned for YAML files that are not captures
	ErrFiletype = errors.New("not a capture file")

	// ErrUnsupportedVersion is returned for captures outside the readable range
	ErrUnsupportedVersion = errors.New("unsupported capture version")

	supportedVersions = version.MustConstraints(version.NewConstraint(captureConstraint))
)

// Capture is the on-disk form of one reading
type Capture struct {
	Filetype  string  `yaml:"Filetype"`
	Version   string  `yaml:"Version"`
	Session   string  `yaml:"Session,omitempty"`
	Frequency uint32  `yaml:"Frequency"`
	Preset    string  `yaml:"Preset"`
	Protocol  string  `yaml:"Protocol"`
	Id        string  `yaml:"Id"`
	Bit       int     `yaml:"Bit"`
	Data      string  `yaml:"Data"`
	Temp      float64 `yaml:"Temp"`
	Bar       float64 `yaml:"Bar"`
	Batt      string  `yaml:"Batt"`
	Timestamp int64   `yaml:"Timestamp,omitempty"`
}

// NewCapture builds a capture from a serialized record
func NewCapture(rec *tpms.Record, session string) *Capture {
	return &Capture{
		Filetype:  CaptureFiletype,
		Version:   CaptureVersion,
		Session:   session,
		Frequency: rec.Frequency,
		Preset:    rec.Preset,
		Protocol:  rec.Protocol,
		Id:        fmt.Sprintf("%08X", rec.ID),
		Bit:       rec.BitCount,
		Data:      tpms.FormatHex(rec.Data),
		Temp:      rec.Temperature,
		Bar:       rec.Pressure,
		Batt:      rec.Battery,
		Timestamp: rec.Timestamp,
	}
}

// Record converts the capture back into a record. Only the hex fields are
// checked here; the protocol decoder validates the frame itself.
func (c *Capture) Record() (*tpms.Record, error) {
	id, err := strconv.ParseUint(c.Id, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid Id %q: %w", c.Id, err)
	}

	data, err := hex.DecodeString(strings.ReplaceAll(c.Data, " ", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid Data: %w", err)
	}

	return &tpms.Record{
		Protocol:    c.Protocol,
		Frequency:   c.Frequency,
		Preset:      c.Preset,
		ID:          uint32(id),
		BitCount:    c.Bit,
		Data:        data,
		Temperature: c.Temp,
		Pressure:    c.Bar,
		Battery:     c.Batt,
		Timestamp:   c.Timestamp,
	}, nil
}

// CheckVersion verifies the capture header
func (c *Capture) CheckVersion() error {
	if c.Filetype != CaptureFiletype {
		return fmt.Errorf("%w: Filetype %q", ErrFiletype, c.Filetype)
	}

	v, err := version.NewVersion(c.Version)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnsupportedVersion, c.Version, err)
	}
	if !supportedVersions.Check(v) {
		return fmt.Errorf("%w: %s (want %s)", ErrUnsupportedVersion, v, captureConstraint)
	}
	return nil
}

// SaveCapture writes a capture file
func SaveCapture(path string, c *Capture) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write capture: %w", err)
	}
	return nil
}

// LoadCapture reads a capture file and checks its header
func LoadCapture(path string) (*Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Capture
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.CheckVersion(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// CaptureFileName names the capture for a record,
// e.g. "Ford_TPMS_12345678_20250101-123045.yaml"
func CaptureFileName(rec *tpms.Record) string {
	ts := time.Unix(rec.Timestamp, 0)
	if rec.Timestamp == 0 {
		ts = time.Now()
	}
	name := strings.ReplaceAll(rec.Protocol, " ", "_")
	return fmt.Sprintf("%s_%08X_%s.yaml", name, rec.ID, ts.Format("20060102-150405"))
}

// SaveRecord writes rec as a new capture file in dir and returns its path
func SaveRecord(dir string, rec *tpms.Record, session string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, CaptureFileName(rec))
	if err := SaveCapture(path, NewCapture(rec, session)); err != nil {
		return "", err
	}
	return path, nil
}
