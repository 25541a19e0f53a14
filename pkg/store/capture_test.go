// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/Thermoquad/tirestat/pkg/tpms"
)

var sampleFord = []byte{0x12, 0x34, 0x56, 0x78, 0x64, 0x50, 0x44, 0x0C}

func sampleRecord(t *testing.T) *tpms.Record {
	t.Helper()
	r, err := tpms.ProtocolFord.Parse(sampleFord)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	r.Received = time.Date(2025, 3, 1, 8, 15, 0, 0, time.UTC)
	return tpms.NewRecord(r, radio.Preset{Name: radio.PresetFM476, Frequency: radio.Freq315})
}

// ============================================================
// Capture File Tests
// ============================================================

func TestCapture_SaveLoad(t *testing.T) {
	rec := sampleRecord(t)
	dir := t.TempDir()

	path, err := SaveRecord(dir, rec, "session-1")
	if err != nil {
		t.Fatalf("SaveRecord failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("capture written outside %s: %s", dir, path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"Filetype: Tirestat TPMS Capture",
		"Protocol: Ford TPMS",
		"Data: 12 34 56 78 64 50 44 0C",
	} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("capture missing %q:\n%s", want, raw)
		}
	}

	c, err := LoadCapture(path)
	if err != nil {
		t.Fatalf("LoadCapture failed: %v", err)
	}
	if c.Session != "session-1" || c.Id != "12345678" || c.Bit != 64 || c.Batt != "?" {
		t.Errorf("unexpected capture: %+v", c)
	}

	back, err := c.Record()
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if back.ID != rec.ID || !bytes.Equal(back.Data, rec.Data) || back.Timestamp != rec.Timestamp {
		t.Errorf("record mismatch: %+v vs %+v", back, rec)
	}
}

func TestCapture_RestoresDisplay(t *testing.T) {
	rec := sampleRecord(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	if err := SaveCapture(path, NewCapture(rec, "")); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCapture(path)
	if err != nil {
		t.Fatal(err)
	}
	back, err := c.Record()
	if err != nil {
		t.Fatal(err)
	}

	d, err := tpms.RestoreReading(back)
	if err != nil {
		t.Fatalf("RestoreReading failed: %v", err)
	}
	want := "Ford TPMS\nId:0x12345678\nMode:Moving\nPressure:25.0 PSI\nTemp:24 C"
	if d.String() != want {
		t.Errorf("expected %q, got %q", want, d.String())
	}
}

func TestCapture_CheckVersion(t *testing.T) {
	tests := []struct {
		filetype string
		version  string
		is       error
	}{
		{CaptureFiletype, "1.0", nil},
		{CaptureFiletype, "1.7.2", nil},
		{CaptureFiletype, "2.0", ErrUnsupportedVersion},
		{CaptureFiletype, "0.9", ErrUnsupportedVersion},
		{CaptureFiletype, "one", ErrUnsupportedVersion},
		{"Flipper SubGhz Key File", "1.0", ErrFiletype},
	}

	for _, tt := range tests {
		t.Run(tt.filetype+" "+tt.version, func(t *testing.T) {
			c := &Capture{Filetype: tt.filetype, Version: tt.version}
			err := c.CheckVersion()
			if tt.is == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
		})
	}
}

func TestLoadCapture_RejectsFutureVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.yaml")
	content := "Filetype: Tirestat TPMS Capture\nVersion: \"2.1\"\nProtocol: Ford TPMS\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCapture(path); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestCapture_RecordInvalidFields(t *testing.T) {
	c := NewCapture(sampleRecord(t), "")
	c.Id = "XYZ"
	if _, err := c.Record(); err == nil {
		t.Error("expected error for bad Id")
	}

	c = NewCapture(sampleRecord(t), "")
	c.Data = "12 3"
	if _, err := c.Record(); err == nil {
		t.Error("expected error for odd hex")
	}
}

func TestCaptureFileName(t *testing.T) {
	rec := sampleRecord(t)
	rec.Timestamp = time.Date(2025, 1, 2, 3, 4, 5, 0, time.Local).Unix()

	if got := CaptureFileName(rec); got != "Ford_TPMS_12345678_20250102-030405.yaml" {
		t.Errorf("unexpected name %q", got)
	}
}
