// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package publish forwards readings to MQTT and exposes Prometheus metrics.
package publish

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Thermoquad/tirestat/pkg/tpms"
)

// DefaultTopicPrefix is used when no prefix is configured
const DefaultTopicPrefix = "tirestat"

// Publisher publishes readings to a broker
type Publisher interface {
	// Publish sends one reading. Errors are reported, not fatal.
	Publish(r *tpms.Reading) error

	// Close disconnects from the broker
	Close() error
}

// Payload is the JSON document published per reading
type Payload struct {
	Timestamp   string   `json:"timestamp"`
	Protocol    string   `json:"protocol"`
	ID          string   `json:"id"`
	PressureBar float64  `json:"pressure_bar"`
	PressureKPa float64  `json:"pressure_kpa"`
	PressurePSI float64  `json:"pressure_psi"`
	Temperature *float64 `json:"temperature_c"`
	Battery     string   `json:"battery"`
	Mode        string   `json:"mode,omitempty"`
	Data        string   `json:"data"`
}

// FormatPayload creates the JSON payload for a reading
func FormatPayload(r *tpms.Reading) ([]byte, error) {
	ts := r.Received
	if ts.IsZero() {
		ts = time.Now()
	}

	p := Payload{
		Timestamp:   ts.UTC().Format(time.RFC3339),
		Protocol:    r.Protocol,
		ID:          fmt.Sprintf("%08X", r.ID),
		PressureBar: round(r.Pressure, 3),
		PressureKPa: round(r.PressureKPa(), 1),
		PressurePSI: round(r.PressurePSI(), 1),
		Battery:     r.Battery().String(),
		Data:        tpms.FormatHex(r.Data),
	}
	if r.TemperatureValid() {
		temp := r.Temperature
		p.Temperature = &temp
	}
	if r.Status != nil {
		p.Mode = r.Status.Mode()
	}
	return json.Marshal(p)
}

// Topic returns the topic for a reading: <prefix>/<protocol>/<id>.
// Protocol names are lower cased with spaces replaced.
func Topic(prefix string, r *tpms.Reading) string {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	proto := strings.ToLower(strings.ReplaceAll(r.Protocol, " ", "_"))
	return fmt.Sprintf("%s/%s/%08X", strings.TrimSuffix(prefix, "/"), proto, r.ID)
}

func round(v float64, places int) float64 {
	scale := math.Pow10(places)
	return math.Round(v*scale) / scale
}
