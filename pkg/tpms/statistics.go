// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// maxSensorSamples bounds the pressure history kept per sensor
const maxSensorSamples = 256

// SensorStats aggregates readings from one sensor
type SensorStats struct {
	Protocol  string
	ID        uint32
	Count     uint64
	Last      *Reading
	FirstSeen time.Time
	LastSeen  time.Time

	pressures []float64
}

// PressureMeanStdDev returns the mean and standard deviation of recent pressures
func (s *SensorStats) PressureMeanStdDev() (mean, std float64) {
	if len(s.pressures) == 0 {
		return 0, 0
	}
	if len(s.pressures) == 1 {
		return s.pressures[0], 0
	}
	return stat.MeanStdDev(s.pressures, nil)
}

// Statistics tracks readings, edges and anomaly counts
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalEdges        uint64
	TotalReadings     uint64
	ValidReadings     uint64
	AnomalousReadings uint64
	PressureRange     uint64
	TemperatureRange  uint64
	InvalidTemp       uint64
	BatteryLow        uint64
	IDZero            uint64

	// Per protocol reading counts
	ByProtocol map[string]uint64

	// Rates (calculated)
	ReadingRate float64 // readings/sec
	EdgeRate    float64 // edges/sec

	sensors map[string]*SensorStats
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
		ByProtocol:     make(map[string]uint64),
		sensors:        make(map[string]*SensorStats),
	}
}

// AddEdges counts edges fed to the receiver
func (s *Statistics) AddEdges(n int) {
	s.TotalEdges += uint64(n)
}

// Update records a reading and its validation errors
func (s *Statistics) Update(r *Reading, validationErrors []ValidationError) {
	s.TotalReadings++
	s.ByProtocol[r.Protocol]++

	if len(validationErrors) > 0 {
		s.AnomalousReadings++
		for _, err := range validationErrors {
			switch err.Type {
			case AnomalyPressureRange:
				s.PressureRange++
			case AnomalyTemperatureRange:
				s.TemperatureRange++
			case AnomalyInvalidTemperature:
				s.InvalidTemp++
			case AnomalyBatteryLow:
				s.BatteryLow++
			case AnomalyIDZero:
				s.IDZero++
			}
		}
	} else {
		s.ValidReadings++
	}

	now := time.Now()
	key := r.SensorKey()
	sensor, ok := s.sensors[key]
	if !ok {
		sensor = &SensorStats{Protocol: r.Protocol, ID: r.ID, FirstSeen: now}
		s.sensors[key] = sensor
	}
	sensor.Count++
	sensor.Last = r
	sensor.LastSeen = now
	sensor.pressures = append(sensor.pressures, r.Pressure)
	if len(sensor.pressures) > maxSensorSamples {
		sensor.pressures = sensor.pressures[len(sensor.pressures)-maxSensorSamples:]
	}

	s.LastUpdateTime = now
}

// Sensors returns per-sensor statistics ordered by protocol then ID
func (s *Statistics) Sensors() []*SensorStats {
	out := make([]*SensorStats, 0, len(s.sensors))
	for _, sensor := range s.sensors {
		out = append(out, sensor)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Protocol != out[j].Protocol {
			return out[i].Protocol < out[j].Protocol
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CalculateRates calculates reading and edge rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.ReadingRate = float64(s.TotalReadings) / elapsed
		s.EdgeRate = float64(s.TotalEdges) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, anomalousPercent float64
	if s.TotalReadings > 0 {
		validPercent = float64(s.ValidReadings) * 100.0 / float64(s.TotalReadings)
		anomalousPercent = float64(s.AnomalousReadings) * 100.0 / float64(s.TotalReadings)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Edges:           %8d\n", s.TotalEdges)
	result += fmt.Sprintf("Total Readings:  %8d\n", s.TotalReadings)
	result += fmt.Sprintf("Valid Readings:  %8d (%.1f%%)\n", s.ValidReadings, validPercent)

	if s.AnomalousReadings > 0 {
		result += fmt.Sprintf("Anomalous:       %8d (%.1f%%)\n", s.AnomalousReadings, anomalousPercent)
		if s.PressureRange > 0 {
			result += fmt.Sprintf("  Pressure Range:   %5d\n", s.PressureRange)
		}
		if s.TemperatureRange > 0 {
			result += fmt.Sprintf("  Temp Range:       %5d\n", s.TemperatureRange)
		}
		if s.InvalidTemp > 0 {
			result += fmt.Sprintf("  Invalid Temp:     %5d\n", s.InvalidTemp)
		}
		if s.BatteryLow > 0 {
			result += fmt.Sprintf("  Battery Low:      %5d\n", s.BatteryLow)
		}
		if s.IDZero > 0 {
			result += fmt.Sprintf("  Zero ID:          %5d\n", s.IDZero)
		}
	}

	for _, p := range Registry {
		if n := s.ByProtocol[p.Name]; n > 0 {
			result += fmt.Sprintf("%-16s %8d\n", p.Name+":", n)
		}
	}

	result += fmt.Sprintf("Sensors:         %8d\n", len(s.sensors))
	result += fmt.Sprintf("Reading Rate:    %8.2f readings/sec\n", s.ReadingRate)
	result += fmt.Sprintf("Edge Rate:       %8.0f edges/sec\n", s.EdgeRate)
	result += "================================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	s.StartTime = now
	s.LastUpdateTime = now
	s.TotalEdges = 0
	s.TotalReadings = 0
	s.ValidReadings = 0
	s.AnomalousReadings = 0
	s.PressureRange = 0
	s.TemperatureRange = 0
	s.InvalidTemp = 0
	s.BatteryLow = 0
	s.IDZero = 0
	s.ByProtocol = make(map[string]uint64)
	s.ReadingRate = 0
	s.EdgeRate = 0
	s.sensors = make(map[string]*SensorStats)
}
