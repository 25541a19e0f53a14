// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import "fmt"

// AnomalyType represents different kinds of suspicious readings
type AnomalyType int

const (
	AnomalyPressureRange AnomalyType = iota
	AnomalyTemperatureRange
	AnomalyInvalidTemperature
	AnomalyBatteryLow
	AnomalyIDZero
)

// Plausible ranges for a passenger vehicle tire
const (
	MaxPressureBar  = 6.0
	MinTemperatureC = -40.0
	MaxTemperatureC = 125.0
)

// ValidationError describes an anomaly in an otherwise valid frame
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidateReading checks the decoded values for anomalies.
// Returns an empty slice when the reading looks plausible.
func ValidateReading(r *Reading) []ValidationError {
	errors := []ValidationError{}

	if r.ID == 0 {
		errors = append(errors, ValidationError{
			Type:    AnomalyIDZero,
			Message: "Sensor ID is zero",
			Details: map[string]interface{}{"protocol": r.Protocol},
		})
	}

	if r.Pressure < 0 || r.Pressure > MaxPressureBar {
		errors = append(errors, ValidationError{
			Type:    AnomalyPressureRange,
			Message: fmt.Sprintf("Pressure out of range (%.2f bar, valid: 0 to %.1f bar)", r.Pressure, MaxPressureBar),
			Details: map[string]interface{}{"value": r.Pressure, "min": 0.0, "max": MaxPressureBar},
		})
	}

	if !r.TemperatureValid() {
		errors = append(errors, ValidationError{
			Type:    AnomalyInvalidTemperature,
			Message: "Temperature flagged invalid by sensor",
			Details: map[string]interface{}{},
		})
	} else if r.Temperature < MinTemperatureC || r.Temperature > MaxTemperatureC {
		errors = append(errors, ValidationError{
			Type:    AnomalyTemperatureRange,
			Message: fmt.Sprintf("Temperature out of range (%.0f°C, valid: %.0f to %.0f°C)", r.Temperature, MinTemperatureC, MaxTemperatureC),
			Details: map[string]interface{}{"value": r.Temperature, "min": MinTemperatureC, "max": MaxTemperatureC},
		})
	}

	if r.Battery() == BatteryLow {
		errors = append(errors, ValidationError{
			Type:    AnomalyBatteryLow,
			Message: fmt.Sprintf("Battery low on sensor %08X", r.ID),
			Details: map[string]interface{}{"id": r.ID},
		})
	}

	return errors
}
