// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package tpms

import "time"

// BatteryState is the battery condition reported by a sensor
type BatteryState int

const (
	BatteryUnknown BatteryState = iota
	BatteryOK
	BatteryLow
)

// String returns the short display form used on the receiver screen
func (b BatteryState) String() string {
	switch b {
	case BatteryOK:
		return "OK"
	case BatteryLow:
		return "LOW"
	default:
		return "?"
	}
}

// Status is the protocol specific status carried by a frame.
// Each protocol keeps its native fields; Mode and Battery project them
// to a uniform form for display.
type Status interface {
	Mode() string
	Battery() BatteryState
	Byte() byte
}

// Reading is a validated, decoded sensor frame
type Reading struct {
	Protocol    string
	ID          uint32
	Pressure    float64 // bar
	Temperature float64 // °C, TemperatureInvalid when unavailable
	Status      Status
	Data        []byte // complete frame, MSB first
	BitCount    int
	Received    time.Time
}

// TemperatureValid reports whether the frame carried a usable temperature
func (r *Reading) TemperatureValid() bool {
	return r.Temperature > TemperatureInvalid+1
}

// PressureKPa returns the pressure in kPa
func (r *Reading) PressureKPa() float64 {
	return r.Pressure / kPaToBar
}

// PressurePSI returns the pressure in PSI
func (r *Reading) PressurePSI() float64 {
	return r.Pressure / psiToBar
}

// Battery returns the battery state, BatteryUnknown when no status is present
func (r *Reading) Battery() BatteryState {
	if r.Status == nil {
		return BatteryUnknown
	}
	return r.Status.Battery()
}

// SensorKey identifies a sensor across protocols
func (r *Reading) SensorKey() string {
	return sensorKey(r.Protocol, r.ID)
}

//////////////////////////////////////////////////////////////
// Status variants
//////////////////////////////////////////////////////////////

// FordStatus holds the Ford flags byte (frame byte 6)
type FordStatus struct {
	Flags byte
}

func (s FordStatus) Moving() bool      { return s.Flags&0x44 == 0x44 }
func (s FordStatus) Learn() bool       { return s.Flags&0x08 != 0 }
func (s FordStatus) PressureMSB() bool { return s.Flags&0x20 != 0 }
func (s FordStatus) Byte() byte        { return s.Flags }

// Battery is not reported by Ford sensors
func (s FordStatus) Battery() BatteryState { return BatteryUnknown }

func (s FordStatus) Mode() string {
	switch {
	case s.Moving():
		return "Moving"
	case s.Learn():
		return "Learn"
	default:
		return "Rest"
	}
}

// GMStatus holds the GM status byte (frame byte 6)
type GMStatus struct {
	Raw byte
}

func (s GMStatus) Fast() bool { return s.Raw&0x80 != 0 }
func (s GMStatus) Byte() byte { return s.Raw }

func (s GMStatus) Battery() BatteryState {
	return batteryFromBit(s.Raw&0x40 != 0)
}

func (s GMStatus) Mode() string {
	return modeFromBattery(s.Battery())
}

// HyundaiStatus holds the Hyundai status byte (frame byte 7)
type HyundaiStatus struct {
	Raw byte
}

func (s HyundaiStatus) Fast() bool  { return s.Raw&0x80 != 0 }
func (s HyundaiStatus) Learn() bool { return s.Raw&0x20 != 0 }
func (s HyundaiStatus) Byte() byte  { return s.Raw }

func (s HyundaiStatus) Battery() BatteryState {
	return batteryFromBit(s.Raw&0x40 != 0)
}

func (s HyundaiStatus) Mode() string {
	return modeFromBattery(s.Battery())
}

// NissanStatus holds the Nissan flags byte (frame byte 8)
type NissanStatus struct {
	Raw byte
}

func (s NissanStatus) Learn() bool { return s.Raw&0x40 != 0 }
func (s NissanStatus) Byte() byte  { return s.Raw }

func (s NissanStatus) Battery() BatteryState {
	return batteryFromBit(s.Raw&0x80 != 0)
}

func (s NissanStatus) Mode() string {
	return modeFromBattery(s.Battery())
}

// ToyotaStatus holds the reassembled Toyota status bits
type ToyotaStatus struct {
	Raw byte
}

func (s ToyotaStatus) Byte() byte { return s.Raw }

func (s ToyotaStatus) Battery() BatteryState {
	return batteryFromBit(s.Raw&0x80 != 0)
}

func (s ToyotaStatus) Mode() string {
	return modeFromBattery(s.Battery())
}

// SchraderStatus holds the Schrader flags byte (frame byte 0)
type SchraderStatus struct {
	Raw byte
}

func (s SchraderStatus) Byte() byte            { return s.Raw }
func (s SchraderStatus) Battery() BatteryState { return BatteryUnknown }
func (s SchraderStatus) Mode() string          { return "Normal" }

func batteryFromBit(low bool) BatteryState {
	if low {
		return BatteryLow
	}
	return BatteryOK
}

func modeFromBattery(b BatteryState) string {
	if b == BatteryLow {
		return "Battery Low"
	}
	return "Normal"
}
