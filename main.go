// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// Tirestat - TPMS Sensor Receiver
//
// A CLI tool for receiving, decoding and recording tire pressure
// monitoring sensor transmissions.

package main

import (
	"os"

	"github.com/Thermoquad/tirestat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
