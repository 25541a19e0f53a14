// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/Thermoquad/tirestat/pkg/store"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <capture.yaml>",
	Short: "Load a capture file and display the reading",
	Long: `Load a saved capture, restore it into the decoder for its protocol and
display the reading.

The frame is checked against the protocol's bit count and checksum, so a
hand-edited or truncated capture is rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	capture, err := store.LoadCapture(args[0])
	if err != nil {
		return err
	}

	rec, err := capture.Record()
	if err != nil {
		return err
	}

	d, err := tpms.RestoreReading(rec)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	fmt.Printf("%s %s\n", capture.Filetype, capture.Version)
	if capture.Session != "" {
		fmt.Printf("Session: %s\n", capture.Session)
	}
	fmt.Printf("Receiver: %s %s\n\n", radio.FormatFrequency(rec.Frequency), rec.Preset)
	fmt.Printf("%s\n\n", d.String())
	fmt.Print(tpms.FormatReading(d.Reading()))
	for _, a := range tpms.ValidateReading(d.Reading()) {
		fmt.Printf("  Anomaly: %s\n", a.Message)
	}
	return nil
}
