// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/spf13/cobra"
)

var rawLogCmd = &cobra.Command{
	Use:   "raw_log",
	Short: "Display decoded readings in human-readable format",
	Long: `Continuously decode and display TPMS readings as they arrive.

Each reading is shown with timestamp, protocol, sensor ID, pressure,
temperature, status byte and the raw frame. Anomalous values (implausible
pressure or temperature, low battery) are listed below the reading.

Supports serial, WebSocket, GPIO and file sources.`,
	RunE: runRawLog,
}

func init() {
	rootCmd.AddCommand(rawLogCmd)
}

func runRawLog(cmd *cobra.Command, args []string) error {
	src, connInfo, err := OpenSource()
	if err != nil {
		return err
	}
	defer src.Close()

	sess, err := newSession(src)
	if err != nil {
		return err
	}

	stats := tpms.NewStatistics()
	sess.OnReading = func(_ tpms.Decoder, r *tpms.Reading, anomalies []tpms.ValidationError) {
		stats.Update(r, anomalies)
		fmt.Print(tpms.FormatReading(r))
		for _, a := range anomalies {
			fmt.Printf("  Anomaly: %s\n", a.Message)
		}
	}

	fmt.Printf("Tirestat - Raw Reading Log\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Receiver: %s\n", sess.preset)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sess.run(ctx); err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(stats.String())
	return nil
}
