// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/tirestat/pkg/edge"
	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/spf13/cobra"
)

var (
	bridgeCheckDuration int
	bridgeCheckTimeout  int
)

var bridgeCheckCmd = &cobra.Command{
	Use:   "bridge_check",
	Short: "Test a capture bridge connection",
	Long: `Test the connection to a serial or WebSocket capture bridge without decoding.

The command first asks the bridge to tune to the configured frequency and
waits for its Frequency confirmation, then listens for --duration seconds
and reports the edge, RSSI and event counts it received.

This is useful for verifying:
  - The bridge connection is established
  - HTTP Basic authentication works (WebSocket)
  - Tune requests reach the radio
  - Edge data is flowing

Exit codes:
  0 - Tune confirmed and connection stable
  1 - No tune confirmation, or the connection dropped
  2 - Connection error`,
	RunE: runBridgeCheck,
}

func init() {
	rootCmd.AddCommand(bridgeCheckCmd)
	bridgeCheckCmd.Flags().IntVar(&bridgeCheckDuration, "duration", 30, "Listen duration in seconds")
	bridgeCheckCmd.Flags().IntVar(&bridgeCheckTimeout, "timeout", 5, "Timeout in seconds for the tune confirmation")
}

func runBridgeCheck(cmd *cobra.Command, args []string) error {
	src, connInfo, err := OpenSource()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer src.Close()

	tuner, ok := src.(edge.Tuner)
	if !ok {
		fmt.Fprintf(os.Stderr, "Connection error: %s is not a bridge\n", connInfo)
		os.Exit(2)
	}

	preset := receivePreset()

	fmt.Printf("Tirestat - Bridge Check\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Tune: %s MHz\n", preset.FrequencyString())
	fmt.Printf("Duration: %d seconds\n\n", bridgeCheckDuration)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	events := make(chan edge.Event, 64)
	errChan := make(chan error, 1)
	go func() {
		errChan <- src.Run(ctx, events)
	}()

	radio.MustValidFrequency(preset.Frequency)
	sent := time.Now()
	if err := tuner.Tune(preset.Frequency); err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}

	confirmed := false
	edges, received, rssiReports := 0, 0, 0
	lastRSSI := 0.0

	tuneTimeout := time.After(time.Duration(bridgeCheckTimeout) * time.Second)
	end := time.After(time.Duration(bridgeCheckDuration) * time.Second)
	heartbeat := time.NewTicker(time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case ev := <-events:
			received++
			switch ev.Kind {
			case edge.KindEdges:
				edges += len(ev.Edges)
			case edge.KindRSSI:
				rssiReports++
				lastRSSI = ev.RSSI
			case edge.KindFrequency:
				if ev.Frequency == preset.Frequency && !confirmed {
					confirmed = true
					fmt.Printf("[%s] Tune confirmed: %s MHz (%.0f ms)\n",
						time.Now().Format("15:04:05.000"), radio.FormatFrequency(ev.Frequency),
						float64(time.Since(sent).Microseconds())/1000)
				}
			}

		case <-tuneTimeout:
			if !confirmed {
				fmt.Printf("[%s] No tune confirmation within %d seconds\n",
					time.Now().Format("15:04:05.000"), bridgeCheckTimeout)
			}

		case err := <-errChan:
			fmt.Printf("\n[%s] Connection error: %v\n", time.Now().Format("15:04:05.000"), err)
			printBridgeResults(received, edges, rssiReports, lastRSSI)
			fmt.Printf("Result: FAILED (connection error)\n")
			os.Exit(1)

		case <-heartbeat.C:
			fmt.Printf("[%s] Still connected... %d edges, %d events\n",
				time.Now().Format("15:04:05.000"), edges, received)

		case <-end:
			printBridgeResults(received, edges, rssiReports, lastRSSI)
			if !confirmed {
				fmt.Printf("Result: FAILED (tune not confirmed)\n")
				os.Exit(1)
			}
			fmt.Printf("Result: PASSED (connection stable)\n")
			return nil
		}
	}
}

func printBridgeResults(events, edges, rssiReports int, lastRSSI float64) {
	fmt.Printf("\n--- Test Results ---\n")
	fmt.Printf("Events received: %d\n", events)
	fmt.Printf("Edges received: %d\n", edges)
	fmt.Printf("RSSI reports: %d", rssiReports)
	if rssiReports > 0 {
		fmt.Printf(" (last %.1f dBm)", lastRSSI)
	}
	fmt.Println()
}
