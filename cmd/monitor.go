// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/tirestat/pkg/edge"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
	hop           bool
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch sensors, statistics and anomalies",
	Long: `Track every sensor heard, with statistics and anomaly detection.

Each reading is validated and checked for:
  - Pressure outside 0 to 6 bar
  - Temperature outside -40 to 125°C, or not reported
  - Low battery flag
  - Sensor ID zero

By default, only anomalies are logged. Use --show-all to log every reading.

With --hop, the receiver cycles through the configured hop frequencies,
holding while the bridge reports signal. Hopping needs a source that can
retune (serial or WebSocket bridge).`,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all readings (not just anomalies)")
	monitorCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval in text mode (seconds)")
	monitorCmd.Flags().BoolVar(&useTUI, "tui", true, "Use terminal UI (false for text mode)")
	monitorCmd.Flags().BoolVar(&hop, "hop", false, "Hop between the configured frequencies")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	src, connInfo, err := OpenSource()
	if err != nil {
		return err
	}
	defer src.Close()

	sess, err := newSession(src)
	if err != nil {
		return err
	}
	if hop {
		if err := sess.enableHopping(); err != nil {
			return err
		}
	}

	if useTUI {
		return runTUIMode(cmd.Context(), sess, connInfo)
	}
	return runTextMode(cmd.Context(), sess, connInfo)
}

// runTUIMode runs the monitor in TUI mode
func runTUIMode(ctx context.Context, sess *session, connInfo string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := initialModel(connInfo, sess.preset, sess.hopState(), showAll)
	p := tea.NewProgram(m)

	sess.OnEvent = func(ev edge.Event) {
		switch ev.Kind {
		case edge.KindEdges:
			p.Send(edgesMsg{count: len(ev.Edges)})
		case edge.KindRSSI:
			p.Send(radioMsg{rssi: ev.RSSI, hasRSSI: true, hopState: sess.hopState()})
		case edge.KindFrequency:
			p.Send(radioMsg{frequency: ev.Frequency, hopState: sess.hopState()})
		}
	}
	sess.OnReading = func(_ tpms.Decoder, r *tpms.Reading, anomalies []tpms.ValidationError) {
		p.Send(readingMsg{reading: r, anomalies: anomalies})
	}

	go func() {
		err := sess.run(ctx)
		p.Send(sourceDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// runTextMode runs the monitor in text mode
func runTextMode(ctx context.Context, sess *session, connInfo string) error {
	fmt.Printf("Tirestat - Monitor\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Receiver: %s (hopping %s)\n", sess.preset, sess.hopState())
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All readings\n")
	} else {
		fmt.Printf("Mode: Anomalies only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := tpms.NewStatistics()
	lastPrint := time.Now()
	interval := time.Duration(statsInterval) * time.Second

	printStats := func() {
		fmt.Println()
		fmt.Print(stats.String())
		for _, s := range stats.Sensors() {
			mean, std := s.PressureMeanStdDev()
			fmt.Printf("  %-14s %08X  %3d readings  %.2f ± %.2f bar  last %s\n",
				s.Protocol, s.ID, s.Count, mean, std, formatAge(time.Since(s.LastSeen)))
		}
		fmt.Println()
		lastPrint = time.Now()
	}

	sess.OnEvent = func(ev edge.Event) {
		switch ev.Kind {
		case edge.KindEdges:
			stats.AddEdges(len(ev.Edges))
		case edge.KindFrequency:
			if showAll {
				fmt.Printf("[TUNE] %s\n", sess.preset)
			}
		}
		if interval > 0 && time.Since(lastPrint) >= interval {
			printStats()
		}
	}
	sess.OnReading = func(_ tpms.Decoder, r *tpms.Reading, anomalies []tpms.ValidationError) {
		stats.Update(r, anomalies)

		if len(anomalies) > 0 {
			printAnomalies(r, anomalies)
		} else if showAll {
			fmt.Print(tpms.FormatReading(r))
		}
	}

	err := sess.run(ctx)
	printStats()
	return err
}

// printAnomalies prints the anomalies of a reading in highlighted format
func printAnomalies(r *tpms.Reading, anomalies []tpms.ValidationError) {
	timestamp := r.Received.Format("15:04:05.000")
	fmt.Printf("[%s] \033[1;33mANOMALY:\033[0m %s id=%08X\n", timestamp, r.Protocol, r.ID)
	fmt.Printf("  Checksum: \033[1;32mOK\033[0m\n")

	for i, a := range anomalies {
		switch a.Type {
		case tpms.AnomalyPressureRange:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, a.Message)
			fmt.Printf("    Pressure=%.3f bar (%.1f PSI)\n", r.Pressure, r.PressurePSI())

		case tpms.AnomalyTemperatureRange:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, a.Message)
			fmt.Printf("    Temperature=%.1f°C (valid: %.0f to %.0f°C)\n", r.Temperature, tpms.MinTemperatureC, tpms.MaxTemperatureC)

		case tpms.AnomalyBatteryLow:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, a.Message)

		default:
			fmt.Printf("  Issue %d: %s\n", i+1, a.Message)
		}
	}

	fmt.Printf("  Data: %s\n\n", tpms.FormatHex(r.Data))
}
