// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/tirestat/pkg/edge"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/spf13/cobra"
)

var replayAll bool

var replayCmd = &cobra.Command{
	Use:   "replay <file.sub>",
	Short: "Decode a RAW capture file",
	Long: `Decode every TPMS frame in a RAW capture file.

Accepts .sub RAW captures (the preset and frequency come from the file
header) and plain edge text dumps. Sensors repeat each frame several times;
repeats are collapsed unless --all is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().BoolVar(&replayAll, "all", false, "Print repeated frames too")
}

func runReplay(cmd *cobra.Command, args []string) error {
	src, err := edge.OpenFileSource(args[0])
	if err != nil {
		return err
	}

	sess, err := newSession(src)
	if err != nil {
		return err
	}

	stats := tpms.NewStatistics()
	seen := make(map[string]bool)
	sess.OnEvent = func(ev edge.Event) {
		stats.AddEdges(len(ev.Edges))
	}
	sess.OnReading = func(d tpms.Decoder, r *tpms.Reading, anomalies []tpms.ValidationError) {
		stats.Update(r, anomalies)

		key := r.SensorKey() + " " + tpms.FormatHex(r.Data)
		if seen[key] && !replayAll {
			return
		}
		seen[key] = true

		fmt.Printf("%s\n", d.String())
		fmt.Printf("  Data: %s (%d bits)\n", tpms.FormatHex(r.Data), r.BitCount)
		for _, a := range anomalies {
			fmt.Printf("  Anomaly: %s\n", a.Message)
		}
		fmt.Println()
	}

	fmt.Printf("Replaying %s\n\n", args[0])
	if err := sess.run(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("Receiver: %s\n", sess.preset)
	fmt.Print(stats.String())
	return nil
}
