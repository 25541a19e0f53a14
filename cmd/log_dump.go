// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"time"

	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/Thermoquad/tirestat/pkg/store"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/spf13/cobra"
)

var logDumpCmd = &cobra.Command{
	Use:   "log_dump <session.cbor[.zst]>",
	Short: "Print the records of a session log",
	Long: `Print every record of a CBOR session log written by "capture --log".

Each record is restored through its protocol's decoder, so corrupt frames
are reported instead of printed.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogDump,
}

func init() {
	rootCmd.AddCommand(logDumpCmd)
}

func runLogDump(cmd *cobra.Command, args []string) error {
	header, records, err := store.ReadLog(args[0])
	if err != nil && len(records) == 0 {
		return err
	}

	fmt.Printf("Session: %s\n", header.Session)
	fmt.Printf("Started: %s\n", time.Unix(header.Started, 0).Format(time.DateTime))
	fmt.Printf("Records: %d\n\n", len(records))

	rejected := 0
	for i, rec := range records {
		d, restoreErr := tpms.RestoreReading(rec)
		if restoreErr != nil {
			rejected++
			fmt.Printf("[ERROR] record %d (%s): %v\n\n", i, rec.Protocol, restoreErr)
			continue
		}

		fmt.Printf("#%d %s %s\n", i, radio.FormatFrequency(rec.Frequency), rec.Preset)
		fmt.Print(tpms.FormatReading(d.Reading()))
		fmt.Println()
	}

	if rejected > 0 {
		fmt.Printf("%d of %d records rejected\n", rejected, len(records))
	}

	// A truncated tail still prints what was readable
	return err
}
