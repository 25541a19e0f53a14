// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Thermoquad/tirestat/pkg/store"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/spf13/cobra"
)

var (
	captureDir    string
	captureLog    string
	captureRepeat time.Duration
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Save received readings as capture files",
	Long: `Save every new TPMS reading as a YAML capture file.

Each file holds the serialized frame, the receive preset and the decoded
values, and can be loaded again with "show". Repeated copies of a frame
within --repeat are saved once. A dropped bridge connection is reopened.

With --log, every saved record is also appended to a CBOR session log.
Log paths ending in .zst are zstd compressed.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	captureCmd.Flags().StringVar(&captureDir, "dir", "", "Capture directory (default from config)")
	captureCmd.Flags().StringVar(&captureLog, "log", "", "Append records to this session log")
	captureCmd.Flags().DurationVar(&captureRepeat, "repeat", 2*time.Second, "Window in which identical frames are saved once")
}

func runCapture(cmd *cobra.Command, args []string) error {
	dir := captureDir
	if dir == "" {
		dir = cfg.CaptureDir
	}

	src, connInfo, err := OpenSource()
	if err != nil {
		return err
	}
	sess, err := newSession(src)
	if err != nil {
		src.Close()
		return err
	}
	defer func() { sess.source.Close() }()

	sessionID := store.NewSessionID()

	var logWriter *store.LogWriter
	if captureLog != "" {
		logWriter, err = store.CreateLog(captureLog, sessionID)
		if err != nil {
			return err
		}
		defer func() {
			if err := logWriter.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close session log")
			}
		}()
	}

	filter := newRepeatFilter(captureRepeat)
	saved := 0
	sess.OnReading = func(d tpms.Decoder, r *tpms.Reading, _ []tpms.ValidationError) {
		if !filter.fresh(r) {
			return
		}

		rec, err := d.Serialize(sess.preset)
		if err != nil {
			logger.Error().Err(err).Str("protocol", r.Protocol).Msg("serialize failed")
			return
		}

		path, err := store.SaveRecord(dir, rec, sessionID)
		if err != nil {
			logger.Error().Err(err).Msg("failed to save capture")
			return
		}
		saved++
		fmt.Printf("[%s] %s %08X -> %s\n", r.Received.Format("15:04:05"), r.Protocol, r.ID, path)

		if logWriter != nil {
			if err := logWriter.Append(rec); err != nil {
				logger.Error().Err(err).Msg("failed to append to session log")
			} else if err := logWriter.Flush(); err != nil {
				logger.Error().Err(err).Msg("failed to flush session log")
			}
		}
	}

	fmt.Printf("Tirestat - Capture\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Receiver: %s\n", sess.preset)
	fmt.Printf("Session: %s\n", sessionID)
	fmt.Printf("Directory: %s\n", dir)
	if captureLog != "" {
		fmt.Printf("Log: %s\n", captureLog)
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sess.runSupervised(ctx, OpenSource); err != nil {
		return err
	}

	fmt.Printf("\nSaved %d captures\n", saved)
	return nil
}
