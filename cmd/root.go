// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/Thermoquad/tirestat/pkg/config"
	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// GPIO capture flags
	gpioChip string
	gpioLine int

	// File replay flag
	inputFile string

	// Receive settings
	configPath    string
	frequencyFlag string
	presetFlag    string
	protocolFlags []string
	logLevel      string

	cfg    = config.Default()
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "tirestat",
	Short: "TPMS Sensor Receiver",
	Long: `Tirestat - A CLI tool for receiving and decoding tire pressure sensors.

Decodes Schrader GG4, Toyota, Ford, GM, Nissan and Hyundai TPMS frames from
demodulated edge timings delivered by a capture bridge, a GPIO line or a
RAW capture file.

Edge sources:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  GPIO:      --gpio-chip gpiochip0 --gpio-line 17
  File:      --file capture.sub

For WebSocket authentication, the password is read from the TIRESTAT_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// GPIO capture flags
	rootCmd.PersistentFlags().StringVar(&gpioChip, "gpio-chip", "", "GPIO chip of a demodulating receiver (linux only)")
	rootCmd.PersistentFlags().IntVar(&gpioLine, "gpio-line", -1, "GPIO line offset on --gpio-chip")

	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "Read edges from a .sub capture or raw edge text file")

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml or .toml)")
	rootCmd.PersistentFlags().StringVar(&frequencyFlag, "frequency", "", "Receive frequency, MHz (433.92) or Hz (433920000)")
	rootCmd.PersistentFlags().StringVar(&presetFlag, "preset", "", "Receive preset (AM270, AM650, FM238, FM476)")
	rootCmd.PersistentFlags().StringSliceVar(&protocolFlags, "protocol", nil, "Only run these decoders (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
}

// setup loads the config file, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("frequency") {
		cfg.Frequency = frequencyFlag
	}
	if flags.Changed("preset") {
		cfg.Preset = presetFlag
	}
	if flags.Changed("protocol") {
		cfg.Protocols = protocolFlags
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return nil
}

// receivePreset returns the configured frequency and preset
func receivePreset() radio.Preset {
	preset, err := cfg.ReceivePreset()
	if err != nil {
		// validated in setup
		panic(err)
	}
	return preset
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
