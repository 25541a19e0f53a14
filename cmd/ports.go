// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.bug.st/serial"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List serial ports that may carry a capture bridge",
	Long: `List the serial ports present on this machine.

A capture bridge appears as a USB serial device, usually /dev/ttyACM* or
/dev/ttyUSB* on Linux. Pass it to other commands with --port.

Exit codes:
  0 - At least one port found
  1 - No ports found
  2 - Enumeration error`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	rootCmd.AddCommand(portsCmd)
}

func runPorts(cmd *cobra.Command, args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Enumeration error: %v\n", err)
		os.Exit(2)
	}

	if len(ports) == 0 {
		fmt.Fprintf(os.Stderr, "No serial ports found\n")
		os.Exit(1)
	}

	fmt.Printf("Found %d serial port(s):\n", len(ports))
	for _, p := range ports {
		fmt.Printf("  %s\n", p)
	}
	return nil
}
