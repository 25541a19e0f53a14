// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/Thermoquad/tirestat/pkg/radio"
	"github.com/Thermoquad/tirestat/pkg/tpms"
	"github.com/spf13/cobra"
)

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show recommended frequency and preset per vehicle",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(radio.FormatGuide())
	},
}

var protocolsCmd = &cobra.Command{
	Use:   "protocols",
	Short: "List the supported sensor protocols",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range tpms.Registry {
			fmt.Println(tpms.FormatProtocol(p))
		}
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
	rootCmd.AddCommand(protocolsCmd)
}
