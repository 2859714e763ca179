// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ani-report/internal/export"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported output formats",
	Run: func(cmd *cobra.Command, args []string) {
		exp := export.New(nil)
		for _, name := range exp.Formats() {
			f, _ := exp.Lookup(name)
			note := ""
			if name == export.DefaultFormat {
				note = " (always written)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s .%s%s\n", name, f.Ext, note)
		}
	},
}

func init() {
	rootCmd.AddCommand(formatsCmd)
}
