// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ani-report/internal/sqlitedriver"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of ani-report",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ani-report %s (sqlite: %s)\n", version, sqlitedriver.Backend)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
