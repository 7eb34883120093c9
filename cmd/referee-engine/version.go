// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/referee-engine/internal/pipeline"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of referee-engine",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("referee-engine %s (pipeline %s)\n", version, pipeline.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
