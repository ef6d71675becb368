package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set via ldflags at release build time.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the webcompat version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "webcompat %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
