package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the scribbly release.
const Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of scribbly",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "scribbly version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
