package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "v0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the tempo version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tempo %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
