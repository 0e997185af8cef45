package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of constitution-qa",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("constitution-qa %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
