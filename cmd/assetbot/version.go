package main

import (
	"fmt"

	"github.com/aretw0/assetbot"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of assetbot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "assetbot version %s\n", assetbot.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
