package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/lathe"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of lathe",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("lathe version %s\n", strings.TrimSpace(lathe.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
