package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/lathe/pkg/agent"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Ask the running bridge to export the current design session",
	Long:  `Shorthand for 'lathe send export_session --wait'.`,
	Run: func(cmd *cobra.Command, args []string) {
		ch := openChannel(cmd)
		defer closeChannel(ch)

		params := map[string]any{}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			params["name"] = name
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		res, err := agent.New(ch).SendAndWait(ctx, "export_session", params)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		printResult(res)
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().String("name", "", "Session name (defaults to the design name)")
	exportCmd.Flags().Duration("timeout", time.Minute, "How long to wait for the export to finish")
}
