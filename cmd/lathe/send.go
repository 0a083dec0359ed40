package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/lathe/pkg/agent"
	"github.com/aretw0/lathe/pkg/domain"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <action>",
	Short: "Write a command for the bridge and wait for its result",
	Long: `Writes the next command document for a running bridge. The id is picked
from the status watermark so restarts never reuse a processed id.

By default the command waits for the matching result; use --wait=false to
fire and forget.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ch := openChannel(cmd)
		defer closeChannel(ch)

		params := map[string]any{}
		if raw, _ := cmd.Flags().GetString("params"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &params); err != nil {
				fmt.Printf("Invalid --params: %v\n", err)
				os.Exit(1)
			}
		}
		wait, _ := cmd.Flags().GetBool("wait")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		client := agent.New(ch)
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if !wait {
			id, err := client.Send(ctx, args[0], params)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("Command %d written\n", id)
			return
		}

		res, err := client.SendAndWait(ctx, args[0], params)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		printResult(res)
	},
}

// printResult prints the result document as JSON and exits non-zero for
// failed commands so scripts can chain on the exit code.
func printResult(res *domain.Result) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		fmt.Printf("Error rendering result: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
	if !res.Success {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().String("params", "", "Action parameters as a JSON object")
	sendCmd.Flags().Bool("wait", true, "Wait for the matching result")
	sendCmd.Flags().Duration("timeout", 30*time.Second, "How long to wait for the result")
}
