package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/lathe/internal/presentation/tui"
	"github.com/aretw0/lathe/pkg/agent"
	"github.com/aretw0/lathe/pkg/domain"
	"github.com/aretw0/lifecycle"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the bridge status document",
	Run: func(cmd *cobra.Command, args []string) {
		ch := openChannel(cmd)
		defer closeChannel(ch)

		client := agent.New(ch)
		render := tui.NewRenderer()
		watch, _ := cmd.Flags().GetBool("watch")

		if !watch {
			if !printStatus(context.Background(), client, render) {
				os.Exit(1)
			}
			return
		}

		ctx := lifecycle.NewSignalContext(context.Background())
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			printStatus(ctx, client, render)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	},
}

func printStatus(ctx context.Context, client *agent.Client, render func(string) (string, error)) bool {
	st, err := client.Status(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoStatus) {
			fmt.Println("No status published yet. Is the bridge running?")
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		return false
	}

	md := fmt.Sprintf(`## Bridge Status

| Field | Value |
| --- | --- |
| State | %s |
| Last processed id | %d |
| Instance | %s |
| Updated | %s |
`, st.State, st.LastProcessedID, st.InstanceID, st.Timestamp.Local().Format(time.RFC3339))
	if st.LastError != "" {
		md += fmt.Sprintf("\n**Last error:** %s\n", st.LastError)
	}

	out, err := render(md)
	if err != nil {
		fmt.Print(md)
		return true
	}
	fmt.Print(out)
	return true
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolP("watch", "w", false, "Re-render the status every second until interrupted")
}
