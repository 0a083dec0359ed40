package main

import (
	"fmt"
	"os"

	"github.com/aretw0/lathe/internal/presentation/tui"
	"github.com/aretw0/lathe/pkg/export"
	"github.com/aretw0/lathe/pkg/handlers"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List the actions a bridge built from the default catalog accepts",
	Run: func(cmd *cobra.Command, args []string) {
		reg, err := handlers.Catalog(export.New("exports"))
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		names := reg.Names()
		md := fmt.Sprintf("# Actions (%d)\n\n", len(names))
		for _, name := range names {
			md += fmt.Sprintf("- `%s`\n", name)
		}

		render := tui.NewRenderer()
		out, err := render(md)
		if err != nil {
			fmt.Print(md)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(actionsCmd)
}
