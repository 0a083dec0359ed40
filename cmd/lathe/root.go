package main

import (
	"fmt"
	"io"
	"os"

	"github.com/aretw0/lathe/internal/adapters/file"
	redisadapter "github.com/aretw0/lathe/internal/adapters/redis"
	"github.com/aretw0/lathe/pkg/ports"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lathe",
	Short: "Lathe is a file-based command bridge for CAD automation",
	Long: `Lathe lets external agents drive a single-threaded CAD host by exchanging
JSON documents (commands.json, results.json, status.json) over a shared
directory, or over Redis when no shared filesystem exists.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", "", "Bridge directory (defaults to .lathe/bridge)")
	rootCmd.PersistentFlags().String("redis", "", "Redis address; when set, the bridge runs over Redis instead of files")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database number")
	rootCmd.PersistentFlags().String("prefix", "", "Redis key prefix (for several bridges on one server)")
}

// openChannel builds the channel the command talks over, honoring the
// persistent --dir / --redis flags.
func openChannel(cmd *cobra.Command) ports.Channel {
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		var opts []redisadapter.Option
		if prefix, _ := cmd.Flags().GetString("prefix"); prefix != "" {
			opts = append(opts, redisadapter.WithPrefix(prefix))
		}
		return redisadapter.New(addr, password, db, opts...)
	}
	dir, _ := cmd.Flags().GetString("dir")
	return file.New(dir)
}

func closeChannel(ch ports.Channel) {
	if c, ok := ch.(io.Closer); ok {
		_ = c.Close()
	}
}
