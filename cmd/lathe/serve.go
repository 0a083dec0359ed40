package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/lathe"
	httpadapter "github.com/aretw0/lathe/internal/adapters/http"
	redisadapter "github.com/aretw0/lathe/internal/adapters/redis"
	"github.com/aretw0/lathe/internal/config"
	"github.com/aretw0/lathe/internal/logging"
	"github.com/aretw0/lathe/internal/metrics"
	"github.com/aretw0/lathe/internal/presentation/tui"
	"github.com/aretw0/lifecycle"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge against the simulated CAD host",
	Long: `Starts the bridge loop: poll the command document, hand new commands to the
host thread, publish results and status. Runs until interrupted.

Settings come from an optional config file (lathe.yaml next to the working
directory by default); flags always win over the file.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath, cmd.Flags().Changed("config"))
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		// Flags win over the file.
		if cmd.Flags().Changed("dir") {
			cfg.Dir, _ = cmd.Flags().GetString("dir")
		}
		if cmd.Flags().Changed("interval") {
			cfg.Interval, _ = cmd.Flags().GetString("interval")
		}
		if cmd.Flags().Changed("http") {
			cfg.HTTP, _ = cmd.Flags().GetString("http")
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		if cmd.Flags().Changed("design") {
			cfg.DesignName, _ = cmd.Flags().GetString("design")
		}
		if cmd.Flags().Changed("redis") {
			cfg.Redis.Address, _ = cmd.Flags().GetString("redis")
		}
		if cmd.Flags().Changed("redis-password") {
			cfg.Redis.Password, _ = cmd.Flags().GetString("redis-password")
		}
		if cmd.Flags().Changed("redis-db") {
			cfg.Redis.DB, _ = cmd.Flags().GetInt("redis-db")
		}
		if cmd.Flags().Changed("prefix") {
			cfg.Redis.Prefix, _ = cmd.Flags().GetString("prefix")
		}

		if err := cfg.Validate(); err != nil {
			fmt.Printf("Invalid config: %v\n", err)
			os.Exit(1)
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			fmt.Printf("Invalid config: %v\n", err)
			os.Exit(1)
		}
		logger := logging.New(level)

		registry := prometheus.NewRegistry()
		m := metrics.New(registry)

		opts := []lathe.Option{
			lathe.WithLogger(logger),
			lathe.WithLifecycleHooks(m.Hooks()),
			lathe.WithPollInterval(cfg.PollInterval()),
			lathe.WithDesignName(cfg.DesignName),
		}
		if cfg.Redis.Address != "" {
			var ropts []redisadapter.Option
			if cfg.Redis.Prefix != "" {
				ropts = append(ropts, redisadapter.WithPrefix(cfg.Redis.Prefix))
			}
			rch := redisadapter.New(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, ropts...)
			defer rch.Close()
			opts = append(opts, lathe.WithChannel(rch))
		}

		b, err := lathe.New(cfg.Dir, opts...)
		if err != nil {
			fmt.Printf("Error initializing lathe: %v\n", err)
			os.Exit(1)
		}

		if tui.Interactive() {
			tui.PrintBanner(strings.TrimSpace(lathe.Version))
		}

		ctx := lifecycle.NewSignalContext(context.Background())

		if cfg.HTTP != "" {
			srv := &http.Server{
				Addr:    cfg.HTTP,
				Handler: httpadapter.NewHandler(b.Channel(), b.Actions(), registry),
			}
			lifecycle.Go(ctx, func(ctx context.Context) error {
				logger.Info("observer server listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("observer server failed", "error", err)
				}
				return nil
			})
			lifecycle.Go(ctx, func(ctx context.Context) error {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
		}

		if err := b.Run(ctx); err != nil {
			logger.Error("bridge failed", "error", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("interval", "1s", "Poll interval, e.g. 500ms")
	serveCmd.Flags().String("http", "", "Address for the HTTP observer server, e.g. :8080 (disabled when empty)")
	serveCmd.Flags().String("log-level", "info", "Log level: debug, info, warn or error")
	serveCmd.Flags().String("design", "Untitled", "Name of the design the host starts with")
	serveCmd.Flags().String("config", "lathe.yaml", "Path to a YAML or JSON config file")
}
