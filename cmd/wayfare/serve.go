package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wayfare-dev/wayfare/internal/config"
	"github.com/wayfare-dev/wayfare/pkg/middleware"
	"github.com/wayfare-dev/wayfare/pkg/server"
)

func serveCmd() *cobra.Command {
	var (
		port    int
		host    string
		verbose bool
		tracing bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the navigation server",
		Long: `Start the Wayfare server using the route table from wayfare.json.

The server exposes the WebSocket navigation endpoint, a JSON resolve
endpoint for any URL, a health probe, and optionally Prometheus metrics.

Examples:
  wayfare serve
  wayfare serve --port=8080
  wayfare serve --host=0.0.0.0 --tracing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host, verbose, tracing)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from wayfare.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from wayfare.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "Enable OpenTelemetry tracing of navigations")

	return cmd
}

func runServe(port int, host string, verbose, tracing bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	// Command-line overrides.
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	table, err := cfg.BuildTable()
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	srvCfg := server.DefaultServerConfig()
	srvCfg.Address = cfg.Address()
	srvCfg.Metrics = cfg.Server.Metrics

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithPreloadConfig(cfg.PreloadSettings()),
		server.WithHistoryLimit(cfg.History.Limit),
		server.WithDispatchMiddleware(middleware.Prometheus()),
	}
	if tracing {
		opts = append(opts, server.WithDispatchMiddleware(middleware.OpenTelemetry()))
	}

	srv := server.New(table, srvCfg, opts...)

	printBanner()
	fmt.Println()
	success("Route table loaded (%d routes)", table.Len())
	info("Listening on %s", cfg.URL())
	if cfg.Server.Metrics {
		info("Metrics at %s/metrics", cfg.URL())
	}
	fmt.Println()

	return srv.Run()
}
