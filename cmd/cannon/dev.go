package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cannon-dev/cannon/internal/build"
	"github.com/cannon-dev/cannon/internal/dev"
)

func devCmd(flags *globalFlags) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Regenerate routers on change and serve them",
		Long: `Start the dev server.

The dev server watches the artifacts directory and the router definition
file, regenerates every router on change and serves the results.

Endpoints:
  GET /routers            generated routers
  GET /routers/{name}     router source
  GET /healthz            status of the last regeneration
  GET /metrics            Prometheus metrics
  GET /_cannon/events     WebSocket stream of regeneration events

Examples:
  cannon dev
  cannon dev --port=8080
  cannon dev --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(cmd.Context(), flags, port, host)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from cannon.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from cannon.json)")

	return cmd
}

func runDev(ctx context.Context, flags *globalFlags, port int, host string) error {
	cfg, err := loadConfig(flags.dir)
	if err != nil {
		return err
	}

	if port > 0 {
		cfg.Dev.Port = port
	}
	if host != "" {
		cfg.Dev.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}

	server, err := dev.NewServer(ctx, dev.ServerOptions{
		Config: cfg,
		Logger: slog.Default(),
		OnRebuild: func(result *build.Result, err error) {
			if err != nil {
				printError(err)
				return
			}
			success("Regenerated %d routers in %s", len(result.Routers), result.Duration.Round(1000000))
		},
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	info("Watching %s", cfg.ArtifactsPath())
	info("Routers from %s", cfg.DefinitionsPath())
	fmt.Println()

	err = server.Start(ctx)
	fmt.Println("\n  Shutting down...")
	return err
}
