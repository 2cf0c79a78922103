package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dseeg/IoT-Environment/internal/config"
	"github.com/dseeg/IoT-Environment/internal/logging"
	"github.com/dseeg/IoT-Environment/internal/poller"
	"github.com/dseeg/IoT-Environment/internal/telemetry"
	"github.com/dseeg/IoT-Environment/pkg/ingest"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to YAML config")
	flag.Parse()

	if err := run(configPath); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(cfg.Logging.Level)

	if len(cfg.Poller.Relays) == 0 {
		return fmt.Errorf("no relays configured to poll")
	}

	client := ingest.New(cfg.Poller.ServerURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := &poller.Manager{
		Cfg: cfg.Poller,
		Sink: func(ctx context.Context, m telemetry.Measurement) error {
			_, err := client.PostReport(ctx, m)
			return err
		},
		Log: log,
	}
	return mgr.Run(ctx)
}
