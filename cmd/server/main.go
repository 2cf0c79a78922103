package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dseeg/IoT-Environment/internal/api"
	"github.com/dseeg/IoT-Environment/internal/bridge"
	"github.com/dseeg/IoT-Environment/internal/config"
	"github.com/dseeg/IoT-Environment/internal/logging"
	"github.com/dseeg/IoT-Environment/internal/store"
	"github.com/dseeg/IoT-Environment/internal/telemetry"
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

	st, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	svc := telemetry.NewService(st, log)
	server := api.NewServer(svc, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MQTT.Enabled {
		br := bridge.New(cfg.MQTT, svc, log)
		if err := br.Start(ctx); err != nil {
			return fmt.Errorf("start mqtt bridge: %w", err)
		}
		defer br.Stop()
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddress,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Server.ListenAddress).Msg("http server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
