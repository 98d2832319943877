package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	inputhttp "github.com/dfleischhacker/ha-here-travel-time/internal/adapters/input/http"
	"github.com/dfleischhacker/ha-here-travel-time/internal/adapters/output/here"
	"github.com/dfleischhacker/ha-here-travel-time/internal/adapters/output/homeassistant"
	"github.com/dfleischhacker/ha-here-travel-time/internal/domain/service"
	"github.com/dfleischhacker/ha-here-travel-time/internal/infrastructure/config"
	"github.com/dfleischhacker/ha-here-travel-time/internal/infrastructure/logging"
)

// main is the composition root. It wires the Home Assistant and HERE
// adapters behind ports, sets up every configured sensor, and runs the
// periodic update ticker next to the service-call HTTP server.
func main() {
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.New(config.LoggingConfig{}).Error("configuration error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)

	haClient := homeassistant.NewClient(cfg.HomeAssistant.URL, cfg.HomeAssistant.Token)
	registry := service.NewRegistry()
	platform := service.NewPlatform(haClient, registry, logger, cfg.Throttle())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for i := range cfg.Sensors {
		sensorCfg := cfg.SensorModel(i)
		router, err := here.NewClient(sensorCfg.AppID, sensorCfg.AppCode)
		if err != nil {
			logger.Error("skipping sensor", "name", sensorCfg.DisplayName(), "error", err)
			continue
		}
		platform.SetupSensor(ctx, sensorCfg, router)
	}

	go runUpdates(ctx, platform, cfg.ScanInterval(), logger)

	server := inputhttp.NewServer(registry, logger.With("component", "http"))
	logger.Info("service listening", "addr", cfg.ListenAddr())

	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe(cfg.ListenAddr()) }()

	select {
	case err := <-errCh:
		logger.Error("http server stopped", "error", err)
		os.Exit(1)
	case <-ctx.Done():
		logger.Info("shutting down")
	}
}

// runUpdates is the stand-in for the host's periodic update scheduler.
// Throttling happens per sensor, so the scan interval may be shorter than
// the per-sensor minimum update interval.
func runUpdates(ctx context.Context, platform *service.Platform, interval time.Duration, logger *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			platform.UpdateAll(ctx)
		}
	}
}
