// cmd/atsctl/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"atsctl/internal/cli"
	"atsctl/internal/common/config"
	"atsctl/internal/common/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to initialize", nil)
		os.Exit(1)
	}
	defer app.Close()

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Address, log)
	}

	if err := cli.Execute(ctx, app); err != nil {
		log.WithError(err).Error("command failed", nil)
		os.Exit(1)
	}
}

func serveMetrics(address string, log logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(address, mux); err != nil {
		log.WithError(err).Warn("metrics endpoint stopped", nil)
	}
}
