// Command expiry-scan creates renewal invoices for subscriptions nearing
// their end date and sends the renewal and expiry emails.
//
// Without flags it runs once and prints a summary. With -schedule it keeps
// running on the given cron expression and serves /metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"killbill-service/internal/app"
	"killbill-service/internal/config"
	"killbill-service/internal/service/expiry"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	schedule := flag.String("schedule", "", "cron expression; keeps the process running and scans on each tick")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()
	if *schedule == "" {
		*schedule = cfg.ScanSchedule
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := app.BuildServices(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to start", zap.Error(err))
	}
	defer services.Close()

	if *schedule != "" {
		runScheduled(ctx, cfg, *schedule, services, logger)
		return
	}
	runOnce(ctx, services, logger)
}

// runOnce always exits 0: per-item failures are in the summary and a
// failed run is logged.
func runOnce(ctx context.Context, services *app.Services, logger *zap.Logger) {
	settings, err := services.Settings.Load(ctx)
	if err != nil {
		logger.Error("failed to load settings", zap.Error(err))
		return
	}

	sum, err := services.Scanner.Run(ctx, settings)
	if sum != nil {
		if werr := sum.WriteText(os.Stdout); werr != nil {
			logger.Warn("failed to print summary", zap.Error(werr))
		}
	}
	if err != nil {
		logger.Error("expiry scan failed", zap.Error(err))
	}
}

func runScheduled(ctx context.Context, cfg config.AppConfig, spec string, services *app.Services, logger *zap.Logger) {
	c, err := expiry.Schedule(ctx, spec, services.Scanner, services.Settings, logger)
	if err != nil {
		logger.Fatal("failed to schedule expiry scan", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", services.Metrics.Handler())
	srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	c.Start()
	logger.Info("expiry scan scheduled", zap.String("schedule", spec), zap.String("metrics_addr", cfg.MetricsAddr))

	<-ctx.Done()
	logger.Info("stopping scheduler")

	// Wait for a running scan to finish.
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
