package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"betpoisson/internal/config"
	"betpoisson/internal/dispatch"
	apphttp "betpoisson/internal/http"
	applog "betpoisson/internal/log"
	"betpoisson/internal/metrics"
	"betpoisson/internal/report"
	"betpoisson/internal/scheduler"
	"betpoisson/internal/services"
	"betpoisson/internal/storage"
	"betpoisson/internal/telegram"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:  applog.ParseLevel(cfg.LogLevel),
		Format: cfg.LogFormat,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting betpoisson", "port", cfg.Port, "data_file", cfg.DataFile)

	store := storage.NewLedgerStore(cfg.DataFile, logger)

	notifier, err := telegram.NewClient(cfg.TelegramBotToken, cfg.TelegramChatID, logger)
	if err != nil {
		logger.Error("Failed to initialize Telegram client", "error", err)
		os.Exit(1)
	}

	tasks := dispatch.New(logger, 30*time.Second)
	reporter := report.NewGenerator(store, notifier, logger)
	slips := services.NewSlipService(store, notifier, reporter, tasks, logger)

	srv := apphttp.NewServer(":"+cfg.Port, cfg.Secret, slips, logger)
	sched := scheduler.New(cfg.SchedulerInterval, cfg.ReportHour, reporter.SendMonthly, logger)

	metricsSrv := metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
		_, err := store.Load()
		return err
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sched.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server shutdown error", "error", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}

		// Let in-flight notifications and reports finish.
		tasks.Wait()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Service error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped gracefully")
}
