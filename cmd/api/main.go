package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/saturnino-fabrica-de-software/poise/internal/analyzer"
	"github.com/saturnino-fabrica-de-software/poise/internal/api"
	"github.com/saturnino-fabrica-de-software/poise/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/poise/internal/backend"
	"github.com/saturnino-fabrica-de-software/poise/internal/config"
	"github.com/saturnino-fabrica-de-software/poise/internal/database"
	"github.com/saturnino-fabrica-de-software/poise/internal/frame"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
	"github.com/saturnino-fabrica-de-software/poise/internal/report"
	"github.com/saturnino-fabrica-de-software/poise/internal/repository"
	"github.com/saturnino-fabrica-de-software/poise/internal/speech"
	"github.com/saturnino-fabrica-de-software/poise/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Poise API",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("detector", cfg.DetectorProvider),
		slog.String("stt", cfg.STTProvider),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, api.Version)
	if err != nil {
		return fmt.Errorf("failed to init metrics: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(flushCtx); err != nil {
			logger.Error("metrics shutdown error", slog.Any("error", err))
		}
	}()
	metrics := observe.DefaultMetrics()

	detector, err := backend.NewDetector(cfg, metrics)
	if err != nil {
		return fmt.Errorf("failed to create detector: %w", err)
	}
	recognizer, err := backend.NewRecognizer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create recognizer: %w", err)
	}
	if recognizer == nil {
		logger.Warn("speech recognition disabled")
	}

	checks := []handler.ReadinessCheck{{Name: "detector", Check: detector.HealthCheck}}

	var reportStore report.Store
	speechOpts := []speech.Option{
		speech.WithLogger(logger),
		speech.WithMetrics(metrics),
		speech.WithSampleRate(cfg.STTSampleRate),
	}

	if cfg.PersistenceEnabled() {
		if err := database.MigrateUp(ctx, cfg.DatabaseURL, logger); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		pool, err := database.NewPool(ctx, database.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		reportStore = repository.NewReportRepository(pool)
		speechOpts = append(speechOpts, speech.WithStore(repository.NewSpeechReportRepository(pool)))
		checks = append(checks, handler.ReadinessCheck{
			Name:  "database",
			Check: func(ctx context.Context) error { return database.HealthCheck(ctx, pool) },
		})
	} else {
		logger.Warn("DATABASE_URL not set, reports are kept in memory")
	}

	hub := ws.NewHub()
	router := api.NewRouter(logger, &api.Dependencies{
		Analyzer: analyzer.New(detector, detector,
			analyzer.WithLogger(logger),
			analyzer.WithMetrics(metrics),
		),
		Reports: report.NewService(reportStore,
			report.WithLogger(logger),
			report.WithMetrics(metrics),
		),
		Speech:         speech.NewService(recognizer, speechOpts...),
		Decoder:        frame.NewDecoder(cfg.MaxFrameBytes, frame.WithMaxPixels(cfg.MaxFramePixels)),
		Hub:            hub,
		Metrics:        metrics,
		Checks:         checks,
		CORSOrigins:    cfg.CORSOrigins,
		FrameRateLimit: cfg.FrameRateLimit,
	})
	router.Setup()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")

		done := make(chan error, 1)
		go func() { done <- router.Shutdown() }()

		select {
		case err := <-done:
			return err
		case <-time.After(10 * time.Second):
			return errors.New("shutdown timed out")
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
