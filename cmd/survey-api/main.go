package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/wine-survey/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/wine-survey/internal/adapter/kafka"
	"github.com/couchcryptid/wine-survey/internal/adapter/store"
	"github.com/couchcryptid/wine-survey/internal/config"
	"github.com/couchcryptid/wine-survey/internal/domain"
	"github.com/couchcryptid/wine-survey/internal/observability"
	"github.com/couchcryptid/wine-survey/internal/survey"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	table, err := loadPrefixTable(cfg)
	if err != nil {
		logger.Error("failed to load postal prefix table", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	logger.Info("store ready", "dialect", st.Dialect())

	// Event publishing is optional (KAFKA_ENABLED / KAFKA_BROKERS).
	var (
		publisher survey.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("survey events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("survey events disabled")
	}

	svc := survey.NewService(st, publisher, table, metrics, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		logger.Error("store close error", "error", err)
	}

	logger.Info("shutdown complete")
}

func loadPrefixTable(cfg *config.Config) (*domain.PrefixTable, error) {
	if cfg.PostalTablePath == "" {
		return domain.DefaultPrefixTable(), nil
	}
	return domain.LoadPrefixTableFile(cfg.PostalTablePath)
}
