package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/order-service/internal/cache"
	"github.com/example/order-service/internal/config"
	"github.com/example/order-service/internal/database"
	"github.com/example/order-service/internal/directory"
	"github.com/example/order-service/internal/events"
	"github.com/example/order-service/internal/httpapi"
	"github.com/example/order-service/internal/observability"
	"github.com/example/order-service/internal/pkg/breaker"
	"github.com/example/order-service/internal/service"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		logger.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()

	if err := database.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("schema init failed", zap.Error(err))
	}

	orderCache, err := cache.New(cfg.CacheCap)
	if err != nil {
		logger.Fatal("cache init failed", zap.Error(err))
	}

	metrics := observability.NewInmem(1000)
	repo := database.New(pool)
	dir := directory.New(cfg.Directory, cfg.Retry, breaker.New(cfg.Breaker), logger, metrics)

	var publisher service.Events
	if cfg.Kafka.Enabled() {
		p := events.NewPublisher(cfg.Kafka, logger, metrics)
		defer func() { _ = p.Close() }()
		publisher = p
		logger.Info("order events enabled",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}

	svc := service.NewService(orderCache, repo, dir, publisher, logger, metrics)
	server := httpapi.New(svc, logger, metrics)

	logger.Info("http server starting", zap.String("addr", cfg.HTTPAddr))
	if err := server.ListenAndServe(ctx, cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
