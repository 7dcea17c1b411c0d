package main

import (
	"context"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/tournevent/shipping-connector/internal/config"
	"github.com/tournevent/shipping-connector/internal/marketplace"
	"github.com/tournevent/shipping-connector/internal/shipping"
	"github.com/tournevent/shipping-connector/internal/store"
	"github.com/tournevent/shipping-connector/internal/telemetry"
	"github.com/tournevent/shipping-connector/pkg/shipper/ups"
)

// app holds the wired service and its lifecycle hooks.
type app struct {
	cfg            *config.Config
	logger         *otelzap.Logger
	metrics        *telemetry.Metrics
	service        *shipping.Service
	gormStore      *store.GormStore
	tracerShutdown func(context.Context) error
}

func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := telemetry.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	tracerShutdown := func(context.Context) error { return nil }
	if cfg.OTELEnabled {
		tracerShutdown, err = telemetry.InitTracer(ctx, cfg.ServiceName, cfg.OTELEndpoint)
		if err != nil {
			logger.Warn("Failed to initialize tracer", zap.Error(err))
			tracerShutdown = func(context.Context) error { return nil }
		}
	}

	gormStore, err := store.Open(cfg.DBDialect, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	tracer := otel.Tracer(cfg.ServiceName)
	carrier := ups.New(cfg.UPS(), logger, tracer)
	notifier := marketplace.NewHTTPNotifier(marketplace.HTTPNotifierConfig{
		Channels: cfg.Channels,
	})
	metrics := telemetry.NewMetrics()
	service := shipping.NewService(carrier, gormStore, notifier, logger, metrics)

	return &app{
		cfg:            cfg,
		logger:         logger,
		metrics:        metrics,
		service:        service,
		gormStore:      gormStore,
		tracerShutdown: tracerShutdown,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if a.tracerShutdown != nil {
		a.tracerShutdown(ctx)
	}
	a.logger.Sync()
}
