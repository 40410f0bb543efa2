package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	config "github.com/kieranyoussef/finops-watchtower/internal/config/dashboard"
	"github.com/kieranyoussef/finops-watchtower/internal/obs"
)

func initOTel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (func(context.Context) error, error) {
	closer, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig(cfg.App.Version))
	if err != nil {
		return nil, err
	}
	if cfg.OTEL.Enable {
		logger.Info("tracing enabled", zap.String("endpoint", cfg.OTEL.OTLPEndpoint))
	}
	return func(ctx context.Context) error { return closer.Shutdown(ctx) }, nil
}

func initMetricsServer(cfg *config.Config, logger *zap.Logger) *http.Server {
	return obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, nil, logger)
}
