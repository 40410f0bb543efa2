package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	config "github.com/kieranyoussef/finops-watchtower/internal/config/dashboard"
	"github.com/kieranyoussef/finops-watchtower/internal/obs"
	"github.com/kieranyoussef/finops-watchtower/internal/repository/backend"
	"github.com/kieranyoussef/finops-watchtower/internal/services/dashboard"
)

type httpApp struct {
	srv      *http.Server
	sessions *dashboard.Store
}

func buildHTTPServer(cfg *config.Config, logger *zap.Logger) (*httpApp, error) {
	client, err := backend.New(cfg.Backend.AsClientConfig())
	if err != nil {
		return nil, err
	}
	client = client.WithLogger(logger)

	pageSize := cfg.UI.PageSize
	sessions := dashboard.NewStore(func() *dashboard.Pager {
		return dashboard.NewPager(client, pageSize)
	}, cfg.UI.SessionTTL).WithLogger(logger)

	handler := dashboard.NewServer(logger, client, sessions).Routes()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           obs.HTTPHandler(handler, "dashboard"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
	return &httpApp{srv: httpSrv, sessions: sessions}, nil
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.Addr))
	return srv.ListenAndServe()
}
