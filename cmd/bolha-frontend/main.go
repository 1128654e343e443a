package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Viherino/iss-bolha-frontend/internal/infra/config"
	ginserver "github.com/Viherino/iss-bolha-frontend/internal/infra/http/gin"
	"github.com/Viherino/iss-bolha-frontend/internal/infra/obs"
	"github.com/Viherino/iss-bolha-frontend/internal/marketplace"
	"github.com/Viherino/iss-bolha-frontend/internal/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	api, err := marketplace.New(cfg.APIBaseURL, cfg.APITimeout, logger)
	if err != nil {
		logger.Error("marketplace client init failed", "error", err)
		os.Exit(1)
	}

	sessions := session.NewStore(api, cfg.SessionTTL, logger)
	go sessions.Sweep(ctx, cfg.SessionSweepEvery)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return api.Ping(pingCtx)
		},
	}, ginserver.Handlers{
		Auth:     ginserver.AuthHandler{Logger: logger},
		Listing:  ginserver.ListingHandler{Logger: logger},
		Messages: ginserver.MessageHandler{Logger: logger},
		SessionMiddleware: ginserver.SessionMiddleware{
			Store:      sessions,
			CookieName: cfg.SessionCookieName,
			Base:       ctx,
			Logger:     logger,
		}.Handle,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("frontend starting", "addr", cfg.HTTPAddr, "api", cfg.APIBaseURL)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("frontend stopped")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
