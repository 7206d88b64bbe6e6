package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/liver-report/internal/handler/health"
	predictionhandler "github.com/jwalitptl/liver-report/internal/handler/prediction"
	prometheushandler "github.com/jwalitptl/liver-report/internal/handler/prometheus"
	"github.com/jwalitptl/liver-report/internal/middleware"
	"github.com/jwalitptl/liver-report/internal/router"
	"github.com/jwalitptl/liver-report/internal/session"
)

type serveOptions struct {
	common commonOptions
	port   int
}

func parseServeFlags(args []string, output io.Writer) (serveOptions, error) {
	var opts serveOptions
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(output)
	opts.common.register(fs)
	fs.IntVar(&opts.port, "port", 0, "Listen port (overrides server.port)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func newServer(a *app, port int) (*http.Server, error) {
	cfg := a.cfg
	if port == 0 {
		port = cfg.Server.Port
	}

	secret := cfg.Session.Secret
	if secret == "" {
		a.log.Warn("session.secret is empty, using a random secret; sessions will not survive restarts")
		secret = session.RandomSecret()
	}
	tokens, err := session.NewTokens(secret, cfg.Session.TTL)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := router.NewRouter(
		a.log.Zerolog(),
		a.metrics,
		middleware.NewSessionMiddleware(a.store, tokens, middleware.SessionConfig{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Session.CookieSecure,
			TTL:        cfg.Session.TTL,
		}),
		predictionhandler.NewHandler(a.service),
		health.NewHandler(a.store, a.client),
		prometheushandler.New(a.registry).Handler(),
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.Server.RateLimit),
			RateBurst:      cfg.Server.RateBurst,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			MetricsPath:    cfg.Server.MetricsPath,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		},
	)
	r.Setup()

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}

func runServe(ctx context.Context, a *app, opts serveOptions) error {
	srv, err := newServer(a, opts.port)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", srv.Addr, "upstream", a.cfg.Upstream.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	a.log.Info("server exited properly")
	return nil
}
