package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/liver-report/internal/client"
	"github.com/jwalitptl/liver-report/internal/config"
	"github.com/jwalitptl/liver-report/internal/report"
	"github.com/jwalitptl/liver-report/internal/service/prediction"
	"github.com/jwalitptl/liver-report/internal/session"
	"github.com/jwalitptl/liver-report/pkg/circuitbreaker"
	"github.com/jwalitptl/liver-report/pkg/logger"
	"github.com/jwalitptl/liver-report/pkg/metrics"
	"github.com/jwalitptl/liver-report/pkg/security"
)

type commonOptions struct {
	configPath string
	apiURL     string
	logLevel   string
}

func (o *commonOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", "", "Path to config.yaml (default: ./config.yaml or ./config/config.yaml)")
	fs.StringVar(&o.apiURL, "api", "", "Prediction service base URL (overrides upstream.base_url)")
	fs.StringVar(&o.logLevel, "log-level", "", "Log level (overrides log.level)")
}

// app holds everything a command needs, built once from config.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	client   *client.Client
	store    session.Store
	service  *prediction.Service
	saver    *report.Saver
	closers  []func() error
}

func newApp(ctx context.Context, opts commonOptions) (*app, error) {
	cfg, err := config.LoadConfig(strings.TrimSpace(opts.configPath))
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.apiURL != "" {
		cfg.Upstream.BaseURL = opts.apiURL
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return buildApp(ctx, cfg)
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.NewLogger(&logger.Config{
		Level: logger.ParseLevel(cfg.Log.Level),
		JSON:  cfg.Log.JSON,
	})

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics(registry, "liver_report", "prediction")

	c, err := client.New(client.Config{
		BaseURL:        cfg.Upstream.BaseURL,
		PredictPath:    cfg.Upstream.PredictPath,
		ReportPath:     cfg.Upstream.ReportPath,
		Timeout:        cfg.Upstream.Timeout,
		MaxReportBytes: cfg.Upstream.MaxReportBytes,
		Breaker: circuitbreaker.Settings{
			Name:                "prediction-api",
			MaxRequests:         cfg.Upstream.Breaker.MaxRequests,
			Interval:            cfg.Upstream.Breaker.Interval,
			Timeout:             cfg.Upstream.Breaker.Timeout,
			ConsecutiveFailures: cfg.Upstream.Breaker.ConsecutiveFailures,
		},
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init client: %w", err)
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		metrics:  m,
		client:   c,
		saver:    report.NewSaver(cfg.Report.OutputDir),
	}

	switch cfg.Session.Backend {
	case "redis":
		rs, err := session.NewRedisStore(ctx, session.RedisConfig{
			URL:          cfg.Redis.URL,
			Prefix:       cfg.Redis.Prefix,
			TTL:          cfg.Session.TTL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			return nil, fmt.Errorf("connect session store: %w", err)
		}
		a.store = rs
		a.closers = append(a.closers, rs.Close)
	default:
		a.store = session.NewMemoryStore(cfg.Session.TTL, cfg.Session.CleanupInterval)
	}

	if cfg.Session.EncryptionKey != "" {
		sealer, err := security.NewSealerFromHex(cfg.Session.EncryptionKey)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("session encryption key: %w", err)
		}
		a.store = session.NewEncryptedStore(a.store, sealer)
	}

	a.service = prediction.NewService(c, m, log)
	return a, nil
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.log.Error(err, "close failed")
		}
	}
}
