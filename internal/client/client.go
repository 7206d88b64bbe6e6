package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jwalitptl/liver-report/internal/model"
	"github.com/jwalitptl/liver-report/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
	"github.com/jwalitptl/liver-report/pkg/logger"
)

const (
	OpPredict  = "predict"
	OpDownload = "download_pdf"

	DefaultPredictPath = "/predict"
	DefaultReportPath  = "/download_pdf"

	defaultMaxReportBytes = 32 << 20
	maxJSONBytes          = 4 << 20
)

type Config struct {
	BaseURL        string
	PredictPath    string
	ReportPath     string
	Timeout        time.Duration
	MaxReportBytes int64
	Breaker        circuitbreaker.Settings
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// Client talks to the prediction and report endpoints.
type Client struct {
	http           *http.Client
	predictURL     string
	reportURL      string
	maxReportBytes int64
	breaker        *circuitbreaker.CircuitBreaker
	logger         *logger.Logger
}

func New(cfg Config, log *logger.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid upstream base url %q", cfg.BaseURL)
	}
	if log == nil {
		log = logger.Nop()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	predictPath := cfg.PredictPath
	if predictPath == "" {
		predictPath = DefaultPredictPath
	}
	reportPath := cfg.ReportPath
	if reportPath == "" {
		reportPath = DefaultReportPath
	}
	maxReport := cfg.MaxReportBytes
	if maxReport <= 0 {
		maxReport = defaultMaxReportBytes
	}

	settings := cfg.Breaker
	if settings.Name == "" {
		settings.Name = "upstream"
	}
	settings.Ignore = isClientSide

	return &Client{
		http:           httpClient,
		predictURL:     base.String() + "/" + strings.TrimLeft(predictPath, "/"),
		reportURL:      base.String() + "/" + strings.TrimLeft(reportPath, "/"),
		maxReportBytes: maxReport,
		breaker:        circuitbreaker.NewCircuitBreaker(settings, log.Zerolog()),
		logger:         log,
	}, nil
}

// Predict posts the record and returns the response with the patient name
// attached.
func (c *Client) Predict(ctx context.Context, rec model.PatientRecord) (model.CachedResult, error) {
	body, _, err := c.post(ctx, OpPredict, c.predictURL, rec, "application/json", maxJSONBytes)
	if err != nil {
		return nil, err
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, apperrors.Decode(OpPredict, err)
	}
	if resp == nil {
		return nil, apperrors.Decode(OpPredict, errors.New("response is not a JSON object"))
	}
	return model.NewCachedResult(resp, rec.PatientName), nil
}

// DownloadReport posts the cached result and returns the report bytes and
// their content type.
func (c *Client) DownloadReport(ctx context.Context, res model.CachedResult) ([]byte, string, error) {
	body, contentType, err := c.post(ctx, OpDownload, c.reportURL, res, "application/pdf", c.maxReportBytes)
	if err != nil {
		return nil, "", err
	}
	if len(body) == 0 {
		return nil, "", apperrors.Decode(OpDownload, errors.New("empty report body"))
	}
	return body, contentType, nil
}

// BreakerState exposes the upstream circuit breaker state for health checks.
func (c *Client) BreakerState() string {
	return c.breaker.State()
}

func (c *Client) post(ctx context.Context, op, target string, payload interface{}, accept string, limit int64) ([]byte, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", apperrors.Internal(fmt.Errorf("encode %s request: %w", op, err))
	}

	var (
		body        []byte
		contentType string
	)
	start := time.Now()
	err = c.breaker.Execute(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(data))
		if err != nil {
			return apperrors.Internal(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", accept)

		resp, err := c.http.Do(req)
		if err != nil {
			return apperrors.Transport(op, err)
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(io.LimitReader(resp.Body, limit+1))
		if err != nil {
			return apperrors.Transport(op, err)
		}
		if int64(len(body)) > limit {
			return apperrors.Decode(op, fmt.Errorf("response exceeds %d bytes", limit))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return apperrors.UpstreamStatus(op, resp.StatusCode, errorDetail(body))
		}
		contentType = resp.Header.Get("Content-Type")
		return nil
	})
	if errors.Is(err, circuitbreaker.ErrOpen) {
		err = apperrors.Unavailable(op, err)
	}
	if err != nil {
		c.logger.Error(err, "upstream call failed", "op", op, "duration", time.Since(start).String())
		return nil, "", err
	}

	c.logger.Debug("upstream call succeeded", "op", op, "bytes", len(body), "duration", time.Since(start).String())
	return body, contentType, nil
}

// errorDetail pulls the "error" message out of a JSON error body.
func errorDetail(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil {
		return e.Error
	}
	return ""
}

// isClientSide marks failures that say nothing about upstream health.
func isClientSide(err error) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Reason {
		case apperrors.ReasonUpstreamStatus:
			return appErr.Status < 500
		case apperrors.ReasonInternal:
			return true
		}
	}
	return false
}
