package prediction

import (
	"context"
	"errors"
	"time"

	"github.com/jwalitptl/liver-report/internal/form"
	"github.com/jwalitptl/liver-report/internal/model"
	"github.com/jwalitptl/liver-report/internal/report"
	"github.com/jwalitptl/liver-report/internal/session"
	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
	"github.com/jwalitptl/liver-report/pkg/logger"
	"github.com/jwalitptl/liver-report/pkg/metrics"
)

const (
	OpSubmit   = "submit"
	OpDownload = "download"
)

// Predictor is the upstream transport, implemented by client.Client.
type Predictor interface {
	Predict(ctx context.Context, rec model.PatientRecord) (model.CachedResult, error)
	DownloadReport(ctx context.Context, res model.CachedResult) ([]byte, string, error)
}

type PredictionService interface {
	Submit(ctx context.Context, sess *session.Session, in model.FormInput) (*Outcome, error)
	Download(ctx context.Context, sess *session.Session) (*report.Report, error)
}

// Outcome is the result of a successful submission. DownloadReady is only
// set once the result has been stored in the session.
type Outcome struct {
	Result        model.CachedResult `json:"result"`
	DownloadReady bool               `json:"download_ready"`
}

type Service struct {
	predictor Predictor
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func NewService(predictor Predictor, m *metrics.Metrics, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		predictor: predictor,
		metrics:   m,
		logger:    log,
	}
}

// Submit validates the form, posts it for prediction and caches the
// response in sess. A missing name fails before any network call.
func (s *Service) Submit(ctx context.Context, sess *session.Session, in model.FormInput) (out *Outcome, err error) {
	start := time.Now()
	defer func() { s.observe(OpSubmit, start, err) }()

	rec, err := form.Collect(in)
	if err != nil {
		return nil, err
	}

	res, err := s.predictor.Predict(ctx, rec)
	if err != nil {
		return nil, err
	}

	if err := s.storeOp("set", sess.SetResult(ctx, res)); err != nil {
		return nil, apperrors.Storage(err)
	}

	s.logger.Info("prediction cached", "session", sess.ID(), "stage", res.Stage())
	return &Outcome{Result: res, DownloadReady: true}, nil
}

// Download fetches the report for the result cached in sess.
func (s *Service) Download(ctx context.Context, sess *session.Session) (rep *report.Report, err error) {
	start := time.Now()
	defer func() { s.observe(OpDownload, start, err) }()

	res, err := sess.Result(ctx)
	if errors.Is(err, session.ErrNoResult) {
		s.storeOp("get", nil)
		return nil, apperrors.NoResult()
	}
	if err := s.storeOp("get", err); err != nil {
		return nil, apperrors.Storage(err)
	}
	if !res.Valid() {
		return nil, apperrors.NoResult()
	}

	data, contentType, err := s.predictor.DownloadReport(ctx, res)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = report.ContentTypePDF
	}
	if s.metrics != nil {
		s.metrics.ReportBytes.Observe(float64(len(data)))
	}

	return &report.Report{
		Filename:    report.Filename(res.PatientName()),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (s *Service) storeOp(op string, err error) error {
	if s.metrics != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		s.metrics.SessionOperations.WithLabelValues(op, status).Inc()
	}
	return err
}

func (s *Service) observe(op string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = string(apperrors.ReasonOf(err))
		s.logger.Error(err, "operation failed", "op", op, "reason", outcome)
	}
	if s.metrics == nil {
		return
	}
	s.metrics.Operations.WithLabelValues(op, outcome).Inc()
	s.metrics.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
