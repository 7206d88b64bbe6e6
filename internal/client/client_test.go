package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/liver-report/internal/model"
	"github.com/jwalitptl/liver-report/pkg/circuitbreaker"
	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
)

func newClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		BaseURL: srv.URL + "/",
		Timeout: 2 * time.Second,
		Breaker: circuitbreaker.Settings{Name: "test", Timeout: time.Minute, ConsecutiveFailures: 2},
	}, nil)
	require.NoError(t, err)
	return c
}

func age(v float64) *float64 { return &v }

func TestPredict(t *testing.T) {
	var got map[string]interface{}
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"patient_name": "Unknown Patient",
			"stage":        "Moderate Cirrhosis (Stage 2).",
			"precautions":  "Start dietary modifications.",
		})
	}))

	res, err := c.Predict(context.Background(), model.PatientRecord{PatientName: "Jane Doe", Age: age(52)})
	require.NoError(t, err)

	assert.Equal(t, "Jane Doe", got["patient_name"])
	assert.Equal(t, 52.0, got["age"])
	assert.Nil(t, got["gender"])
	assert.Contains(t, got, "gender")

	assert.Equal(t, "Jane Doe", res.PatientName())
	assert.Equal(t, "Moderate Cirrhosis (Stage 2).", res.Stage())
}

func TestPredictFailures(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
		reason  apperrors.Reason
	}{
		{
			name: "upstream error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"Missing required fields. Please fill all fields."}`))
			},
			reason: apperrors.ReasonUpstreamStatus,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`<html>oops</html>`))
			},
			reason: apperrors.ReasonDecode,
		},
		{
			name: "json null",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`null`))
			},
			reason: apperrors.ReasonDecode,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, tc.handler)
			_, err := c.Predict(context.Background(), model.PatientRecord{PatientName: "Jane"})
			require.Error(t, err)
			assert.Equal(t, tc.reason, apperrors.ReasonOf(err))
		})
	}
}

func TestUpstreamStatusDetail(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Prediction failed: boom"}`))
	}))

	_, err := c.Predict(context.Background(), model.PatientRecord{PatientName: "Jane"})
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Contains(t, appErr.Message, "Prediction failed: boom")
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: base, Timeout: time.Second}, nil)
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), model.PatientRecord{PatientName: "Jane"})
	assert.Equal(t, apperrors.ReasonTransport, apperrors.ReasonOf(err))
}

func TestBreakerOpensOnServerErrors(t *testing.T) {
	var calls int32
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	for i := 0; i < 2; i++ {
		_, err := c.Predict(context.Background(), model.PatientRecord{PatientName: "Jane"})
		assert.Equal(t, apperrors.ReasonUpstreamStatus, apperrors.ReasonOf(err))
	}
	_, err := c.Predict(context.Background(), model.PatientRecord{PatientName: "Jane"})
	assert.Equal(t, apperrors.ReasonUnavailable, apperrors.ReasonOf(err))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "open", c.BreakerState())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	for i := 0; i < 3; i++ {
		_, err := c.Predict(context.Background(), model.PatientRecord{PatientName: "Jane"})
		assert.Equal(t, apperrors.ReasonUpstreamStatus, apperrors.ReasonOf(err))
	}
	assert.Equal(t, "closed", c.BreakerState())
}

func TestDownloadReport(t *testing.T) {
	var got map[string]interface{}
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download_pdf", r.URL.Path)
		assert.Equal(t, "application/pdf", r.Header.Get("Accept"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/pdf")
		w.Write([]byte("%PDF-1.4 report"))
	}))

	res := model.NewCachedResult(map[string]interface{}{"stage": "No Cirrhosis."}, "Jane Doe")
	data, contentType, err := c.DownloadReport(context.Background(), res)
	require.NoError(t, err)

	assert.Equal(t, "%PDF-1.4 report", string(data))
	assert.Equal(t, "application/pdf", contentType)
	assert.Equal(t, "Jane Doe", got["patient_name"])
	assert.Equal(t, "No Cirrhosis.", got["stage"])
}

func TestDownloadReportFailures(t *testing.T) {
	empty := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	_, _, err := empty.DownloadReport(context.Background(), model.NewCachedResult(nil, "Jane"))
	assert.Equal(t, apperrors.ReasonDecode, apperrors.ReasonOf(err))

	failing := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"PDF generation failed: x"}`))
	}))
	_, _, err = failing.DownloadReport(context.Background(), model.NewCachedResult(nil, "Jane"))
	assert.Equal(t, apperrors.ReasonUpstreamStatus, apperrors.ReasonOf(err))
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:8000"}, nil)
	assert.Error(t, err)
	_, err = New(Config{BaseURL: ""}, nil)
	assert.Error(t, err)
}
