package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReasonOf(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", Transport("predict", stderrors.New("connection refused")))

	assert.Equal(t, ReasonTransport, ReasonOf(wrapped))
	assert.Equal(t, ReasonInternal, ReasonOf(stderrors.New("plain")))
	assert.Equal(t, Reason(""), ReasonOf(nil))
	assert.True(t, Is(NoResult(), ReasonNoResult))
	assert.False(t, Is(nil, ReasonNoResult))
}

func TestAppErrorMessage(t *testing.T) {
	cause := stderrors.New("dial tcp: refused")
	err := Transport("predict", cause)

	assert.Equal(t, "predict request failed: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "download_pdf returned status 500: boom", UpstreamStatus("download_pdf", 500, "boom").Error())
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, MissingName().StatusCode())
	assert.Equal(t, http.StatusConflict, NoResult().StatusCode())
	assert.Equal(t, http.StatusBadGateway, Decode("predict", nil).StatusCode())
	assert.Equal(t, http.StatusServiceUnavailable, Unavailable("predict", nil).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Storage(nil).StatusCode())
}
