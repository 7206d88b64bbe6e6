package httputil

import (
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/liver-report/pkg/errors"
)

// Response wraps all API responses
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *Error      `json:"error,omitempty"`
}

// Error represents API error
type Error struct {
	Code    int    `json:"code"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	TraceID string `json:"trace_id,omitempty"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// RespondWithError sends an error response. message is the user-facing
// text; the status and reason come from err.
func RespondWithError(c *gin.Context, err error, message string) {
	statusCode := http.StatusInternalServerError
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		statusCode = appErr.StatusCode()
	}
	if message == "" {
		message = http.StatusText(statusCode)
	}

	c.AbortWithStatusJSON(statusCode, Response{
		Success: false,
		Error: &Error{
			Code:    statusCode,
			Reason:  string(apperrors.ReasonOf(err)),
			Message: message,
			TraceID: c.GetString("request_id"),
		},
	})
}

// RespondWithFile sends data as a download named filename.
func RespondWithFile(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	c.Data(http.StatusOK, contentType, data)
}
