package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Reason classifies why a prediction or report operation failed
type Reason string

const (
	ReasonMissingName    Reason = "missing_name"
	ReasonInvalidInput   Reason = "invalid_input"
	ReasonNoResult       Reason = "no_result"
	ReasonTransport      Reason = "transport"
	ReasonUpstreamStatus Reason = "upstream_status"
	ReasonDecode         Reason = "decode"
	ReasonStorage        Reason = "storage"
	ReasonUnavailable    Reason = "unavailable"
	ReasonSave           Reason = "save"
	ReasonInternal       Reason = "internal"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Reason  Reason    `json:"reason"`
	Message string    `json:"message"`
	// Status is the upstream HTTP status for ReasonUpstreamStatus.
	Status int   `json:"-"`
	Err    error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode maps the failure reason onto an HTTP status for the front-end.
func (e *AppError) StatusCode() int {
	switch e.Reason {
	case ReasonMissingName, ReasonInvalidInput:
		return http.StatusBadRequest
	case ReasonNoResult:
		return http.StatusConflict
	case ReasonTransport, ReasonUpstreamStatus, ReasonDecode:
		return http.StatusBadGateway
	case ReasonUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnavailable
	ErrUpstream
	ErrInternal
)

// Error constructors
func MissingName() *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Reason:  ReasonMissingName,
		Message: "patient name is required",
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Reason:  ReasonInvalidInput,
		Message: message,
		Err:     err,
	}
}

func NoResult() *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Reason:  ReasonNoResult,
		Message: "no cached prediction result",
	}
}

func Transport(op string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstream,
		Reason:  ReasonTransport,
		Message: fmt.Sprintf("%s request failed", op),
		Err:     err,
	}
}

func UpstreamStatus(op string, status int, detail string) *AppError {
	msg := fmt.Sprintf("%s returned status %d", op, status)
	if detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, detail)
	}
	return &AppError{
		Code:    ErrUpstream,
		Reason:  ReasonUpstreamStatus,
		Message: msg,
		Status:  status,
	}
}

func Decode(op string, err error) *AppError {
	return &AppError{
		Code:    ErrUpstream,
		Reason:  ReasonDecode,
		Message: fmt.Sprintf("%s response could not be decoded", op),
		Err:     err,
	}
}

func Storage(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Reason:  ReasonStorage,
		Message: "session storage failed",
		Err:     err,
	}
}

func Unavailable(op string, err error) *AppError {
	return &AppError{
		Code:    ErrUnavailable,
		Reason:  ReasonUnavailable,
		Message: fmt.Sprintf("%s is temporarily unavailable", op),
		Err:     err,
	}
}

func Save(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Reason:  ReasonSave,
		Message: "report could not be saved",
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Reason:  ReasonInternal,
		Message: "internal error",
		Err:     err,
	}
}

// ReasonOf returns the failure reason carried by err, or ReasonInternal
// for errors that are not an *AppError.
func ReasonOf(err error) Reason {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Reason
	}
	return ReasonInternal
}

// Is reports whether err carries the given reason.
func Is(err error, reason Reason) bool {
	return err != nil && ReasonOf(err) == reason
}
