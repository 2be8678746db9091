package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
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

// Is matches any AppError with the same code, so errors.Is sees through
// WithError copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image format or corrupted file",
		StatusCode: 422,
	}

	ErrRateLimitExceeded = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, slow down",
		StatusCode: 429,
	}

	// Session errors
	ErrSessionNotFound = &AppError{
		Code:       "SESSION_NOT_FOUND",
		Message:    "Session not found or invalid",
		StatusCode: 404,
	}

	// Report errors
	ErrReportNotFound = &AppError{
		Code:       "REPORT_NOT_FOUND",
		Message:    "Report not found",
		StatusCode: 404,
	}

	// Speech errors
	ErrSpeechSessionNotFound = &AppError{
		Code:       "SPEECH_SESSION_NOT_FOUND",
		Message:    "Speech session not found",
		StatusCode: 404,
	}

	ErrNoSpeechCaptured = &AppError{
		Code:       "NO_SPEECH_CAPTURED",
		Message:    "No audio has been captured for this session",
		StatusCode: 422,
	}

	ErrSpeechUnavailable = &AppError{
		Code:       "SPEECH_UNAVAILABLE",
		Message:    "Speech recognition backend is unavailable",
		StatusCode: 503,
	}
)
