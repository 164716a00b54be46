// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// Application-wide sentinel errors. Services wrap these in an AppError;
// webutil maps them to HTTP status codes.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrConflict       = errors.New("resource conflict")

	// Engine errors (see the practice session and scheduling services).
	ErrInvalidGrade  = errors.New("grade quality out of range")
	ErrInvalidState  = errors.New("operation invalid for current session state")
	ErrEmptyQueue    = errors.New("no cards available for practice")
	ErrInvalidAmount = errors.New("xp amount must be positive")
	ErrMigration     = errors.New("legacy review record malformed")
	ErrPersistence   = errors.New("persistence write failed")
)

// AppError carries an error code and a user-facing message alongside the
// wrapped cause, so handlers can respond without re-interpreting internals.
type AppError struct {
	Detail ErrorDetail
	Err    error
}

// ErrorDetail is the JSON shape embedded in API error responses.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// APIErrorResponse is the envelope for all error responses.
type APIErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func NewAppError(code, message, field string, err error) *AppError {
	return &AppError{
		Detail: ErrorDetail{Code: code, Message: message, Field: field},
		Err:    err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Detail.Code, e.Detail.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Detail.Code, e.Detail.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
