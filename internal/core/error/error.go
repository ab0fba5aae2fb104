package errx

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is used when a key is missing.
	RedisNotFoundMessage = "redis key not found"
	// DatabaseErrorMessage describes Postgres related failures.
	DatabaseErrorMessage = "database operation failed"
	// NotFoundMessage is used when a row is missing.
	NotFoundMessage = "resource not found"
	// ConflictMessage is used for unique constraint violations.
	ConflictMessage = "resource already exists"
	// UpstreamErrorMessage is shown when the language service fails.
	UpstreamErrorMessage = "죄송합니다. 음성 주문 서비스에 일시적인 문제가 발생했어요. 잠시 후 다시 시도해주세요."
	// UnauthorizedMessage is returned for missing or invalid credentials.
	UnauthorizedMessage = "unauthorized"
	// BadRequestMessage is returned for malformed payloads.
	BadRequestMessage = "invalid request"
)

// Domain sentinels.
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUserNotFound     = errors.New("user not found")
	ErrIncompleteLine   = errors.New("order line is incomplete")
	ErrStyleRequired    = errors.New("serving style must be chosen first")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrLineNotFound     = errors.New("order line not found")
	ErrEmptyCart        = errors.New("cart has no complete lines")
	ErrAddressRequired  = errors.New("delivery address is required")
	ErrEmptyUtterance   = errors.New("no utterance to process")
	ErrCatalogNotLoaded = errors.New("catalog is not loaded")
)

// AppError wraps an underlying error with an HTTP status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Unauthorized marks err as a caller identity failure.
func Unauthorized(err error) *AppError {
	if err == nil {
		err = ErrUnauthorized
	}
	return New(err, http.StatusUnauthorized, UnauthorizedMessage)
}

// BadRequest marks err as a malformed request.
func BadRequest(err error, message string) *AppError {
	if message == "" {
		message = BadRequestMessage
	}
	return New(err, http.StatusBadRequest, message)
}

// WrapUpstream wraps failures from the language understanding service.
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	return New(err, http.StatusBadGateway, UpstreamErrorMessage)
}

// StatusOf returns the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// MessageOf returns the safe message carried by err, or SystemErrorMessage.
func MessageOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return SystemErrorMessage
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}
