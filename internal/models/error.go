package models

import (
	"errors"
	"net/http"
)

// Sentinel errors used by the storage layer
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// ErrBusinessHasSite distinguishes the one-site-per-business unique
	// violation from a subdomain collision.
	ErrBusinessHasSite = errors.New("business already has a site")
)

// ErrorKind classifies a failure for the HTTP boundary
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation_error"
	KindUnauthorized ErrorKind = "unauthorized"
	KindNotFound     ErrorKind = "not_found"
	KindConflict     ErrorKind = "conflict"
	KindServer       ErrorKind = "server_error"
)

// AppError is the tagged failure type services return to the HTTP boundary.
// Status is a hint; the boundary translates it directly to the response code.
type AppError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// Is lets errors.Is match AppErrors against the storage sentinels by kind,
// so handler switches written against sentinels keep working.
func (e *AppError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrConflict:
		return e.Kind == KindConflict
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	case ErrBadRequest:
		return e.Kind == KindValidation
	case ErrInternalServer:
		return e.Kind == KindServer
	}
	return false
}

func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: message}
}

func NewNotFound(message string) *AppError {
	return &AppError{Kind: KindNotFound, Status: http.StatusNotFound, Message: message}
}

func NewConflict(message string) *AppError {
	return &AppError{Kind: KindConflict, Status: http.StatusConflict, Message: message}
}

func NewServerError(message string) *AppError {
	return &AppError{Kind: KindServer, Status: http.StatusInternalServerError, Message: message}
}

// AsAppError unwraps err into an *AppError if it carries one.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
