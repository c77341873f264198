package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindInvalidStatus ErrorKind = "invalid_status"
	KindUnauthorized  ErrorKind = "unauthorized"
	KindForbidden     ErrorKind = "forbidden"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindExpired       ErrorKind = "expired"
	KindServer        ErrorKind = "server"
)

// Business codes carried in the response envelope.
const (
	CodeValidation    = 1001
	CodeInvalidStatus = 1003
	CodeConflict      = 3001
	CodeExpired       = 3009
	CodeUnauthorized  = 4001
	CodeForbidden     = 4003
	CodeNotFound      = 4004
	CodeServer        = 5000
)

func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidStatus:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

func (k ErrorKind) Code() int {
	switch k {
	case KindValidation:
		return CodeValidation
	case KindInvalidStatus:
		return CodeInvalidStatus
	case KindUnauthorized:
		return CodeUnauthorized
	case KindForbidden:
		return CodeForbidden
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	case KindExpired:
		return CodeExpired
	default:
		return CodeServer
	}
}

// AppError is the error type returned by services. Msg is safe to show to clients.
type AppError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewValidation(msg string) *AppError    { return &AppError{Kind: KindValidation, Msg: msg} }
func NewInvalidStatus(msg string) *AppError { return &AppError{Kind: KindInvalidStatus, Msg: msg} }
func NewUnauthorized(msg string) *AppError  { return &AppError{Kind: KindUnauthorized, Msg: msg} }
func NewForbidden(msg string) *AppError     { return &AppError{Kind: KindForbidden, Msg: msg} }
func NewNotFound(msg string) *AppError      { return &AppError{Kind: KindNotFound, Msg: msg} }
func NewConflict(msg string) *AppError      { return &AppError{Kind: KindConflict, Msg: msg} }
func NewExpired(msg string) *AppError       { return &AppError{Kind: KindExpired, Msg: msg} }

// Wrap marks err as an unexpected downstream failure.
func Wrap(err error, msg string) *AppError {
	return &AppError{Kind: KindServer, Msg: msg, Err: err}
}

// KindOf reports the kind of err, or KindServer for foreign errors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindServer
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// IsDuplicateKey recognises unique-constraint violations from every driver we run on.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// IsNotFound reports gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
