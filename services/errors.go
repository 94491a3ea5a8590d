package services

import (
	"errors"
	"fmt"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Error kinds. Every error a service returns to a controller wraps one of these.
var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not_found")
	ErrConflict   = errors.New("conflict")
	ErrState      = errors.New("invalid_state")
	ErrInternal   = errors.New("internal")
)

type AppError struct {
	Kind    error
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func validationErr(code, format string, args ...any) *AppError {
	return &AppError{Kind: ErrValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFoundErr(code, format string, args ...any) *AppError {
	return &AppError{Kind: ErrNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func conflictErr(code string, details map[string]any, format string, args ...any) *AppError {
	return &AppError{Kind: ErrConflict, Code: code, Message: fmt.Sprintf(format, args...), Details: details}
}

func stateErr(code string, current, expected any, format string, args ...any) *AppError {
	return &AppError{
		Kind:    ErrState,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: map[string]any{"current": current, "expected": expected},
	}
}

func internalErr(msg string, err error) *AppError {
	return &AppError{Kind: ErrInternal, Code: "internal", Message: msg, Err: err}
}

// AsAppError returns err as an *AppError, wrapping unknown errors as internal.
func AsAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return internalErr("unexpected error", err)
}

// IsUniqueViolation recognizes duplicate-key errors across the supported drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var merr *mysql.MySQLError
	if errors.As(err, &merr) {
		return merr.Number == 1062
	}
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "duplicate entry") ||
		strings.Contains(lower, "unique constraint failed") ||
		strings.Contains(lower, "duplicate key value")
}
