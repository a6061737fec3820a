package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	CodeMissingParameter ErrorCode = "MISSING_PARAMETER"
	CodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeValidation       ErrorCode = "VALIDATION_ERROR"
	CodeTransportClosed  ErrorCode = "TRANSPORT_CLOSED"
	CodeUnavailable      ErrorCode = "UNAVAILABLE"
	CodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ErrTransportClosed is returned by channels once they have been closed.
var ErrTransportClosed = NewError(CodeTransportClosed, "La sesión está cerrada.", nil)

func NewMissingParameterError(name string) *DomainError {
	return NewError(CodeMissingParameter, fmt.Sprintf("Falta el parámetro %s.", name), nil)
}

func NewInvalidParameterError(name string) *DomainError {
	return NewError(CodeInvalidParameter, fmt.Sprintf("El valor del parámetro %s no es un número.", name), nil)
}

func NewQuizNotFoundError(quizID int64) *DomainError {
	return NewError(CodeNotFound, fmt.Sprintf("No existe un quiz asociado al id=%d.", quizID), nil)
}

// NewUnavailableError reports a dependency that failed its health check.
func NewUnavailableError(component string, err error) *DomainError {
	return NewError(CodeUnavailable, fmt.Sprintf("%s: %v", component, err), err)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

// HasCode reports whether err is a DomainError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var de *DomainError
	if !errors.As(err, &de) {
		return false
	}
	return de.Code == code
}

// FieldError is a single field-level validation message.
type FieldError struct {
	Field   string
	Message string
}

// ValidationErrors is an ordered list of field messages produced when the
// store rejects a write.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
