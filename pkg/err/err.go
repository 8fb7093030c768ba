package errprocess

import (
	"errors"
	"fmt"

	"farmlink_service/pkg/logger"

	"go.uber.org/zap"
)

// Code classifies an AppError
type Code string

const (
	CodeInvalidIdentifier Code = "INVALID_IDENTIFIER"
	CodeInvalidOperation  Code = "INVALID_OPERATION"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeNotFound          Code = "NOT_FOUND"
	CodeDenied            Code = "DENIED"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeAlreadyExists     Code = "ALREADY_EXISTS"
	CodeCreationFailed    Code = "CREATION_FAILED"
	CodeUnavailable       Code = "UNAVAILABLE"
	CodeInternal          Code = "INTERNAL"
)

// AppError carries a Code next to the message so transports can map it
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the cause
func (e *AppError) Unwrap() error { return e.Cause }

// Is matches any AppError with the same code, so a wrapped sentinel still compares equal
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code && (t.Message == e.Message || t.Message == "")
}

// New creates an AppError
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

// Wrap creates an AppError around cause
func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

// Kind returns a code-only AppError, useful as an errors.Is target for a whole class
func Kind(code Code) error {
	return &AppError{Code: code}
}

// CodeOf returns the code of the first AppError in the chain, CodeInternal otherwise
func CodeOf(err error) Code {
	var appErr *AppError
	if asAppError(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func asAppError(err error, target **AppError) bool {
	return err != nil && errors.As(err, target)
}

// Set logs errMsg and returns it as an internal error
func Set(errMsg string, fields ...zap.Field) error {
	logger.Log.Error(errMsg, fields...)
	return New(CodeInternal, errMsg)
}
