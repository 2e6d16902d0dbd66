package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an error for the presentation layer
type Code string

const (
	// CodeUnknown indicates an unknown error
	CodeUnknown Code = "unknown"

	// CodeInvalidArgument indicates the caller supplied a bad argument
	CodeInvalidArgument Code = "invalid_argument"

	// CodeNotFound indicates a referenced entity is missing
	CodeNotFound Code = "not_found"

	// CodeInternal indicates an internal system error
	CodeInternal Code = "internal"

	// CodeInsufficientResource indicates a pool cannot cover the cost
	CodeInsufficientResource Code = "insufficient_resource"

	// CodeInvalidMove indicates a destination outside the legal move set
	CodeInvalidMove Code = "invalid_move"

	// CodeBlacklisted indicates the destination is blacklisted and no unlock applies
	CodeBlacklisted Code = "blacklisted_destination"

	// CodeNotInitialized indicates the member has no map progress yet
	CodeNotInitialized Code = "not_initialized"

	// CodeConditionsNotMet indicates an action's condition set evaluated false
	CodeConditionsNotMet Code = "conditions_not_met"

	// CodeLimitExceeded indicates a per-category creation cap was hit
	CodeLimitExceeded Code = "limit_exceeded"
)

// Error is an application error with a code and structured metadata.
// Meta carries whatever the presentation layer needs to render an
// actionable message (coordinate, pool name, wait duration, limit kind).
type Error struct {
	Code    Code
	Message string
	Cause   error
	Meta    map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// WithMeta adds metadata to the error (builder pattern)
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates a new error with the given code and message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new error with a formatted message
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error, preserving its code when it is already ours
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return &Error{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
			Meta:    copyMeta(appErr.Meta),
		}
	}

	return &Error{Code: CodeUnknown, Message: message, Cause: err}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WrapWithCode wraps an error and overrides its code
func WrapWithCode(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, message)
	wrapped.Code = code
	return wrapped
}

// Helper constructors for common cases

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// NotFoundf creates a formatted not found error
func NotFoundf(format string, args ...any) *Error {
	return Newf(CodeNotFound, format, args...)
}

// InvalidArgument creates an invalid argument error
func InvalidArgument(message string) *Error {
	return New(CodeInvalidArgument, message)
}

// InvalidArgumentf creates a formatted invalid argument error
func InvalidArgumentf(format string, args ...any) *Error {
	return Newf(CodeInvalidArgument, format, args...)
}

// Internal creates an internal error
func Internal(message string) *Error {
	return New(CodeInternal, message)
}

// Internalf creates a formatted internal error
func Internalf(format string, args ...any) *Error {
	return Newf(CodeInternal, format, args...)
}

// InsufficientResource creates an insufficient resource error
func InsufficientResource(message string) *Error {
	return New(CodeInsufficientResource, message)
}

// InvalidMove creates an invalid move error
func InvalidMove(message string) *Error {
	return New(CodeInvalidMove, message)
}

// Blacklisted creates a blacklisted destination error
func Blacklisted(message string) *Error {
	return New(CodeBlacklisted, message)
}

// NotInitialized creates a not initialized error
func NotInitialized(message string) *Error {
	return New(CodeNotInitialized, message)
}

// ConditionsNotMet creates a conditions not met error
func ConditionsNotMet(message string) *Error {
	return New(CodeConditionsNotMet, message)
}

// LimitExceeded creates a limit exceeded error
func LimitExceeded(message string) *Error {
	return New(CodeLimitExceeded, message)
}

// LimitExceededf creates a formatted limit exceeded error
func LimitExceededf(format string, args ...any) *Error {
	return Newf(CodeLimitExceeded, format, args...)
}

// Is checks whether the error carries a specific code
func Is(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return Is(err, CodeNotFound)
}

// IsInvalidArgument checks if the error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return Is(err, CodeInvalidArgument)
}

// IsInsufficientResource checks if the error is an insufficient resource error
func IsInsufficientResource(err error) bool {
	return Is(err, CodeInsufficientResource)
}

// IsInvalidMove checks if the error is an invalid move error
func IsInvalidMove(err error) bool {
	return Is(err, CodeInvalidMove)
}

// IsBlacklisted checks if the error is a blacklisted destination error
func IsBlacklisted(err error) bool {
	return Is(err, CodeBlacklisted)
}

// IsNotInitialized checks if the error is a not initialized error
func IsNotInitialized(err error) bool {
	return Is(err, CodeNotInitialized)
}

// IsConditionsNotMet checks if the error is a conditions not met error
func IsConditionsNotMet(err error) bool {
	return Is(err, CodeConditionsNotMet)
}

// IsLimitExceeded checks if the error is a limit exceeded error
func IsLimitExceeded(err error) bool {
	return Is(err, CodeLimitExceeded)
}

// GetCode returns the error code, CodeUnknown for foreign errors
func GetCode(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// GetMeta returns the error metadata
func GetMeta(err error) map[string]any {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Meta
	}
	return nil
}

func copyMeta(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}

	copied := make(map[string]any, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	return copied
}
