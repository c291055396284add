package errors

import "fmt"

// AppError is the error type every service operation returns. The Code is
// stable and drives the HTTP status; Cause is internal-only and never
// serialized to callers.
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

func (e *AppError) Unwrap() error { return e.Cause }

func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func Validation(msg string) *AppError {
	return New(CodeValidation, msg)
}

func NotFound(msg string) *AppError {
	return New(CodeNotFound, msg)
}

func Conflict(msg string) *AppError {
	return New(CodeConflict, msg)
}

func Forbidden(msg string) *AppError {
	return New(CodeAuthorization, msg)
}

func Unauthenticated(msg string) *AppError {
	return New(CodeUnauthenticated, msg)
}

func Internal(msg string, cause error) *AppError {
	return Wrap(CodeInternal, msg, cause)
}

// CodeOf extracts the stable code from any error, defaulting to internal
// so storage-engine detail never leaks to the caller.
func CodeOf(err error) Code {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return CodeInternal
}
