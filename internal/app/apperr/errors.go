// Package apperr defines the error taxonomy shared by every service in this
// module, mirroring the typed ServiceError pattern used across this codebase's
// infrastructure packages.
package apperr

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure, independent of the message text.
type Code string

const (
	CodeNotFound                   Code = "NOT_FOUND"
	CodeValidation                 Code = "VALIDATION"
	CodeInvalidToken               Code = "INVALID_TOKEN"
	CodeConsumed                   Code = "CONSUMED"
	CodeInsufficientValidatorLevel Code = "INSUFFICIENT_VALIDATOR_LEVEL"
	CodeStageInUse                 Code = "STAGE_IN_USE"
	CodeTooManyDirectors           Code = "TOO_MANY_DIRECTORS"
	CodeDatabase                   Code = "DATABASE"
	CodeExternalService            Code = "EXTERNAL_SERVICE"
	CodeUnauthorized               Code = "UNAUTHORIZED"
	CodeForbidden                  Code = "FORBIDDEN"
)

// Error is the typed error value every service returns for a business-rule
// failure. Internal infrastructure failures are wrapped with Code Database
// rather than leaking driver-specific error types to callers.
type Error struct {
	Code    Code
	Message string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// WithDetails returns a copy of e with the given structured detail attached.
func (e *Error) WithDetails(key string, value interface{}) *Error {
	clone := *e
	clone.Details = make(map[string]interface{}, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = v
	}
	clone.Details[key] = value
	return &clone
}

func newErr(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a *NotFound* error naming the missing entity kind and id.
func NotFound(entity, id string) *Error {
	return newErr(CodeNotFound, "%s %s not found", entity, id)
}

// Validation builds a *Validation* error describing the field and the
// constraint it failed.
func Validation(format string, args ...interface{}) *Error {
	return newErr(CodeValidation, format, args...)
}

// InvalidToken builds an *InvalidToken* error (token unknown or malformed).
func InvalidToken(token string) *Error {
	return newErr(CodeInvalidToken, "token %q is invalid", token)
}

// Expired builds an *InvalidToken* error distinguishing an expired token.
func Expired(token string) *Error {
	return newErr(CodeInvalidToken, "token %q has expired", token).WithDetails("reason", "expired")
}

// Consumed builds a *Consumed* error: the token already resolved once.
func Consumed(token string) *Error {
	return newErr(CodeConsumed, "token %q has already been consumed", token)
}

// InsufficientValidatorLevel builds the validation-progression gate error.
func InsufficientValidatorLevel(validatorLevel, required string) *Error {
	return newErr(CodeInsufficientValidatorLevel,
		"validator level %q does not meet the required level %q", validatorLevel, required)
}

// StageInUse builds the restrict-delete error for a validation stage still
// referenced by at least one skill validation.
func StageInUse(stageCode string) *Error {
	return newErr(CodeStageInUse, "validation stage %q is still referenced by existing validations", stageCode)
}

// TooManyDirectors builds the dive-director cap error.
func TooManyDirectors(sessionID string) *Error {
	return newErr(CodeTooManyDirectors, "session %s already has the maximum of 4 dive directors", sessionID)
}

// Database wraps an opaque store failure.
func Database(op string, err error) *Error {
	return &Error{Code: CodeDatabase, Message: fmt.Sprintf("database error during %s", op), Err: err}
}

// ExternalService wraps a failure from an external collaborator (OAuth, SMTP).
func ExternalService(service string, err error) *Error {
	return &Error{Code: CodeExternalService, Message: fmt.Sprintf("%s call failed", service), Err: err}
}

// Unauthorized builds an *Unauthorized* error.
func Unauthorized(reason string) *Error {
	return newErr(CodeUnauthorized, "%s", reason)
}

// Forbidden builds a *Forbidden* error.
func Forbidden(reason string) *Error {
	return newErr(CodeForbidden, "%s", reason)
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// As extracts the *Error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
