package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrUnauthorized indicates a bad credential or a bad, stale or reused token.
var ErrUnauthorized = errors.New("unauthorized")

// ErrInvalidCredentials is returned by login for both unknown users and wrong passwords.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)

// Token verification failures. All of them are also ErrUnauthorized.
var (
	ErrTokenExpired          = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrTokenMalformed        = fmt.Errorf("%w: token malformed", ErrUnauthorized)
	ErrTokenSignatureInvalid = fmt.Errorf("%w: token signature invalid", ErrUnauthorized)
)

// ErrRefreshTokenMismatch means the presented refresh token is not the one currently stored.
var ErrRefreshTokenMismatch = fmt.Errorf("%w: refresh token is not current", ErrUnauthorized)

// ErrCorruptCredential indicates a stored password hash that cannot be parsed.
var ErrCorruptCredential = errors.New("stored credential is corrupt")

// ErrStoreUnavailable indicates an infrastructure failure in the credential store.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// ErrMediaStoreUnavailable indicates the remote object store rejected or failed a request.
var ErrMediaStoreUnavailable = errors.New("media store unavailable")

// AppError carries an HTTP-ish status code and a message alongside the underlying error.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is a structured list of field errors. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError from field/message pairs.
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Invalid is shorthand for a ValidationError with a single field.
func Invalid(field, message string) *ValidationError {
	return NewValidationError(FieldError{Field: field, Message: message})
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
