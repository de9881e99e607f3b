package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for transport mapping.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidJSON
	KindDuplicateUser
	KindAuthentication
	KindNotFound
	KindEmailFailed
	KindForbidden
)

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"-"`
	Label   string `json:"error"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// StatusCode maps the error kind to an HTTP status.
func (e *AppError) StatusCode() int {
	switch e.Kind {
	case KindValidation, KindInvalidJSON, KindDuplicateUser:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(message string) *AppError {
	return &AppError{Kind: KindValidation, Label: "Validation failed", Message: message}
}

func InvalidJSON(err error) *AppError {
	return &AppError{
		Kind:    KindInvalidJSON,
		Label:   "Invalid JSON",
		Message: "Request body contains invalid JSON",
		Err:     err,
	}
}

func DuplicateUser(message string) *AppError {
	return &AppError{Kind: KindDuplicateUser, Label: "User already exists", Message: message}
}

func Authentication(message string) *AppError {
	return &AppError{Kind: KindAuthentication, Label: "Authentication failed", Message: message}
}

// AuthenticationRequired is returned when no credential was presented at all.
func AuthenticationRequired() *AppError {
	return &AppError{Kind: KindAuthentication, Label: "Authentication required", Message: "No token provided"}
}

// InvalidToken is returned for malformed, forged, revoked and expired tokens alike.
func InvalidToken(err error) *AppError {
	return &AppError{
		Kind:    KindAuthentication,
		Label:   "Invalid token",
		Message: "Token is invalid or expired",
		Err:     err,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Label: "Not found", Message: fmt.Sprintf("%s not found", resource)}
}

// Forbidden is returned when a practitioner addresses another practitioner's records.
func Forbidden() *AppError {
	return &AppError{Kind: KindForbidden, Label: "Forbidden", Message: "Access to another practitioner's records is not allowed"}
}

func Internal(err error) *AppError {
	return &AppError{Kind: KindInternal, Label: "Internal server error", Message: "Something went wrong", Err: err}
}

func EmailFailed(reason string) *AppError {
	return &AppError{Kind: KindEmailFailed, Label: "Email sending failed", Message: reason}
}

// As extracts an *AppError from err, wrapping unknown errors as Internal.
func As(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// IsKind reports whether err is an *AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Kind == kind
}
