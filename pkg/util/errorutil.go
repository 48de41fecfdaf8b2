package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewMissingCredential signals an absent or blank bearer token.
func NewMissingCredential(message string) error {
	return NewDomainError("MISSING_CREDENTIAL", message, http.StatusUnauthorized, nil)
}

// NewInvalidCredential signals a malformed token or bad signature.
func NewInvalidCredential(message string) error {
	return NewDomainError("INVALID_CREDENTIAL", message, http.StatusUnauthorized, nil)
}

// NewExpiredCredential signals a token missing from the session store or past
// its embedded expiry. Never-issued and revoked tokens are indistinguishable.
func NewExpiredCredential(message string) error {
	return NewDomainError("EXPIRED_CREDENTIAL", message, http.StatusUnauthorized, nil)
}

// NewForbiddenAction signals an action the caller may not perform,
// such as following oneself or editing another author's article.
func NewForbiddenAction(message string) error {
	return NewDomainError("FORBIDDEN_ACTION", message, http.StatusForbidden, nil)
}

// NewObjectNotEligible signals a target in a non-toggleable state,
// such as an unpublished article or a deleted comment.
func NewObjectNotEligible(message string) error {
	return NewDomainError("OBJECT_NOT_ELIGIBLE", message, http.StatusConflict, nil)
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsCredentialError reports whether err belongs to the authentication taxonomy.
func IsCredentialError(err error) bool {
	de := ToDomainError(err)
	return de != nil && de.HTTPStatus == http.StatusUnauthorized
}

func MapError(err error) error {
	return ToDomainError(err)
}
