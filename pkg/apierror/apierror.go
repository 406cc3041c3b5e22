package apierror

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeMissingToken = "MISSING_TOKEN"
	CodeInvalidToken = "INVALID_TOKEN"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUpstream     = "UPSTREAM_ERROR"
	CodeNotWhitelist = "NOT_WHITELISTED"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func Validation(message string, field string) *APIError {
	return New(CodeValidation, message, field, http.StatusBadRequest)
}

func MissingToken() *APIError {
	return New(CodeMissingToken, "missing authentication token", "", http.StatusUnauthorized)
}

func InvalidToken() *APIError {
	return New(CodeInvalidToken, "invalid or expired token", "", http.StatusForbidden)
}

func Forbidden(message string) *APIError {
	return New(CodeForbidden, message, "", http.StatusForbidden)
}

func NotFound(resource string, key string) *APIError {
	return New(CodeNotFound, resource+" not found", key, http.StatusNotFound)
}

// Conflict reports a duplicate resource. Duplicates are a client input
// problem on this API, so they answer 400 rather than 409.
func Conflict(message string, key string) *APIError {
	return New(CodeConflict, message, key, http.StatusBadRequest)
}

func Upstream(message string) *APIError {
	return New(CodeUpstream, message, "", http.StatusInternalServerError)
}

func NotWhitelisted(username string) *APIError {
	return New(CodeNotWhitelist, "user is not whitelisted", username, http.StatusForbidden)
}
