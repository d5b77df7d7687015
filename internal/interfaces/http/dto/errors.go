package dto

import (
	"net/http"
	"strings"
)

// Boundary error codes. Domain errors keep their own codes on the wire;
// these constants cover the errors the HTTP layer itself produces.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInvalidJSON is used when the request body cannot be parsed
	ErrCodeInvalidJSON = "INVALID_JSON"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "UNAUTHORIZED"
	// ErrCodeTokenExpired is used when the auth token has expired
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	// ErrCodeForbidden is used when the actor lacks the required privilege
	ErrCodeForbidden = "FORBIDDEN"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// errorCodeStatus maps error codes to HTTP status codes. Lifecycle conflicts
// (operations that are valid requests but collide with the credit's current
// state or payment history) map to 409 rather than 422.
var errorCodeStatus = map[string]int{
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeBadRequest:  http.StatusBadRequest,
	ErrCodeInvalidJSON: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	"TOKEN_INVALID":     http.StatusUnauthorized,

	ErrCodeForbidden: http.StatusForbidden,
	ErrCodeNotFound:  http.StatusNotFound,

	"INVALID_STATE":      http.StatusConflict,
	"HAS_PAYMENTS":       http.StatusConflict,
	"CYCLE_CAP_EXCEEDED": http.StatusConflict,
	"ALREADY_EXISTS":     http.StatusConflict,
}

// GetHTTPStatus returns the HTTP status code for an error code. Domain
// validation codes (INVALID_AMOUNT, INVALID_MODALITY, ...) all follow the
// INVALID_ convention and map to 422; anything unrecognized is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
