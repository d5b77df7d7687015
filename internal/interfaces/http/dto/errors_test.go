package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidJSON, http.StatusBadRequest},
		{ErrCodeInternal, http.StatusInternalServerError},

		// lifecycle conflicts
		{"INVALID_STATE", http.StatusConflict},
		{"HAS_PAYMENTS", http.StatusConflict},
		{"CYCLE_CAP_EXCEEDED", http.StatusConflict},
		{"ALREADY_EXISTS", http.StatusConflict},

		// domain validation codes follow the INVALID_ convention
		{"INVALID_AMOUNT", http.StatusUnprocessableEntity},
		{"INVALID_MODALITY", http.StatusUnprocessableEntity},
		{"INVALID_PAYMENT_METHOD", http.StatusUnprocessableEntity},
		{"INVALID_REFINANCE_OPTION", http.StatusUnprocessableEntity},

		// unknown codes fall back to 500
		{"SOMETHING_ELSE", http.StatusInternalServerError},
		{"", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("NOT_FOUND", "Credit not found", "req-123")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "Credit not found", resp.Error.Message)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "principal", Rule: "required"},
		{Field: "modality", Rule: "oneof"},
	}
	resp := NewValidationErrorResponse("Request validation failed", "req-456", details)

	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeBadRequest, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 2)
	assert.Equal(t, "principal", resp.Error.Details[0].Field)
}
