package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/lending/backend/internal/domain/shared"
)

func TestBaseHandler_HandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"lifecycle conflict", shared.ErrInvalidState, http.StatusConflict, "INVALID_STATE"},
		{"payment history conflict", shared.ErrHasPayments, http.StatusConflict, "HAS_PAYMENTS"},
		{"cycle cap", shared.NewDomainError("CYCLE_CAP_EXCEEDED", "Open credit reached its cycle cap"), http.StatusConflict, "CYCLE_CAP_EXCEEDED"},
		{"validation", shared.NewDomainError("INVALID_AMOUNT", "Principal must be positive"), http.StatusUnprocessableEntity, "INVALID_AMOUNT"},
		{"plain error", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			h := &BaseHandler{}
			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestBaseHandler_HandleError_WrappedDomainError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	wrapped := &wrappingError{inner: shared.ErrNotFound}
	h := &BaseHandler{}
	h.HandleError(c, wrapped)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBaseHandler_HandleError_NilIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	h := &BaseHandler{}
	h.HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}

type wrappingError struct {
	inner error
}

func (e *wrappingError) Error() string { return "wrapped: " + e.inner.Error() }
func (e *wrappingError) Unwrap() error { return e.inner }
