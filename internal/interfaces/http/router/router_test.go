package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/lending/backend/internal/infrastructure/auth"
	"github.com/lending/backend/internal/infrastructure/config"
	"github.com/lending/backend/internal/interfaces/http/handler"
	"github.com/lending/backend/internal/interfaces/http/middleware"
)

func newTestEngine() http.Handler {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "router-test-secret",
		AccessTokenExpiration: time.Hour,
		Issuer:                "lending-backend-test",
	})
	return New(
		Config{Environment: "test", CORS: middleware.DefaultCORSConfig()},
		Dependencies{
			Logger:  zap.NewNop(),
			JWT:     jwtService,
			Credits: handler.NewCreditHandler(nil, nil, nil),
			System:  handler.NewSystemHandler(nil, "test"),
		},
	)
}

func TestRouter_HealthEndpointsNeedNoToken(t *testing.T) {
	engine := newTestEngine()

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_APIRequiresToken(t *testing.T) {
	engine := newTestEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/credits", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
}

func TestRouter_RequestIDHeaderSet(t *testing.T) {
	engine := newTestEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_UnknownRoute(t *testing.T) {
	engine := newTestEngine()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/credits", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
