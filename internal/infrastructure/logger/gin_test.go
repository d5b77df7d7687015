package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func captureMiddlewareLogs() (*zap.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	encoderConfig := zapcore.EncoderConfig{
		LevelKey:    "level",
		MessageKey:  "msg",
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(&buf),
		zapcore.DebugLevel,
	)
	return zap.New(core), &buf
}

func TestGinMiddleware_LogsRequest(t *testing.T) {
	logger, buf := captureMiddlewareLogs()

	router := gin.New()
	router.Use(GinMiddleware(logger))
	router.GET("/api/v1/credits/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/credits/abc?expand=schedule", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "HTTP Request", entry["msg"])
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, "/api/v1/credits/abc", entry["path"])
	assert.Equal(t, "expand=schedule", entry["query"])
	assert.EqualValues(t, http.StatusOK, entry["status"])
}

func TestGinMiddleware_WarnOnClientError(t *testing.T) {
	logger, buf := captureMiddlewareLogs()

	router := gin.New()
	router.Use(GinMiddleware(logger))
	router.POST("/api/v1/credits", func(c *gin.Context) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/credits", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
}

func TestGinMiddleware_ErrorOnServerError(t *testing.T) {
	logger, buf := captureMiddlewareLogs()

	router := gin.New()
	router.Use(GinMiddleware(logger))
	router.GET("/boom", func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
}

func TestGinMiddleware_PropagatesLoggerToRequestContext(t *testing.T) {
	logger, buf := captureMiddlewareLogs()

	router := gin.New()
	router.Use(GinMiddleware(logger))
	router.GET("/deep", func(c *gin.Context) {
		L(c.Request.Context()).Info("called from application layer")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/deep", nil))

	assert.True(t, strings.Contains(buf.String(), "called from application layer"))
}

func TestRecovery_RecoversFromPanic(t *testing.T) {
	logger, buf := captureMiddlewareLogs()

	router := gin.New()
	router.Use(Recovery(logger))
	router.GET("/panic", func(c *gin.Context) {
		panic("schedule exploded")
	})

	w := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, strings.Contains(buf.String(), "Panic recovered"))
	assert.True(t, strings.Contains(buf.String(), "schedule exploded"))
}

func TestGetGinLogger(t *testing.T) {
	logger, _ := captureMiddlewareLogs()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c), "missing logger falls back to no-op")

	c.Set("logger", logger)
	assert.Equal(t, logger, GetGinLogger(c))
}
