package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newCaptureLogger() (*zap.Logger, *bytes.Buffer) {
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

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestWithContextAndFromContext(t *testing.T) {
	logger, _ := newCaptureLogger()
	ctx := WithContext(context.Background(), logger)

	assert.Equal(t, logger, FromContext(ctx))
}

func TestFromContext_MissingLogger(t *testing.T) {
	logger := FromContext(context.Background())
	assert.NotNil(t, logger, "should fall back to a no-op logger")
}

func TestWithRequestID(t *testing.T) {
	logger, buf := newCaptureLogger()

	ctx, enriched := WithRequestID(context.Background(), logger, "req-123")
	enriched.Info("payment applied")

	assert.Equal(t, "req-123", GetRequestID(ctx))
	entry := decodeEntry(t, buf)
	assert.Equal(t, "req-123", entry["request_id"])
}

func TestWithUserID(t *testing.T) {
	logger, buf := newCaptureLogger()

	ctx, enriched := WithUserID(context.Background(), logger, "user-9")
	enriched.Info("credit voided")

	assert.Equal(t, "user-9", GetUserID(ctx))
	entry := decodeEntry(t, buf)
	assert.Equal(t, "user-9", entry["user_id"])
}

func TestGetRequestID_Missing(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetUserID(context.Background()))
}

func TestContextLogger_InjectsContextFields(t *testing.T) {
	logger, buf := newCaptureLogger()

	ctx := WithContext(context.Background(), logger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-77")
	ctx = context.WithValue(ctx, UserIDKey, "collector-1")

	L(ctx).Info("installment closed")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "installment closed", entry["msg"])
	assert.Equal(t, "req-77", entry["request_id"])
	assert.Equal(t, "collector-1", entry["user_id"])
}

func TestContextLogger_NoContextFields(t *testing.T) {
	logger, buf := newCaptureLogger()

	L(WithContext(context.Background(), logger)).Warn("overdue sweep skipped")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "overdue sweep skipped", entry["msg"])
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "user_id")
}

func TestContextLogger_With(t *testing.T) {
	logger, buf := newCaptureLogger()

	cl := WithLogger(context.Background(), logger).With(zap.String("credit_id", "c-1"))
	cl.Info("settlement planned")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "c-1", entry["credit_id"])
}

func TestContextLogger_NilLoggerDoesNotPanic(t *testing.T) {
	cl := &ContextLogger{ctx: context.Background()}
	assert.NotPanics(t, func() {
		cl.Info("no sink")
	})
}

func TestContextLogger_Zap(t *testing.T) {
	logger, buf := newCaptureLogger()

	ctx := WithContext(context.Background(), logger)
	ctx = context.WithValue(ctx, RequestIDKey, "req-z")

	L(ctx).Zap().Info("raw zap")

	entry := decodeEntry(t, buf)
	assert.Equal(t, "req-z", entry["request_id"])
}
