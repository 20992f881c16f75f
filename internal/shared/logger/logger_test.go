package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"contacts-api/internal/shared/contextkeys"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	return New(Options{Level: "debug", JSON: true, Output: buf})
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogger_WithContextCopiesRequestFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.WithValue(context.Background(), contextkeys.RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, contextkeys.OperationKey, "contacts.get")

	newBufferLogger(&buf).WithContext(ctx).Info("hello")

	line := decodeLine(t, &buf)
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "contacts.get", line["operation"])
	assert.Equal(t, "hello", line["message"])
}

func TestLogger_WithContextSkipsEmptyValues(t *testing.T) {
	var buf bytes.Buffer
	ctx := context.WithValue(context.Background(), contextkeys.RequestIDKey, "")

	newBufferLogger(&buf).WithContext(ctx).Info("x")

	assert.NotContains(t, decodeLine(t, &buf), "request_id")
}

func TestLogger_WithComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	newBufferLogger(&buf).WithComponent("watch-hub").WithFields(map[string]interface{}{"subscribers": 2}).Warnf("n=%d", 2)

	line := decodeLine(t, &buf)
	assert.Equal(t, "watch-hub", line["component"])
	assert.Equal(t, float64(2), line["subscribers"])
	assert.Equal(t, "warning", line["level"])
}

func TestNew_LevelParsing(t *testing.T) {
	tests := map[string]logrus.Level{
		"":        logrus.InfoLevel,
		"loud":    logrus.InfoLevel,
		"debug":   logrus.DebugLevel,
		"WARNING": logrus.WarnLevel,
		" error ": logrus.ErrorLevel,
	}
	for level, want := range tests {
		l := New(Options{Level: level}).(*LogrusLogger)
		assert.Equal(t, want, l.Logger.GetLevel(), level)
	}
}

func TestNewNop_DiscardsOutput(t *testing.T) {
	l := NewNop().(*LogrusLogger)
	assert.Equal(t, logrus.PanicLevel, l.Logger.GetLevel())
	l.Error("dropped")
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	opts := OptionsFromEnv()
	assert.Equal(t, "debug", opts.Level)
	assert.True(t, opts.JSON)

	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("ENVIRONMENT", "Production")
	assert.True(t, OptionsFromEnv().JSON)

	t.Setenv("ENVIRONMENT", "development")
	assert.False(t, OptionsFromEnv().JSON)
}

func TestNewAccessLogger(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	l, err := NewAccessLogger()
	require.NoError(t, err)
	assert.NotNil(t, l)

	t.Setenv("LOG_FORMAT", "text")
	l, err = NewAccessLogger()
	require.NoError(t, err)
	assert.NotNil(t, l)
}
