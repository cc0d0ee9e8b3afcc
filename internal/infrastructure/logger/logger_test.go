package logger

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew(t *testing.T) {
	l, err := New(ForEnvironment("production"))
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	path := filepath.Join(t.TempDir(), "billing.log")
	l, err = New(Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("reading recorded")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)

	_, err = New(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestL_EnrichesWithContextIdentifiers(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	propertyID := uuid.New()

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithRequestID(ctx, "req-1")
	ctx = WithPropertyID(ctx, propertyID)
	ctx = trace.ContextWithSpanContext(ctx, sc)

	L(ctx).Info("invoice issued")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, propertyID.String(), fields["property_id"])
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestGinMiddleware(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-9"); c.Next() })
	r.Use(GinMiddleware(zap.New(core)))
	r.GET("/properties/:id", func(c *gin.Context) {
		assert.NotNil(t, GetGinLogger(c))
		assert.Equal(t, "req-9", GetRequestID(c.Request.Context()))
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties/abc?x=1", nil))

	entries := logs.FilterMessage("HTTP Request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
	assert.Equal(t, "/properties/:id", fields["route"])
	assert.Equal(t, "x=1", fields["query"])
	assert.Equal(t, "req-9", fields["request_id"])
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestGetGinLogger_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, WithSlowThreshold(time.Millisecond))
	ctx := WithRequestID(context.Background(), "req-3")
	fc := func() (string, int64) { return "SELECT 1", 1 }

	gl.Trace(ctx, time.Now(), fc, nil)
	gl.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	gl.Trace(ctx, time.Now(), fc, errors.New("syntax error"))
	gl.Trace(ctx, time.Now(), fc, gormlogger.ErrRecordNotFound)

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "SQL Query", logs.All()[0].Message)
	assert.Equal(t, zapcore.WarnLevel, logs.All()[1].Level)
	assert.Equal(t, "SQL Error", logs.All()[2].Message)
	assert.Equal(t, "req-3", logs.All()[2].ContextMap()["request_id"])

	silent := gl.LogMode(gormlogger.Silent)
	silent.Trace(ctx, time.Now(), fc, errors.New("ignored"))
	assert.Equal(t, 3, logs.Len())
}

func TestGormLogger_RecordNotFoundOptIn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithRecordNotFound(true))
	fc := func() (string, int64) { return "SELECT * FROM readings", 0 }

	gl.Trace(context.Background(), time.Now(), fc, gormlogger.ErrRecordNotFound)
	gl.Trace(context.Background(), time.Now(), fc, nil)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SQL Error", logs.All()[0].Message)
}

func TestGormLogger_Messages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)
	ctx := WithRequestID(context.Background(), "req-4")

	gl.Info(ctx, "migrating %s", "readings")
	gl.Warn(ctx, "deprecated %s", "option")
	gl.Error(ctx, "failed on %d rows", 3)

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "deprecated option", logs.All()[0].Message)
	assert.Equal(t, "failed on 3 rows", logs.All()[1].Message)
	assert.Equal(t, "req-4", logs.All()[1].ContextMap()["request_id"])
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("other"))
}
