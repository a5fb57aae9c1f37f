package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel_Prometheus(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		Environment:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
		SampleRatio:    1,
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.MeterProvider)
	require.NotNil(t, providers.PrometheusHTTP)

	metrics, err := CreateBusinessMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordDatasetLoad(ctx, metrics, 120, 7, 250*time.Millisecond, nil)
	RecordLogin(ctx, metrics, false)
	RecordFilter(ctx, metrics, true, 12)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "dataset_loads")
	assert.Contains(t, body, "dataset_records")
	assert.Contains(t, body, "login_attempts")
	assert.Contains(t, body, "filter_executions")
	assert.Contains(t, body, "go_goroutines")
}

func TestInitializeOTel_StdoutTracing(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    ServiceName,
		ServiceVersion: "test",
		TraceExporter:  "stdout",
		MetricExporter: "none",
		SampleRatio:    1,
	}, discardLogger())
	require.NoError(t, err)

	assert.NotNil(t, providers.TracerProvider)
	assert.Nil(t, providers.MeterProvider)
	assert.Nil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestInitializeOTel_UnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{TraceExporter: "jaeger"}, discardLogger())
	assert.Error(t, err)

	_, err = InitializeOTel(&OTelConfig{MetricExporter: "statsd"}, discardLogger())
	assert.Error(t, err)
}

func TestRecordHelpers_NilMetrics(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, nil, 1, 0, time.Second, errors.New("boom"))
		RecordFilter(ctx, nil, false, 0)
		RecordLogin(ctx, nil, true)
		RecordError(ctx, errors.New("no span"))
	})
}

func TestNoopBusinessMetrics(t *testing.T) {
	m := NoopBusinessMetrics()
	require.NotNil(t, m)
	assert.NotPanics(t, func() {
		RecordDatasetLoad(context.Background(), m, 10, 1, time.Millisecond, nil)
	})
}
