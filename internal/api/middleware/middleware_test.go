package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/saturnino-fabrica-de-software/poise/internal/domain"
	"github.com/saturnino-fabrica-de-software/poise/internal/observe"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"app error", domain.ErrSessionNotFound, 404, "SESSION_NOT_FOUND"},
		{"wrapped app error", domain.ErrInvalidImage.WithError(errors.New("bad png")), 422, "INVALID_IMAGE"},
		{"fiber error", fiber.ErrUpgradeRequired, 426, "HTTP_ERROR"},
		{"unknown error", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(discardLogger())})
			app.Get("/", func(c *fiber.Ctx) error { return tt.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			var body errorBody
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestRecover(t *testing.T) {
	app := fiber.New()
	app.Use(Recover(discardLogger()))
	app.Get("/", func(c *fiber.Ctx) error { panic("stage exploded") })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

// captureLogger collects JSON log records at debug level and above.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	dec := json.NewDecoder(buf)
	for dec.More() {
		var rec map[string]any
		require.NoError(t, dec.Decode(&rec))
		out = append(out, rec)
	}
	return out
}

func TestLogger_RequestAttributes(t *testing.T) {
	tests := []struct {
		name       string
		handler    fiber.Handler
		wantStatus float64
		wantLevel  string
	}{
		{"ok", func(c *fiber.Ctx) error { return c.SendStatus(200) }, 200, "INFO"},
		{"not found", func(c *fiber.Ctx) error { return domain.ErrSessionNotFound }, 404, "WARN"},
		{"internal", func(c *fiber.Ctx) error { return errors.New("boom") }, 500, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := captureLogger()
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(discardLogger())})
			app.Use(requestid.New())
			app.Use(Logger(logger))
			app.Get("/v1/sessions/:session_id/summary", tt.handler)

			req := httptest.NewRequest("GET", "/v1/sessions/abc/summary", nil)
			req.Header.Set(fiber.HeaderXRequestID, "req-123")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, int(tt.wantStatus), resp.StatusCode)

			recs := records(t, buf)
			require.Len(t, recs, 1)
			rec := recs[0]
			assert.Equal(t, "http request", rec["msg"])
			assert.Equal(t, tt.wantLevel, rec["level"])
			assert.Equal(t, "req-123", rec["request_id"])
			assert.Equal(t, "/v1/sessions/:session_id/summary", rec["route"])
			assert.Equal(t, "abc", rec["session_id"])
			assert.Equal(t, tt.wantStatus, rec["status"])
		})
	}
}

func TestLogger_ProbesLogAtDebug(t *testing.T) {
	logger, buf := captureLogger()
	app := fiber.New()
	app.Use(Logger(logger))
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	_, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "DEBUG", recs[0]["level"])
	assert.NotContains(t, recs[0], "session_id")
}

func TestErrorHandler_LogsRequestID(t *testing.T) {
	logger, buf := captureLogger()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	app.Use(requestid.New())
	app.Post("/v1/sessions/:session_id/analyze", func(c *fiber.Ctx) error {
		return domain.ErrInternal.WithError(errors.New("store down"))
	})

	req := httptest.NewRequest("POST", "/v1/sessions/s9/analyze", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-err")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "internal error", recs[0]["msg"])
	assert.Equal(t, "req-err", recs[0]["request_id"])
	assert.Equal(t, "s9", recs[0]["session_id"])
	assert.Equal(t, "INTERNAL_ERROR", recs[0]["code"])
}

func TestRecover_LogsRequestID(t *testing.T) {
	logger, buf := captureLogger()
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(Recover(logger))
	app.Get("/v1/sessions/:session_id/summary", func(c *fiber.Ctx) error { panic("nil state") })

	req := httptest.NewRequest("GET", "/v1/sessions/s1/summary", nil)
	req.Header.Set(fiber.HeaderXRequestID, "req-panic")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)

	recs := records(t, buf)
	require.Len(t, recs, 1)
	assert.Equal(t, "panic recovered", recs[0]["msg"])
	assert.Equal(t, "req-panic", recs[0]["request_id"])
	assert.Equal(t, "/v1/sessions/:session_id/summary", recs[0]["route"])
	assert.Equal(t, "nil state", recs[0]["panic"])
}

func TestMetrics_RecordsRoutePattern(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	m, err := observe.NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)))
	require.NoError(t, err)

	app := fiber.New()
	app.Use(Metrics(m))
	app.Get("/v1/sessions/:session_id/summary", func(c *fiber.Ctx) error { return c.SendStatus(200) })

	_, err = app.Test(httptest.NewRequest("GET", "/v1/sessions/abc/summary", nil))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var paths []string
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			if md.Name != "poise.http.request.duration" {
				continue
			}
			hist, ok := md.Data.(metricdata.Histogram[float64])
			require.True(t, ok)
			for _, dp := range hist.DataPoints {
				v, _ := dp.Attributes.Value("path")
				paths = append(paths, v.AsString())
			}
		}
	}
	assert.Equal(t, []string{"/v1/sessions/:session_id/summary"}, paths)
}
