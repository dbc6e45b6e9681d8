package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/oppia-go-api/internal/config"
	"github.com/noah-isme/oppia-go-api/internal/handler"
)

type healthEnvelope struct {
	Success bool                   `json:"success"`
	Data    handler.HealthResponse `json:"data"`
}

func TestHealthCheck(t *testing.T) {
	srv := newTestServer(t)

	resp := srv.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Oppia", resp.Header.Get("X-Application"))
	require.NotEmpty(t, resp.Header.Get("X-Correlation-ID"))

	var payload healthEnvelope
	decodeJSON(t, resp, &payload)
	require.True(t, payload.Success)
	require.Equal(t, "ok", payload.Data.Status)
	require.Equal(t, "Oppia", payload.Data.Service)
	require.Equal(t, "test", payload.Data.Environment)
	require.Equal(t, "ok", payload.Data.Checks["database"])
	require.WithinDuration(t, time.Now().UTC(), payload.Data.Timestamp, 2*time.Second)
}

func TestHealthCheckDegraded(t *testing.T) {
	cfg := config.Config{AppName: "Oppia", AppEnv: "test"}
	app := fiber.New()
	app.Get("/health", handler.HealthCheck(cfg, map[string]handler.HealthProbe{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	}))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var payload healthEnvelope
	decodeJSON(t, resp, &payload)
	require.False(t, payload.Success)
	require.Equal(t, "degraded", payload.Data.Status)
	require.Equal(t, "connection refused", payload.Data.Checks["redis"])
}
