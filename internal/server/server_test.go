package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"interview-coach/internal/config"
	"interview-coach/internal/metrics"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Env: "test",
		AI:  config.AIConfig{Provider: config.ProviderGemini},
	}
}

func TestHealthCheck(t *testing.T) {
	s := New(testConfig(), metrics.NewMetrics(), func() bool { return true }, zerolog.Nop())

	resp, err := s.App().Test(httptest.NewRequest("GET", "/healthz", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "ok", payload.Status)
	assert.Equal(t, "test", payload.Environment)
	assert.True(t, payload.AIEnabled)
	assert.Equal(t, config.ProviderGemini, payload.AIProvider)
	assert.WithinDuration(t, time.Now().UTC(), payload.Timestamp, 2*time.Second)
}

func TestHealthCheckWithoutAI(t *testing.T) {
	s := New(testConfig(), nil, func() bool { return false }, zerolog.Nop())

	resp, err := s.App().Test(httptest.NewRequest("GET", "/healthz", nil), -1)
	require.NoError(t, err)

	var payload HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.False(t, payload.AIEnabled)
	assert.Empty(t, payload.AIProvider)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewMetrics()
	m.IncrementSessionsStarted("fr")
	s := New(testConfig(), m, nil, zerolog.Nop())

	resp, err := s.App().Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `sessions_started_total{language="fr"} 1`)
}
