package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smallbiznis/telematch/internal/config"
	"github.com/smallbiznis/telematch/pkg/telemetry"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRouterServesRegistry(t *testing.T) {
	m := telemetry.NewMetrics()
	m.ObserveNotificationEvent("registration")

	r := NewMetricsRouter(m)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "registration")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig(config.Config{})
	assert.Equal(t, "telematch", cfg.ServiceName)
	assert.Equal(t, "grpc", cfg.OtelExporterProtocol)
}
