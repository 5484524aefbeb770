package api_test

import (
	"aviators/internal/api"
	"aviators/internal/api/handler/v1handler"
	"aviators/internal/monitor"
	"aviators/pkg/logger"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

type fakeHealth struct {
	report *monitor.Report
	runs   int
}

func (f *fakeHealth) Report() (monitor.Report, bool) {
	if f.report == nil {
		return monitor.Report{}, false
	}

	return *f.report, true
}

func (f *fakeHealth) RunOnce(context.Context) monitor.Report {
	f.runs++
	r := monitor.Report{Healthy: false, CheckedAt: time.Now(), Results: []monitor.Result{
		{Name: "postgres", Status: monitor.StatusDown, Error: "connection refused"},
	}}
	f.report = &r

	return r
}

func publicKeyPEM(t *testing.T) string {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func newTestServer(t *testing.T, health api.HealthReporter) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	srv, err := api.NewServer(api.Deps{Health: health}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: publicKeyPEM(t), CookieName: "aviators_session"},
		HandlerOptions:    v1handler.Options{ConflictWindow: 5 * time.Minute},
		RateLimit:         10,
		RateBurst:         10,
		Registerer:        reg,
		Gatherer:          reg,
		RequestTimeout:    5 * time.Second,
		MetricsPath:       "/metrics",
	})
	require.NoError(t, err)

	return srv.Handler
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

func TestServer_Health(t *testing.T) {
	health := &fakeHealth{}
	h := newTestServer(t, health)

	rec := get(h, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var report monitor.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.False(t, report.Healthy)
	require.Equal(t, "postgres", report.Results[0].Name)
	require.Equal(t, 1, health.runs, "first request runs a round")

	health.report = &monitor.Report{Healthy: true}
	rec = get(h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, health.runs, "later requests reuse the last report")
}

func TestServer_Routes(t *testing.T) {
	h := newTestServer(t, nil)

	rec := get(h, "/specs/v1.yaml")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = get(h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = get(h, "/v1/admin/leads")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"code":"UNAUTHORIZED","message":"missing credentials"}`, rec.Body.String())
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = get(h, "/v1/nowhere")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "aviators_http_request_duration_seconds"))
}

func TestNewServer_InvalidTrustedProxies(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := api.NewServer(api.Deps{Health: &fakeHealth{}}, api.Options{
		SecHandlerOptions: &v1handler.SecHandlerOptions{PublicKey: publicKeyPEM(t), CookieName: "aviators_session"},
		RateLimit:         10,
		RateBurst:         10,
		Registerer:        reg,
		Gatherer:          reg,
		MetricsPath:       "/metrics",
		TrustedProxies:    []string{"load-balancer"},
	})
	require.ErrorContains(t, err, "invalid trusted proxies")
}
