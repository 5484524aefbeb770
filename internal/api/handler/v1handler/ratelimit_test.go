package v1handler_test

import (
	"aviators/internal/api/handler/v1handler"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerClient(t *testing.T) {
	reg := prometheus.NewRegistry()
	l, err := v1handler.NewRateLimiter(0.001, 2, reg)
	require.NoError(t, err)

	require.True(t, l.Allow("1.1.1.1"))
	require.True(t, l.Allow("1.1.1.1"))
	require.False(t, l.Allow("1.1.1.1"))
	require.True(t, l.Allow("2.2.2.2"), "buckets are per client")

	require.Equal(t, 2, testutil.CollectAndCount(reg, "aviators_rate_limit_requests_total"))

	_, err = v1handler.NewRateLimiter(1, 1, reg)
	require.Error(t, err, "duplicate registration")
}

func TestRateLimiter_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := func(t *testing.T, trusted []string) *gin.Engine {
		t.Helper()
		l, err := v1handler.NewRateLimiter(0.001, 1, nil)
		require.NoError(t, err)

		r := gin.New()
		require.NoError(t, r.SetTrustedProxies(trusted))
		r.POST("/v1/events", l.Middleware(), func(c *gin.Context) { c.Status(http.StatusAccepted) })

		return r
	}
	send := func(r *gin.Engine, peer, forwarded string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/events", nil)
		req.RemoteAddr = peer
		if forwarded != "" {
			req.Header.Set("X-Forwarded-For", forwarded)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		return rec
	}

	t.Run("per peer address", func(t *testing.T) {
		r := router(t, nil)

		require.Equal(t, http.StatusAccepted, send(r, "203.0.113.7:4000", "").Code)
		rec := send(r, "203.0.113.7:4001", "")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "1", rec.Header().Get("Retry-After"))
		require.JSONEq(t, `{"code":"RATE_LIMITED","message":"rate limit exceeded"}`, rec.Body.String())
		require.Equal(t, http.StatusAccepted, send(r, "203.0.113.8:4000", "").Code)
	})

	t.Run("forwarded for from untrusted peer is ignored", func(t *testing.T) {
		r := router(t, nil)

		require.Equal(t, http.StatusAccepted, send(r, "203.0.113.7:4000", "198.51.100.1").Code)
		for i := 2; i < 50; i++ {
			rec := send(r, "203.0.113.7:4000", fmt.Sprintf("198.51.100.%d", i))
			require.Equal(t, http.StatusTooManyRequests, rec.Code, "rotated forwarded address %d", i)
		}
	})

	t.Run("trusted proxy forwards the client address", func(t *testing.T) {
		r := router(t, []string{"10.1.0.0/16"})

		require.Equal(t, http.StatusAccepted, send(r, "10.1.2.3:5000", "198.51.100.1").Code)
		require.Equal(t, http.StatusTooManyRequests, send(r, "10.1.2.3:5000", "198.51.100.1").Code)
		require.Equal(t, http.StatusAccepted, send(r, "10.1.2.3:5000", "198.51.100.2").Code)
		require.Equal(t, http.StatusTooManyRequests, send(r, "10.1.9.9:5000", "198.51.100.2").Code,
			"same client behind another proxy shares its bucket")
	})
}
