package controller_test

import (
	"aviators/pkg/controller"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWithCORS(t *testing.T) {
	cors := controller.WithCORS(" https://Admin.Example.com/ ", "")

	cases := []struct {
		name        string
		method      string
		origin      string
		status      int
		allowOrigin string
		credentials string
		called      bool
	}{
		{"trusted preflight", http.MethodOptions, "https://admin.example.com", http.StatusNoContent, "https://admin.example.com", "true", false},
		{"trusted request", http.MethodGet, "https://ADMIN.example.com", http.StatusTeapot, "https://ADMIN.example.com", "true", true},
		{"other site", http.MethodGet, "https://blog.example.org", http.StatusTeapot, "*", "", true},
		{"other site preflight", http.MethodOptions, "https://blog.example.org", http.StatusNoContent, "*", "", false},
		{"no origin", http.MethodPost, "", http.StatusTeapot, "*", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusTeapot)
			})

			req := httptest.NewRequest(tc.method, "/v1/admin/posts", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			cors(next).ServeHTTP(rec, req)

			require.Equal(t, tc.called, called)
			require.Equal(t, tc.status, rec.Code)
			h := rec.Header()
			require.Equal(t, tc.allowOrigin, h.Get("Access-Control-Allow-Origin"))
			require.Equal(t, tc.credentials, h.Get("Access-Control-Allow-Credentials"))
			require.Equal(t, "Origin", h.Get("Vary"))
			require.Contains(t, h.Get("Access-Control-Allow-Methods"), "DELETE")
			require.Contains(t, h.Get("Access-Control-Allow-Headers"), "Authorization")
			require.Contains(t, h.Get("Access-Control-Expose-Headers"), "Retry-After")
			if tc.method == http.MethodOptions {
				require.Equal(t, "600", h.Get("Access-Control-Max-Age"))
			} else {
				require.Empty(t, h.Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestWithCORS_NoTrustedOrigins(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	req.Header.Set("Origin", "https://admin.example.com")
	rec := httptest.NewRecorder()
	controller.WithCORS()(next).ServeHTTP(rec, req)

	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Empty(t, rec.Header().Get("Vary"))
}
