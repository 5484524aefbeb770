package controller

import (
	"net/http"
	"slices"
	"strings"
)

const (
	corsAllowHeaders = "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, " +
		"Cache-Control, X-Request-Id"
	corsAllowMethods   = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
	corsExposeHeaders  = "Retry-After, X-Request-Id"
	corsPreflightCache = "600"
)

// WithCORS returns a middleware that allows cross-origin requests and answers
// OPTIONS preflight requests with 204 No Content. Origins in trusted are
// echoed back with credentials allowed, so the admin UI can send its session;
// every other caller gets a wildcard without credentials. Origins compare
// case-insensitively.
func WithCORS(trusted ...string) func(http.Handler) http.Handler {
	allowed := make([]string, 0, len(trusted))
	for _, o := range trusted {
		if o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/")); o != "" {
			allowed = append(allowed, o)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")
			if origin != "" && slices.Contains(allowed, strings.ToLower(origin)) {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			} else {
				h.Set("Access-Control-Allow-Origin", "*")
			}
			if len(allowed) > 0 {
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)

			if r.Method == http.MethodOptions {
				h.Set("Access-Control-Max-Age", corsPreflightCache)
				w.WriteHeader(http.StatusNoContent)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
