// Package api configures and exposes the HTTP server: the gin v1 router,
// health, metrics, docs and the middleware wrapped around them.
package api

import (
	"aviators/internal/api/handler/v1handler"
	"aviators/internal/config"
	"aviators/internal/monitor"
	"aviators/pkg/controller"
	"aviators/pkg/metrics"
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swaggest/swgui/v5emb"
)

// v1Spec contains the embedded OpenAPI specification for version 1 of the API.
//
//go:embed specs/v1.yaml
var v1Spec []byte

// Options holds configuration for the HTTP server and its dependencies.
// It is typically created from a config.Config via NewOptions.
// Zero durations fall back to the net/http defaults.
type Options struct {
	// SecHandlerOptions configures authentication of the admin endpoints.
	SecHandlerOptions *v1handler.SecHandlerOptions
	// HandlerOptions configures the v1 handlers.
	HandlerOptions v1handler.Options

	// RateLimit and RateBurst bound the public write endpoints per client IP.
	RateLimit float64
	RateBurst int

	// Registerer receives the HTTP metrics and Gatherer serves MetricsPath.
	// Both default to the prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer

	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// TrustedOrigins may make credentialed cross-origin calls, e.g. the admin UI.
	TrustedOrigins []string
	// TrustedProxies may set the client address via forwarding headers.
	// Requests from any other peer are keyed by their remote address.
	TrustedProxies []string
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		SecHandlerOptions: v1handler.NewSecHandlerOptions(cfg),
		HandlerOptions:    v1handler.NewOptions(cfg),

		RateLimit: cfg.Analytics.RateLimit,
		RateBurst: cfg.Analytics.RateBurst,

		Registerer: prometheus.DefaultRegisterer,
		Gatherer:   prometheus.DefaultGatherer,

		Addr:              cfg.HTTP.Addr,
		TrustedOrigins:    cfg.HTTP.TrustedOrigins,
		TrustedProxies:    cfg.HTTP.TrustedProxies,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
	}
}

// HealthReporter is what the health endpoint reads. *monitor.Monitor
// implements it.
type HealthReporter interface {
	Report() (monitor.Report, bool)
	RunOnce(ctx context.Context) monitor.Report
}

type Deps struct {
	v1handler.Deps

	Health HealthReporter
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - Embedded OpenAPI v1 spec and Swagger UI
// - v1 API routes and the health endpoint on a gin router
// - pprof endpoints for profiling
// It also wraps the mux with CORS and logging middlewares and applies a request timeout.
func NewServer(deps Deps, opts Options) (*http.Server, error) {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	mux := http.NewServeMux()

	// prometheus metrics server
	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	// v1 specs file
	mux.HandleFunc("/specs/v1.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(v1Spec)
	})
	// v1 api swagger playground
	mux.Handle("/v1/docs/", v5emb.New(
		"Aviators Training Centre API",
		"/specs/v1.yaml",
		"/v1/docs/",
	))

	router, err := newRouter(deps, opts)
	if err != nil {
		return nil, err
	}
	mux.Handle("/v1/", router)
	mux.Handle("/healthz", router)

	// pprof
	mux.Handle("/debug/pprof/", controller.PprofMux("/debug/pprof"))

	// cors
	handler := controller.WithCORS(opts.TrustedOrigins...)(mux)

	// logger
	handler = controller.WithLogger(handler)

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           http.TimeoutHandler(handler, opts.RequestTimeout, `{"code":"TIMEOUT","message":"request timed out"}`),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}, nil
}

func newRouter(deps Deps, opts Options) (*gin.Engine, error) {
	secHandler, err := v1handler.NewSecHandler(opts.SecHandlerOptions)
	if err != nil {
		return nil, fmt.Errorf("could not create sec handler: %w", err)
	}
	limiter, err := v1handler.NewRateLimiter(opts.RateLimit, opts.RateBurst, opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("could not create rate limiter: %w", err)
	}
	requests, err := requestMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		v1handler.Fail(c, fmt.Errorf("panic while serving request: %v", recovered))
	}))
	r.Use(requests)
	r.NoRoute(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusNotFound, v1handler.ErrorResponse{Code: "NOT_FOUND", Message: "route not found"})
	})

	r.GET("/healthz", health(deps.Health))
	v1handler.New(deps.Deps, opts.HandlerOptions).Register(r.Group("/v1"), secHandler, limiter.Middleware())

	return r, nil
}

// requestMetrics observes the latency of every routed request by route
// template, method and status.
func requestMetrics(reg prometheus.Registerer) (gin.HandlerFunc, error) {
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aviators",
		Name:      "http_request_duration_seconds",
		Help:      "Latency of HTTP requests by route, method and status",
		Buckets:   metrics.DefaultBuckets,
	}, []string{"route", "method", "status"})
	if err := reg.Register(duration); err != nil {
		return nil, fmt.Errorf("could not register http metrics: %w", err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		duration.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}, nil
}

// health serves the last monitor report, running a round first when the
// monitor has not reported yet.
func health(h HealthReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if h == nil {
			c.JSON(http.StatusOK, monitor.Report{Healthy: true, CheckedAt: time.Now().UTC(), Results: []monitor.Result{}})

			return
		}

		report, ok := h.Report()
		if !ok {
			report = h.RunOnce(c.Request.Context())
		}
		status := http.StatusOK
		if !report.Healthy {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, report)
	}
}
