// Package monitor polls the health of the service dependencies on an
// interval, exposes the results as Prometheus metrics and keeps the last
// report for the health endpoint. A check that keeps failing is skipped for a
// few ticks before it is tried again.
package monitor

import (
	"aviators/internal/config"
	"aviators/pkg/logger"
	"aviators/pkg/metrics"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Checker is a single health check.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkFunc) Name() string                    { return c.name }
func (c checkFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// CheckFunc turns fn into a Checker called name.
func CheckFunc(name string, fn func(ctx context.Context) error) Checker {
	return checkFunc{name: name, fn: fn}
}

// Status of a single check in a report.
type Status string

const (
	StatusUp      Status = "up"
	StatusDown    Status = "down"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one check.
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the outcome of one polling round.
type Report struct {
	Healthy   bool      `json:"healthy"`
	CheckedAt time.Time `json:"checkedAt"`
	Results   []Result  `json:"results"`
}

// Options configure a Monitor.
type Options struct {
	Interval     time.Duration
	CheckTimeout time.Duration
	// FailureThreshold consecutive failures open the breaker of a check.
	FailureThreshold int
	// CooldownTicks is how many rounds an open check is skipped.
	CooldownTicks int
	// Registerer receives the monitor metrics. Optional.
	Registerer prometheus.Registerer
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config, reg prometheus.Registerer) Options {
	return Options{
		Interval:         cfg.Monitor.Interval,
		CheckTimeout:     cfg.Monitor.CheckTimeout,
		FailureThreshold: cfg.Monitor.FailureThreshold,
		CooldownTicks:    cfg.Monitor.CooldownTicks,
		Registerer:       reg,
	}
}

// breaker is a reset-counter circuit breaker.
type breaker struct {
	failures int
	cooldown int
}

// allow reports whether the check may run this round.
func (b *breaker) allow() bool {
	if b.cooldown > 0 {
		b.cooldown--

		return false
	}

	return true
}

func (b *breaker) record(ok bool, threshold, cooldownTicks int) (opened bool) {
	if ok {
		b.failures = 0

		return false
	}
	b.failures++
	if b.failures >= threshold {
		b.cooldown = cooldownTicks

		return true
	}

	return false
}

// Monitor runs health checks.
type Monitor struct {
	options  Options
	checks   []Checker
	breakers []breaker

	up       *prometheus.GaugeVec
	duration *prometheus.HistogramVec

	// runMu serializes rounds, it guards breakers.
	runMu sync.Mutex

	mu   sync.RWMutex
	last *Report
}

// New creates a Monitor for checks.
func New(options Options, checks ...Checker) (*Monitor, error) {
	if options.Interval <= 0 {
		options.Interval = 30 * time.Second
	}
	if options.CheckTimeout <= 0 {
		options.CheckTimeout = 5 * time.Second
	}
	if options.FailureThreshold <= 0 {
		options.FailureThreshold = 3
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	m := &Monitor{
		options:  options,
		checks:   checks,
		breakers: make([]breaker, len(checks)),
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "aviators",
			Name:      "health_check_up",
			Help:      "Whether the last run of a health check succeeded",
		}, []string{"check"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aviators",
			Name:      "health_check_duration_seconds",
			Help:      "Duration of health checks",
			Buckets:   metrics.DefaultBuckets,
		}, []string{"check"}),
	}
	if options.Registerer != nil {
		for _, c := range []prometheus.Collector{m.up, m.duration} {
			if err := options.Registerer.Register(c); err != nil {
				return nil, fmt.Errorf("could not register monitor metrics: %w", err)
			}
		}
	}

	return m, nil
}

func (m *Monitor) check(ctx context.Context, c Checker) Result {
	ctx, cancel := context.WithTimeout(ctx, m.options.CheckTimeout)
	defer cancel()

	start := time.Now()
	err := c.Check(ctx)
	res := Result{Name: c.Name(), Status: StatusUp, Duration: time.Since(start)}
	if err != nil {
		res.Status = StatusDown
		res.Error = err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			res.Error = fmt.Sprintf("timed out after %s", m.options.CheckTimeout)
		}
	}

	return res
}

// RunOnce runs every check whose breaker is closed concurrently and returns
// the report of the round.
func (m *Monitor) RunOnce(ctx context.Context) Report {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	results := make([]Result, len(m.checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range m.checks {
		if !m.breakers[i].allow() {
			results[i] = Result{Name: c.Name(), Status: StatusSkipped}

			continue
		}
		g.Go(func() error {
			results[i] = m.check(gctx, c)

			return nil
		})
	}
	_ = g.Wait()

	report := Report{Healthy: true, CheckedAt: m.options.Now().UTC(), Results: results}
	for i := range results {
		r := &results[i]
		fields := []zap.Field{zap.String("check", r.Name), zap.Duration("duration", r.Duration)}

		switch r.Status {
		case StatusUp:
			m.breakers[i].record(true, m.options.FailureThreshold, m.options.CooldownTicks)
			m.up.WithLabelValues(r.Name).Set(1)
			m.duration.WithLabelValues(r.Name).Observe(r.Duration.Seconds())
			logger.Debug(ctx, "health check passed", fields...)
		case StatusDown:
			report.Healthy = false
			opened := m.breakers[i].record(false, m.options.FailureThreshold, m.options.CooldownTicks)
			m.up.WithLabelValues(r.Name).Set(0)
			m.duration.WithLabelValues(r.Name).Observe(r.Duration.Seconds())
			logger.Warn(ctx, "health check failed",
				append(fields, zap.String("error", r.Error), zap.Bool("breakerOpened", opened))...)
		case StatusSkipped:
			report.Healthy = false
			m.up.WithLabelValues(r.Name).Set(0)
			logger.Info(ctx, "health check skipped while breaker is open", zap.String("check", r.Name))
		}
	}

	m.mu.Lock()
	m.last = &report
	m.mu.Unlock()

	return report
}

// Run polls until ctx is done. The first round runs immediately.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.options.Interval)
	defer ticker.Stop()

	logger.Info(ctx, "starting health monitor",
		zap.Duration("interval", m.options.Interval), zap.Int("checks", len(m.checks)))
	for {
		m.RunOnce(ctx)

		select {
		case <-ctx.Done():
			logger.Info(ctx, "health monitor stopped")

			return
		case <-ticker.C:
		}
	}
}

// Report returns the last report and whether there is one yet.
func (m *Monitor) Report() (Report, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.last == nil {
		return Report{}, false
	}

	return *m.last, true
}

// UpGauge returns the per-check up gauge.
func (m *Monitor) UpGauge() *prometheus.GaugeVec { return m.up }
