package v1handler

import (
	"aviators/pkg/serrors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an idle client keeps its bucket.
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// RateLimiter is a per client IP token bucket.
type RateLimiter struct {
	rps   rate.Limit
	burst int

	limiters  sync.Map // map[string]*limiterEntry
	lastSweep atomic.Int64
	requests  *prometheus.CounterVec
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst per client. Its counters are registered on reg when not nil.
func NewRateLimiter(rps float64, burst int, reg prometheus.Registerer) (*RateLimiter, error) {
	l := &RateLimiter{
		rps:   rate.Limit(rps),
		burst: max(burst, 1),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aviators",
			Name:      "rate_limit_requests_total",
			Help:      "Requests seen by the ingestion rate limiter by result",
		}, []string{"result"}),
		now: time.Now,
	}
	if reg != nil {
		if err := reg.Register(l.requests); err != nil {
			return nil, fmt.Errorf("could not register rate limit metrics: %w", err)
		}
	}

	return l, nil
}

func (l *RateLimiter) entry(key string, now time.Time) *limiterEntry {
	v, ok := l.limiters.Load(key)
	if !ok {
		v, _ = l.limiters.LoadOrStore(key, &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)})
	}
	e := v.(*limiterEntry) //nolint: forcetypeassert
	e.lastSeen.Store(now.UnixNano())

	return e
}

// sweep drops idle buckets at most once per minute.
func (l *RateLimiter) sweep(now time.Time) {
	last := l.lastSweep.Load()
	if now.UnixNano()-last < int64(time.Minute) || !l.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	l.limiters.Range(func(k, v any) bool {
		if v.(*limiterEntry).lastSeen.Load() < cutoff { //nolint: forcetypeassert
			l.limiters.Delete(k)
		}

		return true
	})
}

// Allow reports whether a request of key may proceed now.
func (l *RateLimiter) Allow(key string) bool {
	now := l.now()
	l.sweep(now)

	if !l.entry(key, now).limiter.AllowN(now, 1) {
		l.requests.WithLabelValues("rejected").Inc()

		return false
	}
	l.requests.WithLabelValues("allowed").Inc()

	return true
}

// Middleware rejects requests of clients over their budget with 429. Clients
// are keyed by gin's ClientIP, which only honours forwarding headers sent by
// the engine's trusted proxies.
func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			Fail(c, serrors.With(serrors.ErrRateLimited, "rate limit exceeded"))

			return
		}
		c.Next()
	}
}
