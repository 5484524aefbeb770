package worker

import (
	"aviators/internal/blog"
	"aviators/pkg/cms"
	"aviators/pkg/logger"
	"aviators/pkg/serrors"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// PublishWorker is a River worker that mirrors posts into the CMS through
// blog.Service.Sync. Besides running the jobs it keeps the CMS write budget:
// concurrent jobs share one view of the CMS rate limit and never start more
// requests than the last response said were left.
//
// # Rate limiting
//
// lastRLStatus is the freshest rate-limit status reported by the CMS and
// inFlightRequests counts running requests. A job may start when
//
//	remaining - inFlightRequests > 0
//
// where remaining is lastRLStatus.Remaining, or Limit once ResetAt has passed.
// Otherwise it waits for ResetAt or for any running request to finish.
//
// Until the CMS has answered once, a synthetic status with one remaining
// request and a far-future reset lets exactly one trial request through.
// Responses without rate-limit headers, such as skipped syncs, leave the view
// unchanged. A new ResetAt is always adopted; within the same window only a
// lower Remaining is.
//
// A job whose post is gone is canceled. A rate-limited job is snoozed until
// the window resets.
type PublishWorker struct {
	river.WorkerDefaults[blog.PublishPostJob]

	blog    blog.Service
	timeout time.Duration

	// mu guards inFlightRequests and lastRLStatus.
	mu                  sync.Mutex
	inFlightRequests    int
	lastRLStatus        *cms.RateLimitStatus
	requestFinishedChan chan struct{}
}

// NewPublishWorker constructs a PublishWorker syncing through blogService.
// timeout bounds a single job; zero keeps River's default.
func NewPublishWorker(blogService blog.Service, timeout time.Duration) *PublishWorker {
	return &PublishWorker{
		blog:                blogService,
		timeout:             timeout,
		requestFinishedChan: make(chan struct{}),
	}
}

// Timeout implements river.Worker.
func (w *PublishWorker) Timeout(*river.Job[blog.PublishPostJob]) time.Duration {
	return w.timeout
}

// Work syncs one post while respecting the CMS rate limit.
func (w *PublishWorker) Work(ctx context.Context, job *river.Job[blog.PublishPostJob]) error {
	ctx = logger.WithFields(ctx,
		zap.Int64("jobID", job.ID),
		zap.Stringer("postID", job.Args.PostID),
		zap.String("action", string(job.Args.Action)),
		zap.Int("version", job.Args.Version))

	if err := w.reserveRL(ctx); err != nil {
		logger.Error(ctx, "error reserving rate limit", zap.Error(err))

		return fmt.Errorf("could not reserve rate limit: %w", err)
	}

	status, err := w.blog.Sync(ctx, job.Args)
	w.requestFinished(ctx, status)
	if err != nil {
		if errors.Is(err, serrors.ErrNotFound) || errors.Is(err, serrors.ErrBadRequest) {
			logger.Warn(ctx, "canceling publish job", zap.Error(err))

			return river.JobCancel(err) //nolint: wrapcheck
		}

		logger.Error(ctx, "error syncing post", zap.Error(err))

		if errors.Is(err, serrors.ErrRateLimited) {
			return river.JobSnooze(max(time.Until(status.ResetAt), time.Second)) //nolint: wrapcheck
		}

		return fmt.Errorf("could not sync post: %w", err)
	}

	logger.Info(ctx, "post synced")

	return nil
}

func (w *PublishWorker) requestFinished(ctx context.Context, status cms.RateLimitStatus) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.inFlightRequests = max(w.inFlightRequests-1, 0)

	select {
	case w.requestFinishedChan <- struct{}{}:
	default:
	}

	if status.ResetAt.IsZero() || status.Limit <= 0 {
		return
	}

	switch {
	case w.lastRLStatus == nil,
		!w.lastRLStatus.ResetAt.Equal(status.ResetAt),
		status.Remaining < w.lastRLStatus.Remaining:
		w.lastRLStatus = &status
		logger.Debug(ctx, "received rate limit status",
			zap.Int("limit", status.Limit),
			zap.Int("remaining", status.Remaining),
			zap.Time("resetAt", status.ResetAt),
			zap.Int("inFlight", w.inFlightRequests))
	}
}

func (w *PublishWorker) reserveRL(ctx context.Context) error {
	for {
		w.mu.Lock()

		if w.lastRLStatus == nil {
			w.lastRLStatus = &cms.RateLimitStatus{
				Limit:     1,
				Remaining: 1,
				ResetAt:   time.Now().Add(365 * 24 * time.Hour),
			}
		}

		remaining := w.lastRLStatus.Remaining
		if time.Now().After(w.lastRLStatus.ResetAt) {
			remaining = w.lastRLStatus.Limit
		}

		if remaining-w.inFlightRequests > 0 {
			w.inFlightRequests++
			w.mu.Unlock()

			return nil
		}

		resetAt := w.lastRLStatus.ResetAt
		inFlight := w.inFlightRequests
		w.mu.Unlock()

		logger.Debug(ctx, "waiting for rate limit slot",
			zap.Int("remaining", remaining),
			zap.Time("resetAt", resetAt),
			zap.Int("inFlight", inFlight))

		timer := time.NewTimer(time.Until(resetAt))
		select {
		case <-ctx.Done():
			timer.Stop()

			return fmt.Errorf("timeout waiting for rate limit: %w", ctx.Err())
		case <-w.requestFinishedChan:
			timer.Stop()
		case <-timer.C:
		}
	}
}
