package worker

import (
	"aviators/internal/leads"
	"aviators/pkg/logger"
	"aviators/pkg/serrors"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"go.uber.org/zap"
)

// ScoreWorker is a River worker that rescores and reroutes a lead.
type ScoreWorker struct {
	river.WorkerDefaults[leads.ScoreLeadJob]

	leads   leads.Service
	timeout time.Duration
}

// NewScoreWorker constructs a ScoreWorker rescoring through leadService.
func NewScoreWorker(leadService leads.Service, timeout time.Duration) *ScoreWorker {
	return &ScoreWorker{leads: leadService, timeout: timeout}
}

// Timeout implements river.Worker.
func (w *ScoreWorker) Timeout(*river.Job[leads.ScoreLeadJob]) time.Duration {
	return w.timeout
}

// Work rescores the lead of the job.
func (w *ScoreWorker) Work(ctx context.Context, job *river.Job[leads.ScoreLeadJob]) error {
	ctx = logger.WithFields(ctx, zap.Int64("jobID", job.ID), zap.Stringer("leadID", job.Args.LeadID))

	lead, err := w.leads.Rescore(ctx, job.Args.LeadID)
	if err != nil {
		if errors.Is(err, serrors.ErrNotFound) {
			return river.JobCancel(err) //nolint: wrapcheck
		}
		logger.Error(ctx, "error scoring lead", zap.Error(err))

		return fmt.Errorf("could not score lead: %w", err)
	}

	logger.Info(ctx, "lead scored",
		zap.Float64("score", lead.Score.Total),
		zap.String("grade", string(lead.Score.Grade)),
		zap.String("queue", lead.Route.Queue))

	return nil
}
