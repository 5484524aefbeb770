// Package worker runs the background jobs of the service on River: mirroring
// posts into the CMS and rescoring leads.
package worker

import (
	"aviators/internal/blog"
	"aviators/internal/config"
	"aviators/internal/leads"
	"aviators/pkg/logger"
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
)

// Start registers the workers and starts a River client processing the
// publish and scoring queues.
func Start(ctx context.Context,
	cfg *config.Config,
	dbPool *pgxpool.Pool,
	blogService blog.Service,
	leadService leads.Service) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewPublishWorker(blogService, cfg.Worker.JobTimeout))
	river.AddWorker(workers, NewScoreWorker(leadService, cfg.Worker.JobTimeout))

	riverClient, err := river.NewClient(riverpgxv5.New(dbPool), &river.Config{
		Queues: map[string]river.QueueConfig{
			blog.QueueName:  {MaxWorkers: max(cfg.Worker.PublishConcurrency, 1)},
			leads.QueueName: {MaxWorkers: max(cfg.Worker.ScoreConcurrency, 1)},
		},
		Workers: workers,
		Logger:  logger.Slog(ctx, "river"),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	if err := riverClient.Start(ctx); err != nil {
		return nil, fmt.Errorf("could not start river queue client: %w", err)
	}

	return riverClient, nil
}
