package postgres

import (
	"aviators/pkg/logger"
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivertype"
	"go.uber.org/zap"
)

// newJobClient creates an insert-only River client. db may be nil when the
// client is only used for transactional inserts.
func newJobClient(db *sql.DB) (*river.Client[*sql.Tx], error) {
	c, err := river.NewClient(riverdatabasesql.New(db), &river.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not create river queue client: %w", err)
	}

	return c, nil
}

// AddJob enqueues a River job. Inside a transaction the job is inserted with
// it and becomes visible on commit; otherwise it is visible right away. The
// returned bool is false when a unique job was skipped as a duplicate.
func (p *PgSQL) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	var (
		res *rivertype.JobInsertResult
		err error
	)
	switch db := p.DB.(type) {
	case *sql.Tx:
		jobs := p.jobs
		if jobs == nil {
			if jobs, err = newJobClient(nil); err != nil {
				return false, err
			}
		}
		res, err = jobs.InsertTx(ctx, db, args, opts)
	case *sql.DB:
		jobs := p.jobs
		if jobs == nil {
			if jobs, err = newJobClient(db); err != nil {
				return false, err
			}
		}
		res, err = jobs.Insert(ctx, args, opts)
	default:
		return false, fmt.Errorf("unsupported database handle %T", p.DB)
	}
	if err != nil {
		return false, fmt.Errorf("could not insert %s job: %w", args.Kind(), err)
	}

	if res.UniqueSkippedAsDuplicate {
		logger.Debug(ctx, "duplicate job skipped", zap.String("kind", args.Kind()), zap.Int64("jobID", res.Job.ID))

		return false, nil
	}

	return true, nil
}
