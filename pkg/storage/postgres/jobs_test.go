package postgres_test

import (
	"aviators/internal/blog"
	"aviators/internal/leads"
	"aviators/pkg/domain"
	"aviators/pkg/storage/postgres"
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/riverqueue/river/rivertest"
	"github.com/stretchr/testify/require"
)

func setupJobsDB(t *testing.T) *postgres.PgSQL {
	t.Helper()
	pg, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)

	migrator, err := rivermigrate.New(riverdatabasesql.New(pg.DB.(*sql.DB)), nil)
	require.NoError(t, err)
	_, err = migrator.Migrate(t.Context(), rivermigrate.DirectionUp, nil)
	require.NoError(t, err)

	return pg
}

func TestPgSQL_AddJob_CommitsWithTransaction(t *testing.T) {
	pg := setupJobsDB(t)
	ctx := context.Background()
	postID := domain.PostID(uuid.New())

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	inserted, err := tx.AddJob(ctx, blog.PublishPostJob{PostID: postID, Action: blog.ActionUpsert, Version: 1}, nil)
	require.NoError(t, err)
	require.True(t, inserted)

	job := rivertest.RequireInsertedTx[*riverdatabasesql.Driver](ctx, t,
		tx.(*postgres.PgSQL).DB.(*sql.Tx), &blog.PublishPostJob{}, &rivertest.RequireInsertedOpts{Queue: blog.QueueName})
	require.Equal(t, postID, job.Args.PostID)
	require.NoError(t, tx.Commit())

	rivertest.RequireInserted[*riverdatabasesql.Driver](ctx, t,
		riverdatabasesql.New(pg.DB.(*sql.DB)), &blog.PublishPostJob{}, nil)
}

func TestPgSQL_AddJob_RolledBackWithTransaction(t *testing.T) {
	pg := setupJobsDB(t)
	ctx := context.Background()

	tx, err := pg.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.AddJob(ctx, leads.ScoreLeadJob{LeadID: domain.LeadID(uuid.New())}, nil)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	rivertest.RequireNotInserted[*riverdatabasesql.Driver](ctx, t,
		riverdatabasesql.New(pg.DB.(*sql.DB)), &leads.ScoreLeadJob{}, nil)
}

func TestPgSQL_AddJob_ReportsSkippedDuplicates(t *testing.T) {
	pg := setupJobsDB(t)
	ctx := context.Background()
	first := domain.LeadID(uuid.New())

	inserted, err := pg.AddJob(ctx, leads.ScoreLeadJob{LeadID: first}, nil)
	require.NoError(t, err)
	require.True(t, inserted)

	inserted, err = pg.AddJob(ctx, leads.ScoreLeadJob{LeadID: first}, nil)
	require.NoError(t, err)
	require.False(t, inserted, "a pending job for the same lead is reused")

	inserted, err = pg.AddJob(ctx, leads.ScoreLeadJob{LeadID: domain.LeadID(uuid.New())}, &river.InsertOpts{Priority: 2})
	require.NoError(t, err)
	require.True(t, inserted)

	rivertest.RequireManyInserted[*riverdatabasesql.Driver](ctx, t, riverdatabasesql.New(pg.DB.(*sql.DB)),
		[]rivertest.ExpectedJob{
			{Args: &leads.ScoreLeadJob{}, Opts: &rivertest.RequireInsertedOpts{Queue: leads.QueueName}},
			{Args: &leads.ScoreLeadJob{}, Opts: &rivertest.RequireInsertedOpts{Priority: 2}},
		})
}
