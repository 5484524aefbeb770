package postgres_test

import (
	"aviators/pkg/domain"
	"aviators/pkg/storage"
	"aviators/pkg/storage/postgres"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPgSQL_Leads(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	stored, err := pgSQL.StoreLead(ctx, domain.Lead{
		Email:          "Student@Example.com",
		Name:           "Riya",
		City:           "Delhi",
		Age:            21,
		CourseInterest: "CPL",
		Activity:       domain.LeadActivity{PageViews: 4, HighValuePages: []string{"/courses/cpl"}},
	})
	require.NoError(t, err)
	require.Equal(t, "student@example.com", stored.Email)
	require.Equal(t, []string{"/courses/cpl"}, stored.Activity.HighValuePages)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := pgSQL.StoreLead(ctx, domain.Lead{Email: "student@example.com"})
		require.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("lookup", func(t *testing.T) {
		byEmail, err := pgSQL.LeadByEmail(ctx, "STUDENT@example.com")
		require.NoError(t, err)
		require.Equal(t, stored.ID, byEmail.ID)

		byID, err := pgSQL.LeadByID(ctx, stored.ID)
		require.NoError(t, err)
		require.Equal(t, "Riya", byID.Name)

		missing, err := pgSQL.LeadByID(ctx, domain.LeadID(uuid.New()))
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("update score and route", func(t *testing.T) {
		lead := *stored
		lead.Score = domain.LeadScore{Total: 81.5, Grade: domain.LeadGradeHot}
		lead.Route = domain.LeadRoute{Rule: "hot", Queue: "admissions counselor", Priority: "high", SLA: 4 * time.Hour}

		updated, err := pgSQL.UpdateLead(ctx, lead)
		require.NoError(t, err)
		require.Equal(t, domain.LeadGradeHot, updated.Score.Grade)
		require.Equal(t, 4*time.Hour, updated.Route.SLA)

		page, err := pgSQL.ListLeads(ctx, domain.LeadGradeHot, storage.Cursor{}, 10)
		require.NoError(t, err)
		require.Len(t, page.Leads, 1)

		page, err = pgSQL.ListLeads(ctx, domain.LeadGradeCold, storage.Cursor{}, 10)
		require.NoError(t, err)
		require.Empty(t, page.Leads)
	})

	t.Run("locked read inside tx", func(t *testing.T) {
		err := pgSQL.WithTx(ctx, func(s storage.AllStorage) error {
			lead, err := s.(*postgres.PgSQL).LeadByEmail(ctx, "student@example.com")
			require.NoError(t, err)
			require.NotNil(t, lead)

			return nil
		})
		require.NoError(t, err)
	})
}

func TestPgSQL_ListLeads_Pagination(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	for _, email := range []string{"a@x.io", "b@x.io", "c@x.io"} {
		_, err := pgSQL.StoreLead(ctx, domain.Lead{Email: email})
		require.NoError(t, err)
		// created_at comes from the database clock
		time.Sleep(10 * time.Millisecond)
	}

	page, err := pgSQL.ListLeads(ctx, "", storage.Cursor{}, 2)
	require.NoError(t, err)
	require.Len(t, page.Leads, 2)
	require.Equal(t, "c@x.io", page.Leads[0].Email)
	require.NotNil(t, page.NextCursor)

	page, err = pgSQL.ListLeads(ctx, "", *page.NextCursor, 2)
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)
	require.Equal(t, "a@x.io", page.Leads[0].Email)
	require.Nil(t, page.NextCursor)
}
