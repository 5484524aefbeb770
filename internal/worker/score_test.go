package worker_test

import (
	"aviators/internal/leads"
	"aviators/internal/worker"
	"aviators/pkg/domain"
	"aviators/pkg/serrors"
	"context"
	"errors"
	"testing"
	"time"

	mockleads "aviators/internal/leads/mock"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func scoreJob(id domain.LeadID) *river.Job[leads.ScoreLeadJob] {
	return &river.Job[leads.ScoreLeadJob]{
		JobRow: &rivertype.JobRow{ID: 7},
		Args:   leads.ScoreLeadJob{LeadID: id},
	}
}

func TestScoreWorker(t *testing.T) {
	id := domain.LeadID(uuid.New())

	t.Run("success", func(t *testing.T) {
		svc := mockleads.NewMockService(gomock.NewController(t))
		svc.EXPECT().Rescore(gomock.Any(), id).Return(&domain.Lead{
			ID:    id,
			Score: domain.LeadScore{Total: 80, Grade: domain.LeadGradeHot},
			Route: domain.LeadRoute{Queue: leads.QueueAdmissions},
		}, nil)

		w := worker.NewScoreWorker(svc, 10*time.Second)
		require.NoError(t, w.Work(context.Background(), scoreJob(id)))
		require.Equal(t, 10*time.Second, w.Timeout(nil))
	})

	t.Run("missing lead cancels", func(t *testing.T) {
		svc := mockleads.NewMockService(gomock.NewController(t))
		svc.EXPECT().Rescore(gomock.Any(), id).Return(nil, serrors.KindOnly(serrors.ErrNotFound))

		err := worker.NewScoreWorker(svc, 0).Work(context.Background(), scoreJob(id))
		var cancelErr *river.JobCancelError
		require.ErrorAs(t, err, &cancelErr)
	})

	t.Run("other errors retry", func(t *testing.T) {
		svc := mockleads.NewMockService(gomock.NewController(t))
		svc.EXPECT().Rescore(gomock.Any(), id).Return(nil, errors.New("db down"))

		err := worker.NewScoreWorker(svc, 0).Work(context.Background(), scoreJob(id))
		require.ErrorContains(t, err, "db down")
		var cancelErr *river.JobCancelError
		require.NotErrorAs(t, err, &cancelErr)
	})
}
