package blog

import (
	"aviators/pkg/domain"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// QueueName is the River queue publish jobs run on.
const QueueName = "cms"

// PublishAction is what a publish job does to the CMS copy of a post.
type PublishAction string

const (
	// ActionUpsert creates or replaces the CMS document of a post.
	ActionUpsert PublishAction = "upsert"
	// ActionDelete removes the CMS document of a post.
	ActionDelete PublishAction = "delete"
)

// PublishPostJob contains the arguments of a CMS sync job submitted to River.
// Jobs are unique per post, action and post version.
type PublishPostJob struct {
	PostID  domain.PostID `json:"postId"  river:"unique"`
	Action  PublishAction `json:"action"  river:"unique"`
	Version int           `json:"version" river:"unique"`
	// DocumentID is the CMS document to delete. The post itself may already be
	// gone when a delete job runs.
	DocumentID string `json:"documentId"`

	maxAttempts     int
	uniqueJobPeriod time.Duration
}

// Kind returns the River job kind used to register and dispatch the publish worker.
func (args PublishPostJob) Kind() string { return "PublishPostJob" }

// InsertOpts returns the River options that control how the job is enqueued.
func (args PublishPostJob) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs:   true,
			ByPeriod: args.uniqueJobPeriod,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}

func (s *service) publishJob(p *domain.Post, action PublishAction) PublishPostJob {
	return PublishPostJob{
		PostID:          p.ID,
		Action:          action,
		Version:         p.Version,
		DocumentID:      p.CMSDocumentID(),
		maxAttempts:     s.options.MaxJobAttempts,
		uniqueJobPeriod: s.options.UniqueJobPeriod,
	}
}
