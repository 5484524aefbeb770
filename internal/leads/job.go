package leads

import (
	"aviators/pkg/domain"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// QueueName is the River queue scoring jobs run on.
const QueueName = "leads"

// ScoreLeadJob contains the arguments of a lead scoring job submitted to River.
// The job is scheduled a little in the future so a burst of activity of one
// lead collapses into a single scoring.
type ScoreLeadJob struct {
	LeadID domain.LeadID `json:"leadId" river:"unique"`

	maxAttempts int
	delay       time.Duration
}

// Kind returns the River job kind used to register and dispatch the score worker.
func (args ScoreLeadJob) Kind() string { return "ScoreLeadJob" }

// InsertOpts returns the River options that control how the job is enqueued.
// Finished jobs do not deduplicate, so later activity always triggers a new
// scoring.
func (args ScoreLeadJob) InsertOpts() river.InsertOpts {
	opts := river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: args.maxAttempts,
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateScheduled,
			},
		},
	}
	if args.delay > 0 {
		opts.ScheduledAt = time.Now().Add(args.delay)
	}

	return opts
}
