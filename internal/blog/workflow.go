package blog

import "aviators/pkg/domain"

// transitions lists the allowed editorial moves out of each status.
var transitions = map[domain.WorkflowStatus][]domain.WorkflowStatus{ //nolint: gochecknoglobals
	domain.WorkflowDraft:     {domain.WorkflowReview},
	domain.WorkflowReview:    {domain.WorkflowDraft, domain.WorkflowApproved},
	domain.WorkflowApproved:  {domain.WorkflowPublished, domain.WorkflowDraft},
	domain.WorkflowPublished: {domain.WorkflowArchived, domain.WorkflowDraft},
	domain.WorkflowArchived:  {domain.WorkflowDraft},
}

// CanTransition reports whether a post may move from one status to another.
func CanTransition(from, to domain.WorkflowStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}

	return false
}

// requiresEditor reports whether entering status needs an editor or admin.
func requiresEditor(to domain.WorkflowStatus) bool {
	return to == domain.WorkflowApproved || to == domain.WorkflowPublished
}
