package blog_test

import (
	"aviators/internal/blog"
	"aviators/pkg/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]domain.WorkflowStatus{
		{domain.WorkflowDraft, domain.WorkflowReview},
		{domain.WorkflowReview, domain.WorkflowDraft},
		{domain.WorkflowReview, domain.WorkflowApproved},
		{domain.WorkflowApproved, domain.WorkflowPublished},
		{domain.WorkflowApproved, domain.WorkflowDraft},
		{domain.WorkflowPublished, domain.WorkflowArchived},
		{domain.WorkflowPublished, domain.WorkflowDraft},
		{domain.WorkflowArchived, domain.WorkflowDraft},
	}
	for _, tr := range allowed {
		require.True(t, blog.CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]domain.WorkflowStatus{
		{domain.WorkflowDraft, domain.WorkflowPublished},
		{domain.WorkflowDraft, domain.WorkflowApproved},
		{domain.WorkflowReview, domain.WorkflowPublished},
		{domain.WorkflowArchived, domain.WorkflowPublished},
		{domain.WorkflowPublished, domain.WorkflowPublished},
		{"", domain.WorkflowDraft},
	}
	for _, tr := range denied {
		require.False(t, blog.CanTransition(tr[0], tr[1]), "%s -> %s", tr[0], tr[1])
	}
}
