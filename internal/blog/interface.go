package blog

import (
	"aviators/pkg/cms"
	"aviators/pkg/content"
	"aviators/pkg/domain"
	"aviators/pkg/storage"
	"context"
)

// Patch is a partial update of a post. Nil fields are left untouched.
type Patch struct {
	Title              *string        `json:"title"`
	Slug               *string        `json:"slug"`
	Excerpt            *string        `json:"excerpt"`
	Content            *string        `json:"content"`
	Author             *domain.Author `json:"author"`
	Category           *string        `json:"category"`
	Tags               *[]string      `json:"tags"`
	FeaturedImage      *string        `json:"featuredImage"`
	AltText            *string        `json:"altText"`
	Featured           *bool          `json:"featured"`
	SEOTitle           *string        `json:"seoTitle"`
	SEODescription     *string        `json:"seoDescription"`
	FocusKeyword       *string        `json:"focusKeyword"`
	AdditionalKeywords *[]string      `json:"additionalKeywords"`
	ReadingTime        *int           `json:"readingTime"`
}

// Preview is an auto-populated post that was not stored, with its SEO audit
// and rendered HTML body.
type Preview struct {
	Post  domain.Post   `json:"post"`
	Audit content.Audit `json:"audit"`
	HTML  string        `json:"html"`
}

// Service is the unified blog service behind the admin and public APIs.
//
//go:generate mockgen -package mockblog -source=interface.go -destination=mock/mockblog.go *
type Service interface {
	Create(ctx context.Context, by domain.Principal, draft content.Draft) (*domain.Post, error)
	Preview(ctx context.Context, draft content.Draft) (*Preview, error)
	Get(ctx context.Context, id domain.PostID) (*domain.Post, error)
	GetPublished(ctx context.Context, slug string) (*domain.Post, error)
	List(ctx context.Context, filter storage.PostFilter, cursor string, limit uint) ([]domain.Post, string, error)
	Update(ctx context.Context, by domain.Principal, id domain.PostID, patch Patch, expectedVersion int) (*domain.Post, error)
	Transition(ctx context.Context, by domain.Principal, id domain.PostID, to domain.WorkflowStatus) (*domain.Post, error)
	Delete(ctx context.Context, by domain.Principal, id domain.PostID) error
	// Sync mirrors a post to the CMS as described by a publish job.
	Sync(ctx context.Context, args PublishPostJob) (cms.RateLimitStatus, error)
}
