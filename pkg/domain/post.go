package domain

import (
	"time"

	"github.com/google/uuid"
)

// PostID uniquely identifies a blog post.
type PostID uuid.UUID

// WorkflowStatus is the editorial state of a blog post.
type WorkflowStatus string

const (
	// WorkflowDraft is a post still being written.
	WorkflowDraft WorkflowStatus = "Draft"
	// WorkflowReview is a post waiting for an editor.
	WorkflowReview WorkflowStatus = "Review"
	// WorkflowApproved is a post an editor signed off but nobody published yet.
	WorkflowApproved WorkflowStatus = "Approved"
	// WorkflowPublished is a post visible on the public site and mirrored to the CMS.
	WorkflowPublished WorkflowStatus = "Published"
	// WorkflowArchived is a post taken off the site but kept for reference.
	WorkflowArchived WorkflowStatus = "Archived"
)

// Valid reports whether s is a known workflow status.
func (s WorkflowStatus) Valid() bool {
	switch s {
	case WorkflowDraft, WorkflowReview, WorkflowApproved, WorkflowPublished, WorkflowArchived:
		return true
	default:
		return false
	}
}

// Author is the byline shown on a post.
type Author struct {
	Name  string `json:"name"  yaml:"name"`
	Image string `json:"image" yaml:"image"`
}

// StructuredData holds the schema.org hints emitted alongside a post.
type StructuredData struct {
	ArticleType          string `json:"articleType"          yaml:"articleType"`
	LearningResourceType string `json:"learningResourceType" yaml:"learningResourceType"`
	EducationalLevel     string `json:"educationalLevel"     yaml:"educationalLevel"`
	TimeRequired         string `json:"timeRequired"         yaml:"timeRequired"`
}

// SEO groups the search-engine metadata of a post.
type SEO struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	FocusKeyword       string   `json:"focusKeyword"`
	AdditionalKeywords []string `json:"additionalKeywords"`
	// Score is the result of the last SEO audit, 0..100.
	Score int `json:"score"`
	// LastCheck is when Score was computed.
	LastCheck time.Time `json:"lastCheck"`
}

// Validation flags summarise whether a post can go live.
type Validation struct {
	HasRequiredFields bool `json:"hasRequiredFields"`
	HasValidSEO       bool `json:"hasValidSeo"`
	HasValidImages    bool `json:"hasValidImages"`
	ReadyForPublish   bool `json:"readyForPublish"`
}

// Post is a blog article together with its derived SEO and reading metadata.
type Post struct {
	// ID is the unique identifier of the post.
	ID PostID `json:"id"`
	// Slug is the URL path segment; unique among non-deleted posts.
	Slug string `json:"slug"`

	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	// Content is the post body, markdown or HTML as authored.
	Content string `json:"content"`

	Author   Author   `json:"author"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`

	FeaturedImage string `json:"featuredImage"`
	AltText       string `json:"altText"`
	Featured      bool   `json:"featured"`

	SEO            SEO            `json:"seo"`
	StructuredData StructuredData `json:"structuredData"`
	Validation     Validation     `json:"validation"`

	ReadingTime    int            `json:"readingTime"`
	WordCount      int            `json:"wordCount"`
	WorkflowStatus WorkflowStatus `json:"workflowStatus"`

	// Version is incremented on every update and used for optimistic concurrency.
	Version int `json:"version"`
	// CreatedBy is the admin user who created the post, zero for imports.
	CreatedBy UserID `json:"createdBy"`

	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	// DeletedAt marks when the post was soft-deleted; zero value means not deleted.
	DeletedAt time.Time `json:"-"`
}

// CMSDocumentID is the id the post is stored under in the headless CMS.
func (p *Post) CMSDocumentID() string {
	return "post-" + uuid.UUID(p.ID).String()
}
