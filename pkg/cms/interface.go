// Package cms defines the interface to the headless CMS the public site reads
// published posts from, and the document shape posts are mirrored as.
package cms

import (
	"aviators/pkg/content"
	"aviators/pkg/domain"
	"context"
	"time"
)

// RateLimitStatus describes the current API rate-limit status returned by the
// CMS.
type RateLimitStatus struct {
	Limit     int       // Limit is the total number of allowed requests in the current window.
	Remaining int       // Remaining indicates how many requests are left in the current window.
	ResetAt   time.Time // ResetAt is when the rate-limit window resets.
}

// Client is the abstraction for the CMS. Mutations report the rate-limit
// status so callers can pace themselves.
//
//go:generate mockgen -package mockcms -source=interface.go -destination=mock/mockcms.go *
type Client interface {
	// UpsertPost creates or replaces a post document.
	UpsertPost(ctx context.Context, doc Document) (RateLimitStatus, error)
	// DeletePost removes a post document. Deleting a missing document succeeds.
	DeletePost(ctx context.Context, documentID string) (RateLimitStatus, error)
	// Posts returns every post document as an editable draft.
	Posts(ctx context.Context) ([]content.Draft, error)
}

// Slug is the CMS slug object.
type Slug struct {
	Type    string `json:"_type"`
	Current string `json:"current"`
}

// Document is a post as stored in the CMS.
type Document struct {
	ID   string `json:"_id"`
	Type string `json:"_type"`

	Title       string          `json:"title"`
	Slug        Slug            `json:"slug"`
	Excerpt     string          `json:"excerpt"`
	Body        []content.Block `json:"body"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Author      domain.Author   `json:"author"`
	PublishedAt time.Time       `json:"publishedAt"`
	Featured    bool            `json:"featured"`

	FeaturedImage string `json:"featuredImage,omitempty"`
	AltText       string `json:"altText,omitempty"`

	SEOTitle           string   `json:"seoTitle"`
	SEODescription     string   `json:"seoDescription"`
	FocusKeyword       string   `json:"focusKeyword"`
	AdditionalKeywords []string `json:"additionalKeywords"`

	ReadingTime    int                   `json:"readingTime"`
	WorkflowStatus domain.WorkflowStatus `json:"workflowStatus"`
	StructuredData domain.StructuredData `json:"structuredData"`
}

// PostType is the CMS document type of blog posts.
const PostType = "post"

// DocumentFromPost converts a post into its CMS document. The markdown body
// becomes portable text.
func DocumentFromPost(p *domain.Post) Document {
	return Document{
		ID:                 p.CMSDocumentID(),
		Type:               PostType,
		Title:              p.Title,
		Slug:               Slug{Type: "slug", Current: p.Slug},
		Excerpt:            p.Excerpt,
		Body:               content.MarkdownToBlocks(p.Content),
		Category:           p.Category,
		Tags:               p.Tags,
		Author:             p.Author,
		PublishedAt:        p.PublishedAt,
		Featured:           p.Featured,
		FeaturedImage:      p.FeaturedImage,
		AltText:            p.AltText,
		SEOTitle:           p.SEO.Title,
		SEODescription:     p.SEO.Description,
		FocusKeyword:       p.SEO.FocusKeyword,
		AdditionalKeywords: p.SEO.AdditionalKeywords,
		ReadingTime:        p.ReadingTime,
		WorkflowStatus:     p.WorkflowStatus,
		StructuredData:     p.StructuredData,
	}
}
