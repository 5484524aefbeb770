// Package content derives the editorial and SEO metadata of a blog post from
// its title and body: slug, excerpt, category, tags, reading time, SEO title
// and description, focus keyword, byline and structured data. Everything here
// is a pure function of its inputs so the same rules run in the API, the
// import command and the standalone generator.
package content

import (
	"aviators/pkg/domain"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// DefaultTitle is used when a draft arrives without a title.
	DefaultTitle = "Untitled Blog Post"
	// ExcerptLength is the maximum excerpt and meta description length.
	ExcerptLength = 160
	// MaxTags is the number of tags auto-extracted for a post.
	MaxTags = 5
	// MaxAdditionalKeywords is the number of secondary SEO keywords.
	MaxAdditionalKeywords = 3
	// WordsPerMinute is the reading speed used for reading time estimates.
	WordsPerMinute = 225
)

// Categories lists the blog categories known to the site, in display order.
var Categories = []string{ //nolint: gochecknoglobals
	"Flight Training", "Aviation Careers", "Safety & Regulations",
	"DGCA Exams", "Pilot Licensing", "Aircraft Systems", "Navigation",
	"Weather & Meteorology", "Aviation Industry", "Career Guidance",
}

// KnownTags are the curated tags matched against post text, in priority order.
var KnownTags = []string{ //nolint: gochecknoglobals
	"pilot training", "CPL", "ATPL", "DGCA", "flight school", "aviation career",
	"commercial pilot", "airline pilot", "flight instructor", "aircraft systems",
	"navigation", "meteorology", "safety", "regulations", "exam preparation",
	"pilot license", "flying", "aviation industry", "pilot job", "flight training",
}

// Authors maps author keys to their bylines.
var Authors = map[string]domain.Author{ //nolint: gochecknoglobals
	"default": {Name: "Aman Suryavanshi", Image: "/instructors/aman-suryavanshi.jpg"},
	"ankit":   {Name: "Ankit Kumar", Image: "/instructors/ankit-kumar.jpg"},
	"dhruv":   {Name: "Dhruv Shirkoli", Image: "/instructors/dhruv-shirkoli.jpg"},
	"saksham": {Name: "Saksham Khandelwal", Image: "/instructors/saksham-khandelwal.jpg"},
}

// Slug is a post slug that decodes from either a plain JSON string or the
// CMS shape {"current": "..."}.
type Slug string

// UnmarshalJSON implements json.Unmarshaler.
func (s *Slug) UnmarshalJSON(b []byte) error {
	var plain string
	if err := json.Unmarshal(b, &plain); err == nil {
		*s = Slug(plain)

		return nil
	}

	var wrapped struct {
		Current string `json:"current"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return fmt.Errorf("could not decode slug: %w", err)
	}
	*s = Slug(wrapped.Current)

	return nil
}

// Draft is the author-provided input of a post. Zero values mean "derive it".
type Draft struct {
	Title   string `json:"title"`
	Slug    Slug   `json:"slug"`
	Excerpt string `json:"excerpt"`
	// Content is the body as markdown or HTML. When empty, Body is used.
	Content string `json:"content"`
	// Body is the body as CMS portable text blocks.
	Body []Block `json:"body"`

	Author        *domain.Author `json:"author"`
	Category      string         `json:"category"`
	Tags          []string       `json:"tags"`
	FeaturedImage string         `json:"featuredImage"`
	AltText       string         `json:"altText"`
	Featured      bool           `json:"featured"`
	PublishedAt   time.Time      `json:"publishedAt"`

	SEOTitle           string   `json:"seoTitle"`
	SEODescription     string   `json:"seoDescription"`
	FocusKeyword       string   `json:"focusKeyword"`
	AdditionalKeywords []string `json:"additionalKeywords"`

	ReadingTime    int                    `json:"readingTime"`
	WorkflowStatus domain.WorkflowStatus  `json:"workflowStatus"`
	StructuredData *domain.StructuredData `json:"structuredData"`
}

// BodyText returns the draft body as a single string, preferring Content and
// falling back to the markdown form of Body.
func (d *Draft) BodyText() string {
	if d.Content != "" {
		return d.Content
	}

	return BlocksToMarkdown(d.Body)
}
