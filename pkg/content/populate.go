package content

import (
	"aviators/pkg/domain"
	"time"
)

func orString(v, fallback string) string {
	if v != "" {
		return v
	}

	return fallback
}

// AnalysisText returns the plain text of a draft body used by every
// heuristic in this package.
func AnalysisText(d *Draft) string {
	return PlainText(CleanBody(d.BodyText()))
}

// AutoPopulate turns a draft into a complete post. Values set on the draft
// always win; every missing field is derived from the title and body. now is
// the default publish time and the time of the SEO check.
func AutoPopulate(d Draft, now time.Time) domain.Post {
	text := AnalysisText(&d)
	title := orString(d.Title, DefaultTitle)
	slug := orString(string(d.Slug), GenerateSlug(title))

	p := domain.Post{
		Slug:           slug,
		Title:          title,
		Excerpt:        orString(d.Excerpt, Excerpt(text, ExcerptLength)),
		Content:        CleanBody(d.BodyText()),
		Category:       orString(d.Category, Categorize(title, text)),
		Tags:           d.Tags,
		FeaturedImage:  orString(d.FeaturedImage, "/blog/"+slug+"-featured.jpg"),
		AltText:        orString(d.AltText, "Featured image for "+title),
		Featured:       d.Featured,
		PublishedAt:    d.PublishedAt,
		ReadingTime:    d.ReadingTime,
		WordCount:      WordCount(text),
		WorkflowStatus: d.WorkflowStatus,
	}

	if d.Author != nil && d.Author.Name != "" {
		p.Author = *d.Author
	} else {
		p.Author = SelectAuthor(text)
	}
	if len(p.Tags) == 0 {
		p.Tags = ExtractTags(title, text, MaxTags)
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = now
	}
	if p.ReadingTime <= 0 {
		p.ReadingTime = ReadingTime(text)
	}
	if p.WorkflowStatus == "" {
		p.WorkflowStatus = domain.WorkflowDraft
	}
	if d.StructuredData != nil {
		p.StructuredData = *d.StructuredData
	} else {
		p.StructuredData = BuildStructuredData(text, p.ReadingTime)
	}

	p.SEO = domain.SEO{
		Title:              orString(d.SEOTitle, SEOTitle(title, p.PublishedAt.Year())),
		Description:        orString(d.SEODescription, SEODescription(d.Excerpt, title)),
		FocusKeyword:       orString(d.FocusKeyword, FocusKeyword(title, text)),
		AdditionalKeywords: d.AdditionalKeywords,
		LastCheck:          now,
	}
	if len(p.SEO.AdditionalKeywords) == 0 {
		p.SEO.AdditionalKeywords = ExtractTags(title, text, MaxAdditionalKeywords)
	}

	Refresh(&p, now)
	if p.Validation.HasRequiredFields && d.Title == "" {
		p.Validation.HasRequiredFields = false
		p.Validation.ReadyForPublish = false
	}

	return p
}

// Refresh recomputes the fields of a post that depend on its body and SEO
// metadata: word count, SEO score and validation flags. Reading time is only
// filled when unset so an author's explicit estimate survives edits.
func Refresh(p *domain.Post, now time.Time) {
	text := PlainText(p.Content)
	p.WordCount = WordCount(text)
	if p.ReadingTime <= 0 {
		p.ReadingTime = ReadingTime(text)
	}

	audit := AuditSEO(AuditInput{
		SEOTitle:       p.SEO.Title,
		SEODescription: p.SEO.Description,
		FocusKeyword:   p.SEO.FocusKeyword,
		Excerpt:        p.Excerpt,
		Text:           text,
		Tags:           p.Tags,
		FeaturedImage:  p.FeaturedImage,
		AltText:        p.AltText,
	})
	p.SEO.Score = audit.Score
	p.SEO.LastCheck = now

	p.Validation = Validate(p)
}

// Validate computes the publish-readiness flags of a post.
func Validate(p *domain.Post) domain.Validation {
	v := domain.Validation{
		HasRequiredFields: p.Title != "" && p.Slug != "" && p.Content != "" && p.Category != "",
		HasValidSEO: p.SEO.Title != "" && len([]rune(p.SEO.Title)) <= SEOTitleLength &&
			p.SEO.Description != "" && len([]rune(p.SEO.Description)) <= ExcerptLength &&
			p.SEO.FocusKeyword != "",
		HasValidImages: p.FeaturedImage != "" && p.AltText != "",
	}
	v.ReadyForPublish = v.HasRequiredFields && v.HasValidSEO && v.HasValidImages

	return v
}
