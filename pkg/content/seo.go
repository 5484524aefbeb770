package content

import (
	"fmt"
	"strings"
)

const (
	// SEOTitleLength is the longest title shown in full by search engines.
	SEOTitleLength = 60
	seoTitleCut    = 50

	// DefaultSEODescription is used when neither excerpt nor title is available.
	DefaultSEODescription = "Expert aviation training and guidance from Aviators Training Centre. " +
		"Professional pilot courses and career development."
)

// SEOTitle returns title unchanged when it fits SEOTitleLength, otherwise it
// truncates it and appends the year to signal freshness.
func SEOTitle(title string, year int) string {
	r := []rune(title)
	if len(r) <= SEOTitleLength {
		return title
	}

	return fmt.Sprintf("%s... %d", string(r[:seoTitleCut]), year)
}

// SEODescription builds the meta description of a post.
func SEODescription(excerpt, title string) string {
	switch {
	case excerpt != "" && len([]rune(excerpt)) <= ExcerptLength:
		return excerpt
	case title != "":
		d := []rune("Learn about " + strings.ToLower(title) +
			". Expert guidance from Aviators Training Centre for aspiring pilots and aviation professionals.")
		if len(d) > ExcerptLength {
			d = d[:ExcerptLength]
		}

		return string(d)
	default:
		return DefaultSEODescription
	}
}

// AuditInput is what the SEO audit looks at.
type AuditInput struct {
	SEOTitle       string
	SEODescription string
	FocusKeyword   string
	Excerpt        string
	Text           string
	Tags           []string
	FeaturedImage  string
	AltText        string
}

// Audit is the outcome of an SEO audit.
type Audit struct {
	// Score is the sum of the weights of passing checks, 0..100.
	Score int `json:"score"`
	// Issues describes every failed check.
	Issues []string `json:"issues"`
}

// MinWordCount is the shortest body considered substantial by the audit.
const MinWordCount = 300

// AuditSEO scores how well a post is prepared for search engines.
func AuditSEO(in AuditInput) Audit {
	kw := strings.ToLower(in.FocusKeyword)
	title := strings.ToLower(in.SEOTitle)
	desc := strings.ToLower(in.SEODescription)

	words := strings.Fields(strings.ToLower(in.Text))
	if len(words) > 100 {
		words = words[:100]
	}
	opening := strings.Join(words, " ")

	checks := []struct {
		weight int
		ok     bool
		issue  string
	}{
		{15, between(len([]rune(in.SEOTitle)), 30, SEOTitleLength), "SEO title should be 30-60 characters"},
		{15, between(len([]rune(in.SEODescription)), 70, ExcerptLength), "meta description should be 70-160 characters"},
		{15, kw != "" && strings.Contains(title, kw), "focus keyword missing from SEO title"},
		{10, kw != "" && strings.Contains(desc, kw), "focus keyword missing from meta description"},
		{10, kw != "" && strings.Contains(opening, kw), "focus keyword missing from the first 100 words"},
		{15, WordCount(in.Text) >= MinWordCount, fmt.Sprintf("body shorter than %d words", MinWordCount)},
		{5, len(in.Tags) >= 3, "fewer than 3 tags"},
		{10, in.FeaturedImage != "" && in.AltText != "", "featured image or alt text missing"},
		{5, in.Excerpt != "", "excerpt missing"},
	}

	audit := Audit{Issues: []string{}}
	for _, c := range checks {
		if c.ok {
			audit.Score += c.weight
		} else {
			audit.Issues = append(audit.Issues, c.issue)
		}
	}

	return audit
}

func between(n, lo, hi int) bool { return n >= lo && n <= hi }
