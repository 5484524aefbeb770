package content

import (
	"aviators/pkg/domain"
	"fmt"
	"regexp"
	"strings"
)

// categoryRule assigns Category when any of Keywords occurs in the text.
type categoryRule struct {
	Category string
	Keywords []string
}

// categoryRules are evaluated in order; the first match wins.
var categoryRules = []categoryRule{ //nolint: gochecknoglobals
	{"DGCA Exams", []string{"dgca", "exam", "test", "preparation"}},
	{"Safety & Regulations", []string{"safety", "regulation", "procedure"}},
	{"Aviation Careers", []string{"career", "job", "salary", "opportunity"}},
	{"Flight Training", []string{"training", "course", "lesson", "instructor"}},
	{"Pilot Licensing", []string{"license", "cpl", "atpl", "rating"}},
	{"Aircraft Systems", []string{"system", "aircraft", "engine", "avionics"}},
	{"Navigation", []string{"navigation", "gps", "ils", "approach"}},
	{"Weather & Meteorology", []string{"weather", "meteorology", "turbulence", "wind"}},
}

// FallbackCategory is used when no category rule matches.
const FallbackCategory = "Aviation Industry"

// focusKeywords are candidate focus keywords in priority order.
var focusKeywords = []string{ //nolint: gochecknoglobals
	"pilot training", "dgca exam", "commercial pilot", "flight training",
	"aviation career", "pilot license", "cpl training", "atpl training",
	"aviation safety", "pilot job", "flight instructor", "aircraft systems",
}

// DefaultFocusKeyword is used when the text mentions no aviation terms at all.
const DefaultFocusKeyword = "pilot training"

var (
	tagWords   = regexp.MustCompile(`\b(pilot|aviation|aircraft|flight|dgca|cpl|atpl)\b`)          //nolint: gochecknoglobals
	focusWords = regexp.MustCompile(`\b(pilot|aviation|aircraft|flight|dgca|cpl|atpl|training)\b`) //nolint: gochecknoglobals
)

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}

	return false
}

func analysisText(title, text string) string {
	return strings.ToLower(title + " " + text)
}

// Categorize picks the blog category for a post from keywords in its title
// and text.
func Categorize(title, text string) string {
	t := analysisText(title, text)
	for _, rule := range categoryRules {
		if containsAny(t, rule.Keywords...) {
			return rule.Category
		}
	}

	return FallbackCategory
}

// ExtractTags returns up to maxTags tags: known tags found in the text first,
// in KnownTags order, then bare aviation keywords in order of appearance.
func ExtractTags(title, text string, maxTags int) []string {
	t := analysisText(title, text)
	tags := make([]string, 0, maxTags)
	seen := map[string]bool{}
	add := func(tag string) {
		key := strings.ToLower(tag)
		if len(tags) < maxTags && !seen[key] {
			seen[key] = true
			tags = append(tags, tag)
		}
	}

	for _, tag := range KnownTags {
		if strings.Contains(t, strings.ToLower(tag)) {
			add(tag)
		}
	}
	for _, kw := range tagWords.FindAllString(t, -1) {
		add(kw)
	}

	return tags
}

// FocusKeyword picks the primary SEO keyword of a post.
func FocusKeyword(title, text string) string {
	t := analysisText(title, text)
	for _, kw := range focusKeywords {
		if strings.Contains(t, kw) {
			return kw
		}
	}
	if w := focusWords.FindString(t); w != "" {
		return w
	}

	return DefaultFocusKeyword
}

// SelectAuthor picks the byline for a post from names and topics mentioned
// in its text.
func SelectAuthor(text string) domain.Author {
	t := strings.ToLower(text)
	switch {
	case containsAny(t, "ankit kumar", "ground school"):
		return Authors["ankit"]
	case containsAny(t, "dhruv shirkoli", "safety"):
		return Authors["dhruv"]
	case containsAny(t, "saksham khandelwal", "exam"):
		return Authors["saksham"]
	default:
		return Authors["default"]
	}
}

// BuildStructuredData derives schema.org hints for a post.
func BuildStructuredData(text string, readingTime int) domain.StructuredData {
	t := strings.ToLower(text)

	sd := domain.StructuredData{
		ArticleType:          "Educational",
		LearningResourceType: "Article",
		EducationalLevel:     "Intermediate",
		TimeRequired:         fmt.Sprintf("PT%dM", readingTime),
	}
	if containsAny(t, "guide", "how to", "steps", "tutorial") {
		sd.ArticleType = "HowTo"
		sd.LearningResourceType = "Guide"
	}

	switch {
	case containsAny(t, "beginner", "basic", "introduction", "getting started"):
		sd.EducationalLevel = "Beginner"
	case containsAny(t, "advanced", "expert", "professional", "complex"):
		sd.EducationalLevel = "Advanced"
	}

	return sd
}
