package content_test

import (
	"aviators/pkg/content"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSEOTitle(t *testing.T) {
	require.Equal(t, "Short title", content.SEOTitle("Short title", 2025))

	long := strings.Repeat("a", 70)
	require.Equal(t, strings.Repeat("a", 50)+"... 2025", content.SEOTitle(long, 2025))

	// multi-byte titles are cut on rune boundaries
	hindi := strings.Repeat("ज", 61)
	require.Equal(t, strings.Repeat("ज", 50)+"... 2024", content.SEOTitle(hindi, 2024))
}

func TestSEODescription(t *testing.T) {
	t.Run("excerpt", func(t *testing.T) {
		require.Equal(t, "A short excerpt.", content.SEODescription("A short excerpt.", "Title"))
	})

	t.Run("excerpt too long uses title", func(t *testing.T) {
		got := content.SEODescription(strings.Repeat("x", 161), "CPL Guide")
		require.True(t, strings.HasPrefix(got, "Learn about cpl guide. Expert guidance"))
		require.LessOrEqual(t, len([]rune(got)), content.ExcerptLength)
	})

	t.Run("nothing", func(t *testing.T) {
		require.Equal(t, content.DefaultSEODescription, content.SEODescription("", ""))
	})
}

func TestAuditSEO(t *testing.T) {
	t.Run("everything passes", func(t *testing.T) {
		audit := content.AuditSEO(content.AuditInput{
			SEOTitle:       "Pilot Training in India: A Complete Guide",
			SEODescription: "Everything about pilot training in India, from DGCA exams to your first airline job offer.",
			FocusKeyword:   "Pilot Training",
			Excerpt:        "Everything about pilot training.",
			Text:           "pilot training " + strings.Repeat("word ", 300),
			Tags:           []string{"a", "b", "c"},
			FeaturedImage:  "/blog/x.jpg",
			AltText:        "x",
		})
		require.Equal(t, 100, audit.Score)
		require.Empty(t, audit.Issues)
		require.NotNil(t, audit.Issues)
	})

	t.Run("nothing passes", func(t *testing.T) {
		audit := content.AuditSEO(content.AuditInput{})
		require.Zero(t, audit.Score)
		require.Len(t, audit.Issues, 9)
	})

	t.Run("keyword outside the opening", func(t *testing.T) {
		audit := content.AuditSEO(content.AuditInput{
			FocusKeyword: "atpl",
			Text:         strings.Repeat("word ", 150) + "atpl",
		})
		require.Contains(t, audit.Issues, "focus keyword missing from the first 100 words")
	})
}
