package content_test

import (
	"aviators/pkg/content"
	"aviators/pkg/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	cases := []struct {
		name, title, text, want string
	}{
		{"licensing", "CPL vs ATPL", "", "Pilot Licensing"},
		{"first rule wins", "DGCA exam tips", "a career in the skies", "DGCA Exams"},
		{"matches body text", "Hello", "our instructor explains", "Flight Training"},
		{"fallback", "Hello", "world", content.FallbackCategory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, content.Categorize(tc.title, tc.text))
		})
	}
}

func TestExtractTags(t *testing.T) {
	text := "Pilot training with DGCA and cpl flight."

	t.Run("known tags keep their case and come first", func(t *testing.T) {
		got := content.ExtractTags("CPL Guide", text, content.MaxTags)
		require.Equal(t, []string{"pilot training", "CPL", "DGCA", "pilot", "flight"}, got)
	})

	t.Run("limit", func(t *testing.T) {
		got := content.ExtractTags("CPL Guide", text, 3)
		require.Equal(t, []string{"pilot training", "CPL", "DGCA"}, got)
	})

	t.Run("nothing to find", func(t *testing.T) {
		require.Empty(t, content.ExtractTags("Hello", "world", content.MaxTags))
	})
}

func TestFocusKeyword(t *testing.T) {
	require.Equal(t, "commercial pilot", content.FocusKeyword("Become a Commercial Pilot", ""))
	require.Equal(t, "aircraft", content.FocusKeyword("Aircraft maintenance", ""))
	require.Equal(t, content.DefaultFocusKeyword, content.FocusKeyword("Hello", "world"))
}

func TestSelectAuthor(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Notes from ground school", "Ankit Kumar"},
		{"Cabin safety briefings", "Dhruv Shirkoli"},
		{"Exam tips", "Saksham Khandelwal"},
		{"Hello", "Aman Suryavanshi"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			require.Equal(t, tc.want, content.SelectAuthor(tc.text).Name)
		})
	}
}

func TestBuildStructuredData(t *testing.T) {
	require.Equal(t, domain.StructuredData{
		ArticleType:          "HowTo",
		LearningResourceType: "Guide",
		EducationalLevel:     "Beginner",
		TimeRequired:         "PT7M",
	}, content.BuildStructuredData("A beginner guide to flying", 7))

	require.Equal(t, domain.StructuredData{
		ArticleType:          "Educational",
		LearningResourceType: "Article",
		EducationalLevel:     "Advanced",
		TimeRequired:         "PT3M",
	}, content.BuildStructuredData("Advanced professional topics", 3))

	require.Equal(t, "Intermediate", content.BuildStructuredData("plain words", 1).EducationalLevel)
}
