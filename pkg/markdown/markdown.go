// Package markdown reads and writes blog posts as markdown files with a YAML
// frontmatter header, renders their bodies to HTML and to the terminal, and
// exports generated files.
package markdown

import (
	"aviators/pkg/content"
	"aviators/pkg/domain"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Ext is the extension of post files.
const Ext = ".md"

// frontMatter is the header of a post file. Field names follow the site's
// markdown content folder.
type frontMatter struct {
	Title              string                 `yaml:"title"`
	Slug               string                 `yaml:"slug,omitempty"`
	Date               string                 `yaml:"date"`
	Excerpt            string                 `yaml:"excerpt"`
	Category           string                 `yaml:"category"`
	CoverImage         string                 `yaml:"coverImage"`
	AltText            string                 `yaml:"altText,omitempty"`
	Author             *domain.Author         `yaml:"author,omitempty"`
	Featured           bool                   `yaml:"featured"`
	Tags               []string               `yaml:"tags"`
	SEOTitle           string                 `yaml:"seoTitle"`
	SEODescription     string                 `yaml:"seoDescription"`
	FocusKeyword       string                 `yaml:"focusKeyword"`
	AdditionalKeywords []string               `yaml:"additionalKeywords"`
	ReadingTime        int                    `yaml:"readingTime"`
	WordCount          int                    `yaml:"wordCount,omitempty"`
	WorkflowStatus     string                 `yaml:"workflowStatus"`
	StructuredData     *domain.StructuredData `yaml:"structuredData,omitempty"`
}

// FileName returns the file name a post is written under.
func FileName(p *domain.Post) string {
	return p.Slug + Ext
}

// Encode writes p as a frontmatter markdown document.
func Encode(w io.Writer, p *domain.Post) error {
	fm := frontMatter{
		Title:              p.Title,
		Slug:               p.Slug,
		Date:               p.PublishedAt.UTC().Format(time.RFC3339),
		Excerpt:            p.Excerpt,
		Category:           p.Category,
		CoverImage:         p.FeaturedImage,
		AltText:            p.AltText,
		Author:             &p.Author,
		Featured:           p.Featured,
		Tags:               p.Tags,
		SEOTitle:           p.SEO.Title,
		SEODescription:     p.SEO.Description,
		FocusKeyword:       p.SEO.FocusKeyword,
		AdditionalKeywords: p.SEO.AdditionalKeywords,
		ReadingTime:        p.ReadingTime,
		WordCount:          p.WordCount,
		WorkflowStatus:     string(p.WorkflowStatus),
		StructuredData:     &p.StructuredData,
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	if fm.AdditionalKeywords == nil {
		fm.AdditionalKeywords = []string{}
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return fmt.Errorf("could not encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not encode frontmatter: %w", err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(strings.TrimRight(p.Content, "\n"))
	buf.WriteString("\n")

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("could not write post: %w", err)
	}

	return nil
}

// Marshal is Encode into a byte slice.
func Marshal(p *domain.Post) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, p); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

var dateLayouts = []string{ //nolint: gochecknoglobals
	time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported date %q, use YYYY-MM-DD or RFC3339", s)
}

// TitleFromName derives a title from a file name: the extension is dropped,
// dashes and underscores become spaces and words are title-cased.
func TitleFromName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	return cases.Title(language.English).String(strings.Join(strings.Fields(base), " "))
}

// Decode reads a frontmatter markdown document into a draft. name is the file
// name of the document; it supplies the title and slug when the header does
// not.
func Decode(r io.Reader, name string) (content.Draft, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(r, &fm)
	if err != nil {
		return content.Draft{}, fmt.Errorf("could not parse frontmatter of %s: %w", name, err)
	}

	d := content.Draft{
		Title:              fm.Title,
		Slug:               content.Slug(fm.Slug),
		Excerpt:            fm.Excerpt,
		Content:            strings.TrimSpace(string(body)),
		Author:             fm.Author,
		Category:           fm.Category,
		Tags:               fm.Tags,
		FeaturedImage:      fm.CoverImage,
		AltText:            fm.AltText,
		Featured:           fm.Featured,
		SEOTitle:           fm.SEOTitle,
		SEODescription:     fm.SEODescription,
		FocusKeyword:       fm.FocusKeyword,
		AdditionalKeywords: fm.AdditionalKeywords,
		ReadingTime:        fm.ReadingTime,
		WorkflowStatus:     domain.WorkflowStatus(fm.WorkflowStatus),
		StructuredData:     fm.StructuredData,
	}
	if d.Title == "" && name != "" {
		d.Title = TitleFromName(name)
	}
	if d.Slug == "" && name != "" {
		d.Slug = content.Slug(content.GenerateSlug(TitleFromName(name)))
	}
	if fm.Date != "" {
		if d.PublishedAt, err = parseDate(fm.Date); err != nil {
			return content.Draft{}, fmt.Errorf("%s: %w", name, err)
		}
	}
	if d.WorkflowStatus != "" && !d.WorkflowStatus.Valid() {
		return content.Draft{}, fmt.Errorf("%s: unknown workflow status %q", name, d.WorkflowStatus)
	}

	return d, nil
}
