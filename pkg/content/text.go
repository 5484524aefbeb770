package content

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)     //nolint: gochecknoglobals
	slugSpaces       = regexp.MustCompile(`\s+`)              //nolint: gochecknoglobals
	slugDashes       = regexp.MustCompile(`-+`)               //nolint: gochecknoglobals
	markupChars      = regexp.MustCompile("[#*`\\[\\]()]")    //nolint: gochecknoglobals
	htmlTag          = regexp.MustCompile(`<[a-zA-Z][^>]*>`) //nolint: gochecknoglobals
)

// GenerateSlug builds a URL-friendly slug from a title.
func GenerateSlug(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugDashes.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}

// blockElements start a new line in extracted text.
var blockElements = map[atom.Atom]bool{ //nolint: gochecknoglobals
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true, atom.Nav: true,
	atom.Ul: true, atom.Ol: true, atom.Table: true, atom.Blockquote: true,
}

// ExtractText returns the visible text of HTML content. Content without any
// markup is returned unchanged. Script and style contents are dropped and
// block elements become line breaks.
func ExtractText(s string) string {
	if !htmlTag.MatchString(s) {
		return s
	}

	var (
		b    strings.Builder
		skip int
	)
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the text so far is all we get
			return normalizeLines(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == atom.Script || a == atom.Style {
				if tt == html.StartTagToken {
					skip++
				}

				continue
			}
			switch {
			case blockElements[a]:
				b.WriteByte('\n')
			case a == atom.Td || a == atom.Th:
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if (a == atom.Script || a == atom.Style) && skip > 0 {
				skip--

				continue
			}
			if blockElements[a] {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.CommentToken, html.DoctypeToken:
		}
	}
}

var markdownMarkers = regexp.MustCompile(`(?m)^[ \t]*(#{1,6}|>|[-*+]|\d+\.)[ \t]+`) //nolint: gochecknoglobals

// PlainText returns the readable text of a markdown or HTML body: markup is
// stripped and line-leading markdown markers (headings, quotes, list bullets)
// are removed.
func PlainText(body string) string {
	return markdownMarkers.ReplaceAllString(ExtractText(body), "")
}

// normalizeLines collapses runs of spaces inside lines and drops blank lines.
func normalizeLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l != "" {
			out = append(out, l)
		}
	}

	return strings.Join(out, "\n")
}

// WordCount returns the number of whitespace separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime estimates reading time in whole minutes, never less than one.
func ReadingTime(text string) int {
	minutes := int(math.Ceil(float64(WordCount(text)) / WordsPerMinute))
	if minutes < 1 {
		return 1
	}

	return minutes
}

// Excerpt takes whole sentences from text while they fit within maxLength.
// Markdown emphasis, heading and link characters are removed first. When not
// even the first sentence fits, the text is cut at a word boundary and
// suffixed with an ellipsis.
func Excerpt(text string, maxLength int) string {
	clean := markupChars.ReplaceAllString(text, "")
	clean = strings.Join(strings.Fields(clean), " ")
	if clean == "" {
		return ""
	}

	excerpt := ""
	for _, sentence := range strings.Split(clean, ".") {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		if len(excerpt+sentence) >= maxLength {
			break
		}
		excerpt += sentence + "."
	}
	excerpt = strings.TrimSpace(excerpt)
	if excerpt != "" {
		return excerpt
	}

	return truncateWords(clean, maxLength)
}

// truncateWords cuts s to at most maxLength bytes on a word boundary and
// appends "...".
func truncateWords(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}

	limit := maxLength - len("...")
	out := ""
	for _, w := range strings.Fields(s) {
		next := w
		if out != "" {
			next = out + " " + w
		}
		if len(next) > limit {
			break
		}
		out = next
	}
	if out == "" {
		out = s[:limit]
	}

	return out + "..."
}

var (
	ctaPlaceholder = regexp.MustCompile(`<!-- CTA_\w+_INTEGRATION -->`) //nolint: gochecknoglobals
	manyNewlines   = regexp.MustCompile(`\n{3,}`)                      //nolint: gochecknoglobals
)

// CleanBody removes CTA integration placeholders, normalises line endings and
// collapses runs of blank lines.
func CleanBody(body string) string {
	body = ctaPlaceholder.ReplaceAllString(body, "")
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = manyNewlines.ReplaceAllString(body, "\n\n")

	return strings.TrimSpace(body)
}
