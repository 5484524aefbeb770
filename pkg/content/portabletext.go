package content

import (
	"fmt"
	"regexp"
	"strings"
)

// Span is an inline run of text inside a portable text block.
type Span struct {
	Type  string   `json:"_type"`
	Key   string   `json:"_key,omitempty"`
	Text  string   `json:"text"`
	Marks []string `json:"marks,omitempty"`
}

// Block is a CMS portable text block.
type Block struct {
	Type     string `json:"_type"`
	Key      string `json:"_key,omitempty"`
	Style    string `json:"style,omitempty"`
	ListItem string `json:"listItem,omitempty"`
	Level    int    `json:"level,omitempty"`
	Children []Span `json:"children,omitempty"`
}

const (
	blockType = "block"
	spanType  = "span"
)

func (b *Block) isText() bool { return b.Type == blockType || b.Type == "" }

// spanText joins the spans of a block, rendering strong/em marks as markdown.
func (b *Block) spanText(withMarks bool) string {
	var sb strings.Builder
	for _, s := range b.Children {
		text := s.Text
		if withMarks && strings.TrimSpace(text) != "" {
			for _, m := range s.Marks {
				switch m {
				case "strong":
					text = "**" + text + "**"
				case "em":
					text = "*" + text + "*"
				case "code":
					text = "`" + text + "`"
				}
			}
		}
		sb.WriteString(text)
	}

	return sb.String()
}

// BlocksText returns the plain text of all text blocks, one block per line.
func BlocksText(blocks []Block) string {
	lines := make([]string, 0, len(blocks))
	for i := range blocks {
		if !blocks[i].isText() {
			continue
		}
		if t := strings.TrimSpace(blocks[i].spanText(false)); t != "" {
			lines = append(lines, t)
		}
	}

	return strings.Join(lines, "\n")
}

// BlocksToMarkdown renders portable text as markdown. Headings, block quotes
// and list items are supported; non-text blocks such as images are skipped.
func BlocksToMarkdown(blocks []Block) string {
	var (
		sb       strings.Builder
		prevList bool
	)
	for i := range blocks {
		b := &blocks[i]
		if !b.isText() {
			continue
		}

		text := b.spanText(true)
		var line string
		switch {
		case b.ListItem == "number":
			line = strings.Repeat("   ", max(b.Level-1, 0)) + "1. " + text
		case b.ListItem != "":
			line = strings.Repeat("  ", max(b.Level-1, 0)) + "- " + text
		case len(b.Style) == 2 && b.Style[0] == 'h' && b.Style[1] >= '1' && b.Style[1] <= '6':
			line = strings.Repeat("#", int(b.Style[1]-'0')) + " " + text
		case b.Style == "blockquote":
			line = "> " + text
		default:
			line = text
		}

		isList := b.ListItem != ""
		if sb.Len() > 0 {
			if isList && prevList {
				sb.WriteString("\n")
			} else {
				sb.WriteString("\n\n")
			}
		}
		sb.WriteString(line)
		prevList = isList
	}

	return sb.String()
}

var (
	headingLine  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`) //nolint: gochecknoglobals
	bulletLine   = regexp.MustCompile(`^\s*[-*+]\s+(.*)$`) //nolint: gochecknoglobals
	numberedLine = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`) //nolint: gochecknoglobals
)

// MarkdownToBlocks converts a markdown body into portable text blocks so it
// can be stored in the CMS. Keys are derived from block positions, so the
// same markdown always produces the same blocks.
func MarkdownToBlocks(md string) []Block {
	var (
		blocks    []Block
		paragraph []string
	)
	add := func(style, listItem, text string) {
		key := fmt.Sprintf("b%04d", len(blocks))
		b := Block{
			Type:     blockType,
			Key:      key,
			Style:    style,
			ListItem: listItem,
			Children: []Span{{Type: spanType, Key: key + "s0", Text: text}},
		}
		if listItem != "" {
			b.Level = 1
		}
		blocks = append(blocks, b)
	}
	flush := func() {
		if len(paragraph) > 0 {
			add("normal", "", strings.Join(paragraph, " "))
			paragraph = nil
		}
	}

	for _, raw := range strings.Split(strings.ReplaceAll(md, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			flush()

			continue
		}
		if m := headingLine.FindStringSubmatch(line); m != nil {
			flush()
			add(fmt.Sprintf("h%d", len(m[1])), "", m[2])

			continue
		}
		if strings.HasPrefix(line, ">") {
			flush()
			add("blockquote", "", strings.TrimSpace(strings.TrimPrefix(line, ">")))

			continue
		}
		if m := bulletLine.FindStringSubmatch(line); m != nil {
			flush()
			add("normal", "bullet", m[1])

			continue
		}
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			flush()
			add("normal", "number", m[1])

			continue
		}
		paragraph = append(paragraph, line)
	}
	flush()

	return blocks
}
