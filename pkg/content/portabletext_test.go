package content_test

import (
	"aviators/pkg/content"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleBlocks() []content.Block {
	return []content.Block{
		{Type: "block", Style: "h2", Children: []content.Span{{Type: "span", Text: "Why fly"}}},
		{Type: "block", Style: "normal", Children: []content.Span{
			{Type: "span", Text: "Train "},
			{Type: "span", Text: "hard", Marks: []string{"strong"}},
		}},
		{Type: "block", Style: "normal", ListItem: "bullet", Level: 1, Children: []content.Span{{Type: "span", Text: "One"}}},
		{Type: "block", Style: "normal", ListItem: "bullet", Level: 1, Children: []content.Span{{Type: "span", Text: "Two"}}},
		{Type: "image", Key: "img1"},
		{Type: "block", Style: "blockquote", Children: []content.Span{{Type: "span", Text: "Quote"}}},
		{Type: "block", Style: "normal", ListItem: "number", Level: 1, Children: []content.Span{{Type: "span", Text: "First"}}},
	}
}

func TestBlocksToMarkdown(t *testing.T) {
	want := "## Why fly\n\nTrain **hard**\n\n- One\n- Two\n\n> Quote\n\n1. First"
	require.Equal(t, want, content.BlocksToMarkdown(sampleBlocks()))
}

func TestBlocksText(t *testing.T) {
	require.Equal(t, "Why fly\nTrain hard\nOne\nTwo\nQuote\nFirst", content.BlocksText(sampleBlocks()))
}

func TestMarkdownToBlocks(t *testing.T) {
	got := content.MarkdownToBlocks("## Why fly\r\n\r\nTrain\nhard\n\n- One\n2. Two\n> Quote")
	want := []content.Block{
		{Type: "block", Key: "b0000", Style: "h2", Children: []content.Span{{Type: "span", Key: "b0000s0", Text: "Why fly"}}},
		{Type: "block", Key: "b0001", Style: "normal", Children: []content.Span{{Type: "span", Key: "b0001s0", Text: "Train hard"}}},
		{Type: "block", Key: "b0002", Style: "normal", ListItem: "bullet", Level: 1, Children: []content.Span{{Type: "span", Key: "b0002s0", Text: "One"}}},
		{Type: "block", Key: "b0003", Style: "normal", ListItem: "number", Level: 1, Children: []content.Span{{Type: "span", Key: "b0003s0", Text: "Two"}}},
		{Type: "block", Key: "b0004", Style: "blockquote", Children: []content.Span{{Type: "span", Key: "b0004s0", Text: "Quote"}}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	md := "## Why fly\n\nTrain hard\n\n- One\n- Two"
	require.Equal(t, md, content.BlocksToMarkdown(content.MarkdownToBlocks(md)))
}

func TestSlugUnmarshalJSON(t *testing.T) {
	var d content.Draft
	require.NoError(t, json.Unmarshal([]byte(`{"slug":{"_type":"slug","current":"cms-slug"}}`), &d))
	require.Equal(t, content.Slug("cms-slug"), d.Slug)

	require.NoError(t, json.Unmarshal([]byte(`{"slug":"plain-slug"}`), &d))
	require.Equal(t, content.Slug("plain-slug"), d.Slug)

	require.Error(t, json.Unmarshal([]byte(`{"slug":5}`), &d))
}
