package main

import (
	"aviators/internal/config"
	"aviators/pkg/content"
	"aviators/pkg/logger"
	"aviators/pkg/markdown"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// readDrafts loads the drafts of one input file. JSON files hold a draft or a
// list of drafts; anything else is read as frontmatter markdown.
func readDrafts(path string) ([]content.Draft, error) {
	data, err := os.ReadFile(path) //nolint: gosec
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		d, err := markdown.Decode(bytes.NewReader(data), filepath.Base(path))
		if err != nil {
			return nil, err
		}

		return []content.Draft{d}, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var drafts []content.Draft
		if err := json.Unmarshal(trimmed, &drafts); err != nil {
			return nil, fmt.Errorf("could not decode %s: %w", path, err)
		}

		return drafts, nil
	}

	var d content.Draft
	if err := json.Unmarshal(trimmed, &d); err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}

	return []content.Draft{d}, nil
}

// generateCommand constructs the 'generate' subcommand that auto-populates
// drafts and writes them as frontmatter markdown posts.
func generateCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <file>...",
		Short: "Auto-populates drafts from JSON or markdown files into complete markdown posts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			out, _ := cmd.Flags().GetString("out")
			preview, _ := cmd.Flags().GetBool("preview")
			width, _ := cmd.Flags().GetInt("width")

			exp := getExporter(ctx, cfg, out)
			now := time.Now().UTC()
			failed := 0
			for _, path := range args {
				drafts, err := readDrafts(path)
				if err != nil {
					logger.Error(ctx, "could not read drafts", zap.String("file", path), zap.Error(err))
					failed++

					continue
				}

				for _, d := range drafts {
					post := content.AutoPopulate(d, now)
					location, err := markdown.ExportPost(ctx, exp, &post)
					if err != nil {
						logger.Error(ctx, "could not export post", zap.String("slug", post.Slug), zap.Error(err))
						failed++

						continue
					}
					logger.Info(ctx, "post generated",
						zap.String("slug", post.Slug),
						zap.String("category", post.Category),
						zap.Int("seoScore", post.SEO.Score),
						zap.Bool("readyForPublish", post.Validation.ReadyForPublish),
						zap.String("location", location))

					if preview {
						rendered, err := markdown.Preview("# "+post.Title+"\n\n"+post.Content, width)
						if err != nil {
							return err
						}
						fmt.Fprint(cmd.OutOrStdout(), rendered)
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d post(s) could not be generated", failed)
			}

			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Output directory when no object store is configured (defaults to blog.exportDir)")
	cmd.Flags().Bool("preview", false, "Render each generated post to the terminal")
	cmd.Flags().Int("width", 100, "Preview word wrap width")

	return cmd
}
