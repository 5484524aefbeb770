package main

import (
	"aviators/internal/blog"
	"aviators/internal/config"
	"aviators/pkg/domain"
	"aviators/pkg/logger"
	"aviators/pkg/markdown"
	"aviators/pkg/serrors"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// importer is the identity imports are stored with. Imported posts have no
// creating user.
var importer = domain.Principal{Role: domain.RoleAdmin} //nolint: gochecknoglobals

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))

	return ext == ".md" || ext == ".markdown"
}

// importFile stores the post of one markdown file. A slug that is already
// taken is skipped.
func importFile(ctx context.Context, blogService blog.Service, path string) error {
	f, err := os.Open(path) //nolint: gosec
	if err != nil {
		return fmt.Errorf("could not open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	d, err := markdown.Decode(f, filepath.Base(path))
	if err != nil {
		return err
	}

	p, err := blogService.Create(ctx, importer, d)
	if errors.Is(err, serrors.ErrConflict) {
		logger.Info(ctx, "post already exists, skipping", zap.String("file", path), zap.String("slug", string(d.Slug)))

		return nil
	}
	if err != nil {
		return fmt.Errorf("could not import %s: %w", path, err)
	}

	logger.Info(ctx, "post imported", zap.String("file", path), zap.Stringer("postID", p.ID), zap.String("slug", p.Slug))

	return nil
}

// importDir imports every markdown file directly inside dir.
func importDir(ctx context.Context, blogService blog.Service, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("could not read %s: %w", dir, err)
	}

	failed := 0
	for _, e := range entries {
		if e.IsDir() || !isMarkdown(e.Name()) {
			continue
		}
		if err := importFile(ctx, blogService, filepath.Join(dir, e.Name())); err != nil {
			logger.Error(ctx, "import failed", zap.Error(err))
			failed++
		}
	}

	return failed, nil
}

// watchDir imports markdown files as they are created or written until ctx
// is done.
func watchDir(ctx context.Context, blogService blog.Service, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("could not create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("could not watch %s: %w", dir, err)
	}
	logger.Info(ctx, "watching for new posts", zap.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (!ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write)) || !isMarkdown(ev.Name) {
				continue
			}
			if err := importFile(ctx, blogService, ev.Name); err != nil {
				logger.Error(ctx, "import failed", zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn(ctx, "watcher error", zap.Error(err))
		}
	}
}

// importCommand constructs the 'import' subcommand that loads a folder of
// frontmatter markdown posts into storage.
func importCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Imports a folder of frontmatter markdown posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			watch, _ := cmd.Flags().GetBool("watch")

			pgsql, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()
			postCache, closeCache := getCache(ctx, cfg)
			defer closeCache()
			blogService := getBlog(cfg, pgsql, postCache, getCounters(ctx, prometheus.NewRegistry()))

			failed, err := importDir(ctx, blogService, args[0])
			if err != nil {
				return err
			}
			if watch {
				return watchDir(ctx, blogService, args[0])
			}
			if failed > 0 {
				return fmt.Errorf("%d file(s) could not be imported", failed)
			}

			return nil
		},
	}

	cmd.Flags().BoolP("watch", "w", false, "Keep running and import files as they appear")

	return cmd
}
