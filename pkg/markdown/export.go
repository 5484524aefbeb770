package markdown

import (
	"aviators/pkg/domain"
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Exporter stores generated post files somewhere and returns their location.
type Exporter interface {
	Export(ctx context.Context, name string, data []byte) (string, error)
}

// DirExporter writes files into a local directory, creating it when needed.
type DirExporter struct {
	Dir string
}

// Export implements Exporter.
func (e DirExporter) Export(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil { //nolint: gosec
		return "", fmt.Errorf("could not create %s: %w", e.Dir, err)
	}

	path := filepath.Join(e.Dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint: gosec
		return "", fmt.Errorf("could not write %s: %w", path, err)
	}

	return path, nil
}

// ExportPost encodes p and hands it to exp under its file name.
func ExportPost(ctx context.Context, exp Exporter, p *domain.Post) (string, error) {
	data, err := Marshal(p)
	if err != nil {
		return "", err
	}

	return exp.Export(ctx, FileName(p), data)
}
