package main

import (
	"aviators/internal/config"
	"aviators/pkg/logger"
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// cacheCommand constructs the 'cache' command group.
func cacheCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manages the post cache",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drops every cached post",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			postCache, closeCache := getCache(ctx, cfg)
			defer closeCache()

			n, err := postCache.Purge(ctx)
			if err != nil {
				return fmt.Errorf("could not purge cache: %w", err)
			}
			logger.Info(ctx, "cache purged", zap.Int64("posts", n))

			return nil
		},
	})

	return cmd
}
