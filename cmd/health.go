package main

import (
	"aviators/internal/api/handler/v1handler"
	"aviators/internal/config"
	"aviators/internal/monitor"
	"aviators/pkg/logger"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configChecks validate the deployment configuration next to the backing
// services.
func configChecks(cfg *config.Config) []monitor.Checker {
	return []monitor.Checker{
		monitor.CheckFunc("jwt", func(context.Context) error {
			_, err := v1handler.NewSecHandler(v1handler.NewSecHandlerOptions(cfg))

			return err
		}),
		monitor.CheckFunc("cms-config", func(context.Context) error {
			if cfg.CMS.ProjectID == "" || cfg.CMS.Token == "" {
				return errors.New("cms project id and token are required")
			}

			return nil
		}),
	}
}

// healthCommand constructs the 'health' subcommand that runs every health
// check once and exits non-zero when any of them fails.
func healthCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Checks configuration and backing services once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			pgsql, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()
			postCache, closeCache := getCache(ctx, cfg)
			defer closeCache()
			events, closeEvents := getEvents(ctx, cfg)
			defer closeEvents()

			checks := append(configChecks(cfg),
				healthChecks(pgsql, postCache, events, getCMS(cfg), getObjectStore(ctx, cfg))...)
			mon, err := monitor.New(monitor.NewOptions(cfg, prometheus.NewRegistry()), checks...)
			if err != nil {
				return fmt.Errorf("could not create monitor: %w", err)
			}

			report := mon.RunOnce(ctx)
			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("could not encode report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !report.Healthy {
				logger.Error(ctx, "deployment is unhealthy", zap.Int("checks", len(report.Results)))

				return errors.New("health check failed")
			}

			return nil
		},
	}

	return cmd
}
