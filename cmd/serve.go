package main

import (
	"aviators/internal/analytics"
	"aviators/internal/api"
	"aviators/internal/api/handler/v1handler"
	"aviators/internal/config"
	"aviators/internal/monitor"
	"aviators/internal/worker"
	"aviators/pkg/logger"
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server, err := api.NewServer(deps, api.NewOptions(cfg))
	if err != nil {
		logger.Fatal(ctx, "could not create webserver", zap.Error(err))
	}

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server, background workers and the health monitor",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pgsql, closeStrg := getPostgres(ctx, cfg)
			defer closeStrg()
			postCache, closeCache := getCache(ctx, cfg)
			defer closeCache()
			events, closeEvents := getEvents(ctx, cfg)
			defer closeEvents()
			store := getObjectStore(ctx, cfg)

			counters := getCounters(ctx, prometheus.DefaultRegisterer)
			blogService := getBlog(cfg, pgsql, postCache, counters)
			leadService := getLeads(cfg, pgsql, counters)
			analyticsService := analytics.New(events, leadService, analytics.NewOptions(cfg, counters))

			riverClient, err := worker.Start(ctx, cfg, pgsql.Pool, blogService, leadService)
			if err != nil {
				logger.Fatal(ctx, "could not start workers", zap.Error(err))
			}

			mon, err := monitor.New(monitor.NewOptions(cfg, prometheus.DefaultRegisterer),
				healthChecks(pgsql, postCache, events, getCMS(cfg), store)...)
			if err != nil {
				logger.Fatal(ctx, "could not create health monitor", zap.Error(err))
			}
			monitorDone := make(chan struct{})
			go func() {
				defer close(monitorDone)
				mon.Run(ctx)
			}()

			stopWebserver := setupServer(ctx, cfg, api.Deps{
				Deps: v1handler.Deps{
					Blog:      blogService,
					Leads:     leadService,
					Analytics: analyticsService,
					Cache:     postCache,
				},
				Health: mon,
			})

			// wait for interrupt
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
			defer cancel()

			stopWebserver(shutdownCtx)

			logger.Info(shutdownCtx, "stopping workers...")
			if err := riverClient.Stop(shutdownCtx); err != nil {
				logger.Error(shutdownCtx, "could not stop workers", zap.Error(err))
			}
			<-monitorDone
		},
	}

	return cmd
}
