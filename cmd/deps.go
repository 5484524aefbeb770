package main

import (
	"aviators/internal/blog"
	"aviators/internal/config"
	"aviators/internal/leads"
	"aviators/internal/monitor"
	"aviators/pkg/cache"
	"aviators/pkg/cms/sanity"
	"aviators/pkg/logger"
	"aviators/pkg/markdown"
	"aviators/pkg/metrics"
	"aviators/pkg/objectstore"
	"aviators/pkg/storage/mongodb"
	"aviators/pkg/storage/postgres"
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// getPostgres creates a PostgreSQL client using configuration values and returns it
// along with a cleanup function to close the connection pool.
func getPostgres(ctx context.Context, cfg *config.Config) (*postgres.PgSQL, func()) {
	pgsql, err := postgres.New(ctx, postgres.Options{
		Username:           cfg.Database.Username,
		Password:           cfg.Database.Password,
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		Database:           cfg.Database.DatabaseName,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime:    cfg.Database.ConnMaxIdleTime,
		MaxOpenConnections: cfg.Database.MaxOpenConnections,
		MaxIdleConnections: cfg.Database.MaxIdleConnections,
		SslMode:            cfg.Database.SslMode,
		ApplicationName:    "aviators",
		StatementTimeout:   cfg.Database.StatementTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "could not create postgres storage", zap.Error(err))
	}

	return pgsql, func() {
		logger.Info(ctx, "closing postgres client...")
		if err = pgsql.Close(); err != nil {
			logger.Warn(ctx, "could not close postgres connection", zap.Error(err))
		}
	}
}

// getCache creates the Redis post cache.
func getCache(ctx context.Context, cfg *config.Config) (*cache.Redis, func()) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return cache.NewRedis(client, cfg.Redis.Prefix, cfg.Redis.PostTTL), func() {
		logger.Info(ctx, "closing redis client...")
		if err := client.Close(); err != nil {
			logger.Warn(ctx, "could not close redis client", zap.Error(err))
		}
	}
}

// getEvents connects to the MongoDB event store.
func getEvents(ctx context.Context, cfg *config.Config) (*mongodb.Events, func()) {
	events, err := mongodb.Connect(ctx, mongodb.Options{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		logger.Fatal(ctx, "could not connect to mongo", zap.Error(err))
	}

	return events, func() {
		logger.Info(ctx, "closing mongo client...")
		if err := events.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "could not close mongo client", zap.Error(err))
		}
	}
}

// getCMS creates the Sanity client.
func getCMS(cfg *config.Config) *sanity.Client {
	return sanity.New(&http.Client{Timeout: cfg.CMS.Timeout}, sanity.Options{
		ProjectID:  cfg.CMS.ProjectID,
		Dataset:    cfg.CMS.Dataset,
		Token:      cfg.CMS.Token,
		APIVersion: cfg.CMS.APIVersion,
	})
}

// getObjectStore connects to the export bucket. It returns nil when no
// endpoint is configured.
func getObjectStore(ctx context.Context, cfg *config.Config) *objectstore.MinIO {
	if cfg.ObjectStore.Endpoint == "" {
		return nil
	}

	store, err := objectstore.New(ctx, objectstore.Options{
		Endpoint:  cfg.ObjectStore.Endpoint,
		AccessKey: cfg.ObjectStore.AccessKey,
		SecretKey: cfg.ObjectStore.SecretKey,
		Bucket:    cfg.ObjectStore.Bucket,
		Prefix:    cfg.ObjectStore.Prefix,
		UseSSL:    cfg.ObjectStore.UseSSL,
	})
	if err != nil {
		logger.Fatal(ctx, "could not connect to object store", zap.Error(err))
	}

	return store
}

// getExporter returns the bucket exporter when one is configured and a local
// directory exporter otherwise.
func getExporter(ctx context.Context, cfg *config.Config, dir string) markdown.Exporter {
	if store := getObjectStore(ctx, cfg); store != nil {
		return store
	}
	if dir == "" {
		dir = cfg.Blog.ExportDir
	}

	return markdown.DirExporter{Dir: dir}
}

// getCounters creates the domain counters exported through reg.
func getCounters(ctx context.Context, reg prometheus.Registerer) *metrics.Counters {
	mp, err := metrics.NewMeterProvider(reg)
	if err != nil {
		logger.Fatal(ctx, "could not create meter provider", zap.Error(err))
	}
	counters, err := metrics.NewCounters(mp)
	if err != nil {
		logger.Fatal(ctx, "could not create counters", zap.Error(err))
	}

	return counters
}

// getBlog wires the blog service on top of the given storage and cache.
func getBlog(cfg *config.Config, pgsql *postgres.PgSQL, postCache cache.PostCache,
	counters *metrics.Counters) blog.Service {
	return blog.New(pgsql, postCache, getCMS(cfg), blog.NewOptions(cfg, counters))
}

// getLeads wires the lead service.
func getLeads(cfg *config.Config, pgsql *postgres.PgSQL, counters *metrics.Counters) leads.Service {
	return leads.New(pgsql, leads.NewOptions(cfg, counters))
}

// healthChecks lists every backing service the monitor polls. The object
// store is only checked when configured.
func healthChecks(pgsql *postgres.PgSQL, postCache *cache.Redis, events *mongodb.Events,
	cmsClient *sanity.Client, store *objectstore.MinIO) []monitor.Checker {
	checks := []monitor.Checker{pgsql, postCache, events, cmsClient}
	if store != nil {
		checks = append(checks, store)
	}

	return checks
}
