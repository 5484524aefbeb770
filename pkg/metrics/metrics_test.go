package metrics_test

import (
	"aviators/pkg/metrics"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCounters_ExportedThroughPrometheus(t *testing.T) {
	reg := prometheus.NewRegistry()
	mp, err := metrics.NewMeterProvider(reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	c, err := metrics.NewCounters(mp)
	require.NoError(t, err)

	ctx := context.Background()
	c.EventIngested(ctx, "page_view", 3)
	c.LeadScored(ctx, "HOT")
	c.PostSynced(ctx, "upsert")

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	joined := strings.Join(names, ",")
	require.Contains(t, joined, "aviators_events_ingested")
	require.Contains(t, joined, "aviators_leads_scored")
	require.Contains(t, joined, "aviators_posts_synced")
}

func TestCounters_NilIsNoop(t *testing.T) {
	var c *metrics.Counters
	require.NotPanics(t, func() {
		c.EventIngested(context.Background(), "page_view", 1)
		c.LeadScored(context.Background(), "HOT")
		c.PostSynced(context.Background(), "delete")
	})
}
