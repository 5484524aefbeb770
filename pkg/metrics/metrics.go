// Package metrics holds the shared metric plumbing: histogram buckets, the
// OpenTelemetry meter provider exported through Prometheus and the domain
// counters recorded by the services.
package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// NewMeterProvider creates an OpenTelemetry meter provider whose instruments
// are exported through reg.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// Counters are the domain counters of the service. A nil *Counters records
// nothing.
type Counters struct {
	eventsIngested metric.Int64Counter
	leadsScored    metric.Int64Counter
	postsSynced    metric.Int64Counter
}

// NewCounters creates the domain counters on mp.
func NewCounters(mp metric.MeterProvider) (*Counters, error) {
	meter := mp.Meter("aviators")

	var (
		c   Counters
		err error
	)
	if c.eventsIngested, err = meter.Int64Counter("aviators.events.ingested",
		metric.WithDescription("Analytics events accepted by type")); err != nil {
		return nil, fmt.Errorf("could not create events counter: %w", err)
	}
	if c.leadsScored, err = meter.Int64Counter("aviators.leads.scored",
		metric.WithDescription("Lead scorings by resulting grade")); err != nil {
		return nil, fmt.Errorf("could not create leads counter: %w", err)
	}
	if c.postsSynced, err = meter.Int64Counter("aviators.posts.synced",
		metric.WithDescription("Posts pushed to or removed from the CMS by action")); err != nil {
		return nil, fmt.Errorf("could not create posts counter: %w", err)
	}

	return &c, nil
}

// EventIngested counts n accepted events of eventType.
func (c *Counters) EventIngested(ctx context.Context, eventType string, n int) {
	if c == nil {
		return
	}
	c.eventsIngested.Add(ctx, int64(n), metric.WithAttributes(attribute.String("type", eventType)))
}

// LeadScored counts a lead scoring that ended in grade.
func (c *Counters) LeadScored(ctx context.Context, grade string) {
	if c == nil {
		return
	}
	c.leadsScored.Add(ctx, 1, metric.WithAttributes(attribute.String("grade", grade)))
}

// PostSynced counts a CMS sync of the given action.
func (c *Counters) PostSynced(ctx context.Context, action string) {
	if c == nil {
		return
	}
	c.postsSynced.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}
