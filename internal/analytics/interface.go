package analytics

import (
	"aviators/pkg/domain"
	"aviators/pkg/storage"
	"context"
	"time"
)

// Input is an event as reported by the browser tracker.
type Input struct {
	// ID is an optional client generated id. Resending a batch with the same
	// ids does not duplicate events.
	ID              string         `json:"id"`
	Type            string         `json:"type"`
	SessionID       string         `json:"sessionId"`
	VisitorID       string         `json:"visitorId"`
	LeadEmail       string         `json:"leadEmail"`
	Path            string         `json:"path"`
	Referrer        string         `json:"referrer"`
	UTM             domain.UTM     `json:"utm"`
	CTA             *domain.CTA    `json:"cta"`
	DurationSeconds int            `json:"durationSeconds"`
	Properties      map[string]any `json:"properties"`
	OccurredAt      time.Time      `json:"occurredAt"`
}

// Client describes who sent a batch.
type Client struct {
	IP        string
	UserAgent string
}

// Summary aggregates the events of a time range.
type Summary struct {
	From           time.Time                  `json:"from"`
	To             time.Time                  `json:"to"`
	TotalEvents    int64                      `json:"totalEvents"`
	ByType         map[domain.EventType]int64 `json:"byType"`
	UniqueVisitors int64                      `json:"uniqueVisitors"`
	Sessions       int64                      `json:"sessions"`
	TopPages       []storage.Count            `json:"topPages"`
	TopCTAs        []storage.Count            `json:"topCtas"`
	TrafficSources []storage.Count            `json:"trafficSources"`
	// ConversionRate is the share of sessions with a form submission or demo request.
	ConversionRate float64 `json:"conversionRate"`
}

// Service ingests tracker events and summarizes them.
//
//go:generate mockgen -package mockanalytics -source=interface.go -destination=mock/mockanalytics.go *
type Service interface {
	// Ingest validates and stores a batch of events and returns how many were
	// stored. A single invalid event rejects the whole batch.
	Ingest(ctx context.Context, client Client, events []Input) (int, error)
	// Summary aggregates events that occurred in [from, to).
	Summary(ctx context.Context, from, to time.Time) (*Summary, error)
}
