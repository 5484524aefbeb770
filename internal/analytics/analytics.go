// Package analytics ingests events from the site tracker into the event
// store, feeds identified visitors' activity to lead scoring and summarizes
// traffic for the admin panel.
package analytics

import (
	"aviators/internal/config"
	"aviators/internal/leads"
	"aviators/pkg/domain"
	"aviators/pkg/logger"
	"aviators/pkg/metrics"
	"aviators/pkg/serrors"
	"aviators/pkg/storage"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRange is summarized when no start is given.
	DefaultRange = 30 * 24 * time.Hour
	// TopN is the length of the top lists of a summary.
	TopN = 10

	maxIDLength = 64
)

// highValuePrefixes are paths that signal serious interest in enrolling.
var highValuePrefixes = []string{"/courses", "/admissions", "/contact", "/enroll"} //nolint: gochecknoglobals

// Options configure the analytics service.
type Options struct {
	// MaxBatch is the largest accepted batch.
	MaxBatch int
	// MaxSkew is how far in the future an event may claim to have occurred
	// before its time is replaced by the receive time.
	MaxSkew time.Duration
	// SiteHost is the host of the marketing site.
	SiteHost string
	// Counters records ingested events. Optional.
	Counters *metrics.Counters
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config, counters *metrics.Counters) Options {
	return Options{
		MaxBatch: cfg.Analytics.MaxBatch,
		MaxSkew:  cfg.Analytics.MaxSkew,
		SiteHost: cfg.HTTP.SiteHost,
		Counters: counters,
	}
}

type service struct {
	options Options
	events  storage.EventStorage
	leads   leads.Service
}

// New creates an analytics Service storing events in events and reporting
// lead activity to leadService.
func New(events storage.EventStorage, leadService leads.Service, options Options) Service {
	if options.MaxBatch <= 0 {
		options.MaxBatch = 50
	}
	if options.MaxSkew <= 0 {
		options.MaxSkew = 5 * time.Minute
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	return &service{options: options, events: events, leads: leadService}
}

func validate(in *Input) error {
	t := domain.EventType(strings.TrimSpace(in.Type))
	switch {
	case !t.Valid():
		return fmt.Errorf("unknown event type %q", in.Type)
	case strings.TrimSpace(in.SessionID) == "":
		return errors.New("session id is required")
	case t == domain.EventPageView && strings.TrimSpace(in.Path) == "":
		return errors.New("page views need a path")
	case t == domain.EventCTAClick && (in.CTA == nil || strings.TrimSpace(in.CTA.ID) == ""):
		return errors.New("cta clicks need a cta id")
	case len(in.ID) > maxIDLength:
		return fmt.Errorf("id longer than %d characters", maxIDLength)
	case in.DurationSeconds < 0:
		return errors.New("negative duration")
	}

	return nil
}

func (s *service) toEvent(in *Input, client Client, now time.Time) domain.Event {
	e := domain.Event{
		ID:              in.ID,
		Type:            domain.EventType(strings.TrimSpace(in.Type)),
		SessionID:       strings.TrimSpace(in.SessionID),
		VisitorID:       strings.TrimSpace(in.VisitorID),
		Path:            NormalizePath(in.Path),
		Referrer:        strings.TrimSpace(in.Referrer),
		UTM:             in.UTM,
		CTA:             in.CTA,
		DurationSeconds: in.DurationSeconds,
		Properties:      in.Properties,
		UserAgent:       client.UserAgent,
		IP:              client.IP,
		OccurredAt:      in.OccurredAt.UTC(),
		ReceivedAt:      now,
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if email, err := leads.NormalizeEmail(in.LeadEmail); err == nil {
		e.LeadEmail = email
	}
	if e.OccurredAt.IsZero() || e.OccurredAt.After(now.Add(s.options.MaxSkew)) {
		e.OccurredAt = now
	}
	e.TrafficSource = ClassifySource(in.UTM.Source, in.UTM.Medium, in.Referrer, s.options.SiteHost)

	return e
}

func (s *service) Ingest(ctx context.Context, client Client, inputs []Input) (int, error) {
	if len(inputs) == 0 {
		return 0, serrors.With(serrors.ErrBadRequest, "empty batch")
	}
	if len(inputs) > s.options.MaxBatch {
		return 0, serrors.With(serrors.ErrBadRequest, "batch of %d events exceeds the limit of %d", len(inputs), s.options.MaxBatch)
	}

	now := s.options.Now().UTC()
	events := make([]domain.Event, 0, len(inputs))
	for i := range inputs {
		if err := validate(&inputs[i]); err != nil {
			return 0, serrors.With(serrors.ErrBadRequest, "event %d is invalid: %v", i, err)
		}
		events = append(events, s.toEvent(&inputs[i], client, now))
	}

	// events already stored by an earlier try of the same batch are dropped
	// here so they are neither counted nor credited to a lead twice
	events, err := s.events.StoreEvents(ctx, events...)
	if err != nil {
		return 0, fmt.Errorf("could not store events: %w", err)
	}

	perType := map[domain.EventType]int{}
	for i := range events {
		perType[events[i].Type]++
	}
	for t, n := range perType {
		s.options.Counters.EventIngested(ctx, string(t), n)
	}

	s.recordLeadActivity(ctx, events)

	return len(events), nil
}

// ActivityFrom folds the events of one lead into an activity increment.
func ActivityFrom(events []domain.Event) leads.Activity {
	var a leads.Activity
	for i := range events {
		e := &events[i]
		switch e.Type {
		case domain.EventPageView:
			a.PageViews++
			a.SecondsOnSite += e.DurationSeconds
			path := strings.ToLower(e.Path)
			if strings.Contains(path, "pricing") || strings.Contains(path, "fees") {
				a.PricingViews++
			}
			for _, prefix := range highValuePrefixes {
				if strings.HasPrefix(path, prefix) && !slices.Contains(a.HighValuePages, path) {
					a.HighValuePages = append(a.HighValuePages, path)
				}
			}
		case domain.EventSessionStart:
			a.Sessions++
		case domain.EventCTAClick:
			a.CTAClicks++
		case domain.EventFormSubmit:
			a.FormSubmissions++
		case domain.EventDemoRequest:
			a.DemoRequested = true
		case domain.EventBrochureDownload:
			a.BrochureDownloads++
		case domain.EventEmailOpen:
			a.EmailOpens++
		case domain.EventEmailClick:
			a.EmailClicks++
		case domain.EventScrollDepth:
		}
		if e.OccurredAt.After(a.At) {
			a.At = e.OccurredAt
		}
	}

	return a
}

// recordLeadActivity forwards the activity of identified visitors. Events are
// already stored at this point, so failures are logged and not returned.
func (s *service) recordLeadActivity(ctx context.Context, events []domain.Event) {
	byLead := map[string][]domain.Event{}
	for i := range events {
		if email := events[i].LeadEmail; email != "" {
			byLead[email] = append(byLead[email], events[i])
		}
	}

	emails := make([]string, 0, len(byLead))
	for email := range byLead {
		emails = append(emails, email)
	}
	slices.Sort(emails)

	for _, email := range emails {
		if _, err := s.leads.RecordActivity(ctx, email, ActivityFrom(byLead[email])); err != nil {
			logger.Warn(ctx, "could not record lead activity", zap.String("email", email), zap.Error(err))
		}
	}
}

func (s *service) Summary(ctx context.Context, from, to time.Time) (*Summary, error) {
	if to.IsZero() {
		to = s.options.Now().UTC()
	}
	if from.IsZero() {
		from = to.Add(-DefaultRange)
	}
	if !from.Before(to) {
		return nil, serrors.With(serrors.ErrBadRequest, "from must be before to")
	}

	sum := &Summary{From: from, To: to}
	var converting int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.ByType, err = s.events.CountByType(gctx, from, to)

		return err
	})
	g.Go(func() (err error) {
		sum.UniqueVisitors, err = s.events.CountDistinct(gctx, "visitorId", from, to)

		return err
	})
	g.Go(func() (err error) {
		sum.Sessions, err = s.events.CountDistinct(gctx, "sessionId", from, to)

		return err
	})
	g.Go(func() (err error) {
		sum.TopPages, err = s.events.TopValues(gctx, "path", domain.EventPageView, from, to, TopN)

		return err
	})
	g.Go(func() (err error) {
		sum.TopCTAs, err = s.events.TopValues(gctx, "cta.id", domain.EventCTAClick, from, to, TopN)

		return err
	})
	g.Go(func() (err error) {
		sum.TrafficSources, err = s.events.TopValues(gctx, "trafficSource", "", from, to, TopN)

		return err
	})
	g.Go(func() (err error) {
		converting, err = s.events.CountSessionsWith(gctx,
			[]domain.EventType{domain.EventFormSubmit, domain.EventDemoRequest}, from, to)

		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("could not summarize events: %w", err)
	}

	for _, n := range sum.ByType {
		sum.TotalEvents += n
	}
	if sum.Sessions > 0 {
		sum.ConversionRate = math.Round(float64(converting)/float64(sum.Sessions)*10000) / 10000
	}

	return sum, nil
}
