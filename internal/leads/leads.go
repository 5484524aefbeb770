// Package leads implements lead capture, the lead scoring formula and the
// workflow router that hands scored leads to the admissions team.
package leads

import (
	"aviators/internal/config"
	"aviators/pkg/domain"
	"aviators/pkg/logger"
	"aviators/pkg/metrics"
	"aviators/pkg/serrors"
	"aviators/pkg/storage"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options configure the lead service.
type Options struct {
	// ScoreDelay postpones scoring jobs so bursts of activity score once.
	ScoreDelay time.Duration
	// MaxJobAttempts is the maximum number of attempts of a scoring job.
	MaxJobAttempts  int
	DefaultPageSize uint
	MaxPageSize     uint
	// Counters records scorings. Optional.
	Counters *metrics.Counters
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config, counters *metrics.Counters) Options {
	return Options{
		ScoreDelay:      5 * time.Second,
		MaxJobAttempts:  cfg.Worker.MaxAttempts,
		DefaultPageSize: cfg.Blog.DefaultPageSize,
		MaxPageSize:     cfg.Blog.MaxPageSize,
		Counters:        counters,
	}
}

type service struct {
	options Options
	storage storage.Storage
}

// New creates a lead Service backed by the provided storage.
func New(storage storage.Storage, options Options) Service {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.DefaultPageSize == 0 {
		options.DefaultPageSize = 20
	}
	if options.MaxPageSize == 0 {
		options.MaxPageSize = 100
	}

	return &service{options: options, storage: storage}
}

func (s *service) now() time.Time { return s.options.Now().UTC() }

// NormalizeEmail validates an email address and returns its lowercased bare form.
func NormalizeEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid email")
	}

	return strings.ToLower(addr.Address), nil
}

func mergeString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func mergeForm(l *domain.Lead, f Form) {
	mergeString(&l.Name, f.Name)
	mergeString(&l.Phone, f.Phone)
	mergeString(&l.City, f.City)
	mergeString(&l.Education, f.Education)
	mergeString(&l.CourseInterest, f.CourseInterest)
	if l.Source == "" {
		mergeString(&l.Source, f.Source)
	}
	if f.Age > 0 {
		l.Age = f.Age
	}
}

func mergeActivity(a *domain.LeadActivity, d Activity) {
	a.PageViews += d.PageViews
	a.Sessions += d.Sessions
	a.SecondsOnSite += d.SecondsOnSite
	a.PricingViews += d.PricingViews
	a.FormSubmissions += d.FormSubmissions
	a.CTAClicks += d.CTAClicks
	a.BrochureDownloads += d.BrochureDownloads
	a.EmailOpens += d.EmailOpens
	a.EmailClicks += d.EmailClicks
	a.DemoRequested = a.DemoRequested || d.DemoRequested
	for _, p := range d.HighValuePages {
		if p != "" && !slices.Contains(a.HighValuePages, p) {
			a.HighValuePages = append(a.HighValuePages, p)
		}
	}
	if d.At.After(a.LastActivityAt) {
		a.LastActivityAt = d.At
	}
}

// upsert loads the lead of email with its row locked, lets fn modify it,
// stores it and queues a scoring job. A lead inserted concurrently by
// another request makes the insert fail once; the second try updates it.
func (s *service) upsert(ctx context.Context, email string, fn func(l *domain.Lead)) (*domain.Lead, error) {
	var res *domain.Lead
	for attempt := 0; attempt < 2; attempt++ {
		err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
			current, err := tx.LeadByEmail(ctx, email)
			if err != nil {
				return fmt.Errorf("could not get lead: %w", err)
			}

			if current == nil {
				l := domain.Lead{Email: email}
				fn(&l)
				res, err = tx.StoreLead(ctx, l)
				if err != nil {
					return fmt.Errorf("could not store lead: %w", err)
				}
			} else {
				fn(current)
				res, err = tx.UpdateLead(ctx, *current)
				if err != nil {
					return fmt.Errorf("could not update lead: %w", err)
				}
			}

			if _, err := tx.AddJob(ctx, ScoreLeadJob{
				LeadID:      res.ID,
				maxAttempts: s.options.MaxJobAttempts,
				delay:       s.options.ScoreDelay,
			}, nil); err != nil {
				return fmt.Errorf("could not add score job: %w", err)
			}

			return nil
		})
		if errors.Is(err, storage.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}

		return res, nil
	}

	return nil, serrors.With(serrors.ErrConflict, "lead is being captured concurrently")
}

// Capture upserts the lead of a form submission by email, merging non-empty
// fields into an existing lead and counting the submission.
func (s *service) Capture(ctx context.Context, form Form) (*domain.Lead, error) {
	email, err := NormalizeEmail(form.Email)
	if err != nil {
		return nil, err
	}
	if form.Age < 0 || form.Age > 120 {
		return nil, serrors.With(serrors.ErrBadRequest, "invalid age %d", form.Age)
	}

	now := s.now()
	l, err := s.upsert(ctx, email, func(l *domain.Lead) {
		mergeForm(l, form)
		mergeActivity(&l.Activity, Activity{FormSubmissions: 1, At: now})
	})
	if err != nil {
		return nil, fmt.Errorf("could not capture lead: %w", err)
	}

	logger.Info(ctx, "lead captured", zap.Stringer("leadID", l.ID), zap.String("source", l.Source))

	return l, nil
}

// RecordActivity adds activity to the lead of email, creating a bare lead
// when the visitor was not captured before.
func (s *service) RecordActivity(ctx context.Context, email string, activity Activity) (*domain.Lead, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if activity.At.IsZero() {
		activity.At = s.now()
	}

	l, err := s.upsert(ctx, email, func(l *domain.Lead) {
		if l.Source == "" {
			l.Source = "analytics"
		}
		mergeActivity(&l.Activity, activity)
	})
	if err != nil {
		return nil, fmt.Errorf("could not record lead activity: %w", err)
	}

	return l, nil
}

// Rescore recomputes the score and route of a lead. The lead row stays
// locked while scoring so concurrent activity is not overwritten.
func (s *service) Rescore(ctx context.Context, id domain.LeadID) (*domain.Lead, error) {
	var (
		previous domain.LeadRoute
		updated  *domain.Lead
	)
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		l, err := tx.LeadByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get lead: %w", err)
		}
		if l == nil {
			return serrors.With(serrors.ErrNotFound, "lead not found")
		}

		previous = l.Route
		l.Score = Score(l, s.now())
		l.Route = Route(l)

		updated, err = tx.UpdateLead(ctx, *l)
		if err != nil {
			return fmt.Errorf("could not update lead: %w", err)
		}
		if updated == nil {
			return serrors.With(serrors.ErrNotFound, "lead not found")
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not rescore lead: %w", err)
	}

	s.options.Counters.LeadScored(ctx, string(updated.Score.Grade))
	if previous.Queue != updated.Route.Queue {
		logger.Info(ctx, "lead routed",
			zap.Stringer("leadID", updated.ID),
			zap.Float64("score", updated.Score.Total),
			zap.String("grade", string(updated.Score.Grade)),
			zap.String("queue", updated.Route.Queue),
			zap.String("priority", updated.Route.Priority))
	}

	return updated, nil
}

// Get returns a lead by id.
func (s *service) Get(ctx context.Context, id domain.LeadID) (*domain.Lead, error) {
	l, err := s.storage.LeadByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get lead: %w", err)
	}
	if l == nil {
		return nil, serrors.With(serrors.ErrNotFound, "lead not found")
	}

	return l, nil
}

// List returns a page of leads, optionally of one grade.
func (s *service) List(ctx context.Context,
	grade domain.LeadGrade,
	cursor string,
	limit uint) ([]domain.Lead, string, error) {
	if grade != "" && !grade.Valid() {
		return nil, "", serrors.With(serrors.ErrBadRequest, "invalid grade %q", grade)
	}

	after, err := storage.ParseCursor(cursor)
	if err != nil {
		return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
	}
	if limit == 0 {
		limit = s.options.DefaultPageSize
	}
	limit = min(limit, s.options.MaxPageSize)

	page, err := s.storage.ListLeads(ctx, grade, after, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not list leads: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.String()
	}

	return page.Leads, next, nil
}
