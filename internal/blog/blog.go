// Package blog implements the unified blog service: creating posts from
// drafts, editing them under optimistic concurrency, moving them through the
// editorial workflow and mirroring published posts to the CMS.
package blog

import (
	"aviators/internal/config"
	"aviators/pkg/cache"
	"aviators/pkg/cms"
	"aviators/pkg/content"
	"aviators/pkg/domain"
	"aviators/pkg/logger"
	"aviators/pkg/markdown"
	"aviators/pkg/metrics"
	"aviators/pkg/serrors"
	"aviators/pkg/storage"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Options configure the blog service. They are typically derived from
// application configuration.
type Options struct {
	// DeleteAttempts is how many times Delete tries before giving up.
	DeleteAttempts int
	// DeleteRetryDelay is the fixed pause between delete attempts.
	DeleteRetryDelay time.Duration
	// DefaultPageSize is used when a listing asks for no limit.
	DefaultPageSize uint
	// MaxPageSize caps listing page sizes.
	MaxPageSize uint
	// MaxJobAttempts is the maximum number of attempts of a CMS sync job.
	MaxJobAttempts int
	// UniqueJobPeriod is the window in which identical sync jobs are deduplicated.
	UniqueJobPeriod time.Duration
	// Counters records synced posts. Optional.
	Counters *metrics.Counters
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config, counters *metrics.Counters) Options {
	return Options{
		DeleteAttempts:   cfg.Blog.DeleteAttempts,
		DeleteRetryDelay: cfg.Blog.DeleteRetryDelay,
		DefaultPageSize:  cfg.Blog.DefaultPageSize,
		MaxPageSize:      cfg.Blog.MaxPageSize,
		MaxJobAttempts:   cfg.Worker.MaxAttempts,
		UniqueJobPeriod:  time.Minute,
		Counters:         counters,
	}
}

type service struct {
	options Options
	storage storage.Storage
	cache   cache.PostCache
	cms     cms.Client
}

// New creates a blog Service backed by the provided storage, cache and CMS.
func New(storage storage.Storage, cache cache.PostCache, cms cms.Client, options Options) Service {
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.DeleteAttempts < 1 {
		options.DeleteAttempts = 1
	}
	if options.DefaultPageSize == 0 {
		options.DefaultPageSize = 12
	}
	if options.MaxPageSize == 0 {
		options.MaxPageSize = 50
	}

	return &service{options: options, storage: storage, cache: cache, cms: cms}
}

func (s *service) now() time.Time { return s.options.Now().UTC() }

func validateSlug(slug string) error {
	if slug == "" || content.GenerateSlug(slug) != slug {
		return serrors.With(serrors.ErrBadRequest, "invalid slug %q", slug)
	}

	return nil
}

func storageErr(err error, msg string) error {
	switch {
	case errors.Is(err, storage.ErrDuplicate):
		return serrors.Wrap(serrors.ErrConflict, err, "slug already taken")
	case errors.Is(err, storage.ErrStaleVersion):
		return serrors.Wrap(serrors.ErrConflict, err, "post was modified by someone else")
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

// enqueue adds a CMS sync job for p on tx.
func (s *service) enqueue(ctx context.Context, tx storage.AllStorage, p *domain.Post, action PublishAction) error {
	if _, err := tx.AddJob(ctx, s.publishJob(p, action), nil); err != nil {
		return fmt.Errorf("could not add publish job: %w", err)
	}

	return nil
}

// invalidate drops cached copies of a post. Cache failures only get logged;
// entries expire on their own.
func (s *service) invalidate(ctx context.Context, slugs ...string) {
	if err := s.cache.Invalidate(ctx, slugs...); err != nil {
		logger.Warn(ctx, "could not invalidate cached posts", zap.Strings("slugs", slugs), zap.Error(err))
	}
}

// Create auto-populates a draft and stores the resulting post. Posts created
// as published are queued for the CMS in the same transaction.
func (s *service) Create(ctx context.Context, by domain.Principal, draft content.Draft) (*domain.Post, error) {
	if strings.TrimSpace(draft.Title) == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "title is required")
	}
	if strings.TrimSpace(draft.BodyText()) == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "content is required")
	}
	if draft.WorkflowStatus != "" && !draft.WorkflowStatus.Valid() {
		return nil, serrors.With(serrors.ErrBadRequest, "invalid workflow status %q", draft.WorkflowStatus)
	}
	if draft.Slug != "" {
		if err := validateSlug(string(draft.Slug)); err != nil {
			return nil, err
		}
	}
	if draft.WorkflowStatus == domain.WorkflowPublished && by.Role.Rank() < domain.RoleEditor.Rank() {
		return nil, serrors.With(serrors.ErrForbidden, "only editors can publish")
	}

	post := content.AutoPopulate(draft, s.now())
	post.CreatedBy = by.UserID
	if post.Slug == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "title does not produce a usable slug")
	}

	var stored *domain.Post
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		var err error
		stored, err = tx.StorePost(ctx, post)
		if err != nil {
			return storageErr(err, "could not store post")
		}
		if stored.WorkflowStatus == domain.WorkflowPublished {
			return s.enqueue(ctx, tx, stored, ActionUpsert)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not create post: %w", err)
	}

	logger.Info(ctx, "post created", zap.Stringer("postID", stored.ID), zap.String("slug", stored.Slug))

	return stored, nil
}

// Preview auto-populates a draft and audits it without storing anything.
func (s *service) Preview(_ context.Context, draft content.Draft) (*Preview, error) {
	post := content.AutoPopulate(draft, s.now())
	html, err := markdown.Render(post.Content)
	if err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not render content")
	}

	return &Preview{
		Post: post,
		Audit: content.AuditSEO(content.AuditInput{
			SEOTitle:       post.SEO.Title,
			SEODescription: post.SEO.Description,
			FocusKeyword:   post.SEO.FocusKeyword,
			Excerpt:        post.Excerpt,
			Text:           content.PlainText(post.Content),
			Tags:           post.Tags,
			FeaturedImage:  post.FeaturedImage,
			AltText:        post.AltText,
		}),
		HTML: html,
	}, nil
}

// Get returns any live post by id.
func (s *service) Get(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	p, err := s.storage.PostByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("could not get post: %w", err)
	}
	if p == nil {
		return nil, serrors.With(serrors.ErrNotFound, "post not found")
	}

	return p, nil
}

// GetPublished returns a published post by slug, reading through the cache.
func (s *service) GetPublished(ctx context.Context, slug string) (*domain.Post, error) {
	cached, err := s.cache.Post(ctx, slug)
	if err != nil {
		logger.Warn(ctx, "could not read post cache", zap.String("slug", slug), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	p, err := s.storage.PostBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("could not get post: %w", err)
	}
	if p == nil || p.WorkflowStatus != domain.WorkflowPublished {
		return nil, serrors.With(serrors.ErrNotFound, "post not found")
	}

	if err := s.cache.SetPost(ctx, p); err != nil {
		logger.Warn(ctx, "could not cache post", zap.String("slug", slug), zap.Error(err))
	}

	return p, nil
}

// List returns a page of posts. The cursor is the opaque token returned as
// next cursor by the previous page.
func (s *service) List(ctx context.Context,
	filter storage.PostFilter,
	cursor string,
	limit uint) ([]domain.Post, string, error) {
	after, err := storage.ParseCursor(cursor)
	if err != nil {
		return nil, "", serrors.Wrap(serrors.ErrBadRequest, err, "invalid cursor")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, "", serrors.With(serrors.ErrBadRequest, "invalid workflow status %q", filter.Status)
	}
	if limit == 0 {
		limit = s.options.DefaultPageSize
	}
	limit = min(limit, s.options.MaxPageSize)

	page, err := s.storage.ListPosts(ctx, filter, after, limit)
	if err != nil {
		return nil, "", fmt.Errorf("could not list posts: %w", err)
	}

	var next string
	if page.NextCursor != nil {
		next = page.NextCursor.String()
	}

	return page.Posts, next, nil
}

func applyPatch(p *domain.Post, patch Patch) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&p.Title, patch.Title)
	set(&p.Slug, patch.Slug)
	set(&p.Excerpt, patch.Excerpt)
	set(&p.Category, patch.Category)
	set(&p.FeaturedImage, patch.FeaturedImage)
	set(&p.AltText, patch.AltText)
	set(&p.SEO.Title, patch.SEOTitle)
	set(&p.SEO.Description, patch.SEODescription)
	set(&p.SEO.FocusKeyword, patch.FocusKeyword)
	if patch.Content != nil {
		p.Content = content.CleanBody(*patch.Content)
	}
	if patch.Author != nil {
		p.Author = *patch.Author
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.AdditionalKeywords != nil {
		p.SEO.AdditionalKeywords = *patch.AdditionalKeywords
	}
	if patch.Featured != nil {
		p.Featured = *patch.Featured
	}
	if patch.ReadingTime != nil {
		p.ReadingTime = *patch.ReadingTime
	}
}

// save writes p guarded by its current version and queues a CMS upsert when
// the post is live.
func (s *service) save(ctx context.Context, tx storage.AllStorage, p domain.Post, expectedVersion int) (*domain.Post, error) {
	updated, err := tx.UpdatePost(ctx, p, expectedVersion)
	if err != nil {
		return nil, storageErr(err, "could not update post")
	}
	if updated == nil {
		return nil, serrors.With(serrors.ErrNotFound, "post not found")
	}
	if updated.WorkflowStatus == domain.WorkflowPublished {
		if err := s.enqueue(ctx, tx, updated, ActionUpsert); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// Update applies patch to a post whose version still equals expectedVersion
// and recomputes its derived fields. Published posts need an editor.
func (s *service) Update(ctx context.Context,
	by domain.Principal,
	id domain.PostID,
	patch Patch,
	expectedVersion int) (*domain.Post, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "title cannot be empty")
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, serrors.With(serrors.ErrBadRequest, "content cannot be empty")
	}
	if patch.Slug != nil {
		if err := validateSlug(*patch.Slug); err != nil {
			return nil, err
		}
	}
	if patch.ReadingTime != nil && *patch.ReadingTime < 0 {
		return nil, serrors.With(serrors.ErrBadRequest, "reading time cannot be negative")
	}

	var (
		oldSlug string
		updated *domain.Post
	)
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		current, err := tx.PostByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get post: %w", err)
		}
		if current == nil {
			return serrors.With(serrors.ErrNotFound, "post not found")
		}
		// edits to live posts go out to the CMS right away
		if current.WorkflowStatus == domain.WorkflowPublished && by.Role.Rank() < domain.RoleEditor.Rank() {
			return serrors.With(serrors.ErrForbidden, "only editors can edit published posts")
		}
		if current.Version != expectedVersion {
			return serrors.With(serrors.ErrConflict, "post was modified by someone else")
		}
		oldSlug = current.Slug

		next := *current
		applyPatch(&next, patch)
		content.Refresh(&next, s.now())

		updated, err = s.save(ctx, tx, next, expectedVersion)

		return err
	}); err != nil {
		return nil, fmt.Errorf("could not update post: %w", err)
	}

	s.invalidate(ctx, oldSlug, updated.Slug)

	return updated, nil
}

// Transition moves a post through the editorial workflow.
func (s *service) Transition(ctx context.Context,
	by domain.Principal,
	id domain.PostID,
	to domain.WorkflowStatus) (*domain.Post, error) {
	if !to.Valid() {
		return nil, serrors.With(serrors.ErrBadRequest, "invalid workflow status %q", to)
	}
	if requiresEditor(to) && by.Role.Rank() < domain.RoleEditor.Rank() {
		return nil, serrors.With(serrors.ErrForbidden, "only editors can move posts to %s", to)
	}

	var updated *domain.Post
	if err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		current, err := tx.PostByID(ctx, id)
		if err != nil {
			return fmt.Errorf("could not get post: %w", err)
		}
		if current == nil {
			return serrors.With(serrors.ErrNotFound, "post not found")
		}
		if !CanTransition(current.WorkflowStatus, to) {
			return serrors.With(serrors.ErrBadRequest, "cannot move post from %s to %s", current.WorkflowStatus, to)
		}

		next := *current
		next.WorkflowStatus = to
		if to == domain.WorkflowPublished {
			if !current.Validation.HasRequiredFields {
				return serrors.With(serrors.ErrBadRequest, "post is missing required fields")
			}
			if next.PublishedAt.IsZero() {
				next.PublishedAt = s.now()
			}
		}

		updated, err = s.save(ctx, tx, next, current.Version)
		if err != nil {
			return err
		}
		if current.WorkflowStatus == domain.WorkflowPublished {
			return s.enqueue(ctx, tx, updated, ActionDelete)
		}

		return nil
	}); err != nil {
		return nil, fmt.Errorf("could not change post status: %w", err)
	}

	s.invalidate(ctx, updated.Slug)
	logger.Info(ctx, "post status changed",
		zap.Stringer("postID", updated.ID),
		zap.String("status", string(updated.WorkflowStatus)))

	return updated, nil
}

// retryable reports whether a failed delete may succeed on another attempt:
// unclassified storage failures and temporary kinds are retried.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	return serrors.KindOf(err) == nil || serrors.Temporary(err)
}

func (s *service) deleteOnce(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	var deleted *domain.Post
	err := s.storage.WithTx(ctx, func(tx storage.AllStorage) error {
		var err error
		deleted, err = tx.DeletePost(ctx, id)
		if err != nil {
			return fmt.Errorf("could not delete post: %w", err)
		}
		if deleted == nil {
			return serrors.With(serrors.ErrNotFound, "post not found")
		}
		if deleted.WorkflowStatus == domain.WorkflowPublished {
			return s.enqueue(ctx, tx, deleted, ActionDelete)
		}

		return nil
	})

	return deleted, err
}

// Delete soft-deletes a post, retrying transient failures a fixed number of
// times with a fixed delay. Only admins may delete.
func (s *service) Delete(ctx context.Context, by domain.Principal, id domain.PostID) error {
	if by.Role != domain.RoleAdmin {
		return serrors.With(serrors.ErrForbidden, "only admins can delete posts")
	}

	var (
		deleted *domain.Post
		err     error
	)
	for attempt := 1; attempt <= s.options.DeleteAttempts; attempt++ {
		deleted, err = s.deleteOnce(ctx, id)
		if err == nil || !retryable(err) {
			break
		}

		logger.Warn(ctx, "could not delete post, retrying",
			zap.Stringer("postID", id),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == s.options.DeleteAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("could not delete post: %w", ctx.Err())
		case <-time.After(s.options.DeleteRetryDelay):
		}
	}
	if err != nil {
		return fmt.Errorf("could not delete post: %w", err)
	}

	s.invalidate(ctx, deleted.Slug)
	logger.Info(ctx, "post deleted", zap.Stringer("postID", id))

	return nil
}

// Sync mirrors a post to the CMS. A missing post is NOT_FOUND; a post that
// is no longer published is left alone.
func (s *service) Sync(ctx context.Context, args PublishPostJob) (cms.RateLimitStatus, error) {
	switch args.Action {
	case ActionDelete:
		rl, err := s.cms.DeletePost(ctx, args.DocumentID)
		if err != nil && !errors.Is(err, serrors.ErrNotFound) {
			return rl, fmt.Errorf("could not delete cms document: %w", err)
		}
		s.options.Counters.PostSynced(ctx, string(args.Action))

		return rl, nil
	case ActionUpsert:
		p, err := s.storage.PostByID(ctx, args.PostID)
		if err != nil {
			return cms.RateLimitStatus{}, fmt.Errorf("could not get post: %w", err)
		}
		if p == nil {
			return cms.RateLimitStatus{}, serrors.With(serrors.ErrNotFound, "post not found")
		}
		if p.WorkflowStatus != domain.WorkflowPublished {
			logger.Info(ctx, "post is no longer published, skipping cms upsert", zap.Stringer("postID", p.ID))

			return cms.RateLimitStatus{}, nil
		}

		rl, err := s.cms.UpsertPost(ctx, cms.DocumentFromPost(p))
		if err != nil {
			return rl, fmt.Errorf("could not upsert cms document: %w", err)
		}
		s.options.Counters.PostSynced(ctx, string(args.Action))

		return rl, nil
	default:
		return cms.RateLimitStatus{}, serrors.With(serrors.ErrBadRequest, "unknown publish action %q", args.Action)
	}
}
