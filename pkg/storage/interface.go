// Package storage defines the core storage interfaces that the application relies on.
// It abstracts persistence operations and transaction management so that different
// backends (e.g. PostgreSQL for posts and leads, MongoDB for analytics events) can
// provide concrete implementations.
//
//go:generate mockgen -package mockstorage -source=interface.go -destination=mock/mockstorage.go *
package storage

import (
	"aviators/pkg/domain"
	"context"
	"time"

	"github.com/riverqueue/river"
)

// AllStorage is a composite interface that includes all domain-specific storage
// capabilities required by the application. Implementations typically embed
// other narrower interfaces such as PostStorage.
type AllStorage interface {
	PostStorage
	LeadStorage
	JobStorage
}

// TxStorage describes a storage handle that operates within a database
// transaction. It exposes the same domain-specific capabilities as AllStorage,
// and additionally allows committing or rolling back the ongoing transaction.
// Implementations should become unusable after Commit or Rollback is called.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage describes a non-transactional storage handle with the ability to
// start transactions. It exposes domain-specific capabilities and lifecycle
// management such as Close.
type Storage interface {
	AllStorage

	// Close releases any resources held by the storage implementation (e.g. the
	// underlying connection pool). After Close, the instance should not be used.
	Close() error

	// Begin starts a new transaction and returns a TxStorage that can be used to
	// perform further operations within that transaction.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx is a helper that begins a transaction, invokes the provided callback
	// with a TxStorage, and then commits on success or rolls back if the callback
	// returns an error.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}

// PostFilter narrows a post listing. Zero fields do not filter.
type PostFilter struct {
	Status   domain.WorkflowStatus
	Category string
	Tag      string
}

// Posts is a page of posts together with an optional NextCursor.
type Posts struct {
	Posts []domain.Post
	// NextCursor points past the last returned post. It is nil when there is
	// no next page.
	NextCursor *Cursor
}

// PostStorage persists blog posts. Deleted posts are soft-deleted and
// invisible to every read.
type PostStorage interface {
	// StorePost inserts a post and returns the stored row with generated fields.
	// A slug already used by a live post yields ErrDuplicate.
	StorePost(ctx context.Context, post domain.Post) (*domain.Post, error)
	// UpdatePost replaces the mutable fields of a post when its stored version
	// equals expectedVersion, incrementing the version. It returns nil when the
	// post does not exist and ErrStaleVersion when the version moved on.
	UpdatePost(ctx context.Context, post domain.Post, expectedVersion int) (*domain.Post, error)
	// PostByID returns the post or nil when not found.
	PostByID(ctx context.Context, id domain.PostID) (*domain.Post, error)
	// PostBySlug returns the post or nil when not found.
	PostBySlug(ctx context.Context, slug string) (*domain.Post, error)
	// ListPosts returns posts after the optional cursor. Published listings are
	// ordered by published_at, all others by created_at, newest first with ties
	// broken by id.
	ListPosts(ctx context.Context, filter PostFilter, cursor Cursor, limit uint) (Posts, error)
	// DeletePost soft-deletes a post and returns it, or nil when not found.
	DeletePost(ctx context.Context, id domain.PostID) (*domain.Post, error)
}

// Leads is a page of leads together with an optional NextCursor.
type Leads struct {
	Leads      []domain.Lead
	NextCursor *Cursor
}

// LeadStorage persists leads keyed by their lowercased email.
type LeadStorage interface {
	// StoreLead inserts a lead. A taken email yields ErrDuplicate.
	StoreLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error)
	// UpdateLead replaces the mutable fields of a lead and returns the stored
	// row, or nil when the lead does not exist.
	UpdateLead(ctx context.Context, lead domain.Lead) (*domain.Lead, error)
	// LeadByID returns the lead or nil when not found.
	LeadByID(ctx context.Context, id domain.LeadID) (*domain.Lead, error)
	// LeadByEmail returns the lead or nil when not found. Inside a transaction
	// the row is locked until commit.
	LeadByEmail(ctx context.Context, email string) (*domain.Lead, error)
	// ListLeads returns leads after the optional cursor ordered by created_at
	// and id, newest first, optionally filtered by grade.
	ListLeads(ctx context.Context, grade domain.LeadGrade, cursor Cursor, limit uint) (Leads, error)
}

// JobStorage defines the minimal interface for enqueueing background jobs.
// Implementations are responsible for persisting the job into the underlying
// queue backend. The args parameter contains the job payload and opts can be
// used to customize insertion behavior (e.g., queue name, delay, priority).
type JobStorage interface {
	// AddJob enqueues a new job with the given arguments. It should be atomic
	// with respect to any surrounding transaction when supported by the backend.
	// The returned bool is false when a unique job was skipped as a duplicate.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}

// Count is a value and how often it occurred.
type Count struct {
	Value string `json:"value" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// EventStorage persists analytics events and answers the aggregate queries of
// the analytics summary. All queries cover occurredAt in [from, to).
type EventStorage interface {
	// StoreEvents inserts events in one batch and returns the events that were
	// new. Events whose ID is already stored are skipped without an error.
	StoreEvents(ctx context.Context, events ...domain.Event) ([]domain.Event, error)
	// CountByType counts events per type.
	CountByType(ctx context.Context, from, to time.Time) (map[domain.EventType]int64, error)
	// CountDistinct counts distinct non-empty values of field.
	CountDistinct(ctx context.Context, field string, from, to time.Time) (int64, error)
	// TopValues returns the most frequent non-empty values of field, optionally
	// only among events of eventType, most frequent first.
	TopValues(ctx context.Context, field string, eventType domain.EventType, from, to time.Time, limit int) ([]Count, error)
	// CountSessionsWith counts distinct sessions having any event of the given types.
	CountSessionsWith(ctx context.Context, types []domain.EventType, from, to time.Time) (int64, error)
}
