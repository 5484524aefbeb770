// Package cache keeps rendered public posts close to the API so repeated
// reads of popular articles skip the database.
//
//go:generate mockgen -package mockcache -source=interface.go -destination=mock/mockcache.go *
package cache

import (
	"aviators/pkg/domain"
	"context"
)

// PostCache caches published posts by slug.
type PostCache interface {
	// Post returns the cached post for slug, or nil on a miss.
	Post(ctx context.Context, slug string) (*domain.Post, error)
	// SetPost caches p under its slug.
	SetPost(ctx context.Context, p *domain.Post) error
	// Invalidate drops the cached post for each slug.
	Invalidate(ctx context.Context, slugs ...string) error
	// Purge drops every cached post and returns how many entries were removed.
	Purge(ctx context.Context) (int64, error)
}
