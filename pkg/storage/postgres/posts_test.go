package postgres_test

import (
	"aviators/pkg/domain"
	"aviators/pkg/storage"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newPost(slug string, status domain.WorkflowStatus, publishedAt time.Time) domain.Post {
	return domain.Post{
		Slug:           slug,
		Title:          "Title of " + slug,
		Content:        "Body of " + slug,
		Author:         domain.Author{Name: "Aman Suryavanshi", Image: "/instructors/aman-suryavanshi.jpg"},
		Category:       "Flight Training",
		Tags:           []string{"CPL", "pilot"},
		SEO:            domain.SEO{Title: "SEO " + slug, FocusKeyword: "cpl training", Score: 55},
		Validation:     domain.Validation{HasRequiredFields: true},
		ReadingTime:    3,
		WordCount:      600,
		WorkflowStatus: status,
		CreatedBy:      domain.UserID(uuid.New()),
		PublishedAt:    publishedAt,
	}
}

func TestPgSQL_StorePost(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	t.Run("store and read back", func(t *testing.T) {
		t.Parallel()

		in := newPost("store-read", domain.WorkflowDraft, time.Time{})
		stored, err := pgSQL.StorePost(ctx, in)
		require.NoError(t, err)
		require.NotEqual(t, domain.PostID(uuid.Nil), stored.ID)
		require.Equal(t, 1, stored.Version)
		require.False(t, stored.CreatedAt.IsZero())
		require.Equal(t, in.Tags, stored.Tags)
		require.Equal(t, in.Author, stored.Author)
		require.Equal(t, in.SEO.FocusKeyword, stored.SEO.FocusKeyword)
		require.Equal(t, in.CreatedBy, stored.CreatedBy)

		byID, err := pgSQL.PostByID(ctx, stored.ID)
		require.NoError(t, err)
		require.Equal(t, stored.Slug, byID.Slug)

		bySlug, err := pgSQL.PostBySlug(ctx, "store-read")
		require.NoError(t, err)
		require.Equal(t, stored.ID, bySlug.ID)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		t.Parallel()

		_, err := pgSQL.StorePost(ctx, newPost("dup", domain.WorkflowDraft, time.Time{}))
		require.NoError(t, err)
		_, err = pgSQL.StorePost(ctx, newPost("dup", domain.WorkflowDraft, time.Time{}))
		require.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("slug of a deleted post can be reused", func(t *testing.T) {
		t.Parallel()

		first, err := pgSQL.StorePost(ctx, newPost("reuse", domain.WorkflowDraft, time.Time{}))
		require.NoError(t, err)
		_, err = pgSQL.DeletePost(ctx, first.ID)
		require.NoError(t, err)
		_, err = pgSQL.StorePost(ctx, newPost("reuse", domain.WorkflowDraft, time.Time{}))
		require.NoError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()

		got, err := pgSQL.PostByID(ctx, domain.PostID(uuid.New()))
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func TestPgSQL_UpdatePost(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	stored, err := pgSQL.StorePost(ctx, newPost("update-me", domain.WorkflowDraft, time.Time{}))
	require.NoError(t, err)

	stored.Title = "New title"
	stored.Tags = []string{"ATPL"}
	stored.WorkflowStatus = domain.WorkflowReview
	updated, err := pgSQL.UpdatePost(ctx, *stored, stored.Version)
	require.NoError(t, err)
	require.Equal(t, "New title", updated.Title)
	require.Equal(t, []string{"ATPL"}, updated.Tags)
	require.Equal(t, domain.WorkflowReview, updated.WorkflowStatus)
	require.Equal(t, 2, updated.Version)
	require.False(t, updated.UpdatedAt.IsZero())

	// the first version is gone
	_, err = pgSQL.UpdatePost(ctx, *stored, 1)
	require.ErrorIs(t, err, storage.ErrStaleVersion)

	missing := *stored
	missing.ID = domain.PostID(uuid.New())
	got, err := pgSQL.UpdatePost(ctx, missing, 1)
	require.NoError(t, err)
	require.Nil(t, got)

	other, err := pgSQL.StorePost(ctx, newPost("taken", domain.WorkflowDraft, time.Time{}))
	require.NoError(t, err)
	other.Slug = "update-me"
	_, err = pgSQL.UpdatePost(ctx, *other, other.Version)
	require.ErrorIs(t, err, storage.ErrDuplicate)
}

func TestPgSQL_ListPosts(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, slug := range []string{"p1", "p2", "p3"} {
		_, err := pgSQL.StorePost(ctx, newPost(slug, domain.WorkflowPublished, base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
	}
	draft := newPost("d1", domain.WorkflowDraft, time.Time{})
	draft.Category = "Navigation"
	draft.Tags = []string{"gps"}
	_, err := pgSQL.StorePost(ctx, draft)
	require.NoError(t, err)

	t.Run("published pages by published_at", func(t *testing.T) {
		page, err := pgSQL.ListPosts(ctx, storage.PostFilter{Status: domain.WorkflowPublished}, storage.Cursor{}, 2)
		require.NoError(t, err)
		require.Len(t, page.Posts, 2)
		require.Equal(t, "p3", page.Posts[0].Slug)
		require.Equal(t, "p2", page.Posts[1].Slug)
		require.NotNil(t, page.NextCursor)
		require.True(t, page.NextCursor.At.Equal(base.Add(time.Hour)))
		require.Equal(t, uuid.UUID(page.Posts[1].ID), page.NextCursor.ID)

		page, err = pgSQL.ListPosts(ctx, storage.PostFilter{Status: domain.WorkflowPublished}, *page.NextCursor, 2)
		require.NoError(t, err)
		require.Len(t, page.Posts, 1)
		require.Equal(t, "p1", page.Posts[0].Slug)
		require.Nil(t, page.NextCursor)
	})

	t.Run("category and tag filters", func(t *testing.T) {
		page, err := pgSQL.ListPosts(ctx, storage.PostFilter{Category: "Navigation"}, storage.Cursor{}, 10)
		require.NoError(t, err)
		require.Len(t, page.Posts, 1)
		require.Equal(t, "d1", page.Posts[0].Slug)

		page, err = pgSQL.ListPosts(ctx, storage.PostFilter{Tag: "CPL"}, storage.Cursor{}, 10)
		require.NoError(t, err)
		require.Len(t, page.Posts, 3)
	})
}

func TestPgSQL_ListPosts_SameTimestamp(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	at := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	for _, slug := range []string{"t1", "t2", "t3"} {
		_, err := pgSQL.StorePost(ctx, newPost(slug, domain.WorkflowPublished, at))
		require.NoError(t, err)
	}

	filter := storage.PostFilter{Status: domain.WorkflowPublished}
	seen := map[string]bool{}
	cursor := storage.Cursor{}
	for range 3 {
		page, err := pgSQL.ListPosts(ctx, filter, cursor, 1)
		require.NoError(t, err)
		require.Len(t, page.Posts, 1)
		require.False(t, seen[page.Posts[0].Slug], "post %s returned twice", page.Posts[0].Slug)
		seen[page.Posts[0].Slug] = true
		if page.NextCursor == nil {
			break
		}
		cursor = *page.NextCursor
	}
	require.Len(t, seen, 3)

	page, err := pgSQL.ListPosts(ctx, filter, cursor, 1)
	require.NoError(t, err)
	require.Empty(t, page.Posts)
}

func TestPgSQL_DeletePost(t *testing.T) {
	t.Parallel()

	pgSQL, cleanup := setupTestDB(t)
	t.Cleanup(cleanup)
	ctx := context.Background()

	stored, err := pgSQL.StorePost(ctx, newPost("delete-me", domain.WorkflowDraft, time.Time{}))
	require.NoError(t, err)

	deleted, err := pgSQL.DeletePost(ctx, stored.ID)
	require.NoError(t, err)
	require.NotNil(t, deleted)
	require.False(t, deleted.DeletedAt.IsZero())

	again, err := pgSQL.DeletePost(ctx, stored.ID)
	require.NoError(t, err)
	require.Nil(t, again)

	got, err := pgSQL.PostBySlug(ctx, "delete-me")
	require.NoError(t, err)
	require.Nil(t, got)
}
