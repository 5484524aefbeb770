package postgres

import (
	"aviators/pkg/domain"
	"aviators/pkg/storage"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	postsTable = "posts"

	uniqueViolation = "23505"
)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (p *PgSQL) StorePost(ctx context.Context, post domain.Post) (*domain.Post, error) {
	var row PgPost
	if err := row.FromDomain(post); err != nil {
		return nil, err
	}

	var stored PgPost
	_, err := p.Builder.Insert(postsTable).
		Rows(row).
		Returning(&PgPost{}).
		Executor().ScanStructContext(ctx, &stored)
	if isUniqueViolation(err) {
		return nil, storage.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("could not store post into pg: %w", err)
	}

	return stored.ToDomain()
}

// UpdatePost writes every mutable column of post guarded by the expected
// version. On a miss it tells a vanished post from a concurrent update.
func (p *PgSQL) UpdatePost(ctx context.Context, post domain.Post, expectedVersion int) (*domain.Post, error) {
	var row PgPost
	if err := row.FromDomain(post); err != nil {
		return nil, err
	}

	var updated PgPost
	found, err := p.Builder.Update(postsTable).
		Set(row.updateRecord()).
		Where(
			goqu.I("id").Eq(uuid.UUID(post.ID)),
			goqu.I("version").Eq(expectedVersion),
			goqu.I("deleted_at").IsNull(),
		).
		Returning(&PgPost{}).
		Executor().ScanStructContext(ctx, &updated)
	if isUniqueViolation(err) {
		return nil, storage.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("could not update post in pg: %w", err)
	}
	if found {
		return updated.ToDomain()
	}

	existing, err := p.PostByID(ctx, post.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil //nolint: nilnil
	}

	return nil, storage.ErrStaleVersion
}

func (p *PgSQL) postBy(ctx context.Context, where goqu.Expression) (*domain.Post, error) {
	var row PgPost
	found, err := p.Builder.From(postsTable).
		Where(where, goqu.I("deleted_at").IsNull()).
		Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not fetch post: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain()
}

// PostByID returns a post by its ID, excluding soft-deleted rows.
func (p *PgSQL) PostByID(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	return p.postBy(ctx, goqu.I("id").Eq(uuid.UUID(id)))
}

// PostBySlug returns a post by its slug, excluding soft-deleted rows.
func (p *PgSQL) PostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	return p.postBy(ctx, goqu.I("slug").Eq(slug))
}

// ListPosts returns a page of posts matching filter. Results are ordered by
// the sort column DESC, id DESC and one extra row is fetched to detect the
// next page.
func (p *PgSQL) ListPosts(ctx context.Context,
	filter storage.PostFilter,
	cursor storage.Cursor,
	limit uint) (storage.Posts, error) {
	sortColumn := "created_at"
	if filter.Status == domain.WorkflowPublished {
		sortColumn = "published_at"
	}

	w := []goqu.Expression{goqu.I("deleted_at").IsNull()}
	if filter.Status != "" {
		w = append(w, goqu.I("workflow_status").Eq(string(filter.Status)))
	}
	if filter.Category != "" {
		w = append(w, goqu.I("category").Eq(filter.Category))
	}
	if filter.Tag != "" {
		tag, err := json.Marshal([]string{filter.Tag})
		if err != nil {
			return storage.Posts{}, fmt.Errorf("could not marshal tag filter: %w", err)
		}
		w = append(w, goqu.L("tags @> ?::jsonb", string(tag)))
	}
	if !cursor.IsZero() {
		w = append(w, after(sortColumn, cursor))
	}

	var rows []PgPost
	if err := p.Builder.From(postsTable).
		Where(w...).
		Order(goqu.I(sortColumn).Desc(), goqu.I("id").Desc()).
		Limit(limit + 1).
		Executor().ScanStructsContext(ctx, &rows); err != nil {
		return storage.Posts{}, fmt.Errorf("could not list posts from pg: %w", err)
	}

	var nextCursor *storage.Cursor
	if uint(len(rows)) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next := storage.Cursor{At: last.CreatedAt, ID: last.ID}
		if sortColumn == "published_at" {
			next.At = last.PublishedAt.Time
		}
		nextCursor = &next
	}

	posts, err := pgPostsToDomain(rows)
	if err != nil {
		return storage.Posts{}, err
	}

	return storage.Posts{Posts: posts, NextCursor: nextCursor}, nil
}

// after matches rows past cursor in (col DESC, id DESC) order.
func after(col string, cursor storage.Cursor) goqu.Expression {
	return goqu.L("(?, ?) < (?, ?)", goqu.I(col), goqu.I("id"), cursor.At, cursor.ID)
}

// DeletePost performs a soft delete by setting the deleted_at timestamp,
// returning the deleted record.
func (p *PgSQL) DeletePost(ctx context.Context, id domain.PostID) (*domain.Post, error) {
	var row PgPost
	found, err := p.Builder.Update(postsTable).
		Set(goqu.Record{
			"deleted_at": goqu.L("CURRENT_TIMESTAMP"),
		}).Where(
		goqu.I("id").Eq(uuid.UUID(id)),
		goqu.I("deleted_at").IsNull(),
	).Returning(&PgPost{}).Executor().ScanStructContext(ctx, &row)
	if err != nil {
		return nil, fmt.Errorf("could not delete post in pg: %w", err)
	}
	if !found {
		return nil, nil //nolint: nilnil
	}

	return row.ToDomain()
}
