package blog_test

import (
	"aviators/internal/blog"
	"aviators/pkg/cms"
	"aviators/pkg/content"
	"aviators/pkg/domain"
	"aviators/pkg/logger"
	"aviators/pkg/serrors"
	"aviators/pkg/storage"
	"context"
	"errors"
	"testing"
	"time"

	mockcache "aviators/pkg/cache/mock"
	mockcms "aviators/pkg/cms/mock"
	mockstorage "aviators/pkg/storage/mock"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	logger.Setup(logger.DevelopmentEnvironment)
	m.Run()
}

//nolint: gochecknoglobals
var (
	now    = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	admin  = domain.Principal{UserID: domain.UserID(uuid.New()), Role: domain.RoleAdmin}
	editor = domain.Principal{UserID: domain.UserID(uuid.New()), Role: domain.RoleEditor}
	author = domain.Principal{UserID: domain.UserID(uuid.New()), Role: domain.RoleAuthor}
)

type fixture struct {
	ctrl  *gomock.Controller
	st    *mockstorage.MockStorage
	cache *mockcache.MockPostCache
	cms   *mockcms.MockClient
	svc   blog.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		ctrl:  ctrl,
		st:    mockstorage.NewMockStorage(ctrl),
		cache: mockcache.NewMockPostCache(ctrl),
		cms:   mockcms.NewMockClient(ctrl),
	}
	f.svc = blog.New(f.st, f.cache, f.cms, blog.Options{
		DeleteAttempts:   3,
		DeleteRetryDelay: time.Millisecond,
		DefaultPageSize:  10,
		MaxPageSize:      50,
		MaxJobAttempts:   5,
		UniqueJobPeriod:  time.Minute,
		Now:              func() time.Time { return now },
	})

	return f
}

// expectWithTx wires Storage.WithTx to execute the callback with a MockAllStorage.
func (f *fixture) expectWithTx(fn func(tx *mockstorage.MockAllStorage)) {
	f.st.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cb func(storage.AllStorage) error) error {
			tx := mockstorage.NewMockAllStorage(f.ctrl)
			if fn != nil {
				fn(tx)
			}

			return cb(tx)
		},
	)
}

func publishArgs(t *testing.T, args river.JobArgs) blog.PublishPostJob {
	t.Helper()

	job, ok := args.(blog.PublishPostJob)
	require.True(t, ok, "expected a PublishPostJob, got %T", args)

	return job
}

func storedPost(status domain.WorkflowStatus) *domain.Post {
	p := content.AutoPopulate(content.Draft{
		Title:          "CPL Training Guide",
		Content:        "Steps to your commercial pilot license with our ground school.",
		WorkflowStatus: status,
	}, now)
	p.ID = domain.PostID(uuid.New())
	p.Version = 1

	return &p
}

func TestService_Create_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, editor, content.Draft{Content: "body"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = f.svc.Create(ctx, editor, content.Draft{Title: "Title"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = f.svc.Create(ctx, editor, content.Draft{Title: "Title", Content: "body", Slug: "Not A Slug"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = f.svc.Create(ctx, editor, content.Draft{Title: "Title", Content: "body", WorkflowStatus: "Live"})
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, err = f.svc.Create(ctx, author, content.Draft{
		Title: "Title", Content: "body", WorkflowStatus: domain.WorkflowPublished,
	})
	require.ErrorIs(t, err, serrors.ErrForbidden)
}

func TestService_Create_Draft(t *testing.T) {
	f := newFixture(t)
	id := domain.PostID(uuid.New())

	f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().StorePost(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p domain.Post) (*domain.Post, error) {
				require.Equal(t, "dgca-exam-tips", p.Slug)
				require.Equal(t, domain.WorkflowDraft, p.WorkflowStatus)
				require.Equal(t, author.UserID, p.CreatedBy)
				require.Equal(t, "DGCA Exams", p.Category)
				require.True(t, p.PublishedAt.Equal(now))
				p.ID = id
				p.Version = 1

				return &p, nil
			})
	})

	p, err := f.svc.Create(context.Background(), author, content.Draft{
		Title:   "DGCA Exam Tips",
		Content: "Prepare for the DGCA exam with a plan.",
	})
	require.NoError(t, err)
	require.Equal(t, id, p.ID)
}

func TestService_Create_PublishedEnqueuesSync(t *testing.T) {
	f := newFixture(t)
	id := domain.PostID(uuid.New())

	f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().StorePost(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, p domain.Post) (*domain.Post, error) {
				p.ID = id
				p.Version = 1

				return &p, nil
			})
		tx.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).DoAndReturn(
			func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
				job := publishArgs(t, args)
				require.Equal(t, id, job.PostID)
				require.Equal(t, blog.ActionUpsert, job.Action)
				require.Equal(t, 1, job.Version)
				require.Equal(t, 5, job.InsertOpts().MaxAttempts)
				require.True(t, job.InsertOpts().UniqueOpts.ByArgs)

				return true, nil
			})
	})

	_, err := f.svc.Create(context.Background(), editor, content.Draft{
		Title:          "Aviation Careers",
		Content:        "Airline jobs are growing.",
		WorkflowStatus: domain.WorkflowPublished,
	})
	require.NoError(t, err)
}

func TestService_Create_DuplicateSlugConflicts(t *testing.T) {
	f := newFixture(t)

	f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
		tx.EXPECT().StorePost(gomock.Any(), gomock.Any()).Return(nil, storage.ErrDuplicate)
	})

	_, err := f.svc.Create(context.Background(), editor, content.Draft{Title: "Taken", Content: "body"})
	require.ErrorIs(t, err, serrors.ErrConflict)
}

func TestService_Preview(t *testing.T) {
	f := newFixture(t)

	pv, err := f.svc.Preview(context.Background(), content.Draft{
		Title:   "Navigation Basics",
		Content: "## GPS and ILS\n\nHow an ILS approach works.",
	})
	require.NoError(t, err)
	require.Equal(t, "navigation-basics", pv.Post.Slug)
	require.Contains(t, pv.HTML, `<h2 id="gps-and-ils">`)
	require.Equal(t, pv.Post.SEO.Score, pv.Audit.Score)
	require.NotEmpty(t, pv.Audit.Issues)
}

func TestService_Get(t *testing.T) {
	f := newFixture(t)
	p := storedPost(domain.WorkflowDraft)

	f.st.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
	got, err := f.svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, p, got)

	f.st.EXPECT().PostByID(gomock.Any(), gomock.Any()).Return(nil, nil) //nolint: nilnil
	_, err = f.svc.Get(context.Background(), domain.PostID(uuid.New()))
	require.ErrorIs(t, err, serrors.ErrNotFound)
}

func TestService_GetPublished(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowPublished)
		f.cache.EXPECT().Post(gomock.Any(), p.Slug).Return(p, nil)

		got, err := f.svc.GetPublished(ctx, p.Slug)
		require.NoError(t, err)
		require.Equal(t, p, got)
	})

	t.Run("cache miss reads storage and fills cache", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowPublished)
		f.cache.EXPECT().Post(gomock.Any(), p.Slug).Return(nil, nil) //nolint: nilnil
		f.st.EXPECT().PostBySlug(gomock.Any(), p.Slug).Return(p, nil)
		f.cache.EXPECT().SetPost(gomock.Any(), p).Return(nil)

		got, err := f.svc.GetPublished(ctx, p.Slug)
		require.NoError(t, err)
		require.Equal(t, p, got)
	})

	t.Run("cache failure falls through", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowPublished)
		f.cache.EXPECT().Post(gomock.Any(), p.Slug).Return(nil, errors.New("redis down"))
		f.st.EXPECT().PostBySlug(gomock.Any(), p.Slug).Return(p, nil)
		f.cache.EXPECT().SetPost(gomock.Any(), p).Return(errors.New("redis down"))

		_, err := f.svc.GetPublished(ctx, p.Slug)
		require.NoError(t, err)
	})

	t.Run("drafts are not public", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowReview)
		f.cache.EXPECT().Post(gomock.Any(), p.Slug).Return(nil, nil) //nolint: nilnil
		f.st.EXPECT().PostBySlug(gomock.Any(), p.Slug).Return(p, nil)

		_, err := f.svc.GetPublished(ctx, p.Slug)
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})
}

func TestService_List(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.List(ctx, storage.PostFilter{}, "yesterday", 10)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, _, err = f.svc.List(ctx, storage.PostFilter{Status: "Live"}, "", 10)
	require.ErrorIs(t, err, serrors.ErrBadRequest)

	_, _, err = f.svc.List(ctx, storage.PostFilter{}, "2025-02-01T00:00:00Z", 10)
	require.ErrorIs(t, err, serrors.ErrBadRequest, "bare timestamps are not cursors")

	token := storage.Cursor{At: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ID: uuid.New()}.String()
	cursor, err := storage.ParseCursor(token)
	require.NoError(t, err)
	next := storage.Cursor{At: time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC), ID: uuid.New()}
	filter := storage.PostFilter{Status: domain.WorkflowPublished, Tag: "CPL"}
	f.st.EXPECT().ListPosts(gomock.Any(), filter, cursor, uint(50)).
		Return(storage.Posts{Posts: []domain.Post{*storedPost(domain.WorkflowPublished)}, NextCursor: &next}, nil)

	posts, nextCursor, err := f.svc.List(ctx, filter, token, 500)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, next.String(), nextCursor)

	f.st.EXPECT().ListPosts(gomock.Any(), storage.PostFilter{}, storage.Cursor{}, uint(10)).Return(storage.Posts{}, nil)
	_, nextCursor, err = f.svc.List(ctx, storage.PostFilter{}, "", 0)
	require.NoError(t, err)
	require.Empty(t, nextCursor)
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("stale version conflicts", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowDraft)
		p.Version = 3
		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
		})

		title := "New"
		_, err := f.svc.Update(ctx, author, p.ID, blog.Patch{Title: &title}, 2)
		require.ErrorIs(t, err, serrors.ErrConflict)
	})

	t.Run("lost race in storage conflicts", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowDraft)
		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
			tx.EXPECT().UpdatePost(gomock.Any(), gomock.Any(), 1).Return(nil, storage.ErrStaleVersion)
		})

		title := "New"
		_, err := f.svc.Update(ctx, author, p.ID, blog.Patch{Title: &title}, 1)
		require.ErrorIs(t, err, serrors.ErrConflict)
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture(t)
		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().PostByID(gomock.Any(), gomock.Any()).Return(nil, nil) //nolint: nilnil
		})

		_, err := f.svc.Update(ctx, author, domain.PostID(uuid.New()), blog.Patch{}, 1)
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})

	t.Run("invalid patch", func(t *testing.T) {
		f := newFixture(t)
		empty := ""
		_, err := f.svc.Update(ctx, author, domain.PostID(uuid.New()), blog.Patch{Title: &empty}, 1)
		require.ErrorIs(t, err, serrors.ErrBadRequest)

		slug := "Bad Slug"
		_, err = f.svc.Update(ctx, author, domain.PostID(uuid.New()), blog.Patch{Slug: &slug}, 1)
		require.ErrorIs(t, err, serrors.ErrBadRequest)
	})

	t.Run("authors cannot edit published posts", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowPublished)
		// no UpdatePost, no AddJob and no cache invalidation
		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
		})

		title := "Rewritten while live"
		_, err := f.svc.Update(ctx, author, p.ID, blog.Patch{Title: &title}, p.Version)
		require.ErrorIs(t, err, serrors.ErrForbidden)
	})

	t.Run("published post recomputes, syncs and invalidates", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowPublished)
		oldSlug := p.Slug
		body := "A much longer body about pilot training and the DGCA exam for every student pilot."
		slug := "cpl-guide-2025"

		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
			tx.EXPECT().UpdatePost(gomock.Any(), gomock.Any(), 1).DoAndReturn(
				func(_ context.Context, next domain.Post, _ int) (*domain.Post, error) {
					require.Equal(t, body, next.Content)
					require.Equal(t, slug, next.Slug)
					require.Equal(t, 15, next.WordCount)
					require.True(t, next.SEO.LastCheck.Equal(now))
					next.Version = 2

					return &next, nil
				})
			tx.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).DoAndReturn(
				func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
					job := publishArgs(t, args)
					require.Equal(t, blog.ActionUpsert, job.Action)
					require.Equal(t, 2, job.Version)

					return true, nil
				})
		})
		f.cache.EXPECT().Invalidate(gomock.Any(), oldSlug, slug).Return(nil)

		got, err := f.svc.Update(ctx, editor, p.ID, blog.Patch{Content: &body, Slug: &slug}, 1)
		require.NoError(t, err)
		require.Equal(t, 2, got.Version)
	})
}

func TestService_Transition(t *testing.T) {
	ctx := context.Background()

	t.Run("disallowed move", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowDraft)
		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
		})

		_, err := f.svc.Transition(ctx, admin, p.ID, domain.WorkflowPublished)
		require.ErrorIs(t, err, serrors.ErrBadRequest)
	})

	t.Run("authors cannot approve", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Transition(ctx, author, domain.PostID(uuid.New()), domain.WorkflowApproved)
		require.ErrorIs(t, err, serrors.ErrForbidden)
	})

	t.Run("unknown status", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Transition(ctx, admin, domain.PostID(uuid.New()), "Live")
		require.ErrorIs(t, err, serrors.ErrBadRequest)
	})

	t.Run("publishing sets date and enqueues upsert", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowApproved)
		p.PublishedAt = time.Time{}

		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
			tx.EXPECT().UpdatePost(gomock.Any(), gomock.Any(), 1).DoAndReturn(
				func(_ context.Context, next domain.Post, _ int) (*domain.Post, error) {
					require.Equal(t, domain.WorkflowPublished, next.WorkflowStatus)
					require.True(t, next.PublishedAt.Equal(now))
					next.Version = 2

					return &next, nil
				})
			tx.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).DoAndReturn(
				func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
					require.Equal(t, blog.ActionUpsert, publishArgs(t, args).Action)

					return true, nil
				})
		})
		f.cache.EXPECT().Invalidate(gomock.Any(), p.Slug).Return(nil)

		got, err := f.svc.Transition(ctx, editor, p.ID, domain.WorkflowPublished)
		require.NoError(t, err)
		require.Equal(t, domain.WorkflowPublished, got.WorkflowStatus)
	})

	t.Run("unpublishing enqueues delete", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowPublished)

		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
			tx.EXPECT().UpdatePost(gomock.Any(), gomock.Any(), 1).DoAndReturn(
				func(_ context.Context, next domain.Post, _ int) (*domain.Post, error) {
					next.Version = 2

					return &next, nil
				})
			tx.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).DoAndReturn(
				func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
					job := publishArgs(t, args)
					require.Equal(t, blog.ActionDelete, job.Action)
					require.Equal(t, p.CMSDocumentID(), job.DocumentID)

					return true, nil
				})
		})
		f.cache.EXPECT().Invalidate(gomock.Any(), p.Slug).Return(nil)

		_, err := f.svc.Transition(ctx, author, p.ID, domain.WorkflowArchived)
		require.NoError(t, err)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("admins only", func(t *testing.T) {
		f := newFixture(t)
		err := f.svc.Delete(ctx, editor, domain.PostID(uuid.New()))
		require.ErrorIs(t, err, serrors.ErrForbidden)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowPublished)

		gomock.InOrder(
			f.st.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(errors.New("connection reset")),
			f.st.EXPECT().WithTx(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, cb func(storage.AllStorage) error) error {
					tx := mockstorage.NewMockAllStorage(f.ctrl)
					tx.EXPECT().DeletePost(gomock.Any(), p.ID).Return(p, nil)
					tx.EXPECT().AddJob(gomock.Any(), gomock.Any(), gomock.Nil()).DoAndReturn(
						func(_ context.Context, args river.JobArgs, _ *river.InsertOpts) (bool, error) {
							require.Equal(t, blog.ActionDelete, publishArgs(t, args).Action)

							return true, nil
						})

					return cb(tx)
				}),
		)
		f.cache.EXPECT().Invalidate(gomock.Any(), p.Slug).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, admin, p.ID))
	})

	t.Run("gives up after the last attempt", func(t *testing.T) {
		f := newFixture(t)
		f.st.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(errors.New("connection reset")).Times(3)

		err := f.svc.Delete(ctx, admin, domain.PostID(uuid.New()))
		require.Error(t, err)
		require.Contains(t, err.Error(), "connection reset")
	})

	t.Run("not found is not retried", func(t *testing.T) {
		f := newFixture(t)
		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().DeletePost(gomock.Any(), gomock.Any()).Return(nil, nil) //nolint: nilnil
		})

		err := f.svc.Delete(ctx, admin, domain.PostID(uuid.New()))
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})

	t.Run("drafts need no cms delete", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowDraft)
		f.expectWithTx(func(tx *mockstorage.MockAllStorage) {
			tx.EXPECT().DeletePost(gomock.Any(), p.ID).Return(p, nil)
		})
		f.cache.EXPECT().Invalidate(gomock.Any(), p.Slug).Return(nil)

		require.NoError(t, f.svc.Delete(ctx, admin, p.ID))
	})
}

func TestService_Sync(t *testing.T) {
	ctx := context.Background()
	rl := cms.RateLimitStatus{Limit: 25, Remaining: 20, ResetAt: now.Add(time.Second)}

	t.Run("upsert published post", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowPublished)
		f.st.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)
		f.cms.EXPECT().UpsertPost(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, doc cms.Document) (cms.RateLimitStatus, error) {
				require.Equal(t, p.CMSDocumentID(), doc.ID)
				require.Equal(t, p.Slug, doc.Slug.Current)

				return rl, nil
			})

		got, err := f.svc.Sync(ctx, blog.PublishPostJob{PostID: p.ID, Action: blog.ActionUpsert})
		require.NoError(t, err)
		require.Equal(t, rl, got)
	})

	t.Run("missing post", func(t *testing.T) {
		f := newFixture(t)
		f.st.EXPECT().PostByID(gomock.Any(), gomock.Any()).Return(nil, nil) //nolint: nilnil

		_, err := f.svc.Sync(ctx, blog.PublishPostJob{Action: blog.ActionUpsert})
		require.ErrorIs(t, err, serrors.ErrNotFound)
	})

	t.Run("unpublished post is skipped", func(t *testing.T) {
		f := newFixture(t)
		p := storedPost(domain.WorkflowDraft)
		f.st.EXPECT().PostByID(gomock.Any(), p.ID).Return(p, nil)

		_, err := f.svc.Sync(ctx, blog.PublishPostJob{PostID: p.ID, Action: blog.ActionUpsert})
		require.NoError(t, err)
	})

	t.Run("delete tolerates missing documents", func(t *testing.T) {
		f := newFixture(t)
		f.cms.EXPECT().DeletePost(gomock.Any(), "post-x").Return(rl, serrors.With(serrors.ErrNotFound, "gone"))

		_, err := f.svc.Sync(ctx, blog.PublishPostJob{Action: blog.ActionDelete, DocumentID: "post-x"})
		require.NoError(t, err)
	})

	t.Run("rate limit is passed through", func(t *testing.T) {
		f := newFixture(t)
		f.cms.EXPECT().DeletePost(gomock.Any(), "post-x").Return(rl, serrors.With(serrors.ErrRateLimited, "slow"))

		got, err := f.svc.Sync(ctx, blog.PublishPostJob{Action: blog.ActionDelete, DocumentID: "post-x"})
		require.ErrorIs(t, err, serrors.ErrRateLimited)
		require.Equal(t, rl, got)
	})

	t.Run("unknown action", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Sync(ctx, blog.PublishPostJob{Action: "rename"})
		require.ErrorIs(t, err, serrors.ErrBadRequest)
	})
}
