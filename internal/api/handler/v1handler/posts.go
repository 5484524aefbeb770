package v1handler

import (
	"aviators/internal/blog"
	"aviators/pkg/content"
	"aviators/pkg/domain"
	"aviators/pkg/serrors"
	"aviators/pkg/storage"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type postsQuery struct {
	pageQuery

	Status   string `form:"status"`
	Category string `form:"category"`
	Tag      string `form:"tag"`
}

func (h *Handler) listPosts(c *gin.Context, filter storage.PostFilter, q postsQuery) {
	posts, next, err := h.deps.Blog.List(c.Request.Context(), filter, q.Cursor, q.limit())
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, Page[domain.Post]{Items: posts, NextCursor: next})
}

// ListPublishedPosts lists published posts, newest first.
func (h *Handler) ListPublishedPosts(c *gin.Context) {
	var q postsQuery
	if !bindQuery(c, &q) {
		return
	}

	h.listPosts(c, storage.PostFilter{
		Status:   domain.WorkflowPublished,
		Category: q.Category,
		Tag:      q.Tag,
	}, q)
}

// GetPublishedPost returns a published post by slug.
func (h *Handler) GetPublishedPost(c *gin.Context) {
	p, err := h.deps.Blog.GetPublished(c.Request.Context(), c.Param("slug"))
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, p)
}

// ListPosts lists posts in any workflow status.
func (h *Handler) ListPosts(c *gin.Context) {
	var q postsQuery
	if !bindQuery(c, &q) {
		return
	}

	h.listPosts(c, storage.PostFilter{
		Status:   domain.WorkflowStatus(q.Status),
		Category: q.Category,
		Tag:      q.Tag,
	}, q)
}

func postID(c *gin.Context) (domain.PostID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Fail(c, serrors.Wrap(serrors.ErrBadRequest, err, "invalid post id"))

		return domain.PostID{}, false
	}

	return domain.PostID(id), true
}

// CreatePost auto-populates and stores a draft.
func (h *Handler) CreatePost(c *gin.Context) {
	var d content.Draft
	if !bindJSON(c, &d) {
		return
	}

	p, err := h.deps.Blog.Create(c.Request.Context(), principal(c), d)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusCreated, p)
}

// PreviewPost returns what a draft would become without storing it.
func (h *Handler) PreviewPost(c *gin.Context) {
	var d content.Draft
	if !bindJSON(c, &d) {
		return
	}

	p, err := h.deps.Blog.Preview(c.Request.Context(), d)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, p)
}

// GetPost returns a post by id in any status.
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	p, err := h.deps.Blog.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, p)
}

// UpdatePostRequest is a patch of a post made against Version.
type UpdatePostRequest struct {
	blog.Patch

	Version int `json:"version" binding:"required,min=1"`
}

// UpdatePost applies a partial update.
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var req UpdatePostRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.deps.Blog.Update(c.Request.Context(), principal(c), id, req.Patch, req.Version)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, p)
}

// TransitionRequest moves a post to another workflow status.
type TransitionRequest struct {
	Status domain.WorkflowStatus `json:"status" binding:"required"`
}

// TransitionPost moves a post through the editorial workflow.
func (h *Handler) TransitionPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var req TransitionRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.deps.Blog.Transition(c.Request.Context(), principal(c), id, req.Status)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, p)
}

// DeletePost deletes a post.
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	if err := h.deps.Blog.Delete(c.Request.Context(), principal(c), id); err != nil {
		Fail(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}
