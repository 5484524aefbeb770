// Package v1handler implements the version 1 REST API on gin: the public
// blog, event and lead endpoints and the authenticated admin endpoints.
package v1handler

import (
	"aviators/internal/analytics"
	"aviators/internal/blog"
	"aviators/internal/config"
	"aviators/internal/leads"
	"aviators/pkg/cache"
	"time"

	"github.com/gin-gonic/gin"
)

// DefaultLimit is the page size used when a listing does not ask for one.
const DefaultLimit = 20

// Deps are the services behind the API.
type Deps struct {
	Blog      blog.Service
	Leads     leads.Service
	Analytics analytics.Service
	Cache     cache.PostCache
}

// Options configure the handlers.
type Options struct {
	// ConflictWindow is the default overlap window of conflict detection.
	ConflictWindow time.Duration
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{ConflictWindow: cfg.Blog.ConflictWindow}
}

type Handler struct {
	deps    Deps
	options Options
}

func New(deps Deps, options Options) *Handler {
	return &Handler{deps: deps, options: options}
}

// Register mounts the v1 routes on r. Admin routes are guarded by sec and the
// public write endpoints by limit.
func (h *Handler) Register(r gin.IRouter, sec *SecHandler, limit gin.HandlerFunc) {
	r.GET("/posts", h.ListPublishedPosts)
	r.GET("/posts/:slug", h.GetPublishedPost)
	r.POST("/events", limit, h.IngestEvents)
	r.POST("/leads", limit, h.CaptureLead)

	admin := r.Group("/admin", sec.Authenticate())
	admin.GET("/posts", h.ListPosts)
	admin.POST("/posts", h.CreatePost)
	admin.POST("/posts/preview", h.PreviewPost)
	admin.GET("/posts/:id", h.GetPost)
	admin.PATCH("/posts/:id", h.UpdatePost)
	admin.PUT("/posts/:id/status", h.TransitionPost)
	admin.DELETE("/posts/:id", h.DeletePost)
	admin.POST("/conflicts/resolve", h.ResolveConflicts)
	admin.GET("/leads", h.ListLeads)
	admin.GET("/leads/:id", h.GetLead)
	admin.POST("/leads/:id/rescore", h.RescoreLead)
	admin.GET("/analytics/summary", h.AnalyticsSummary)
	admin.POST("/cache/purge", h.PurgeCache)
}

// Page is a page of a listing.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

type pageQuery struct {
	Cursor string `form:"cursor"`
	Limit  uint   `form:"limit"`
}

func (q pageQuery) limit() uint {
	if q.Limit == 0 {
		return DefaultLimit
	}

	return q.Limit
}
