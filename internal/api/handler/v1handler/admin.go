package v1handler

import (
	"aviators/internal/conflict"
	"aviators/pkg/domain"
	"aviators/pkg/serrors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ResolveConflictsRequest carries concurrent edits to check and the strategy
// to settle their conflicts with.
type ResolveConflictsRequest struct {
	Strategy string          `json:"strategy" binding:"required"`
	Window   string          `json:"window"`
	Edits    []conflict.Edit `json:"edits"`
}

// ResolveConflictsResponse lists one resolution per detected conflict.
type ResolveConflictsResponse struct {
	Conflicts   []conflict.Conflict   `json:"conflicts"`
	Resolutions []conflict.Resolution `json:"resolutions"`
}

// ResolveConflicts detects overlapping edits and resolves each conflict.
func (h *Handler) ResolveConflicts(c *gin.Context) {
	var req ResolveConflictsRequest
	if !bindJSON(c, &req) {
		return
	}

	strategy, err := conflict.ParseStrategy(req.Strategy)
	if err != nil {
		Fail(c, err)

		return
	}
	window := h.options.ConflictWindow
	if req.Window != "" {
		if window, err = time.ParseDuration(req.Window); err != nil || window <= 0 {
			Fail(c, serrors.With(serrors.ErrBadRequest, "invalid window %q", req.Window))

			return
		}
	}

	resp := ResolveConflictsResponse{
		Conflicts:   conflict.Detect(req.Edits, window),
		Resolutions: []conflict.Resolution{},
	}
	if resp.Conflicts == nil {
		resp.Conflicts = []conflict.Conflict{}
	}
	for _, cf := range resp.Conflicts {
		res, err := conflict.Resolve(cf, strategy)
		if err != nil {
			Fail(c, err)

			return
		}
		resp.Resolutions = append(resp.Resolutions, res)
	}

	c.JSON(http.StatusOK, resp)
}

// PurgeCacheResponse reports how many cached posts were dropped.
type PurgeCacheResponse struct {
	Purged int64 `json:"purged"`
}

// PurgeCache drops every cached post. Admins only.
func (h *Handler) PurgeCache(c *gin.Context) {
	if principal(c).Role != domain.RoleAdmin {
		Fail(c, serrors.With(serrors.ErrForbidden, "only admins may purge the cache"))

		return
	}

	n, err := h.deps.Cache.Purge(c.Request.Context())
	if err != nil {
		Fail(c, serrors.Wrap(serrors.ErrUnavailable, err, "could not purge cache"))

		return
	}

	c.JSON(http.StatusOK, PurgeCacheResponse{Purged: n})
}
