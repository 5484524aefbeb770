package v1handler

import (
	"aviators/internal/analytics"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// IngestRequest is a batch of tracker events.
type IngestRequest struct {
	Events []analytics.Input `json:"events"`
}

// IngestResponse reports how many events were accepted.
type IngestResponse struct {
	Accepted int `json:"accepted"`
}

// IngestEvents stores a batch of tracker events.
func (h *Handler) IngestEvents(c *gin.Context) {
	var req IngestRequest
	if !bindJSON(c, &req) {
		return
	}

	n, err := h.deps.Analytics.Ingest(c.Request.Context(), analytics.Client{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}, req.Events)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusAccepted, IngestResponse{Accepted: n})
}

type summaryQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To   time.Time `form:"to"   time_format:"2006-01-02T15:04:05Z07:00"`
}

// AnalyticsSummary aggregates events of a time range.
func (h *Handler) AnalyticsSummary(c *gin.Context) {
	var q summaryQuery
	if !bindQuery(c, &q) {
		return
	}

	sum, err := h.deps.Analytics.Summary(c.Request.Context(), q.From, q.To)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, sum)
}
