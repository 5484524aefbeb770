package v1handler

import (
	"aviators/internal/leads"
	"aviators/pkg/domain"
	"aviators/pkg/serrors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CaptureLeadResponse is returned to the site after a form submission. The
// score stays internal.
type CaptureLeadResponse struct {
	ID domain.LeadID `json:"id"`
}

// CaptureLead stores a contact form submission.
func (h *Handler) CaptureLead(c *gin.Context) {
	var form leads.Form
	if !bindJSON(c, &form) {
		return
	}

	l, err := h.deps.Leads.Capture(c.Request.Context(), form)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusCreated, CaptureLeadResponse{ID: l.ID})
}

func leadID(c *gin.Context) (domain.LeadID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		Fail(c, serrors.Wrap(serrors.ErrBadRequest, err, "invalid lead id"))

		return domain.LeadID{}, false
	}

	return domain.LeadID(id), true
}

type leadsQuery struct {
	pageQuery

	Grade string `form:"grade"`
}

// ListLeads lists leads, newest first, optionally of one grade.
func (h *Handler) ListLeads(c *gin.Context) {
	var q leadsQuery
	if !bindQuery(c, &q) {
		return
	}

	items, next, err := h.deps.Leads.List(c.Request.Context(), domain.LeadGrade(q.Grade), q.Cursor, q.limit())
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, Page[domain.Lead]{Items: items, NextCursor: next})
}

// GetLead returns a lead with its score and route.
func (h *Handler) GetLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	l, err := h.deps.Leads.Get(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, l)
}

// RescoreLead scores and routes a lead right away.
func (h *Handler) RescoreLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	l, err := h.deps.Leads.Rescore(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)

		return
	}

	c.JSON(http.StatusOK, l)
}
