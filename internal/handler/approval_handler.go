package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/wiki-drafts/internal/dto"
	"github.com/noah-isme/wiki-drafts/internal/models"
	"github.com/noah-isme/wiki-drafts/internal/service"
	appErrors "github.com/noah-isme/wiki-drafts/pkg/errors"
	"github.com/noah-isme/wiki-drafts/pkg/response"
)

type approvalQueue interface {
	ApprovalQueue(ctx context.Context, principal *models.Principal, limit, offset int) (*service.ApprovalSummary, error)
}

// ApprovalHandler serves the drafts-to-approve workbench.
type ApprovalHandler struct {
	drafts draftService
	queue  approvalQueue
	linker pageLinker
}

// NewApprovalHandler constructs the handler.
func NewApprovalHandler(drafts draftService, queue approvalQueue, linker pageLinker) *ApprovalHandler {
	return &ApprovalHandler{drafts: drafts, queue: queue, linker: linker}
}

// Workbench godoc
// @Summary Drafts waiting for approval
// @Description Lists proposed drafts of all users. With discard=<id> the caller's draft is discarded first,
// @Description and returnto=edit|view redirects to the page, keeping the section parameter.
// @Tags Approval
// @Produce json
// @Param discard query int false "Draft to discard"
// @Param returnto query string false "edit or view"
// @Param section query int false "Section to reopen"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Success 303
// @Failure 403 {object} response.Envelope
// @Router /drafts-to-approve [get]
func (h *ApprovalHandler) Workbench(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if raw := c.Query("discard"); raw != "" {
		if done := h.discard(c, principal, raw); done {
			return
		}
	}

	limit, ok := queryInt(c, "limit")
	if !ok || limit < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid limit"))
		return
	}
	offset, ok := queryInt(c, "offset")
	if !ok || offset < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid offset"))
		return
	}
	if limit == 0 || limit > 500 {
		limit = 50
	}

	summary, err := h.queue.ApprovalQueue(c.Request.Context(), principal, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	out := dto.ApprovalQueueResponse{
		Count:        summary.Count,
		LifeSpanDays: summary.LifeSpanDays,
		Drafts:       make([]dto.DraftResponse, 0, len(summary.Drafts)),
	}
	for _, d := range summary.Drafts {
		item := dto.NewDraftResponse(d)
		if h.linker != nil {
			item.EditURL = h.linker.EditURL(d.Page, d.Section)
			item.ViewURL = h.linker.ViewURL(d.Page, d.Section)
		}
		out.Drafts = append(out.Drafts, item)
	}
	response.JSON(c, http.StatusOK, out, &response.Pagination{Limit: limit, Offset: offset, TotalCount: summary.Count})
}

// discard handles the discard parameter and reports whether a response was written.
func (h *ApprovalHandler) discard(c *gin.Context, principal *models.Principal, raw string) bool {
	id, ok := parseDraftID(raw)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid draft id"))
		return true
	}
	ctx := c.Request.Context()
	draft, err := h.drafts.NewFromID(ctx, id, true)
	if err != nil {
		response.Error(c, err)
		return true
	}
	if !draft.Exists() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "draft not found"))
		return true
	}
	page := draft.Page

	outcome, err := h.drafts.Discard(ctx, principal, draft)
	if err != nil {
		response.Error(c, err)
		return true
	}
	if err := outcomeError(outcome); err != nil {
		response.Error(c, err)
		return true
	}

	var section *int
	if rawSection := c.Query("section"); rawSection != "" {
		if n, err := strconv.Atoi(rawSection); err == nil && n >= 0 {
			section = &n
		}
	}
	switch c.Query("returnto") {
	case "edit":
		if h.linker != nil {
			c.Redirect(http.StatusSeeOther, h.linker.EditURL(page, section))
			return true
		}
	case "view":
		if h.linker != nil {
			c.Redirect(http.StatusSeeOther, h.linker.ViewURL(page, section))
			return true
		}
	}
	return false
}
