package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/wiki-drafts/internal/dto"
	"github.com/noah-isme/wiki-drafts/internal/models"
	appErrors "github.com/noah-isme/wiki-drafts/pkg/errors"
	"github.com/noah-isme/wiki-drafts/pkg/response"
)

type draftService interface {
	NewFromID(ctx context.Context, id int64, autoload bool) (*models.Draft, error)
	Save(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error)
	Discard(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error)
	Refuse(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error)
	Propose(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error)
}

type draftCollection interface {
	CountCached(ctx context.Context, filter models.DraftFilter) (int, error)
	List(ctx context.Context, filter models.DraftFilter) ([]*models.Draft, error)
}

type pageLinker interface {
	EditURL(page models.PageRef, section *int) string
	ViewURL(page models.PageRef, section *int) string
}

// DraftHandler exposes the editor draft endpoints.
type DraftHandler struct {
	drafts     draftService
	collection draftCollection
	linker     pageLinker
	validator  *validator.Validate
	now        func() time.Time
}

// NewDraftHandler constructs the handler.
func NewDraftHandler(drafts draftService, collection draftCollection, linker pageLinker, validate *validator.Validate) *DraftHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &DraftHandler{drafts: drafts, collection: collection, linker: linker, validator: validate, now: time.Now}
}

// Save godoc
// @Summary Save a draft
// @Description Inserts a new draft, or updates the caller's draft when id is set. Saving the same token twice keeps the first draft.
// @Tags Drafts
// @Accept json
// @Produce json
// @Param payload body dto.SaveDraftRequest true "Draft payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /drafts [post]
func (h *DraftHandler) Save(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.SaveDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid draft payload"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid draft payload"))
		return
	}

	ctx := c.Request.Context()
	draft, err := h.drafts.NewFromID(ctx, req.ID, req.ID > 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	if req.ID > 0 && !draft.Exists() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "draft not found"))
		return
	}
	req.Apply(draft, h.now())

	outcome, err := h.drafts.Save(ctx, principal, draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondOutcome(c, outcome, draft)
}

// List godoc
// @Summary List the caller's drafts
// @Tags Drafts
// @Produce json
// @Param status query string false "Draft status, normal for plain drafts"
// @Param namespace query int false "Page namespace"
// @Param title query string false "Page title"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} response.Envelope
// @Router /drafts [get]
func (h *DraftHandler) List(c *gin.Context) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	query, ok := parseDraftQuery(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid draft query"))
		return
	}
	filter := models.DraftFilter{
		UserID:    principal.UserID,
		Status:    query.Status,
		Namespace: query.Namespace,
		Title:     query.Title,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}

	ctx := c.Request.Context()
	total, err := h.collection.CountCached(ctx, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	drafts, err := h.collection.List(ctx, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	items := make([]dto.DraftResponse, 0, len(drafts))
	for _, d := range drafts {
		items = append(items, h.present(d))
	}
	response.JSON(c, http.StatusOK, items, &response.Pagination{Limit: query.Limit, Offset: query.Offset, TotalCount: total})
}

// Get godoc
// @Summary Get a draft
// @Tags Drafts
// @Produce json
// @Param id path int true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /drafts/{id} [get]
func (h *DraftHandler) Get(c *gin.Context) {
	id, ok := parseDraftID(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid draft id"))
		return
	}
	draft, err := h.drafts.NewFromID(c.Request.Context(), id, true)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !draft.Exists() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "draft not found"))
		return
	}
	response.JSON(c, http.StatusOK, h.present(draft), nil)
}

// Discard godoc
// @Summary Discard one of the caller's drafts
// @Tags Drafts
// @Param id path int true "Draft ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /drafts/{id} [delete]
func (h *DraftHandler) Discard(c *gin.Context) {
	h.transition(c, false, h.drafts.Discard)
}

// Propose godoc
// @Summary Submit one of the caller's drafts for approval
// @Tags Drafts
// @Produce json
// @Param id path int true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /drafts/{id}/propose [post]
func (h *DraftHandler) Propose(c *gin.Context) {
	h.transition(c, true, h.drafts.Propose)
}

// Refuse godoc
// @Summary Refuse a proposed draft
// @Description Requires the drafts-approve capability.
// @Tags Drafts
// @Produce json
// @Param id path int true "Draft ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /drafts/{id}/refuse [post]
func (h *DraftHandler) Refuse(c *gin.Context) {
	h.transition(c, true, h.drafts.Refuse)
}

type draftTransition func(ctx context.Context, principal *models.Principal, draft *models.Draft) (models.DraftOutcome, error)

func (h *DraftHandler) transition(c *gin.Context, autoload bool, apply draftTransition) {
	principal := principalFromContext(c)
	if principal == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	id, ok := parseDraftID(c.Param("id"))
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid draft id"))
		return
	}

	ctx := c.Request.Context()
	draft, err := h.drafts.NewFromID(ctx, id, autoload)
	if err != nil {
		response.Error(c, err)
		return
	}
	if autoload && !draft.Exists() {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "draft not found"))
		return
	}
	outcome, err := apply(ctx, principal, draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respondOutcome(c, outcome, draft)
}

func (h *DraftHandler) respondOutcome(c *gin.Context, outcome models.DraftOutcome, draft *models.Draft) {
	if err := outcomeError(outcome); err != nil {
		response.Error(c, err)
		return
	}
	if outcome == models.DraftDiscarded {
		response.NoContent(c)
		return
	}
	status := http.StatusOK
	if outcome == models.DraftInserted {
		status = http.StatusCreated
	}
	body := dto.DraftOutcomeResponse{Outcome: outcome}
	if draft.Exists() {
		presented := h.present(draft)
		body.Draft = &presented
	}
	response.JSON(c, status, body, nil)
}

func (h *DraftHandler) present(d *models.Draft) dto.DraftResponse {
	out := dto.NewDraftResponse(d)
	if h.linker != nil {
		out.EditURL = h.linker.EditURL(d.Page, d.Section)
		out.ViewURL = h.linker.ViewURL(d.Page, d.Section)
	}
	return out
}

// outcomeError maps refusals of a draft operation onto HTTP errors.
func outcomeError(outcome models.DraftOutcome) error {
	switch outcome {
	case models.DraftDenied:
		return appErrors.Clone(appErrors.ErrForbidden, "draft operation not permitted")
	case models.DraftNotFound:
		return appErrors.Clone(appErrors.ErrNotFound, "draft not found")
	}
	return nil
}

func parseDraftQuery(c *gin.Context) (dto.DraftQuery, bool) {
	var query dto.DraftQuery
	if raw, present := c.GetQuery("status"); present {
		raw = strings.ToLower(strings.TrimSpace(raw))
		if raw == "normal" {
			raw = ""
		}
		status := models.DraftStatus(raw)
		query.Status = &status
	}
	if raw := c.Query("namespace"); raw != "" {
		ns, ok := queryInt(c, "namespace")
		if !ok {
			return query, false
		}
		query.Namespace = &ns
	}
	query.Title = strings.TrimSpace(c.Query("title"))

	limit, ok := queryInt(c, "limit")
	if !ok || limit < 0 {
		return query, false
	}
	offset, ok := queryInt(c, "offset")
	if !ok || offset < 0 {
		return query, false
	}
	if limit == 0 || limit > 500 {
		limit = 50
	}
	query.Limit = limit
	query.Offset = offset
	return query, true
}
