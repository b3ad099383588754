package dto

import (
	"time"

	"github.com/noah-isme/wiki-drafts/internal/models"
)

// SaveDraftRequest is the editor payload for saving a draft. ID 0 saves a new draft.
type SaveDraftRequest struct {
	ID        int64      `json:"id" validate:"gte=0"`
	Token     string     `json:"token" validate:"required,max=255"`
	Namespace int        `json:"namespace"`
	Title     string     `json:"title" validate:"required,max=255"`
	PageID    int64      `json:"pageId" validate:"gte=0"`
	Section   *int       `json:"section" validate:"omitempty,gte=0"`
	StartTime *time.Time `json:"startTime"`
	EditTime  *time.Time `json:"editTime"`
	ScrollTop int        `json:"scrollTop" validate:"gte=0"`
	Text      string     `json:"text"`
	Summary   string     `json:"summary" validate:"max=767"`
	MinorEdit bool       `json:"minorEdit"`
}

// SectionNumber returns a copy of the requested section, or nil for the whole page.
func (r SaveDraftRequest) SectionNumber() *int {
	if r.Section == nil {
		return nil
	}
	n := *r.Section
	return &n
}

// Apply copies the editable fields onto draft. Owner and status are never taken from the payload.
func (r SaveDraftRequest) Apply(draft *models.Draft, savedAt time.Time) {
	draft.Token = r.Token
	draft.Page = models.PageRef{Namespace: r.Namespace, Title: r.Title, PageID: r.PageID}
	draft.Section = r.SectionNumber()
	if r.StartTime != nil {
		draft.StartTime = *r.StartTime
	}
	if r.EditTime != nil {
		draft.EditTime = *r.EditTime
	}
	draft.SaveTime = savedAt
	draft.ScrollTop = r.ScrollTop
	draft.Text = r.Text
	draft.Summary = r.Summary
	draft.MinorEdit = r.MinorEdit
}

// DraftQuery mirrors the supported listing filters.
type DraftQuery struct {
	Status    *models.DraftStatus
	Namespace *int
	Title     string
	Limit     int
	Offset    int
}

// DraftResponse is the public view of a draft.
type DraftResponse struct {
	ID        int64      `json:"id"`
	Token     string     `json:"token"`
	UserID    int64      `json:"userId"`
	Namespace int        `json:"namespace"`
	Title     string     `json:"title"`
	PageID    int64      `json:"pageId"`
	Section   *int       `json:"section"`
	StartTime *time.Time `json:"startTime,omitempty"`
	EditTime  *time.Time `json:"editTime,omitempty"`
	SaveTime  *time.Time `json:"saveTime,omitempty"`
	ScrollTop int        `json:"scrollTop"`
	Text      string     `json:"text"`
	Summary   string     `json:"summary"`
	MinorEdit bool       `json:"minorEdit"`
	Status    string     `json:"status"`
	Exists    bool       `json:"exists"`
	EditURL   string     `json:"editUrl,omitempty"`
	ViewURL   string     `json:"viewUrl,omitempty"`
}

// NewDraftResponse converts a draft.
func NewDraftResponse(d *models.Draft) DraftResponse {
	return DraftResponse{
		ID:        d.ID,
		Token:     d.Token,
		UserID:    d.UserID,
		Namespace: d.Page.Namespace,
		Title:     d.Page.Title,
		PageID:    d.Page.PageID,
		Section:   d.Section,
		StartTime: optionalTime(d.StartTime),
		EditTime:  optionalTime(d.EditTime),
		SaveTime:  optionalTime(d.SaveTime),
		ScrollTop: d.ScrollTop,
		Text:      d.Text,
		Summary:   d.Summary,
		MinorEdit: d.MinorEdit,
		Status:    string(d.Status),
		Exists:    d.Exists(),
	}
}

// DraftOutcomeResponse reports what a draft operation did.
type DraftOutcomeResponse struct {
	Outcome models.DraftOutcome `json:"outcome"`
	Draft   *DraftResponse      `json:"draft,omitempty"`
}

// ApprovalQueueResponse is the drafts-to-approve workbench payload.
type ApprovalQueueResponse struct {
	Count        int             `json:"count"`
	LifeSpanDays int             `json:"lifespanDays"`
	Drafts       []DraftResponse `json:"drafts"`
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
