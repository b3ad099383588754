package models

import (
	"database/sql"
	"time"
)

// DraftStatus is the approval state of a draft. The set is open: unknown values are kept verbatim.
type DraftStatus string

const (
	DraftStatusNormal   DraftStatus = ""
	DraftStatusProposed DraftStatus = "proposed"
	DraftStatusApproved DraftStatus = "approved"
	DraftStatusRefused  DraftStatus = "refused"
)

// PageRef identifies the page a draft edits. PageID is 0 for pages that do not exist yet.
type PageRef struct {
	Namespace int    `json:"namespace"`
	Title     string `json:"title"`
	PageID    int64  `json:"page_id"`
}

// Draft is a single saved, unpublished edit. Fields are set freely; checks happen on save.
type Draft struct {
	ID        int64
	Token     string
	UserID    int64
	Page      PageRef
	Section   *int
	StartTime time.Time
	EditTime  time.Time
	SaveTime  time.Time
	ScrollTop int
	Text      string
	Summary   string
	MinorEdit bool
	Status    DraftStatus

	exists bool
}

// NewDraft allocates an unloaded draft for id. Use 0 for a draft that was never stored.
func NewDraft(id int64) *Draft {
	return &Draft{ID: id}
}

// NewDraftFromRow builds an already loaded draft from a storage row.
func NewDraftFromRow(row DraftRow) *Draft {
	d := NewDraft(row.ID)
	d.Hydrate(row)
	return d
}

// Exists reports whether the draft corresponds to a stored row.
func (d *Draft) Exists() bool {
	return d != nil && d.exists
}

// Hydrate copies every column of row into d and marks it as stored.
func (d *Draft) Hydrate(row DraftRow) {
	d.ID = row.ID
	d.Token = row.Token
	d.UserID = row.UserID
	d.Page = PageRef{Namespace: row.Namespace, Title: row.Title, PageID: row.PageID}
	d.Section = nil
	if row.Section.Valid {
		section := int(row.Section.Int32)
		d.Section = &section
	}
	d.StartTime = fromNullTime(row.StartTime)
	d.EditTime = fromNullTime(row.EditTime)
	d.SaveTime = fromNullTime(row.SaveTime)
	d.ScrollTop = row.ScrollTop
	d.Text = row.Text
	d.Summary = row.Summary
	d.MinorEdit = row.MinorEdit != 0
	d.Status = DraftStatus(row.Status)
	d.exists = true
}

// MarkStored records that d now has the storage id.
func (d *Draft) MarkStored(id int64) {
	d.ID = id
	d.exists = true
}

// MarkDiscarded flags d as no longer stored.
func (d *Draft) MarkDiscarded() {
	d.exists = false
}

// Row normalises d into its storage representation, owned by owner.
func (d *Draft) Row(owner int64) DraftRow {
	row := DraftRow{
		ID:        d.ID,
		Token:     d.Token,
		UserID:    owner,
		Namespace: d.Page.Namespace,
		Title:     d.Page.Title,
		PageID:    d.Page.PageID,
		StartTime: toNullTime(d.StartTime),
		EditTime:  toNullTime(d.EditTime),
		SaveTime:  toNullTime(d.SaveTime),
		ScrollTop: d.ScrollTop,
		Text:      d.Text,
		Summary:   d.Summary,
		Status:    string(d.Status),
	}
	if d.Section != nil && *d.Section >= 0 {
		row.Section = sql.NullInt32{Int32: int32(*d.Section), Valid: true}
	}
	if d.MinorEdit {
		row.MinorEdit = 1
	}
	return row
}

// DraftRow mirrors one row of the drafts table.
type DraftRow struct {
	ID        int64         `db:"draft_id"`
	Token     string        `db:"draft_token"`
	UserID    int64         `db:"draft_user"`
	Namespace int           `db:"draft_namespace"`
	Title     string        `db:"draft_title"`
	PageID    int64         `db:"draft_page"`
	Section   sql.NullInt32 `db:"draft_section"`
	StartTime sql.NullTime  `db:"draft_starttime"`
	EditTime  sql.NullTime  `db:"draft_edittime"`
	SaveTime  sql.NullTime  `db:"draft_savetime"`
	ScrollTop int           `db:"draft_scrolltop"`
	Text      string        `db:"draft_text"`
	Summary   string        `db:"draft_summary"`
	MinorEdit int16         `db:"draft_minoredit"`
	Status    string        `db:"draft_status"`
}

// NormalizeTimestamp converts t to the stored precision: UTC, whole seconds.
func NormalizeTimestamp(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.UTC().Truncate(time.Second)
}

func toNullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: NormalizeTimestamp(t), Valid: true}
}

func fromNullTime(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return NormalizeTimestamp(t.Time)
}

// DraftOutcome tells the caller what a draft operation actually did.
type DraftOutcome string

const (
	DraftInserted  DraftOutcome = "inserted"
	DraftUpdated   DraftOutcome = "updated"
	DraftDeduped   DraftOutcome = "deduped"
	DraftDiscarded DraftOutcome = "discarded"
	DraftRefused   DraftOutcome = "refused"
	DraftProposed  DraftOutcome = "proposed"
	DraftDenied    DraftOutcome = "denied"
	DraftNotFound  DraftOutcome = "not_found"
)

// Mutated reports whether the outcome changed stored rows.
func (o DraftOutcome) Mutated() bool {
	switch o {
	case DraftInserted, DraftUpdated, DraftDiscarded, DraftRefused, DraftProposed:
		return true
	}
	return false
}

// DraftFilter selects drafts for counting and listing.
type DraftFilter struct {
	UserID    int64
	AllUsers  bool
	Status    *DraftStatus
	Namespace *int
	Title     string
	Limit     int
	Offset    int
}
