package models

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewDraftIsNotStored(t *testing.T) {
	d := NewDraft(12)
	assert.Equal(t, int64(12), d.ID)
	assert.False(t, d.Exists())

	var missing *Draft
	assert.False(t, missing.Exists())
}

func TestDraftRowNormalisesValues(t *testing.T) {
	local := time.FixedZone("UTC+7", 7*3600)
	start := time.Date(2024, 5, 1, 17, 30, 15, 999, local)
	d := &Draft{
		Token:     "t1",
		UserID:    99,
		Page:      PageRef{Namespace: 0, Title: "Foo", PageID: 4},
		StartTime: start,
		MinorEdit: true,
		Text:      "hello",
	}

	row := d.Row(7)
	assert.Equal(t, int64(7), row.UserID)
	assert.False(t, row.Section.Valid)
	assert.Equal(t, int16(1), row.MinorEdit)
	require.True(t, row.StartTime.Valid)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 30, 15, 0, time.UTC), row.StartTime.Time)
	assert.False(t, row.EditTime.Valid)

	d.Section = intPtr(-1)
	assert.False(t, d.Row(7).Section.Valid)

	d.Section = intPtr(0)
	assert.Equal(t, sql.NullInt32{Int32: 0, Valid: true}, d.Row(7).Section)
}

func TestNewDraftFromRowRoundTrip(t *testing.T) {
	saved := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	original := &Draft{
		ID:        5,
		Token:     "t1",
		Page:      PageRef{Namespace: 2, Title: "User:A/Sandbox", PageID: 0},
		Section:   intPtr(3),
		SaveTime:  saved,
		ScrollTop: 120,
		Text:      "hello world",
		Summary:   "typo",
		Status:    DraftStatus("custom"),
	}

	loaded := NewDraftFromRow(original.Row(1))
	assert.True(t, loaded.Exists())
	assert.Equal(t, int64(1), loaded.UserID)
	assert.Equal(t, original.Page, loaded.Page)
	require.NotNil(t, loaded.Section)
	assert.Equal(t, 3, *loaded.Section)
	assert.Equal(t, saved, loaded.SaveTime)
	assert.True(t, loaded.StartTime.IsZero())
	assert.Equal(t, original.Text, loaded.Text)
	assert.Equal(t, original.Summary, loaded.Summary)
	assert.Equal(t, 120, loaded.ScrollTop)
	assert.False(t, loaded.MinorEdit)
	assert.Equal(t, DraftStatus("custom"), loaded.Status)
}

func TestMarkStoredAndDiscarded(t *testing.T) {
	d := NewDraft(0)
	d.MarkStored(42)
	assert.Equal(t, int64(42), d.ID)
	assert.True(t, d.Exists())
	d.MarkDiscarded()
	assert.False(t, d.Exists())
	assert.Equal(t, int64(42), d.ID)
}

func TestDraftOutcomeMutated(t *testing.T) {
	assert.True(t, DraftInserted.Mutated())
	assert.True(t, DraftRefused.Mutated())
	assert.False(t, DraftDeduped.Mutated())
	assert.False(t, DraftDenied.Mutated())
	assert.False(t, DraftNotFound.Mutated())
}
