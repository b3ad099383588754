package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/wiki-drafts/internal/models"
)

const draftColumns = `draft_id, draft_token, draft_user, draft_namespace, draft_title, draft_page, draft_section,
       draft_starttime, draft_edittime, draft_savetime, draft_scrolltop, draft_text, draft_summary, draft_minoredit, draft_status`

const uniqueViolation = "23505"

// ErrDuplicateDraft reports that a write would create a second row for the same dedup tuple.
var ErrDuplicateDraft = errors.New("draft already exists for user, page, token and status")

// QueryObserver receives query timings.
type QueryObserver interface {
	ObserveDBQuery(label string, duration time.Duration)
}

// DraftRepository persists drafts in the drafts table.
type DraftRepository struct {
	db       *sqlx.DB
	observer QueryObserver
}

// NewDraftRepository constructs the repository. observer may be nil.
func NewDraftRepository(db *sqlx.DB, observer QueryObserver) *DraftRepository {
	return &DraftRepository{db: db, observer: observer}
}

func (r *DraftRepository) observe(label string, start time.Time) {
	if r.observer != nil {
		r.observer.ObserveDBQuery(label, time.Since(start))
	}
}

// GetByID returns the row for id, or nil when no row exists. Ownership is not checked.
func (r *DraftRepository) GetByID(ctx context.Context, id int64) (*models.DraftRow, error) {
	defer r.observe("drafts.get", time.Now())
	query := "SELECT " + draftColumns + " FROM drafts WHERE draft_id = $1"
	var row models.DraftRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft %d: %w", id, err)
	}
	return &row, nil
}

// SaveResult reports what Save did and the id of the affected row.
type SaveResult struct {
	Outcome models.DraftOutcome
	ID      int64
}

// Save writes row in one transaction. Existing rows are updated only when row.UserID owns them.
// New rows are inserted unless a row with the same user, page, token and status already exists.
func (r *DraftRepository) Save(ctx context.Context, row models.DraftRow, exists bool) (result SaveResult, err error) {
	defer r.observe("drafts.save", time.Now())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return SaveResult{}, fmt.Errorf("begin draft transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if exists {
		result, err = r.update(ctx, tx, row)
	} else {
		result, err = r.insertUnique(ctx, tx, row)
	}
	if err != nil {
		if isUniqueViolation(err) {
			_ = tx.Rollback()
			return SaveResult{Outcome: models.DraftDeduped, ID: row.ID}, nil
		}
		return SaveResult{}, err
	}

	if err = tx.Commit(); err != nil {
		return SaveResult{}, fmt.Errorf("commit draft: %w", err)
	}
	return result, nil
}

func (r *DraftRepository) update(ctx context.Context, tx *sqlx.Tx, row models.DraftRow) (SaveResult, error) {
	const query = `UPDATE drafts SET draft_token = $1, draft_namespace = $2, draft_title = $3, draft_page = $4, draft_section = $5,
draft_starttime = $6, draft_edittime = $7, draft_savetime = $8, draft_scrolltop = $9, draft_text = $10, draft_summary = $11,
draft_minoredit = $12, draft_status = $13
WHERE draft_id = $14 AND draft_user = $15`
	res, err := tx.ExecContext(ctx, query,
		row.Token, row.Namespace, row.Title, row.PageID, row.Section,
		row.StartTime, row.EditTime, row.SaveTime, row.ScrollTop, row.Text, row.Summary,
		row.MinorEdit, row.Status,
		row.ID, row.UserID,
	)
	if err != nil {
		return SaveResult{}, fmt.Errorf("update draft %d: %w", row.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return SaveResult{}, fmt.Errorf("check draft update rows: %w", err)
	}
	if affected == 0 {
		return SaveResult{Outcome: models.DraftDenied, ID: row.ID}, nil
	}
	return SaveResult{Outcome: models.DraftUpdated, ID: row.ID}, nil
}

func (r *DraftRepository) insertUnique(ctx context.Context, tx *sqlx.Tx, row models.DraftRow) (SaveResult, error) {
	const existingQuery = `SELECT draft_id FROM drafts
WHERE draft_user = $1 AND draft_namespace = $2 AND draft_title = $3 AND draft_token = $4 AND draft_status = $5
LIMIT 1 FOR UPDATE`
	var existingID int64
	err := tx.GetContext(ctx, &existingID, existingQuery, row.UserID, row.Namespace, row.Title, row.Token, row.Status)
	switch {
	case err == nil:
		return SaveResult{Outcome: models.DraftDeduped}, nil
	case !errors.Is(err, sql.ErrNoRows):
		return SaveResult{}, fmt.Errorf("check existing draft: %w", err)
	}

	const insertQuery = `INSERT INTO drafts (draft_token, draft_user, draft_namespace, draft_title, draft_page, draft_section,
draft_starttime, draft_edittime, draft_savetime, draft_scrolltop, draft_text, draft_summary, draft_minoredit, draft_status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT ON CONSTRAINT drafts_dedup_key DO NOTHING
RETURNING draft_id`
	var id int64
	err = tx.QueryRowxContext(ctx, insertQuery,
		row.Token, row.UserID, row.Namespace, row.Title, row.PageID, row.Section,
		row.StartTime, row.EditTime, row.SaveTime, row.ScrollTop, row.Text, row.Summary, row.MinorEdit, row.Status,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// lost the race to a concurrent insert of the same tuple
			return SaveResult{Outcome: models.DraftDeduped}, nil
		}
		return SaveResult{}, fmt.Errorf("insert draft: %w", err)
	}
	return SaveResult{Outcome: models.DraftInserted, ID: id}, nil
}

// DeleteOwned removes draft id if owner owns it. It reports whether a row was removed.
func (r *DraftRepository) DeleteOwned(ctx context.Context, id, owner int64) (bool, error) {
	defer r.observe("drafts.delete", time.Now())
	res, err := r.db.ExecContext(ctx, "DELETE FROM drafts WHERE draft_id = $1 AND draft_user = $2", id, owner)
	if err != nil {
		return false, fmt.Errorf("delete draft %d: %w", id, err)
	}
	return rowsChanged(res)
}

// UpdateStatus sets the status of draft id regardless of owner.
func (r *DraftRepository) UpdateStatus(ctx context.Context, id int64, status models.DraftStatus) (bool, error) {
	defer r.observe("drafts.update_status", time.Now())
	res, err := r.db.ExecContext(ctx, "UPDATE drafts SET draft_status = $1 WHERE draft_id = $2", string(status), id)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicateDraft
		}
		return false, fmt.Errorf("update draft %d status: %w", id, err)
	}
	return rowsChanged(res)
}

// UpdateOwnedStatus sets the status of draft id if owner owns it.
func (r *DraftRepository) UpdateOwnedStatus(ctx context.Context, id, owner int64, status models.DraftStatus) (bool, error) {
	defer r.observe("drafts.update_status", time.Now())
	res, err := r.db.ExecContext(ctx, "UPDATE drafts SET draft_status = $1 WHERE draft_id = $2 AND draft_user = $3", string(status), id, owner)
	if err != nil {
		if isUniqueViolation(err) {
			return false, ErrDuplicateDraft
		}
		return false, fmt.Errorf("update draft %d status: %w", id, err)
	}
	return rowsChanged(res)
}

func buildDraftWhere(filter models.DraftFilter) (string, []interface{}) {
	conditions := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)
	if !filter.AllUsers {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("draft_user = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conditions = append(conditions, fmt.Sprintf("draft_status = $%d", len(args)))
	}
	if filter.Namespace != nil {
		args = append(args, *filter.Namespace)
		conditions = append(conditions, fmt.Sprintf("draft_namespace = $%d", len(args)))
	}
	if filter.Title != "" {
		args = append(args, filter.Title)
		conditions = append(conditions, fmt.Sprintf("draft_title = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// Count returns the number of drafts matching filter.
func (r *DraftRepository) Count(ctx context.Context, filter models.DraftFilter) (int, error) {
	defer r.observe("drafts.count", time.Now())
	where, args := buildDraftWhere(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM drafts"+where, args...); err != nil {
		return 0, fmt.Errorf("count drafts: %w", err)
	}
	return total, nil
}

// List returns drafts matching filter, most recently saved first.
func (r *DraftRepository) List(ctx context.Context, filter models.DraftFilter) ([]models.DraftRow, error) {
	defer r.observe("drafts.list", time.Now())
	where, args := buildDraftWhere(filter)

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf("SELECT %s FROM drafts%s ORDER BY draft_savetime DESC NULLS LAST, draft_id DESC LIMIT %d OFFSET %d",
		draftColumns, where, limit, offset)

	var rows []models.DraftRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	return rows, nil
}

// DeleteSavedBefore removes drafts last saved before cutoff, except those in keep.
func (r *DraftRepository) DeleteSavedBefore(ctx context.Context, cutoff time.Time, keep []models.DraftStatus) (int64, error) {
	defer r.observe("drafts.expire", time.Now())
	kept := make([]string, len(keep))
	for i, status := range keep {
		kept[i] = string(status)
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM drafts WHERE draft_savetime < $1 AND NOT (draft_status = ANY($2))",
		cutoff.UTC(), pq.Array(kept),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired drafts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check expired draft rows: %w", err)
	}
	return n, nil
}

func rowsChanged(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check affected rows: %w", err)
	}
	return n > 0, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
