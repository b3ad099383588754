package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/wiki-drafts/internal/models"
	"github.com/noah-isme/wiki-drafts/internal/service"
	appErrors "github.com/noah-isme/wiki-drafts/pkg/errors"
)

type approvalQueueMock struct {
	summary   *service.ApprovalSummary
	err       error
	called    bool
	lastLimit int
}

func (m *approvalQueueMock) ApprovalQueue(_ context.Context, principal *models.Principal, limit, offset int) (*service.ApprovalSummary, error) {
	m.called = true
	m.lastLimit = limit
	if !principal.Can(models.CapabilityApproveDrafts) {
		return nil, appErrors.ErrForbidden
	}
	return m.summary, m.err
}

func reviewerClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: 3, Role: models.RoleReviewer}
}

func TestApprovalHandlerLists(t *testing.T) {
	row := storedRow(8, 1)
	row.Status = "proposed"
	queue := &approvalQueueMock{summary: &service.ApprovalSummary{Count: 1, LifeSpanDays: 30, Drafts: []*models.Draft{models.NewDraftFromRow(row)}}}
	handler := NewApprovalHandler(&draftServiceMock{}, queue, linkerStub{})

	c, w := newDraftTestContext(http.MethodGet, "/drafts-to-approve", nil, reviewerClaims())
	handler.Workbench(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, queue.lastLimit)
	body := w.Body.String()
	assert.Contains(t, body, `"count":1`)
	assert.Contains(t, body, `"lifespanDays":30`)
	assert.Contains(t, body, `"viewUrl":"https://wiki.test/view/Main_Page"`)
}

func TestApprovalHandlerForbidden(t *testing.T) {
	queue := &approvalQueueMock{}
	handler := NewApprovalHandler(&draftServiceMock{}, queue, nil)

	c, w := newDraftTestContext(http.MethodGet, "/drafts-to-approve", nil, ownerClaims())
	handler.Workbench(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestApprovalHandlerDiscardAndRedirect(t *testing.T) {
	svc := &draftServiceMock{stored: map[int64]models.DraftRow{8: storedRow(8, 3)}, outcome: models.DraftDiscarded}
	queue := &approvalQueueMock{}
	handler := NewApprovalHandler(svc, queue, linkerStub{})

	c, w := newDraftTestContext(http.MethodGet, "/drafts-to-approve?discard=8&returnto=edit&section=2", nil, reviewerClaims())
	handler.Workbench(c)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "https://wiki.test/edit/Main_Page?section=2", w.Header().Get("Location"))
	assert.Equal(t, "discard", svc.lastOp)
	assert.False(t, queue.called)
}

func TestApprovalHandlerRedirectSection(t *testing.T) {
	cases := map[string]string{
		"returnto=view&section=0":  "https://wiki.test/view/Main_Page?section=0",
		"returnto=view":            "https://wiki.test/view/Main_Page",
		"returnto=view&section=-3": "https://wiki.test/view/Main_Page",
		"returnto=edit&section=x":  "https://wiki.test/edit/Main_Page",
	}
	for query, want := range cases {
		t.Run(query, func(t *testing.T) {
			svc := &draftServiceMock{stored: map[int64]models.DraftRow{8: storedRow(8, 3)}, outcome: models.DraftDiscarded}
			handler := NewApprovalHandler(svc, &approvalQueueMock{}, linkerStub{})

			c, w := newDraftTestContext(http.MethodGet, "/drafts-to-approve?discard=8&"+query, nil, reviewerClaims())
			handler.Workbench(c)

			require.Equal(t, http.StatusSeeOther, w.Code)
			assert.Equal(t, want, w.Header().Get("Location"))
		})
	}
}

func TestApprovalHandlerDiscardThenList(t *testing.T) {
	svc := &draftServiceMock{stored: map[int64]models.DraftRow{8: storedRow(8, 3)}, outcome: models.DraftDiscarded}
	queue := &approvalQueueMock{summary: &service.ApprovalSummary{Drafts: []*models.Draft{}}}
	handler := NewApprovalHandler(svc, queue, linkerStub{})

	c, w := newDraftTestContext(http.MethodGet, "/drafts-to-approve?discard=8", nil, reviewerClaims())
	handler.Workbench(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, queue.called)
	assert.Contains(t, w.Body.String(), `"drafts":[]`)
}

func TestApprovalHandlerDiscardForeignDraft(t *testing.T) {
	svc := &draftServiceMock{stored: map[int64]models.DraftRow{8: storedRow(8, 1)}, outcome: models.DraftNotFound}
	handler := NewApprovalHandler(svc, &approvalQueueMock{}, linkerStub{})

	c, w := newDraftTestContext(http.MethodGet, "/drafts-to-approve?discard=8&returnto=view", nil, reviewerClaims())
	handler.Workbench(c)
	require.Equal(t, http.StatusNotFound, w.Code)

	c, w = newDraftTestContext(http.MethodGet, "/drafts-to-approve?discard=abc", nil, reviewerClaims())
	handler.Workbench(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
