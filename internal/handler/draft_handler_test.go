package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ot-practice-api/internal/editsession"
	"github.com/noah-isme/ot-practice-api/internal/models"
	appErrors "github.com/noah-isme/ot-practice-api/pkg/errors"
)

type fakeDraftSrv struct {
	calls    []string
	question string
	value    int
}

func (f *fakeDraftSrv) view(op, id string) (*models.DraftView, error) {
	f.calls = append(f.calls, op)
	state := editsession.Editing
	if op == "cancel" || op == "commit" || op == "get" {
		state = editsession.Viewing
	}
	return &models.DraftView{AssessmentID: id, State: string(state)}, nil
}

func (f *fakeDraftSrv) Get(_ context.Context, _, id string) (*models.DraftView, error) {
	return f.view("get", id)
}

func (f *fakeDraftSrv) Begin(_ context.Context, _, id string) (*models.DraftView, error) {
	if len(f.calls) > 0 && f.calls[len(f.calls)-1] == "begin" {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "a draft is already in progress")
	}
	return f.view("begin", id)
}

func (f *fakeDraftSrv) Set(_ context.Context, _, id, questionID string, req models.SetDraftResponseRequest) (*models.DraftView, error) {
	f.question = questionID
	f.value = req.Value
	return f.view("set", id)
}

func (f *fakeDraftSrv) Cancel(_ context.Context, _, id string) (*models.DraftView, error) {
	return f.view("cancel", id)
}

func (f *fakeDraftSrv) Commit(_ context.Context, _, id string) (*models.DraftView, error) {
	return f.view("commit", id)
}

func draftContext(method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	c, rec := newTestContext(method, target, body, "user-1")
	c.Params = gin.Params{{Key: "id", Value: "a1"}}
	return c, rec
}

func TestDraftHandlerLifecycle(t *testing.T) {
	srv := &fakeDraftSrv{}
	h := NewDraftHandler(srv)

	c, rec := draftContext(http.MethodPost, "/assessments/a1/draft", nil)
	h.Begin(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(editsession.Editing), decodeEnvelope(rec).Data["state"])

	c, rec = draftContext(http.MethodPost, "/assessments/a1/draft", nil)
	h.Begin(c)
	assert.Equal(t, appErrors.ErrInvalidState.Status, rec.Code)

	c, rec = draftContext(http.MethodPut, "/assessments/a1/draft/responses/vis1", models.SetDraftResponseRequest{Value: 3})
	c.Params = append(c.Params, gin.Param{Key: "questionId", Value: "vis1"})
	h.SetResponse(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "vis1", srv.question)
	assert.Equal(t, 3, srv.value)

	c, rec = draftContext(http.MethodPost, "/assessments/a1/draft/commit", nil)
	h.Commit(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(editsession.Viewing), decodeEnvelope(rec).Data["state"])

	c, rec = draftContext(http.MethodDelete, "/assessments/a1/draft", nil)
	h.Cancel(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = draftContext(http.MethodGet, "/assessments/a1/draft", nil)
	h.Get(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"begin", "set", "commit", "cancel", "get"}, srv.calls)
}

func TestDraftHandlerRequiresUser(t *testing.T) {
	h := NewDraftHandler(&fakeDraftSrv{})
	c, rec := newTestContext(http.MethodGet, "/assessments/a1/draft", nil, "")

	h.Get(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
