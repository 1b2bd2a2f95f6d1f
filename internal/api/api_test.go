package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakjin112/personal-ai-assistant/server/internal/dates"
	"github.com/sakjin112/personal-ai-assistant/server/internal/dispatcher"
	"github.com/sakjin112/personal-ai-assistant/server/internal/model"
	"github.com/sakjin112/personal-ai-assistant/server/internal/planner"
	"github.com/sakjin112/personal-ai-assistant/server/internal/store/sqlite"
)

// stubPlanner returns a fixed plan for every message.
type stubPlanner struct {
	plan *planner.Plan
	err  error
}

func (s *stubPlanner) Plan(context.Context, string, *planner.Snapshot) (*planner.Plan, error) {
	return s.plan, s.err
}

func newTestServer(t *testing.T, pl ChatPlanner) *httptest.Server {
	t.Helper()
	db, err := sqlite.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st, err := sqlite.NewWithDB(db)
	require.NoError(t, err)

	disp := dispatcher.New(st, nil, dates.NewParser(), zerolog.Nop())
	srv := httptest.NewServer(NewRouter(st, pl, disp, zerolog.Nop()))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestChat_ExecutesPlanAndAppendsQuerySummaries(t *testing.T) {
	pl := &stubPlanner{plan: &planner.Plan{
		Response: "On it!",
		Actions: []model.Action{{
			Type: "smart_add",
			Data: model.ActionData{Target: "Groceries", Operation: "add_to_list", Values: []string{"milk", "bread"}},
		}},
		Queries: []model.Action{{Type: "list_items"}},
	}}
	srv := newTestServer(t, pl)

	resp := postJSON(t, srv.URL+"/api/chat", map[string]string{"userId": "u-1", "message": "add milk and bread"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Response      string               `json:"response"`
		ActionResults []*dispatcher.Result `json:"actionResults"`
		Metadata      map[string]any       `json:"metadata"`
	}
	decode(t, resp, &out)

	require.Len(t, out.ActionResults, 2)
	assert.True(t, out.ActionResults[0].Success)
	assert.Equal(t, "items_added", out.ActionResults[0].Type)
	assert.Equal(t, "list_count", out.ActionResults[1].Type)
	assert.Contains(t, out.Response, "On it!")
	assert.Contains(t, out.Response, "You have 2 total items across 1 lists.")
	assert.Equal(t, float64(2), out.Metadata["actionsProcessed"])

	// The add really persisted.
	listResp, err := http.Get(srv.URL + "/api/users/u-1/lists")
	require.NoError(t, err)
	var listOut struct {
		Collections []*model.Collection `json:"collections"`
		Count       int                 `json:"count"`
	}
	decode(t, listResp, &listOut)
	require.Equal(t, 1, listOut.Count)
	assert.Equal(t, "Groceries", listOut.Collections[0].Name)
	assert.Len(t, listOut.Collections[0].Items, 2)
}

func TestChat_PlannerFailureStillAnswers(t *testing.T) {
	srv := newTestServer(t, &stubPlanner{err: assert.AnError})

	resp := postJSON(t, srv.URL+"/api/chat", map[string]string{"userId": "u-1", "message": "hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Response string         `json:"response"`
		Metadata map[string]any `json:"metadata"`
	}
	decode(t, resp, &out)
	assert.Contains(t, out.Response, "Sorry")
	assert.Equal(t, true, out.Metadata["plannerError"])
}

func TestChat_RequiresMessage(t *testing.T) {
	srv := newTestServer(t, &stubPlanner{plan: &planner.Plan{}})
	resp := postJSON(t, srv.URL+"/api/chat", map[string]string{"userId": "u-1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestUsers_UpsertAndGet(t *testing.T) {
	srv := newTestServer(t, &stubPlanner{plan: &planner.Plan{}})

	resp := postJSON(t, srv.URL+"/api/users/u-9", map[string]string{"displayName": "Sam"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var u model.User
	decode(t, resp, &u)
	assert.Equal(t, "u-9", u.UserID)
	assert.Equal(t, "Sam", u.DisplayName)

	getResp, err := http.Get(srv.URL + "/api/users/u-9")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)
	_ = getResp.Body.Close()

	missing, err := http.Get(srv.URL + "/api/users/nobody")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	_ = missing.Body.Close()
}

func TestCollections_DeleteCascades(t *testing.T) {
	pl := &stubPlanner{plan: &planner.Plan{
		Response: "done",
		Actions: []model.Action{{
			Type: "smart_add",
			Data: model.ActionData{Target: "Camping", Operation: "add_to_list", Values: []string{"tent"}},
		}},
	}}
	srv := newTestServer(t, pl)

	resp := postJSON(t, srv.URL+"/api/chat", map[string]string{"userId": "u-1", "message": "add tent to camping"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	_ = resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/users/u-1/lists/Camping", nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, delResp.StatusCode)
	_ = delResp.Body.Close()

	// Second delete: gone.
	delResp2, err := http.DefaultClient.Do(req.Clone(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, delResp2.StatusCode)
	_ = delResp2.Body.Close()
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubPlanner{plan: &planner.Plan{}})
	resp, err := http.Get(srv.URL + "/api/health")
	require.NoError(t, err)
	var out map[string]any
	decode(t, resp, &out)
	assert.Equal(t, "healthy", out["status"])
}
