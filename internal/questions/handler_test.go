package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/askstage/backend/internal/models"
	"github.com/askstage/backend/internal/realtime"
)

type emitted struct {
	Group   string
	Event   string
	Payload interface{}
}

// fakeBroadcaster records emitted events for assertions.
type fakeBroadcaster struct {
	mu     sync.Mutex
	events []emitted
}

func (f *fakeBroadcaster) Emit(group, event string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{Group: group, Event: event, Payload: payload})
}

func (f *fakeBroadcaster) all() []emitted {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]emitted(nil), f.events...)
}

func (f *fakeBroadcaster) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *FileStore, *fakeBroadcaster) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newTestStore(t)
	fanout := &fakeBroadcaster{}
	h := NewHandler(store, fanout)

	router := gin.New()
	api := router.Group("/api")
	api.GET("/questions", h.ListBySpeaker)
	api.POST("/questions", h.Create)
	api.POST("/mod/approve", h.Approve)
	api.POST("/questions/:id/vote", h.Vote)
	api.POST("/questions/:id/unvote", h.Unvote)
	api.DELETE("/questions/:id", h.Delete)
	return router, store, fanout
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Create(t *testing.T) {
	req := require.New(t)
	router, _, fanout := newTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/questions", gin.H{"speaker": "alice", "text": "Why Go?"})
	req.Equal(http.StatusOK, w.Code)

	var resp struct {
		OK       bool            `json:"ok"`
		Question models.Question `json:"question"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.True(resp.OK)
	req.Equal("Why Go?", resp.Question.Text)
	req.False(resp.Question.Approved)
	req.Zero(resp.Question.Votes)

	events := fanout.all()
	req.Len(events, 3)
	groups := []string{events[0].Group, events[1].Group, events[2].Group}
	req.ElementsMatch(groups, []string{
		realtime.GroupMod,
		realtime.SpeakerGroup("alice"),
		realtime.SelectedGroup("alice"),
	})
	for _, e := range events {
		req.Equal("question:new", e.Event)
	}
}

func TestHandler_CreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body gin.H
	}{
		{"missing speaker", gin.H{"text": "hi"}},
		{"missing text", gin.H{"speaker": "alice"}},
		{"whitespace text", gin.H{"speaker": "alice", "text": "   "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			router, store, fanout := newTestRouter(t)

			w := doJSON(router, http.MethodPost, "/api/questions", tt.body)
			req.Equal(http.StatusBadRequest, w.Code)
			req.Empty(fanout.all(), "failed create must not broadcast")

			list, err := store.ListBySpeaker(context.Background(), "alice")
			req.NoError(err)
			req.Empty(list, "failed create must not store a record")
		})
	}
}

func TestHandler_Approve(t *testing.T) {
	req := require.New(t)
	router, store, fanout := newTestRouter(t)

	q, err := store.Create(context.Background(), "alice", "approve me")
	req.NoError(err)
	fanout.reset()

	w := doJSON(router, http.MethodPost, "/api/mod/approve", gin.H{"id": q.ID, "approved": true})
	req.Equal(http.StatusOK, w.Code)

	var resp struct {
		OK       bool            `json:"ok"`
		Question models.Question `json:"question"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.True(resp.Question.Approved)

	events := fanout.all()
	req.Len(events, 3)
	for _, e := range events {
		req.Equal("question:update", e.Event)
	}

	// Approving again with the same value succeeds and still broadcasts.
	fanout.reset()
	w = doJSON(router, http.MethodPost, "/api/mod/approve", gin.H{"id": q.ID, "approved": true})
	req.Equal(http.StatusOK, w.Code)
	req.Len(fanout.all(), 3)
}

func TestHandler_ApproveValidation(t *testing.T) {
	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{"missing id", gin.H{"approved": true}, http.StatusBadRequest},
		{"missing approved", gin.H{"id": "q_abcdefgh"}, http.StatusBadRequest},
		{"approved wrong type", gin.H{"id": "q_abcdefgh", "approved": "yes"}, http.StatusBadRequest},
		{"unknown id", gin.H{"id": "q_missing1", "approved": true}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			router, _, fanout := newTestRouter(t)

			w := doJSON(router, http.MethodPost, "/api/mod/approve", tt.body)
			req.Equal(tt.wantCode, w.Code)
			req.Empty(fanout.all())
		})
	}
}

func TestHandler_VoteUnvote(t *testing.T) {
	req := require.New(t)
	router, store, fanout := newTestRouter(t)

	q, err := store.Create(context.Background(), "alice", "vote on me")
	req.NoError(err)
	fanout.reset()

	w := doJSON(router, http.MethodPost, "/api/questions/"+q.ID+"/vote", nil)
	req.Equal(http.StatusOK, w.Code)
	var resp struct {
		OK       bool            `json:"ok"`
		Question models.Question `json:"question"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Equal(1, resp.Question.Votes)
	req.Len(fanout.all(), 3)

	w = doJSON(router, http.MethodPost, "/api/questions/"+q.ID+"/unvote", nil)
	req.Equal(http.StatusOK, w.Code)
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Zero(resp.Question.Votes)

	// Unvote at zero is a no-op that still succeeds.
	w = doJSON(router, http.MethodPost, "/api/questions/"+q.ID+"/unvote", nil)
	req.Equal(http.StatusOK, w.Code)
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Zero(resp.Question.Votes)

	w = doJSON(router, http.MethodPost, "/api/questions/q_missing1/vote", nil)
	req.Equal(http.StatusNotFound, w.Code)
}

func TestHandler_Delete(t *testing.T) {
	req := require.New(t)
	router, store, fanout := newTestRouter(t)

	q, err := store.Create(context.Background(), "alice", "delete me")
	req.NoError(err)
	fanout.reset()

	w := doJSON(router, http.MethodDelete, "/api/questions/"+q.ID, nil)
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`{"ok":true}`, w.Body.String())

	events := fanout.all()
	req.Len(events, 3)
	for _, e := range events {
		req.Equal("question:deleted", e.Event)
		payload, err := json.Marshal(e.Payload)
		req.NoError(err)
		req.JSONEq(`{"id":"`+q.ID+`"}`, string(payload))
	}

	w = doJSON(router, http.MethodDelete, "/api/questions/"+q.ID, nil)
	req.Equal(http.StatusNotFound, w.Code)
}

func TestHandler_ListBySpeaker(t *testing.T) {
	req := require.New(t)
	router, store, _ := newTestRouter(t)

	w := doJSON(router, http.MethodGet, "/api/questions", nil)
	req.Equal(http.StatusBadRequest, w.Code)

	w = doJSON(router, http.MethodGet, "/api/questions?speaker=alice", nil)
	req.Equal(http.StatusOK, w.Code)
	req.JSONEq(`[]`, w.Body.String(), "no questions yet yields an empty array, not null")

	_, err := store.Create(context.Background(), "alice", "first")
	req.NoError(err)
	_, err = store.Create(context.Background(), "bob", "not alice's")
	req.NoError(err)

	w = doJSON(router, http.MethodGet, "/api/questions?speaker=alice", nil)
	req.Equal(http.StatusOK, w.Code)
	var list []models.Question
	req.NoError(json.Unmarshal(w.Body.Bytes(), &list))
	req.Len(list, 1)
	req.Equal("first", list[0].Text)
}
