package questions

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/askstage/backend/internal/models"
	"github.com/askstage/backend/internal/realtime"
	"github.com/askstage/backend/pkg/response"
)

// CreateRequest is the body for POST /api/questions.
type CreateRequest struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ApproveRequest is the body for POST /api/mod/approve. Approved is a
// pointer so a missing field is distinguishable from false.
type ApproveRequest struct {
	ID       string `json:"id"`
	Approved *bool  `json:"approved"`
}

// Handler handles question HTTP requests and broadcasts mutations.
type Handler struct {
	store Store
	hub   realtime.Broadcaster
}

// NewHandler creates a questions handler.
func NewHandler(store Store, hub realtime.Broadcaster) *Handler {
	return &Handler{store: store, hub: hub}
}

// broadcast delivers an event to the moderator group and both
// speaker-scoped groups. Fire-and-forget: the HTTP response does not
// depend on delivery.
func (h *Handler) broadcast(speaker, event string, payload interface{}) {
	h.hub.Emit(realtime.GroupMod, event, payload)
	h.hub.Emit(realtime.SpeakerGroup(speaker), event, payload)
	h.hub.Emit(realtime.SelectedGroup(speaker), event, payload)
}

// ListBySpeaker handles GET /api/questions?speaker=S.
func (h *Handler) ListBySpeaker(c *gin.Context) {
	speaker := c.Query("speaker")
	if speaker == "" {
		response.BadRequest(c, "speaker required")
		return
	}
	list, err := h.store.ListBySpeaker(c.Request.Context(), speaker)
	if err != nil {
		response.Internal(c, "failed to list questions")
		return
	}
	if list == nil {
		list = []models.Question{}
	}
	response.OK(c, list)
}

// Create handles POST /api/questions.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Speaker == "" || req.Text == "" {
		response.BadRequest(c, "speaker and text required")
		return
	}

	q, err := h.store.Create(c.Request.Context(), req.Speaker, req.Text)
	if errors.Is(err, ErrEmptyText) {
		response.BadRequest(c, "empty text")
		return
	}
	if err != nil {
		response.Internal(c, "failed to create question")
		return
	}

	h.broadcast(q.Speaker, "question:new", q)
	response.OK(c, gin.H{"ok": true, "question": q})
}

// Approve handles POST /api/mod/approve. Re-approving with the same value
// succeeds and still broadcasts.
func (h *Handler) Approve(c *gin.Context) {
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" || req.Approved == nil {
		response.BadRequest(c, "id and approved required")
		return
	}

	q, err := h.store.SetApproved(c.Request.Context(), req.ID, *req.Approved)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "question not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to update question")
		return
	}

	h.broadcast(q.Speaker, "question:update", q)
	response.OK(c, gin.H{"ok": true, "question": q})
}

// Vote handles POST /api/questions/:id/vote.
func (h *Handler) Vote(c *gin.Context) {
	h.applyVote(c, +1)
}

// Unvote handles POST /api/questions/:id/unvote. Votes never go below zero.
func (h *Handler) Unvote(c *gin.Context) {
	h.applyVote(c, -1)
}

func (h *Handler) applyVote(c *gin.Context, delta int) {
	id := c.Param("id")

	q, err := h.store.IncrementVotes(c.Request.Context(), id, delta)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "question not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to update question")
		return
	}

	h.broadcast(q.Speaker, "question:update", q)
	response.OK(c, gin.H{"ok": true, "question": q})
}

// Delete handles DELETE /api/questions/:id.
func (h *Handler) Delete(c *gin.Context) {
	id := c.Param("id")

	q, err := h.store.Delete(c.Request.Context(), id)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, "question not found")
		return
	}
	if err != nil {
		response.Internal(c, "failed to delete question")
		return
	}

	h.broadcast(q.Speaker, "question:deleted", gin.H{"id": q.ID})
	response.OK(c, gin.H{"ok": true})
}
