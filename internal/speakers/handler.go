package speakers

import (
	"github.com/gin-gonic/gin"

	"github.com/askstage/backend/pkg/response"
)

// Handler serves the speaker list.
type Handler struct {
	repo *Repository
}

// NewHandler creates a speakers handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /api/speakers.
func (h *Handler) List(c *gin.Context) {
	response.OK(c, h.repo.List())
}
