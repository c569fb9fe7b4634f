package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/askstage/backend/pkg/response"
	"github.com/askstage/backend/pkg/utils"
)

// LoginRequest is the body for POST /api/mod/login.
type LoginRequest struct {
	Key string `json:"key"`
}

// Handler exchanges the shared moderator key for a JWT.
type Handler struct {
	keyHash string // bcrypt hash of the configured moderator key
	jwt     *JWTService
	logger  *zap.Logger
}

// NewHandler creates the moderator login handler. keyHash is the bcrypt
// hash of the configured key.
func NewHandler(keyHash string, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{keyHash: keyHash, jwt: jwt, logger: logger}
}

// Login handles POST /api/mod/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Key == "" {
		response.BadRequest(c, "key required")
		return
	}
	if !utils.CheckKey(req.Key, h.keyHash) {
		h.logger.Warn("moderator login rejected", zap.String("client_ip", c.ClientIP()))
		response.Unauthorized(c, "invalid key")
		return
	}
	token, err := h.jwt.Generate()
	if err != nil {
		response.Internal(c, "failed to issue token")
		return
	}
	response.OK(c, gin.H{"ok": true, "token": token})
}
