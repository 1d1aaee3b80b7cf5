package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/healthtwin-backend/internal/middleware"
	"github.com/jengzang/healthtwin-backend/pkg/response"
)

// AuthHandler mints guest tokens
type AuthHandler struct {
	auth *middleware.Auth
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *middleware.Auth) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// GuestToken is the response of a guest login
type GuestToken struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Guest handles POST /api/v1/auth/guest
func (h *AuthHandler) Guest(c *gin.Context) {
	userID, token, exp, err := h.auth.IssueGuest()
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, GuestToken{UserID: userID, Token: token, ExpiresAt: exp})
}
