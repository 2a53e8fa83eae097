package auth

import (
	"time"

	"github.com/gin-gonic/gin"

	"cdc_zoning/api/v1/apierr"
	"cdc_zoning/internal/auth"
	"cdc_zoning/internal/httpx"
)

// LoginRequest represents login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents login response data
type LoginResponse struct {
	Token    string `json:"token"`
	ExpireAt string `json:"expireAt"`
	Username string `json:"username"`
}

// Handler handles console login
type Handler struct {
	creds  auth.Credentials
	issuer *auth.Issuer
}

// NewHandler creates a new login handler
func NewHandler(creds auth.Credentials, issuer *auth.Issuer) *Handler {
	return &Handler{creds: creds, issuer: issuer}
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid request body"))
		return
	}

	// Unknown user and wrong password get the same answer
	if err := h.creds.Verify(req.Username, req.Password); err != nil {
		httpx.FailErr(c, apierr.From(err))
		return
	}

	token, expireAt, err := h.issuer.GenerateToken(req.Username)
	if err != nil {
		httpx.FailErr(c, httpx.ErrInternalError("failed to generate token", err))
		return
	}

	httpx.OK(c, LoginResponse{
		Token:    token,
		ExpireAt: expireAt.Format(time.RFC3339),
		Username: req.Username,
	})
}
