package handlers

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/securedocs/securedocs/backend/go-services/internal/config"
	"github.com/securedocs/securedocs/backend/go-services/internal/tokens"
)

// TokenRequest asks for a dev wallet token for the given address.
type TokenRequest struct {
	Address string `json:"address" binding:"required"`
}

// AuthHandler mints development wallet tokens. In production the identity
// provider signs tokens; this endpoint only answers when the insecure
// verifier has been explicitly enabled.
type AuthHandler struct {
	cfg *config.Config
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/token", h.Token)
}

// Token issues a short-lived JWT whose subject is the requested wallet
// address. No proof of key ownership is performed, which is why the endpoint
// is gated behind ALLOW_INSECURE_TOKEN.
func (h *AuthHandler) Token(c *gin.Context) {
	if !insecureTokensEnabled() {
		c.JSON(http.StatusForbidden, gin.H{"error": "dev tokens are disabled"})
		return
	}
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	tok, err := tokens.GenerateWalletToken(h.cfg, req.Address, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": tok,
		"token_type":   "Bearer",
		"expires_in":   int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

func insecureTokensEnabled() bool {
	return strings.ToLower(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN"))) == "true"
}
