package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/layer-3/walletgate/core"
	"github.com/layer-3/walletgate/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
	grants      *service.PrivateWalletService
	metrics     *Metrics
	log         *zap.Logger
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, grants *service.PrivateWalletService, metrics *Metrics, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		grants:      grants,
		metrics:     metrics,
		log:         log,
	}
}

// Challenge issues a sign-in message for a wallet
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required,eth_addr"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "walletAddress must be a 0x-prefixed 20 byte hex address")
		return
	}

	ch, err := h.authService.IssueChallenge(c.Request.Context(), req.WalletAddress)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":         ch.Nonce,
		"message":       ch.Message,
		"walletAddress": ch.WalletAddress,
	})
}

// Login exchanges a signed challenge for a session token
func (h *AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Signature string `json:"signature" binding:"required"`
		Message   string `json:"message" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "signature and message are required")
		return
	}

	res, err := h.authService.Authenticate(c.Request.Context(), req.Signature, req.Message)
	if err != nil {
		h.metrics.observeLogin(loginOutcome(err))
		abortWithError(c, h.log, err)
		return
	}
	h.metrics.observeLogin("success")

	c.JSON(http.StatusOK, gin.H{
		"token":     res.Token,
		"tokenType": "Bearer",
		"expiresAt": res.ExpiresAt,
		"account":   res.Account,
	})
}

func loginOutcome(err error) string {
	switch errorStatus(err) {
	case http.StatusBadRequest:
		return "malformed"
	case http.StatusUnauthorized:
		return "rejected"
	case http.StatusNotFound:
		return "unknown_account"
	default:
		return "error"
	}
}

// Logout revokes the caller's session token
func (h *AuthHandlers) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), c.GetString(tokenKey)); err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the caller's session and account
func (h *AuthHandlers) Me(c *gin.Context) {
	session := sessionFrom(c)

	account, err := h.authService.Account(c.Request.Context(), session.WalletAddress)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account": account.Summary(),
		"session": gin.H{
			"id":        session.ID,
			"role":      session.Role,
			"issuedAt":  session.IssuedAt,
			"expiresAt": session.ExpiresAt,
		},
	})
}

// MyPrivateAccess reports whether the caller's wallet is on the allow-list
func (h *AuthHandlers) MyPrivateAccess(c *gin.Context) {
	session := sessionFrom(c)

	ok, err := h.grants.HasAccess(c.Request.Context(), session.WalletAddress)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"walletAddress": session.WalletAddress,
		"hasAccess":     ok,
	})
}

// NoteHandlers contains HTTP handlers for the caller's notes
type NoteHandlers struct {
	notes *service.NoteService
	log   *zap.Logger
}

func NewNoteHandlers(notes *service.NoteService, log *zap.Logger) *NoteHandlers {
	return &NoteHandlers{notes: notes, log: log}
}

func (h *NoteHandlers) List(c *gin.Context) {
	notes, err := h.notes.List(c.Request.Context(), sessionFrom(c).AccountID)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

func (h *NoteHandlers) Create(c *gin.Context) {
	var req struct {
		Title   string `json:"title" binding:"required,max=200"`
		Content string `json:"content"`
	}

	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Title) == "" {
		badRequest(c, "title is required and must be at most 200 characters")
		return
	}

	note, err := h.notes.Create(c.Request.Context(), sessionFrom(c).AccountID, req.Title, req.Content)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, note)
}

func (h *NoteHandlers) Get(c *gin.Context) {
	note, err := h.notes.Get(c.Request.Context(), sessionFrom(c).AccountID, c.Param("id"))
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandlers) Update(c *gin.Context) {
	var req struct {
		Title   *string `json:"title" binding:"omitempty,max=200"`
		Content *string `json:"content"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid note update")
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		badRequest(c, "title must not be empty")
		return
	}

	note, err := h.notes.Update(c.Request.Context(), sessionFrom(c).AccountID, c.Param("id"), core.NoteUpdate{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, note)
}

func (h *NoteHandlers) Delete(c *gin.Context) {
	if err := h.notes.Delete(c.Request.Context(), sessionFrom(c).AccountID, c.Param("id")); err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AdminHandlers contains the admin-only private wallet endpoints
type AdminHandlers struct {
	grants *service.PrivateWalletService
	log    *zap.Logger
}

func NewAdminHandlers(grants *service.PrivateWalletService, log *zap.Logger) *AdminHandlers {
	return &AdminHandlers{grants: grants, log: log}
}

func (h *AdminHandlers) ListPrivateWallets(c *gin.Context) {
	grants, err := h.grants.List(c.Request.Context())
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": grants})
}

func (h *AdminHandlers) GrantPrivateWallet(c *gin.Context) {
	var req struct {
		WalletAddress string `json:"walletAddress" binding:"required,eth_addr"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "walletAddress must be a 0x-prefixed 20 byte hex address")
		return
	}

	grant, err := h.grants.Grant(c.Request.Context(), sessionFrom(c), req.WalletAddress)
	if err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, grant)
}

func (h *AdminHandlers) RevokePrivateWallet(c *gin.Context) {
	if err := h.grants.Revoke(c.Request.Context(), c.Param("address")); err != nil {
		abortWithError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
