package handlers

import (
	"errors"
	"net/http"
	"strings"

	"tasktracker/internal/domain"
	"tasktracker/internal/http/middleware"
	"tasktracker/internal/logger"
	"tasktracker/internal/repository"
	"tasktracker/internal/service"
	"tasktracker/internal/session"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an account and opens a session in one step: the
// response both sets the cookie and returns the user summary.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	hash, err := service.HashPassword(req.Password)
	if err != nil {
		serverError(c, "hash password", err)
		return
	}

	user := &domain.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		PasswordHash: hash,
	}

	ctx := c.Request.Context()
	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"message": "Email already in use"})
			return
		}
		serverError(c, "create user", err)
		return
	}

	if err := h.Users.TouchLastLogin(ctx, user.ID); err != nil {
		logger.Warn("touch last login failed", "user_id", user.ID, "error", err)
	}

	token, err := service.GenerateToken(user.ID)
	if err != nil {
		serverError(c, "generate token", err)
		return
	}

	session.Set(c, token)
	c.JSON(http.StatusCreated, gin.H{"user": user.Summary()})
}

// Login verifies credentials and mints a fresh session token. Unknown
// email and wrong password are deliberately indistinguishable.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Email and password are required"})
		return
	}

	ctx := c.Request.Context()
	user, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
			return
		}
		serverError(c, "load user", err)
		return
	}

	if !user.IsActive || !service.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	if err := h.Users.TouchLastLogin(ctx, user.ID); err != nil {
		logger.Warn("touch last login failed", "user_id", user.ID, "error", err)
	}

	token, err := service.GenerateToken(user.ID)
	if err != nil {
		serverError(c, "generate token", err)
		return
	}

	session.Set(c, token)
	c.JSON(http.StatusOK, gin.H{"user": user.Summary()})
}

// Validate confirms the session resolved by the auth middleware.
func (h *Handler) Validate(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": user.Summary()})
}

// Me returns the extended profile of the current user.
func (h *Handler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	user, err := h.Users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		serverError(c, "load user", err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Logout clears the session cookie and the last-login marker. Tokens are
// stateless, so a copy held outside the cookie stays valid until its
// expiry; the short TTL plus refresh is the accepted trade-off.
func (h *Handler) Logout(c *gin.Context) {
	if userID, ok := middleware.CurrentUserID(c); ok {
		if err := h.Users.ClearLastLogin(c.Request.Context(), userID); err != nil {
			logger.Warn("clear last login failed", "user_id", userID, "error", err)
		}
	}

	session.Clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

// Refresh supersedes the current token with a newly minted one.
func (h *Handler) Refresh(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	token, err := service.GenerateToken(userID)
	if err != nil {
		serverError(c, "generate token", err)
		return
	}

	session.Set(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
