package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-backend/store"
	"github.com/taskflow/taskflow-backend/token"
)

type UsersHandler struct {
	users  store.UserStore
	tokens *token.Service
}

func NewUsersHandler(users store.UserStore, tokens *token.Service) *UsersHandler {
	return &UsersHandler{users: users, tokens: tokens}
}

// ProfileHandler returns the authenticated user, hash excluded.
func (h *UsersHandler) ProfileHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}
	c.JSON(http.StatusOK, user)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

// UpdateProfileHandler mutates the display name only. Email stays immutable
// here. A fresh token goes back so the client's cached claims match.
func (h *UsersHandler) UpdateProfileHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	// Re-read the stored record: the gate's copy has the hash stripped and
	// replacing with it would wipe the password.
	stored, err := h.users.FindByID(ctx, user.ID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if req.Name != "" {
		stored.Name = req.Name
	}

	if err := h.users.Update(ctx, stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	tok, err := h.tokens.Issue(stored)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       stored.ID.Hex(),
		"name":     stored.Name,
		"email":    stored.Email,
		"provider": stored.Provider,
		"token":    tok,
	})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePasswordHandler rotates the local password after confirming the
// current one. Federation-only accounts have no hash, so the confirmation
// always fails for them; there is deliberately no bypass.
func (h *UsersHandler) ChangePasswordHandler(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authorized"})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.CurrentPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide both current and new password"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stored, err := h.users.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if !stored.MatchPassword(req.CurrentPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	if err := stored.SetPassword(req.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	if err := h.users.Update(ctx, stored); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
