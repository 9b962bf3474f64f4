package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-backend/logger"
	"github.com/taskflow/taskflow-backend/model"
	"github.com/taskflow/taskflow-backend/store"
	"github.com/taskflow/taskflow-backend/token"
	"go.uber.org/zap"
)

type AuthHandler struct {
	users  store.UserStore
	tokens *token.Service
}

func NewAuthHandler(users store.UserStore, tokens *token.Service) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterHandler creates a local account. The response carries no token;
// the client logs in separately.
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user := &model.User{
		Name:     req.Name,
		Email:    req.Email,
		Provider: model.ProviderLocal,
	}
	if err := user.SetPassword(req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	if err := h.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email already in use"})
			return
		}
		logger.FromCtx(ctx).Error("user create failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not create user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID.Hex(),
		"name":  user.Name,
		"email": user.Email,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler verifies local credentials and issues a bearer token. The
// rejection message never says whether the email or the password was wrong.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": bindingErrors(err)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	// Records created before the provider field existed get it backfilled
	// on their next login.
	if user.Provider == "" {
		user.Provider = model.ProviderLocal
		if err := h.users.Update(ctx, user); err != nil {
			logger.FromCtx(ctx).Warn("provider backfill failed", zap.Error(err))
		}
	}

	if !user.MatchPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tok, err := h.tokens.Issue(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID.Hex(),
		"name":     user.Name,
		"email":    user.Email,
		"provider": user.Provider,
		"token":    tok,
	})
}
