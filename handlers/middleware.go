package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
	"github.com/taskflow/taskflow-backend/logger"
	"github.com/taskflow/taskflow-backend/model"
	"github.com/taskflow/taskflow-backend/store"
	"github.com/taskflow/taskflow-backend/token"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const userContextKey = "authUser"

// AuthGate verifies the bearer token on protected routes and resolves the
// claimed user against the store, so a token for a deleted account is
// rejected even inside its validity window.
type AuthGate struct {
	tokens *token.Service
	users  store.UserStore
}

func NewAuthGate(tokens *token.Service, users store.UserStore) *AuthGate {
	return &AuthGate{tokens: tokens, users: users}
}

func (g *AuthGate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, no token provided"})
			return
		}

		// Token is whatever follows the first space, so a header without
		// the scheme separator carries no token at all.
		var tokenStr string
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 {
			tokenStr = strings.TrimSpace(parts[1])
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authorized, token is empty"})
			return
		}

		claims, err := g.tokens.Verify(tokenStr)
		if err != nil {
			if errors.Is(err, token.ErrExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := g.users.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found or deleted"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
			return
		}

		// Downstream handlers never see the hash.
		user.Password = ""
		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the identity the auth gate attached to the request.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

// RequestID tags every request with an xid, echoes it in the response header
// and threads a request-scoped logger through the request context.
func RequestID(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := xid.New().String()
		c.Writer.Header().Set("X-Request-ID", id)

		reqLogger := log.With(
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), reqLogger))
		c.Next()
	}
}
