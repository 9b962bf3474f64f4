package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-backend/logger"
	"github.com/taskflow/taskflow-backend/oauth"
	"github.com/taskflow/taskflow-backend/token"
	"go.uber.org/zap"
)

const stateTTL = 10 * time.Minute

// StateStore is the one-time CSRF state storage the OAuth flow consumes.
// cacheutils.StateStore is the redis-backed production implementation.
type StateStore interface {
	Store(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) error
}

// OAuthHandler drives the provider-redirect login flow. The result is
// delivered to the browser as a redirect carrying the token, not as JSON.
type OAuthHandler struct {
	providers   map[string]oauth.Provider
	adapter     *oauth.Adapter
	tokens      *token.Service
	states      StateStore
	frontendURL string
}

func NewOAuthHandler(providers []oauth.Provider, adapter *oauth.Adapter, tokens *token.Service, states StateStore, frontendURL string) *OAuthHandler {
	byName := make(map[string]oauth.Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	return &OAuthHandler{
		providers:   byName,
		adapter:     adapter,
		tokens:      tokens,
		states:      states,
		frontendURL: frontendURL,
	}
}

// RedirectHandler sends the browser to the provider consent screen with a
// one-time CSRF state.
func (h *OAuthHandler) RedirectHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, ok := h.providers[name]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
			return
		}

		state, err := oauth.GenerateState()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.states.Store(ctx, state, stateTTL); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
			return
		}

		c.Redirect(http.StatusFound, provider.AuthCodeURL(state))
	}
}

// CallbackHandler completes the flow: state check, code exchange, profile
// fetch, federation, token issue, redirect back to the frontend.
func (h *OAuthHandler) CallbackHandler(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provider, ok := h.providers[name]
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown provider"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()
		log := logger.FromCtx(ctx)

		state := c.Query("state")
		code := c.Query("code")
		if state == "" || code == "" {
			h.failureRedirect(c, name)
			return
		}

		if err := h.states.Consume(ctx, state); err != nil {
			log.Warn("oauth state rejected", zap.String("provider", name), zap.Error(err))
			h.failureRedirect(c, name)
			return
		}

		tok, err := provider.Exchange(ctx, code)
		if err != nil {
			log.Warn("oauth code exchange failed", zap.String("provider", name), zap.Error(err))
			h.failureRedirect(c, name)
			return
		}

		profile, err := provider.FetchProfile(ctx, tok)
		if err != nil {
			log.Warn("oauth profile fetch failed", zap.String("provider", name), zap.Error(err))
			h.failureRedirect(c, name)
			return
		}

		user, err := h.adapter.Resolve(ctx, profile)
		if err != nil {
			log.Warn("oauth federation failed", zap.String("provider", name), zap.Error(err))
			h.failureRedirect(c, name)
			return
		}

		bearer, err := h.tokens.Issue(user)
		if err != nil {
			h.failureRedirect(c, name)
			return
		}

		c.Redirect(http.StatusFound, h.frontendURL+"/oauth-callback?token="+url.QueryEscape(bearer))
	}
}

func (h *OAuthHandler) failureRedirect(c *gin.Context, provider string) {
	c.Redirect(http.StatusFound, h.frontendURL+"/login?error="+provider+"_auth_failed")
}
