package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/oauth2"
)

// Profile is the provider-neutral slice of an identity-provider account
// that the federation adapter cares about.
type Profile struct {
	Provider string
	ID       string
	Name     string
	// Login is the provider username, used as a display-name fallback when
	// the profile has none (GitHub).
	Login  string
	Email  string
	Avatar string
}

// Provider is one configured identity provider. Instances are constructed
// at startup and injected into the callback handlers; there is no global
// registry.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error)
}

// GenerateState produces a random CSRF state token for the consent redirect.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
