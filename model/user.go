package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Supported identity providers.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
	ProviderGithub = "github"
)

// Roles. Admin is stored but grants no extra access anywhere yet.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const bcryptCost = 10

type User struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`

	// Password holds the bcrypt hash. Empty for federation-only accounts.
	Password string `json:"-" bson:"password,omitempty"`

	GoogleID string `json:"-" bson:"googleId,omitempty"`
	GithubID string `json:"-" bson:"githubId,omitempty"`
	Avatar   string `json:"avatar,omitempty" bson:"avatar,omitempty"`

	Role     string `json:"role" bson:"role"`
	Provider string `json:"provider" bson:"provider"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SetPassword hashes the plaintext and stores the hash. The plaintext is
// never persisted or logged.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return err
	}
	u.Password = string(hash)
	return nil
}

// MatchPassword verifies a candidate password against the stored hash.
// Accounts without a stored hash (federation-only) never match.
func (u *User) MatchPassword(candidate string) bool {
	if u.Password == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate)) == nil
}

// ProviderID returns the external id recorded for the given provider.
func (u *User) ProviderID(provider string) string {
	switch provider {
	case ProviderGoogle:
		return u.GoogleID
	case ProviderGithub:
		return u.GithubID
	}
	return ""
}

// SetProviderID records an external id for the given provider.
func (u *User) SetProviderID(provider, id string) {
	switch provider {
	case ProviderGoogle:
		u.GoogleID = id
	case ProviderGithub:
		u.GithubID = id
	}
}
