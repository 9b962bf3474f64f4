package oauth

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskflow/taskflow-backend/model"
	"github.com/taskflow/taskflow-backend/store"
)

// ErrNoEmail means the provider profile carried no usable email address.
// Seen with GitHub accounts that keep every email private and unverified.
var ErrNoEmail = errors.New("no email available in provider profile")

// Adapter reconciles a provider profile with the local user collection.
// Precedence: already-linked provider id, then email match (link), then
// create. Repeated resolves with the same provider id are idempotent.
type Adapter struct {
	users store.UserStore
}

func NewAdapter(users store.UserStore) *Adapter {
	return &Adapter{users: users}
}

func (a *Adapter) Resolve(ctx context.Context, profile *Profile) (*model.User, error) {
	user, err := a.users.FindByProviderID(ctx, profile.Provider, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("provider id lookup failed: %w", err)
	}

	if profile.Email == "" {
		return nil, ErrNoEmail
	}

	user, err = a.users.FindByEmail(ctx, profile.Email)
	if err == nil {
		return a.link(ctx, user, profile)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("email lookup failed: %w", err)
	}

	return a.create(ctx, profile)
}

// link attaches the provider id to an existing account. Any local password
// hash is kept, so local login keeps working after linking.
func (a *Adapter) link(ctx context.Context, user *model.User, profile *Profile) (*model.User, error) {
	user.SetProviderID(profile.Provider, profile.ID)
	user.Provider = profile.Provider
	if user.Avatar == "" && profile.Avatar != "" {
		user.Avatar = profile.Avatar
	}
	if err := a.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to link %s account: %w", profile.Provider, err)
	}
	return user, nil
}

func (a *Adapter) create(ctx context.Context, profile *Profile) (*model.User, error) {
	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	user := &model.User{
		Name:     name,
		Email:    profile.Email,
		Avatar:   profile.Avatar,
		Provider: profile.Provider,
	}
	user.SetProviderID(profile.Provider, profile.ID)

	if err := a.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create %s user: %w", profile.Provider, err)
	}
	return user, nil
}
