package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-backend/model"
)

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "secret1")
	bearer := env.login(t, "a@x.com", "secret1")

	rec := env.do(t, http.MethodGet, "/api/users/me", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "A", body["name"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestUpdateProfile(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "secret1")
	bearer := env.login(t, "a@x.com", "secret1")

	rec := env.do(t, http.MethodPut, "/api/users/me", bearer, gin.H{"name": "A Renamed"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "A Renamed", body["name"])

	// The re-issued token carries the new name.
	claims, err := env.tokens.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, "A Renamed", claims.Name)

	// Email is immutable via this endpoint and the password survives.
	stored := mustFindUser(t, env, "a@x.com")
	assert.Equal(t, "A Renamed", stored.Name)
	assert.True(t, stored.MatchPassword("secret1"))
}

func TestUpdateProfileIgnoresEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "secret1")
	bearer := env.login(t, "a@x.com", "secret1")

	rec := env.do(t, http.MethodPut, "/api/users/me", bearer, gin.H{
		"name": "A2", "email": "other@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored := mustFindUser(t, env, "a@x.com")
	assert.Equal(t, "a@x.com", stored.Email)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "secret1")
	bearer := env.login(t, "a@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/users/change-password", bearer, gin.H{
		"currentPassword": "secret1", "newPassword": "secret2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	stored := mustFindUser(t, env, "a@x.com")
	assert.False(t, stored.MatchPassword("secret1"))
	assert.True(t, stored.MatchPassword("secret2"))

	// And the new password logs in.
	env.login(t, "a@x.com", "secret2")
}

func TestChangePasswordMissingFields(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "secret1")
	bearer := env.login(t, "a@x.com", "secret1")

	for _, body := range []gin.H{
		{"newPassword": "secret2"},
		{"currentPassword": "secret1"},
		{},
	} {
		rec := env.do(t, http.MethodPost, "/api/users/change-password", bearer, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "A", "a@x.com", "secret1")
	bearer := env.login(t, "a@x.com", "secret1")

	rec := env.do(t, http.MethodPost, "/api/users/change-password", bearer, gin.H{
		"currentPassword": "wrong", "newPassword": "secret2",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	stored := mustFindUser(t, env, "a@x.com")
	assert.True(t, stored.MatchPassword("secret1"), "password must be unchanged")
}

func TestChangePasswordFederationOnlyAccount(t *testing.T) {
	env := newTestEnv(t)
	federated := &model.User{Name: "G", Email: "g@x.com", Provider: model.ProviderGoogle, GoogleID: "g-1"}
	require.NoError(t, env.users.Create(context.Background(), federated))

	bearer, err := env.tokens.Issue(federated)
	require.NoError(t, err)

	// No stored hash means the current-password check can never pass;
	// there is no bootstrap path on purpose.
	rec := env.do(t, http.MethodPost, "/api/users/change-password", bearer, gin.H{
		"currentPassword": "anything", "newPassword": "secret2",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
