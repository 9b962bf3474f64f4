package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-backend/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser() *model.User {
	return &model.User{
		ID:       primitive.NewObjectID(),
		Name:     "A",
		Email:    "a@x.com",
		Provider: model.ProviderLocal,
	}
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewService("test-secret")
	user := testUser()

	tok, err := svc.Issue(user)
	require.NoError(t, err)

	claims, err := svc.Verify(tok)
	require.NoError(t, err)

	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "A", claims.Name)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, model.ProviderLocal, claims.Provider)
}

func TestIssueDefaultsProvider(t *testing.T) {
	svc := NewService("test-secret")
	user := testUser()
	user.Provider = ""

	tok, err := svc.Issue(user)
	require.NoError(t, err)

	claims, err := svc.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderLocal, claims.Provider)
}

func TestVerifyExpired(t *testing.T) {
	svc := NewServiceWithTTL("test-secret", -time.Minute)

	tok, err := svc.Issue(testUser())
	require.NoError(t, err)

	_, err = svc.Verify(tok)
	assert.ErrorIs(t, err, ErrExpired, "expiry must be reported distinctly")
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestVerifyWrongSecret(t *testing.T) {
	issued, err := NewService("secret-one").Issue(testUser())
	require.NoError(t, err)

	_, err = NewService("secret-two").Verify(issued)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyMalformed(t *testing.T) {
	svc := NewService("test-secret")

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalid, tok)
	}
}
