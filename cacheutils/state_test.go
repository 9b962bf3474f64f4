package cacheutils

import (
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestConsumeResult(t *testing.T) {
	assert.NoError(t, consumeResult("1", nil))

	assert.ErrorIs(t, consumeResult("", redis.Nil), ErrStateNotFound)
	assert.ErrorIs(t, consumeResult("", nil), ErrStateNotFound)

	// An infrastructure failure must not look like a missing state.
	transient := errors.New("connection refused")
	err := consumeResult("", transient)
	assert.ErrorIs(t, err, transient)
	assert.NotErrorIs(t, err, ErrStateNotFound)
}
