package cacheutils

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStateNotFound means the state was never issued, already consumed, or
// expired.
var ErrStateNotFound = errors.New("oauth state not found or expired")

const statePrefix = "oauth:state:"

// StateStore keeps one-time OAuth state tokens in redis. A state is valid
// for a single consume within its TTL.
type StateStore struct {
	client *redis.Client
}

func NewStateStore(client *redis.Client) *StateStore {
	return &StateStore{client: client}
}

// Store records a state token with the given lifetime.
func (s *StateStore) Store(ctx context.Context, state string, ttl time.Duration) error {
	return s.client.Set(ctx, statePrefix+state, "1", ttl).Err()
}

// Consume removes a state token, failing if it was not present. GETDEL makes
// the check-and-delete a single round trip.
func (s *StateStore) Consume(ctx context.Context, state string) error {
	res, err := s.client.GetDel(ctx, statePrefix+state).Result()
	return consumeResult(res, err)
}

// consumeResult maps a GETDEL outcome to the store's error surface. A
// transient redis error must come back as-is, not as a missing state.
func consumeResult(res string, err error) error {
	if err != nil {
		if err == redis.Nil {
			return ErrStateNotFound
		}
		return err
	}
	if res == "" {
		return ErrStateNotFound
	}
	return nil
}
