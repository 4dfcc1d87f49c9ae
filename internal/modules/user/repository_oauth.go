package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const stateKeyPrefix = "psych:oauth:state:"

type redisStateStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewStateStore keeps OAuth states in Redis, expiring with the state itself.
func NewStateStore(rdb *redis.Client) StateStore {
	return &redisStateStore{rdb: rdb, now: time.Now}
}

func (s *redisStateStore) Save(ctx context.Context, state *OAuthState) error {
	ttl := state.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return ErrOAuthStateExpired
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, stateKeyPrefix+state.State, raw, ttl).Err(); err != nil {
		return fmt.Errorf("save oauth state: %w", err)
	}
	return nil
}

func (s *redisStateStore) Take(ctx context.Context, state string) (*OAuthState, error) {
	raw, err := s.rdb.GetDel(ctx, stateKeyPrefix+state).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrOAuthStateInvalid
		}
		return nil, fmt.Errorf("load oauth state: %w", err)
	}

	var out OAuthState
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, ErrOAuthStateInvalid.WithCause(err)
	}
	if s.now().After(out.ExpiresAt) {
		return nil, ErrOAuthStateExpired
	}
	return &out, nil
}
