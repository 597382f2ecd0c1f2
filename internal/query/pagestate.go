package query

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PageState remembers where a user is in the ticket list. It survives
// interactions until the filter changes or the entry expires.
type PageState struct {
	Page        int    `json:"page"`
	Fingerprint string `json:"fingerprint"`
}

// PageStateStore persists per-user list position.
type PageStateStore interface {
	Get(ctx context.Context, userID string) (PageState, error)
	Put(ctx context.Context, userID string, state PageState) error
	Clear(ctx context.Context, userID string) error
}

const pageStateTTL = 12 * time.Hour

type redisPageStateStore struct {
	client *redis.Client
}

// NewRedisPageStateStore builds a redis-backed store.
func NewRedisPageStateStore(client *redis.Client) PageStateStore {
	return &redisPageStateStore{client: client}
}

func pageStateKey(userID string) string {
	return fmt.Sprintf("pagestate:%s", userID)
}

func (s *redisPageStateStore) Get(ctx context.Context, userID string) (PageState, error) {
	raw, err := s.client.Get(ctx, pageStateKey(userID)).Bytes()
	if err == redis.Nil {
		return PageState{Page: 1}, nil
	}
	if err != nil {
		return PageState{}, err
	}
	var state PageState
	if err := json.Unmarshal(raw, &state); err != nil {
		return PageState{Page: 1}, nil
	}
	if state.Page < 1 {
		state.Page = 1
	}
	return state, nil
}

func (s *redisPageStateStore) Put(ctx context.Context, userID string, state PageState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, pageStateKey(userID), raw, pageStateTTL).Err()
}

func (s *redisPageStateStore) Clear(ctx context.Context, userID string) error {
	return s.client.Del(ctx, pageStateKey(userID)).Err()
}

// ResolvePage reconciles a requested page with stored state: an explicit
// request wins, a filter change resets to the first page, otherwise the
// stored position is kept.
func ResolvePage(state PageState, requested int, fingerprint string) int {
	if requested > 0 {
		return requested
	}
	if state.Fingerprint != fingerprint {
		return 1
	}
	return state.Page
}
