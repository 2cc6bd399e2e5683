package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRequestInProgress means another request with the same key has claimed it
// and not finished yet.
var ErrRequestInProgress = errors.New("request with this idempotency key is in progress")

// StoredResponse is a finished response kept for replay. Status zero marks a
// claim whose request is still running.
type StoredResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// IdempotencyStore remembers responses per account and client-chosen key so a
// retried write returns the first outcome instead of running twice.
type IdempotencyStore struct {
	cache    *CacheService
	ttl      time.Duration
	claimTTL time.Duration
}

// NewIdempotencyStore keeps finished responses for ttl. A claim expires after
// claimTTL so a crashed request does not block its key for the full ttl.
func NewIdempotencyStore(cache *CacheService, ttl, claimTTL time.Duration) *IdempotencyStore {
	return &IdempotencyStore{cache: cache, ttl: ttl, claimTTL: claimTTL}
}

// Claim reserves key for accountID. It returns (nil, nil) when the caller now
// owns the key, the stored response when the key already finished, and
// ErrRequestInProgress when it is still running elsewhere.
func (s *IdempotencyStore) Claim(ctx context.Context, accountID uint, key string) (*StoredResponse, error) {
	k := s.key(accountID, key)

	claimed, err := s.cache.SetIfAbsent(ctx, k, StoredResponse{}, s.claimTTL)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, nil
	}

	var stored StoredResponse
	found, err := s.cache.Get(ctx, k, &stored)
	if err != nil {
		return nil, err
	}
	if !found {
		// expired between the two calls; try once more
		return s.Claim(ctx, accountID, key)
	}
	if stored.Status == 0 {
		return nil, ErrRequestInProgress
	}
	return &stored, nil
}

// Complete stores the final response for a claimed key.
func (s *IdempotencyStore) Complete(ctx context.Context, accountID uint, key string, resp StoredResponse) error {
	if resp.Status == 0 {
		return fmt.Errorf("cannot store response without status")
	}
	return s.cache.SetWithTTL(ctx, s.key(accountID, key), resp, s.ttl)
}

// Release drops a claim so the request can be retried with the same key.
func (s *IdempotencyStore) Release(ctx context.Context, accountID uint, key string) error {
	return s.cache.Delete(ctx, s.key(accountID, key))
}

func (s *IdempotencyStore) key(accountID uint, key string) string {
	return s.cache.GenerateKey("idempotency", fmt.Sprint(accountID), key)
}
