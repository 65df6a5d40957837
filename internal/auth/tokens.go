// Package auth keeps the GitHub credentials used to submit reports: the token bundle from the
// device flow, its refresh, and the cached user profile.
package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

const (
	tokensKeyName = "githubTokens"

	// refreshLeeway is how long before expiry a token is already treated as stale.
	refreshLeeway = 60 * time.Second
)

// TokenBundle is a token response as GitHub returns it; lifetimes are in seconds.
type TokenBundle struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token,omitempty"`
	ExpiresIn             int64  `json:"expires_in,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in,omitempty"`
	TokenType             string `json:"token_type,omitempty"`
}

// StoredTokens is the persisted form of a bundle, with lifetimes turned into epoch milliseconds.
type StoredTokens struct {
	TokenBundle
	ExpiresAt        *int64 `json:"expiresAt,omitempty"`
	RefreshExpiresAt *int64 `json:"refreshExpiresAt,omitempty"`
}

// Expired reports whether the access token is inside the refresh window at now.
func (t StoredTokens) Expired(now time.Time) bool {
	if t.ExpiresAt == nil {
		return false
	}
	return now.UnixMilli() >= *t.ExpiresAt-refreshLeeway.Milliseconds()
}

type TokenStore struct {
	mu    sync.Mutex
	store storage.Store
	key   string
	now   func() time.Time
}

type TokenStoreOption func(*TokenStore)

func WithTokenClock(now func() time.Time) TokenStoreOption {
	return func(s *TokenStore) {
		s.now = now
	}
}

func NewTokenStore(s storage.Store, namespace string, opts ...TokenStoreOption) *TokenStore {
	ts := &TokenStore{
		store: s,
		key:   storage.Key(namespace, tokensKeyName),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Load returns nil when nothing is stored. An unreadable blob counts as logged out.
func (s *TokenStore) Load(ctx context.Context) (*StoredTokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var t StoredTokens
	if err := json.Unmarshal(raw, &t); err != nil {
		logger.Warn(ctx, "discarding unreadable github tokens", "error", err)
		return nil, nil
	}
	return &t, nil
}

// Save stamps the bundle's lifetimes against the store clock and persists it.
func (s *TokenStore) Save(ctx context.Context, b TokenBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UnixMilli()
	t := StoredTokens{TokenBundle: b}
	if b.ExpiresIn > 0 {
		at := now + b.ExpiresIn*1000
		t.ExpiresAt = &at
	}
	if b.RefreshTokenExpiresIn > 0 {
		at := now + b.RefreshTokenExpiresIn*1000
		t.RefreshExpiresAt = &at
	}

	raw, err := json.Marshal(t)
	if err != nil {
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", s.key)
	}
	return s.store.Set(ctx, s.key, raw)
}

func (s *TokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Delete(ctx, s.key)
}

// HasToken reports whether an access token is stored, fresh or not.
func (s *TokenStore) HasToken(ctx context.Context) bool {
	t, err := s.Load(ctx)
	return err == nil && t != nil && t.AccessToken != ""
}
