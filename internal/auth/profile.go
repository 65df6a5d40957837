package auth

import (
	"context"
	"encoding/json"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

const profileKeyName = "githubUserProfile"

type ProfileStore struct {
	store storage.Store
	key   string
}

func NewProfileStore(s storage.Store, namespace string) *ProfileStore {
	return &ProfileStore{store: s, key: storage.Key(namespace, profileKeyName)}
}

func (p *ProfileStore) Load(ctx context.Context) (*models.UserProfile, error) {
	raw, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var profile models.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		logger.Warn(ctx, "discarding unreadable github profile", "error", err)
		return nil, nil
	}
	return &profile, nil
}

func (p *ProfileStore) Save(ctx context.Context, profile models.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", p.key)
	}
	return p.store.Set(ctx, p.key, raw)
}

func (p *ProfileStore) Clear(ctx context.Context) error {
	return p.store.Delete(ctx, p.key)
}
