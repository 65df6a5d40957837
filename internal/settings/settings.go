// Package settings holds the user's plugin preferences.
package settings

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

const storageKeyName = "pluginConfig"

type PluginConfig struct {
	// FilterDevices limits game report listings to these device labels; empty shows all.
	FilterDevices     []string `json:"filterDevices" validate:"dive,required"`
	ShowInstalledOnly bool     `json:"showInstalledOnly"`
}

var validate = validator.New()

type Store struct {
	store storage.Store
	key   string
}

func NewStore(s storage.Store, namespace string) *Store {
	return &Store{store: s, key: storage.Key(namespace, storageKeyName)}
}

// Load returns the saved preferences, or the zero value when none are stored or the blob is
// unreadable.
func (s *Store) Load(ctx context.Context) (PluginConfig, error) {
	cfg := PluginConfig{FilterDevices: []string{}}
	raw, ok, err := s.store.Get(ctx, s.key)
	if err != nil {
		return cfg, domainErrors.ErrStorageRead.WithError(err).WithContext("key", s.key)
	}
	if !ok {
		return cfg, nil
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		logger.Warn(ctx, "discarding unreadable plugin settings", "error", err)
		return PluginConfig{FilterDevices: []string{}}, nil
	}
	if cfg.FilterDevices == nil {
		cfg.FilterDevices = []string{}
	}
	return cfg, nil
}

// Save trims and de-duplicates the device filter before validating and persisting it.
func (s *Store) Save(ctx context.Context, cfg PluginConfig) error {
	cfg.FilterDevices = normalizeDevices(cfg.FilterDevices)
	if err := validate.Struct(cfg); err != nil {
		return domainErrors.ErrConfigInvalid.WithError(err)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", s.key)
	}
	if err := s.store.Set(ctx, s.key, raw); err != nil {
		return domainErrors.ErrStorageWrite.WithError(err).WithContext("key", s.key)
	}
	logger.Debug(ctx, "plugin settings saved", "count", len(cfg.FilterDevices), "installed_only", cfg.ShowInstalledOnly)
	return nil
}

// Matches reports whether a report for device passes the filter.
func (c PluginConfig) Matches(device string) bool {
	if len(c.FilterDevices) == 0 {
		return true
	}
	for _, d := range c.FilterDevices {
		if strings.EqualFold(d, device) {
			return true
		}
	}
	return false
}

func normalizeDevices(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, d := range in {
		d = strings.TrimSpace(d)
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}
