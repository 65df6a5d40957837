// Package drafts persists in-progress reports. All drafts live in one JSON object under a single
// storage key, keyed by game identity, and every change rewrites the whole object.
package drafts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

const (
	storageKeyName = "reportFormStates"

	// NoAppID stands in for a missing app id in draft keys.
	NoAppID = "no appid"
)

// MakeDraftKey formats the identity key "<name> [<appid>]". Both parts are trimmed and a blank
// app id becomes NoAppID.
func MakeDraftKey(name, appID string) string {
	n := strings.TrimSpace(name)
	a := strings.TrimSpace(appID)
	if a == "" {
		a = NoAppID
	}
	return fmt.Sprintf("%s [%s]", n, a)
}

// KeyFor computes the identity key from a value map's game_name and app_id.
func KeyFor(values map[string]string) string {
	return MakeDraftKey(values[models.FieldIDGameName], values[models.FieldIDAppID])
}

type Store struct {
	mu    sync.Mutex
	store storage.Store
	key   string
}

func NewStore(s storage.Store, namespace string) *Store {
	return &Store{
		store: s,
		key:   storage.Key(namespace, storageKeyName),
	}
}

// Load returns every saved draft. An unreadable blob is treated as empty, and entries that are
// not objects (removed drafts are null) are skipped.
func (s *Store) Load(ctx context.Context) (map[string]models.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *Store) Get(ctx context.Context, key string) (models.Draft, bool, error) {
	all, err := s.Load(ctx)
	if err != nil {
		return models.Draft{}, false, err
	}
	d, ok := all[key]
	return d, ok, nil
}

// Keys lists the saved draft keys in sorted order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	all, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Save replaces the draft stored under key.
func (s *Store) Save(ctx context.Context, key string, draft models.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	all[key] = draft
	if err := s.write(ctx, all); err != nil {
		return err
	}
	logger.Debug(ctx, "draft saved", "draft_key", key, "images_count", len(draft.Images))
	return nil
}

// Remove deletes the draft stored under key; removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := all[key]; !ok {
		return nil
	}
	delete(all, key)
	if err := s.write(ctx, all); err != nil {
		return err
	}
	logger.Debug(ctx, "draft removed", "draft_key", key)
	return nil
}

// SeedEditDraft stores a draft that edits a published report. The draft is keyed by the report's
// own game_name and app_id so it lands on the same key a manual report for that game would use.
func (s *Store) SeedEditDraft(ctx context.Context, report models.GameReport) (string, models.Draft, error) {
	key := MakeDraftKey(report.DataString(models.FieldIDGameName), report.DataString(models.FieldIDAppID))

	draft := models.Draft{Values: make(map[string]string, len(report.Data))}
	for id, v := range report.Data {
		switch v.(type) {
		case string, float64, json.Number, int:
			draft.Values[id] = report.DataString(id)
		}
	}
	if n, ok := report.IssueNumber(); ok {
		draft.EditingIssueNumber = &n
	}
	draft.EditingIssueTitle = report.Title

	if err := s.Save(ctx, key, draft); err != nil {
		return "", models.Draft{}, err
	}
	return key, draft, nil
}

func (s *Store) load(ctx context.Context) (map[string]models.Draft, error) {
	out := make(map[string]models.Draft)

	raw, found, err := s.store.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !found || len(raw) == 0 {
		return out, nil
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		logger.Warn(ctx, "ignoring unreadable drafts blob", "error", err)
		return out, nil
	}
	for k, v := range entries {
		if string(bytes.TrimSpace(v)) == "null" {
			continue
		}
		var d models.Draft
		if err := json.Unmarshal(v, &d); err != nil {
			continue
		}
		out[k] = d
	}
	return out, nil
}

func (s *Store) write(ctx context.Context, all map[string]models.Draft) error {
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("error encoding drafts: %w", err)
	}
	return s.store.Set(ctx, s.key, data)
}
