// Package definition loads the remote report form definition and keeps it cached for an hour.
package definition

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/thomas-vilte/deckreport/internal/cache"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

const (
	// TTL is how long a fetched definition is served from the local cache.
	TTL = time.Hour

	cacheKeyName = "reportFormSchema"
)

// Fetcher returns the raw definition document.
type Fetcher interface {
	ReportForm(ctx context.Context) (json.RawMessage, error)
}

type Cache struct {
	fetcher Fetcher
	cache   *cache.Cache
	file    string
}

type Option func(*options)

type options struct {
	now  func() time.Time
	file string
}

// WithClock overrides time.Now for TTL checks.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithFile serves the definition from a local JSON or YAML file instead of the network.
func WithFile(path string) Option {
	return func(o *options) {
		o.file = path
	}
}

func NewCache(fetcher Fetcher, store storage.Store, namespace string, opts ...Option) *Cache {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache{
		fetcher: fetcher,
		cache:   cache.New(store, storage.Key(namespace, cacheKeyName), TTL, cache.WithClock(o.now)),
		file:    o.file,
	}
}

// Get returns the cached definition when it is fresh, otherwise fetches and caches a new one.
// It fails open: when nothing can be loaded it returns (nil, nil) and callers render nothing.
func (c *Cache) Get(ctx context.Context) (*models.FormDefinition, error) {
	if c.file != "" {
		def, err := LoadFile(c.file)
		if err != nil {
			logger.Warn(ctx, "definition file could not be loaded", "path", c.file, "error", err)
			return nil, nil
		}
		return def, nil
	}

	raw, found, err := c.cache.Get(ctx)
	if err != nil {
		logger.Debug(ctx, "ignoring unreadable definition cache", "error", err)
	}
	if found {
		def, err := decode(raw)
		if err == nil {
			logger.Debug(ctx, "definition served from cache")
			return def, nil
		}
		logger.Debug(ctx, "ignoring undecodable cached definition", "error", err)
	}

	def, err := c.fetch(ctx)
	if err != nil {
		logger.Warn(ctx, "report form definition unavailable", "error", err)
		return nil, nil
	}
	return def, nil
}

// Refresh drops the cached copy and fetches a new definition, reporting failures.
func (c *Cache) Refresh(ctx context.Context) (*models.FormDefinition, error) {
	if c.file != "" {
		return LoadFile(c.file)
	}
	if err := c.Invalidate(ctx); err != nil {
		logger.Debug(ctx, "ignoring definition cache invalidation failure", "error", err)
	}
	return c.fetch(ctx)
}

// Invalidate drops the cached definition so the next Get fetches again.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.cache.Invalidate(ctx)
}

func (c *Cache) fetch(ctx context.Context) (*models.FormDefinition, error) {
	raw, err := c.fetcher.ReportForm(ctx)
	if err != nil {
		return nil, err
	}
	def, err := decode(raw)
	if err != nil {
		return nil, domainErrors.ErrDefinitionUnavailable.WithError(err)
	}
	if err := c.cache.Set(ctx, raw); err != nil {
		logger.Debug(ctx, "ignoring definition cache write failure", "error", err)
	}
	logger.Info(ctx, "report form definition fetched", "count", len(def.Template.Body))
	return def, nil
}

func decode(raw []byte) (*models.FormDefinition, error) {
	var def models.FormDefinition
	if err := json.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("error decoding report form: %w", err)
	}
	return &def, nil
}

// issueFormFile accepts both a full definition and a bare GitHub issue form, whose body sits at
// the top level.
type issueFormFile struct {
	models.FormDefinition `yaml:",inline"`
	Name                  string            `yaml:"name"`
	Description           string            `yaml:"description"`
	Title                 string            `yaml:"title"`
	Labels                []string          `yaml:"labels"`
	Body                  []models.FormItem `yaml:"body"`
}

// LoadFile reads a definition from a .json, .yml or .yaml file.
func LoadFile(path string) (*models.FormDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domainErrors.ErrDefinitionFile.WithError(err).WithContext("path", path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		var f issueFormFile
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, domainErrors.ErrDefinitionFile.WithError(fmt.Errorf("error parsing yaml: %w", err)).WithContext("path", path)
		}
		def := f.FormDefinition
		if len(def.Template.Body) == 0 && len(f.Body) > 0 {
			def.Template = models.FormTemplate{
				Name:        f.Name,
				Description: f.Description,
				Title:       f.Title,
				Labels:      f.Labels,
				Body:        f.Body,
			}
		}
		return &def, nil
	default:
		def, err := decode(data)
		if err != nil {
			return nil, domainErrors.ErrDefinitionFile.WithError(err).WithContext("path", path)
		}
		return def, nil
	}
}
