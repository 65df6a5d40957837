package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
)

const (
	EnvPrefix = "DECKREPORT_"

	configDirName  = ".deckreport"
	configFileName = "config.json"

	defaultLang            = "en"
	defaultNamespace       = "decky-game-settings"
	defaultStorageBackend  = "file"
	defaultAPIBaseURL      = "https://deckverified.games/deck-verified/api/v1"
	defaultAssetUploadURL  = "https://asset-upload.deckverified.games/"
	defaultGitHubOwner     = "DeckSettings"
	defaultGitHubRepo      = "game-reports-steamos"
	defaultGitHubClientID  = "Iv23liOILKnctgTZ9i33"
	defaultHTTPTimeoutSecs = 30
)

type Config struct {
	Language           string `json:"language" koanf:"language" validate:"required,oneof=en es"`
	Namespace          string `json:"namespace" koanf:"namespace" validate:"required"`
	StorageBackend     string `json:"storage_backend" koanf:"storage_backend" validate:"oneof=file sqlite memory"`
	DataDir            string `json:"data_dir" koanf:"data_dir" validate:"required"`
	APIBaseURL         string `json:"api_base_url" koanf:"api_base_url" validate:"required,url"`
	AssetUploadURL     string `json:"asset_upload_url" koanf:"asset_upload_url" validate:"required,url"`
	GitHubOwner        string `json:"github_owner" koanf:"github_owner" validate:"required"`
	GitHubRepo         string `json:"github_repo" koanf:"github_repo" validate:"required"`
	GitHubClientID     string `json:"github_client_id" koanf:"github_client_id" validate:"required"`
	DefinitionFile     string `json:"definition_file,omitempty" koanf:"definition_file"`
	HTTPTimeoutSeconds int    `json:"http_timeout_seconds" koanf:"http_timeout_seconds" validate:"min=1,max=600"`
	ScreenshotsDir     string `json:"screenshots_dir,omitempty" koanf:"screenshots_dir"`
	Debug              bool   `json:"debug" koanf:"debug"`

	// PathFile is where Save writes; it is never persisted.
	PathFile string `json:"-" koanf:"-"`
}

var validate = validator.New()

// Defaults returns the built-in value of every configuration key.
func Defaults(home string) map[string]any {
	return map[string]any{
		"language":             defaultLang,
		"namespace":            defaultNamespace,
		"storage_backend":      defaultStorageBackend,
		"data_dir":             filepath.Join(home, configDirName),
		"api_base_url":         defaultAPIBaseURL,
		"asset_upload_url":     defaultAssetUploadURL,
		"github_owner":         defaultGitHubOwner,
		"github_repo":          defaultGitHubRepo,
		"github_client_id":     defaultGitHubClientID,
		"definition_file":      "",
		"http_timeout_seconds": defaultHTTPTimeoutSecs,
		"screenshots_dir":      "",
		"debug":                false,
	}
}

// Keys lists the configuration keys in sorted order.
func Keys() []string {
	d := Defaults("")
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultPath is ~/.deckreport/config.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("error resolving home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// LoadConfig layers the defaults, the JSON file at path (when present) and DECKREPORT_* environment
// variables, in that order. An empty path means DefaultPath.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = filepath.Dir(filepath.Dir(path))
	}

	k := koanf.New(".")
	for key, value := range Defaults(home) {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("error applying default %s: %w", key, err)
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
			return nil, domainErrors.ErrConfigInvalid.WithError(err).WithContext("path", path)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, domainErrors.ErrConfigInvalid.WithError(err).WithContext("path", path)
	}
	cfg.PathFile = path
	cfg.DataDir = expandHomePath(cfg.DataDir)
	cfg.ScreenshotsDir = expandHomePath(cfg.ScreenshotsDir)
	cfg.DefinitionFile = expandHomePath(cfg.DefinitionFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return domainErrors.ErrConfigInvalid.WithError(err)
	}
	return nil
}

// Set assigns one key from its string form. Values are type-converted the same way environment
// overrides are, and the result must still validate.
func (c *Config) Set(key, value string) error {
	if _, known := Defaults("")[key]; !known {
		return domainErrors.ErrConfigKeyUnknown.WithContext("detail", key)
	}

	current, err := c.asMap()
	if err != nil {
		return err
	}
	k := koanf.New(".")
	for name, v := range current {
		if err := k.Set(name, v); err != nil {
			return err
		}
	}
	if err := k.Set(key, value); err != nil {
		return err
	}

	var next Config
	if err := k.Unmarshal("", &next); err != nil {
		return domainErrors.ErrConfigInvalid.WithError(err).WithContext("detail", key)
	}
	next.PathFile = c.PathFile
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// Get returns the string form of one key.
func (c *Config) Get(key string) (string, error) {
	m, err := c.asMap()
	if err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok {
		if _, known := Defaults("")[key]; !known {
			return "", domainErrors.ErrConfigKeyUnknown.WithContext("detail", key)
		}
		return "", nil
	}
	return fmt.Sprint(v), nil
}

func SaveConfig(config *Config) error {
	if err := config.Validate(); err != nil {
		return err
	}
	if config.PathFile == "" {
		return errors.New("config file path is not set")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(config.PathFile), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(config.PathFile, data, 0o644); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	return nil
}

func (c *Config) asMap() (map[string]any, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("error encoding config: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return m, nil
}

// envTransform maps DECKREPORT_HTTP_TIMEOUT_SECONDS to http_timeout_seconds.
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
