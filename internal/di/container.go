package di

import (
	"net/http"
	"sync"
	"time"

	gogithub "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/thomas-vilte/deckreport/internal/assets"
	"github.com/thomas-vilte/deckreport/internal/auth"
	"github.com/thomas-vilte/deckreport/internal/cache"
	"github.com/thomas-vilte/deckreport/internal/config"
	"github.com/thomas-vilte/deckreport/internal/deckapi"
	"github.com/thomas-vilte/deckreport/internal/definition"
	"github.com/thomas-vilte/deckreport/internal/drafts"
	"github.com/thomas-vilte/deckreport/internal/httpclient"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/identity"
	"github.com/thomas-vilte/deckreport/internal/services"
	"github.com/thomas-vilte/deckreport/internal/settings"
	"github.com/thomas-vilte/deckreport/internal/steam"
	"github.com/thomas-vilte/deckreport/internal/storage"
	"github.com/thomas-vilte/deckreport/internal/sysinfo"
	"github.com/thomas-vilte/deckreport/internal/vcs"
	"github.com/thomas-vilte/deckreport/internal/vcs/github"
)

// Container builds the application's collaborators from the loaded configuration. Everything is
// created on first use and shared afterwards.
type Container struct {
	config       *config.Config
	translations *i18n.Translations

	mu         sync.Mutex
	store      storage.Store
	httpClient *http.Client
	deckAPI    *deckapi.Client
	defs       *definition.Cache
	drafts     *drafts.Store
	tokens     *auth.TokenStore
	profiles   *auth.ProfileStore
	oauth      *oauth2.Config
}

func NewContainer(cfg *config.Config, trans *i18n.Translations) *Container {
	return &Container{
		config:       cfg,
		translations: trans,
	}
}

// SetStore replaces the storage backend, before anything has been built from it.
func (c *Container) SetStore(s storage.Store) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = s
}

func (c *Container) Store() (storage.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.storeLocked()
}

func (c *Container) storeLocked() (storage.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	s, err := storage.Open(c.config.StorageBackend, c.config.DataDir)
	if err != nil {
		return nil, err
	}
	c.store = s
	return s, nil
}

func (c *Container) HTTPClient() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.httpClientLocked()
}

func (c *Container) httpClientLocked() *http.Client {
	if c.httpClient == nil {
		c.httpClient = httpclient.New(time.Duration(c.config.HTTPTimeoutSeconds) * time.Second)
	}
	return c.httpClient
}

func (c *Container) DeckAPI() *deckapi.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.deckAPILocked()
}

func (c *Container) deckAPILocked() *deckapi.Client {
	if c.deckAPI == nil {
		c.deckAPI = deckapi.NewClient(c.config.APIBaseURL, c.httpClientLocked())
	}
	return c.deckAPI
}

func (c *Container) Definitions() (*definition.Cache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.defs != nil {
		return c.defs, nil
	}
	store, err := c.storeLocked()
	if err != nil {
		return nil, err
	}
	var opts []definition.Option
	if c.config.DefinitionFile != "" {
		opts = append(opts, definition.WithFile(c.config.DefinitionFile))
	}
	c.defs = definition.NewCache(c.deckAPILocked(), store, c.config.Namespace, opts...)
	return c.defs, nil
}

func (c *Container) Drafts() (*drafts.Store, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftsLocked()
}

func (c *Container) draftsLocked() (*drafts.Store, error) {
	if c.drafts != nil {
		return c.drafts, nil
	}
	store, err := c.storeLocked()
	if err != nil {
		return nil, err
	}
	c.drafts = drafts.NewStore(store, c.config.Namespace)
	return c.drafts, nil
}

func (c *Container) Settings() (*settings.Store, error) {
	store, err := c.Store()
	if err != nil {
		return nil, err
	}
	return settings.NewStore(store, c.config.Namespace), nil
}

func (c *Container) Screenshots() *steam.ScreenshotLister {
	dir := c.config.ScreenshotsDir
	if dir == "" {
		dir = steam.DefaultScreenshotsDir()
	}
	return steam.NewScreenshotLister(dir)
}

func (c *Container) authStoresLocked() (*auth.TokenStore, *auth.ProfileStore, error) {
	if c.tokens != nil {
		return c.tokens, c.profiles, nil
	}
	store, err := c.storeLocked()
	if err != nil {
		return nil, nil, err
	}
	c.tokens = auth.NewTokenStore(store, c.config.Namespace)
	c.profiles = auth.NewProfileStore(store, c.config.Namespace)
	return c.tokens, c.profiles, nil
}

func (c *Container) oauthLocked() *oauth2.Config {
	if c.oauth == nil {
		c.oauth = auth.NewOAuthConfig(c.config.GitHubClientID, oauth2.Endpoint{})
	}
	return c.oauth
}

func (c *Container) issueClients() vcs.ClientFactory {
	return github.NewFactory(c.config.GitHubOwner, c.config.GitHubRepo)
}

// ReportService wires the definition cache, identity resolution from the running game and the
// host's OS facts, and the GitHub sync pipeline.
func (c *Container) ReportService() (*services.ReportService, error) {
	defs, err := c.Definitions()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	store, err := c.draftsLocked()
	if err != nil {
		return nil, err
	}
	tokens, _, err := c.authStoresLocked()
	if err != nil {
		return nil, err
	}

	httpClient := c.httpClientLocked()
	refresher := auth.NewRefresher(tokens, c.oauthLocked(), auth.WithHTTPClient(httpClient))
	syncer := services.NewIssueSync(refresher, assets.NewUploader(c.config.AssetUploadURL, httpClient), c.issueClients())
	resolver := identity.NewResolver(store,
		identity.WithRunningGame(steam.NewEnvRunningGame()),
		identity.WithSystemInfo(sysinfo.NewLinuxProvider()),
	)

	var opts []services.ReportOption
	if c.translations != nil {
		opts = append(opts, services.WithLocalizer(c.translations))
	}
	return services.NewReportService(defs, resolver, store, syncer, opts...), nil
}

func (c *Container) AuthService() (*services.AuthService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tokens, profiles, err := c.authStoresLocked()
	if err != nil {
		return nil, err
	}
	device := auth.NewDeviceFlow(c.oauthLocked(), tokens, auth.WithPollClient(c.httpClientLocked()))
	return services.NewAuthService(device, tokens, profiles, c.issueClients()), nil
}

// Release check settings; the release repository is deckreport's own, not the reports repository.
const (
	releaseOwner    = "thomas-vilte"
	releaseRepo     = "deckreport"
	releaseCacheKey = "latestRelease"
	releaseCacheTTL = 24 * time.Hour
)

func (c *Container) VersionChecker(currentVersion string) (*services.VersionChecker, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	store, err := c.storeLocked()
	if err != nil {
		return nil, err
	}
	releases := gogithub.NewClient(c.httpClientLocked()).Repositories
	releaseCache := cache.New(store, storage.Key(c.config.Namespace, releaseCacheKey), releaseCacheTTL)
	return services.NewVersionChecker(currentVersion, releaseOwner, releaseRepo, releases, releaseCache), nil
}

// Close releases the storage backend if it was opened.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}
