package services

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/google/go-github/v80/github"
	"golang.org/x/mod/semver"

	"github.com/thomas-vilte/deckreport/internal/cache"
	"github.com/thomas-vilte/deckreport/internal/logger"
)

const (
	// DisableUpdateCheckEnv turns the release check off when set to any value.
	DisableUpdateCheckEnv = "DECKREPORT_DISABLE_UPDATE_CHECK"

	updateCheckTimeout = 2 * time.Second
)

// ReleaseFetcher is the part of github.RepositoriesService the checker needs.
type ReleaseFetcher interface {
	GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error)
}

// VersionChecker looks up the latest published release at most once per cache TTL.
type VersionChecker struct {
	currentVersion string
	owner, repo    string
	releases       ReleaseFetcher
	cache          *cache.Cache
}

func NewVersionChecker(currentVersion, owner, repo string, releases ReleaseFetcher, c *cache.Cache) *VersionChecker {
	return &VersionChecker{
		currentVersion: currentVersion,
		owner:          owner,
		repo:           repo,
		releases:       releases,
		cache:          c,
	}
}

// CheckForUpdates returns the latest release tag when it is newer than the running version.
// Lookup failures are logged and reported as no update.
func (v *VersionChecker) CheckForUpdates(ctx context.Context) (string, bool) {
	if os.Getenv(DisableUpdateCheckEnv) != "" {
		return "", false
	}

	latest, err := v.latest(ctx)
	if err != nil {
		logger.Debug(ctx, "release check failed", "error", err)
		return "", false
	}
	if latest == "" || !IsNewerVersion(v.currentVersion, latest) {
		return "", false
	}
	return latest, true
}

func (v *VersionChecker) latest(ctx context.Context) (string, error) {
	if raw, ok, err := v.cache.Get(ctx); err == nil && ok {
		var tag string
		if err := json.Unmarshal(raw, &tag); err == nil {
			return tag, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()

	release, _, err := v.releases.GetLatestRelease(ctx, v.owner, v.repo)
	if err != nil {
		return "", err
	}
	tag := release.GetTagName()
	if err := v.cache.Set(ctx, tag); err != nil {
		logger.Debug(ctx, "could not cache latest release", "error", err)
	}
	return tag, nil
}

// IsNewerVersion compares two release tags, with or without the v prefix. Tags that are not
// semantic versions count as newer whenever they differ.
func IsNewerVersion(current, latest string) bool {
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return current != latest
	}

	return semver.Compare(latest, current) > 0
}
