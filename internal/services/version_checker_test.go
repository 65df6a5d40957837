package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/thomas-vilte/deckreport/internal/cache"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

type MockReleaseFetcher struct {
	mock.Mock
}

func (m *MockReleaseFetcher) GetLatestRelease(ctx context.Context, owner, repo string) (*github.RepositoryRelease, *github.Response, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, nil, args.Error(1)
	}
	return args.Get(0).(*github.RepositoryRelease), nil, args.Error(1)
}

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		latest   string
		expected bool
	}{
		{name: "patch update available", current: "v1.0.0", latest: "v1.0.1", expected: true},
		{name: "minor update available", current: "v1.0.0", latest: "v1.1.0", expected: true},
		{name: "major update available", current: "v1.0.0", latest: "v2.0.0", expected: true},
		{name: "same version", current: "v1.0.0", latest: "v1.0.0", expected: false},
		{name: "current is newer", current: "v1.5.0", latest: "v1.4.9", expected: false},
		{name: "without v prefix in current", current: "1.0.0", latest: "v1.0.1", expected: true},
		{name: "without v prefix in both", current: "1.0.0", latest: "1.0.1", expected: true},
		{name: "prerelease versions", current: "v1.0.0-beta.1", latest: "v1.0.0", expected: true},
		{name: "non semver tags", current: "v1.0.0", latest: "nightly", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsNewerVersion(tt.current, tt.latest))
		})
	}
}

func newTestChecker(current string) (*VersionChecker, *MockReleaseFetcher) {
	releases := &MockReleaseFetcher{}
	c := cache.New(storage.NewMemoryStore(), "deckreport:latestRelease", 24*time.Hour)
	return NewVersionChecker(current, "thomas-vilte", "deckreport", releases, c), releases
}

func TestVersionChecker_CheckForUpdates(t *testing.T) {
	t.Run("newer release is cached", func(t *testing.T) {
		checker, releases := newTestChecker("0.4.0")
		releases.On("GetLatestRelease", mock.Anything, "thomas-vilte", "deckreport").
			Return(&github.RepositoryRelease{TagName: github.Ptr("v0.5.0")}, nil).Once()

		latest, ok := checker.CheckForUpdates(context.Background())
		assert.True(t, ok)
		assert.Equal(t, "v0.5.0", latest)

		latest, ok = checker.CheckForUpdates(context.Background())
		assert.True(t, ok)
		assert.Equal(t, "v0.5.0", latest)
		releases.AssertNumberOfCalls(t, "GetLatestRelease", 1)
	})

	t.Run("up to date", func(t *testing.T) {
		checker, releases := newTestChecker("0.4.0")
		releases.On("GetLatestRelease", mock.Anything, mock.Anything, mock.Anything).
			Return(&github.RepositoryRelease{TagName: github.Ptr("v0.4.0")}, nil)

		_, ok := checker.CheckForUpdates(context.Background())

		assert.False(t, ok)
	})

	t.Run("lookup failure", func(t *testing.T) {
		checker, releases := newTestChecker("0.4.0")
		releases.On("GetLatestRelease", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("rate limited"))

		_, ok := checker.CheckForUpdates(context.Background())

		assert.False(t, ok)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Setenv(DisableUpdateCheckEnv, "1")
		checker, releases := newTestChecker("0.4.0")

		_, ok := checker.CheckForUpdates(context.Background())

		assert.False(t, ok)
		releases.AssertNotCalled(t, "GetLatestRelease", mock.Anything, mock.Anything, mock.Anything)
	})
}
