package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/deckreport/internal/auth"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

type authEnv struct {
	device   *MockDeviceAuthorizer
	client   *MockIssueClient
	tokens   *auth.TokenStore
	profiles *auth.ProfileStore
	service  *AuthService
}

func newAuthEnv() *authEnv {
	store := storage.NewMemoryStore()
	env := &authEnv{
		device:   &MockDeviceAuthorizer{},
		client:   &MockIssueClient{},
		tokens:   auth.NewTokenStore(store, "decky-game-settings"),
		profiles: auth.NewProfileStore(store, "decky-game-settings"),
	}
	env.service = NewAuthService(env.device, env.tokens, env.profiles, factoryFor(env.client))
	return env
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	code := &auth.DeviceCode{
		DeviceCode:      "dc",
		UserCode:        "WDJB-MJHT",
		VerificationURI: "https://github.com/login/device",
		Interval:        5 * time.Second,
	}

	t.Run("prompts, polls and caches the profile", func(t *testing.T) {
		env := newAuthEnv()
		env.device.On("Begin", mock.Anything).Return(code, nil)
		env.device.On("Poll", mock.Anything, code).Return(auth.TokenBundle{AccessToken: "gho_new"}, nil)
		env.client.On("GetAuthenticatedUser", mock.Anything).Return(&models.UserProfile{Login: "deckuser"}, nil)

		var shown string
		profile, err := env.service.Login(ctx, func(c *auth.DeviceCode) error {
			shown = c.UserCode
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, "WDJB-MJHT", shown)
		assert.Equal(t, "deckuser", profile.Login)
		cached, err := env.profiles.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "deckuser", cached.Login)
	})

	t.Run("prompt error aborts before polling", func(t *testing.T) {
		env := newAuthEnv()
		env.device.On("Begin", mock.Anything).Return(code, nil)

		_, err := env.service.Login(ctx, func(*auth.DeviceCode) error { return errors.New("no tty") })

		assert.EqualError(t, err, "no tty")
		env.device.AssertNotCalled(t, "Poll", mock.Anything, mock.Anything)
	})

	t.Run("denied", func(t *testing.T) {
		env := newAuthEnv()
		env.device.On("Begin", mock.Anything).Return(code, nil)
		env.device.On("Poll", mock.Anything, code).Return(auth.TokenBundle{}, domainErrors.ErrDeviceFlowDenied)

		_, err := env.service.Login(ctx, nil)

		assert.ErrorIs(t, err, domainErrors.ErrDeviceFlowDenied)
	})

	t.Run("profile failure keeps the login", func(t *testing.T) {
		env := newAuthEnv()
		env.device.On("Begin", mock.Anything).Return(code, nil)
		env.device.On("Poll", mock.Anything, code).Return(auth.TokenBundle{AccessToken: "gho_new"}, nil)
		env.client.On("GetAuthenticatedUser", mock.Anything).Return(nil, domainErrors.ErrGitHubTokenInvalid)

		profile, err := env.service.Login(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, profile.Login)
	})
}

func TestAuthService_WhoamiAndLogout(t *testing.T) {
	ctx := context.Background()
	env := newAuthEnv()

	_, err := env.service.Whoami(ctx)
	assert.ErrorIs(t, err, domainErrors.ErrAuthRequired)

	require.NoError(t, env.tokens.Save(ctx, auth.TokenBundle{AccessToken: "gho_x"}))
	require.NoError(t, env.profiles.Save(ctx, models.UserProfile{Login: "deckuser"}))

	profile, err := env.service.Whoami(ctx)
	require.NoError(t, err)
	assert.Equal(t, "deckuser", profile.Login)

	require.NoError(t, env.service.Logout(ctx))

	assert.False(t, env.tokens.HasToken(ctx))
	cached, err := env.profiles.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
