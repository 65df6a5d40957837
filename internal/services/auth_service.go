package services

import (
	"context"

	"github.com/thomas-vilte/deckreport/internal/auth"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/vcs"
)

// DeviceAuthorizer runs the OAuth device authorization grant.
type DeviceAuthorizer interface {
	Begin(ctx context.Context) (*auth.DeviceCode, error)
	Poll(ctx context.Context, code *auth.DeviceCode) (auth.TokenBundle, error)
}

// PromptFunc shows the user code and verification URI while the login waits for approval.
type PromptFunc func(code *auth.DeviceCode) error

// AuthService logs the user in and out of GitHub and caches who they are.
type AuthService struct {
	device   DeviceAuthorizer
	tokens   *auth.TokenStore
	profiles *auth.ProfileStore
	clients  vcs.ClientFactory
}

func NewAuthService(device DeviceAuthorizer, tokens *auth.TokenStore, profiles *auth.ProfileStore, clients vcs.ClientFactory) *AuthService {
	return &AuthService{
		device:   device,
		tokens:   tokens,
		profiles: profiles,
		clients:  clients,
	}
}

// Login runs the device flow to completion and caches the profile of the new token's owner. A
// profile lookup failure does not undo the login.
func (s *AuthService) Login(ctx context.Context, prompt PromptFunc) (*models.UserProfile, error) {
	code, err := s.device.Begin(ctx)
	if err != nil {
		return nil, err
	}
	if prompt != nil {
		if err := prompt(code); err != nil {
			return nil, err
		}
	}

	bundle, err := s.device.Poll(ctx, code)
	if err != nil {
		return nil, err
	}

	profile, err := s.clients(bundle.AccessToken).GetAuthenticatedUser(ctx)
	if err != nil {
		logger.Warn(ctx, "logged in but could not fetch github profile", "error", err)
		return &models.UserProfile{}, nil
	}
	if err := s.profiles.Save(ctx, *profile); err != nil {
		return nil, err
	}
	logger.Info(ctx, "logged in to github", "login", profile.Login)
	return profile, nil
}

// Logout forgets the tokens and the cached profile.
func (s *AuthService) Logout(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return err
	}
	return s.profiles.Clear(ctx)
}

// Whoami returns the cached profile, or ErrAuthRequired when no token is stored.
func (s *AuthService) Whoami(ctx context.Context) (*models.UserProfile, error) {
	if !s.tokens.HasToken(ctx) {
		return nil, domainErrors.ErrAuthRequired
	}
	profile, err := s.profiles.Load(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &models.UserProfile{}, nil
	}
	return profile, nil
}
