package vcs

import (
	"context"

	"github.com/thomas-vilte/deckreport/internal/models"
)

// IssueClient is the slice of an issue tracker the report pipeline writes to.
type IssueClient interface {
	// CreateIssue opens a new issue in the reports repository
	CreateIssue(ctx context.Context, title, body string, labels []string) (*models.RemoteIssue, error)
	// EditIssue replaces the title and body of an existing issue
	EditIssue(ctx context.Context, number int, title, body string) (*models.RemoteIssue, error)
	// GetAuthenticatedUser returns the profile behind the client's token
	GetAuthenticatedUser(ctx context.Context) (*models.UserProfile, error)
}

// ClientFactory builds an IssueClient authenticated with token.
type ClientFactory func(token string) IssueClient
