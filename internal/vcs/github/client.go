package github

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/vcs"
	"golang.org/x/oauth2"
)

const (
	DefaultOwner = "DeckSettings"
	DefaultRepo  = "game-reports-steamos"
)

var _ vcs.IssueClient = (*GitHubClient)(nil)

type IssuesService interface {
	Create(ctx context.Context, owner, repo string, issue *github.IssueRequest) (*github.Issue, *github.Response, error)
	Edit(ctx context.Context, owner, repo string, number int, issue *github.IssueRequest) (*github.Issue, *github.Response, error)
}

type UsersService interface {
	Get(ctx context.Context, user string) (*github.User, *github.Response, error)
}

type GitHubClient struct {
	issuesService IssuesService
	usersService  UsersService
	owner         string
	repo          string
}

func NewGitHubClient(owner, repo, token string) *GitHubClient {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	return NewGitHubClientWithServices(client.Issues, client.Users, owner, repo)
}

// NewFactory returns a vcs.ClientFactory bound to the reports repository.
func NewFactory(owner, repo string) vcs.ClientFactory {
	return func(token string) vcs.IssueClient {
		return NewGitHubClient(owner, repo, token)
	}
}

func NewGitHubClientWithServices(issuesService IssuesService, usersService UsersService, owner, repo string) *GitHubClient {
	if owner == "" {
		owner = DefaultOwner
	}
	if repo == "" {
		repo = DefaultRepo
	}
	return &GitHubClient{
		issuesService: issuesService,
		usersService:  usersService,
		owner:         owner,
		repo:          repo,
	}
}

func (ghc *GitHubClient) CreateIssue(ctx context.Context, title, body string, labels []string) (*models.RemoteIssue, error) {
	log := logger.FromContext(ctx)

	log.Info("creating github issue",
		"owner", ghc.owner,
		"repo", ghc.repo,
		"labels_count", len(labels))

	issueRequest := &github.IssueRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
	}
	if len(labels) > 0 {
		issueRequest.Labels = &labels
	}

	ghIssue, resp, err := ghc.issuesService.Create(ctx, ghc.owner, ghc.repo, issueRequest)
	if err != nil {
		if mapped := ghc.mapStatus(resp, "create issue"); mapped != nil {
			return nil, mapped
		}
		log.Error("failed to create github issue",
			"error", err,
			"owner", ghc.owner,
			"repo", ghc.repo)
		return nil, domainErrors.ErrCreateIssue.WithError(err)
	}

	issue, err := toRemoteIssue(ghIssue)
	if err != nil {
		return nil, err
	}

	log.Info("github issue created successfully",
		"issue_number", issue.Number,
		"issue_url", issue.HTMLURL)

	return issue, nil
}

func (ghc *GitHubClient) EditIssue(ctx context.Context, number int, title, body string) (*models.RemoteIssue, error) {
	log := logger.FromContext(ctx)

	log.Info("updating github issue",
		"owner", ghc.owner,
		"repo", ghc.repo,
		"issue_number", number)

	issueRequest := &github.IssueRequest{
		Title: github.Ptr(title),
		Body:  github.Ptr(body),
	}

	ghIssue, resp, err := ghc.issuesService.Edit(ctx, ghc.owner, ghc.repo, number, issueRequest)
	if err != nil {
		if mapped := ghc.mapStatus(resp, "update issue"); mapped != nil {
			return nil, mapped.WithContext("issue_number", number)
		}
		log.Error("failed to update github issue",
			"error", err,
			"issue_number", number)
		return nil, domainErrors.ErrUpdateIssue.WithError(err).WithContext("issue_number", number)
	}

	issue, err := toRemoteIssue(ghIssue)
	if err != nil {
		return nil, err
	}

	log.Info("github issue updated successfully",
		"issue_number", issue.Number,
		"issue_url", issue.HTMLURL)

	return issue, nil
}

func (ghc *GitHubClient) GetAuthenticatedUser(ctx context.Context) (*models.UserProfile, error) {
	user, resp, err := ghc.usersService.Get(ctx, "")
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, domainErrors.ErrGitHubTokenInvalid.
				WithContext("operation", "get authenticated user")
		}
		return nil, fmt.Errorf("error obtaining authenticated user: %w", err)
	}

	if user.Login == nil {
		return nil, fmt.Errorf("authenticated user has no login")
	}

	return &models.UserProfile{
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
		HTMLURL:   user.GetHTMLURL(),
	}, nil
}

// mapStatus turns the statuses with a dedicated error into that error; nil means "use the generic one".
func (ghc *GitHubClient) mapStatus(resp *github.Response, operation string) *domainErrors.AppError {
	if resp == nil || resp.Response == nil {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domainErrors.ErrGitHubTokenInvalid.
			WithContext("operation", operation)
	case http.StatusNotFound:
		return domainErrors.ErrRepositoryNotFound.
			WithContext("operation", operation).
			WithContext("repo", fmt.Sprintf("%s/%s", ghc.owner, ghc.repo))
	}
	return nil
}

func toRemoteIssue(ghIssue *github.Issue) (*models.RemoteIssue, error) {
	if ghIssue == nil || ghIssue.GetHTMLURL() == "" {
		return nil, domainErrors.ErrMissingIssueURL
	}
	return &models.RemoteIssue{
		Number:  ghIssue.GetNumber(),
		HTMLURL: ghIssue.GetHTMLURL(),
		Title:   ghIssue.GetTitle(),
		Body:    ghIssue.GetBody(),
	}, nil
}
