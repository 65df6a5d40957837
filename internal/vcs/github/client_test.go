package github

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
)

func newTestClient(issues *MockIssuesService, users *MockUserService) *GitHubClient {
	return NewGitHubClientWithServices(issues, users, "test-owner", "test-repo")
}

func statusResponse(code int) *github.Response {
	return &github.Response{Response: &http.Response{StatusCode: code}}
}

func TestNewGitHubClientWithServices_Defaults(t *testing.T) {
	client := NewGitHubClientWithServices(&MockIssuesService{}, &MockUserService{}, "", "")

	assert.Equal(t, "DeckSettings", client.owner)
	assert.Equal(t, "game-reports-steamos", client.repo)
}

func TestGitHubClient_CreateIssue(t *testing.T) {
	t.Run("should create issue successfully", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		title := "(Report submitted from Deck Settings Decky Plugin)"
		body := "### Game Name\n\nHades II\n\n"

		expected := &github.Issue{
			Number:  github.Ptr(42),
			Title:   github.Ptr(title),
			Body:    github.Ptr(body),
			HTMLURL: github.Ptr("https://github.com/test-owner/test-repo/issues/42"),
		}

		mockIssues.On("Create", mock.Anything, "test-owner", "test-repo", mock.MatchedBy(func(req *github.IssueRequest) bool {
			return req.GetTitle() == title && req.GetBody() == body && req.Labels == nil
		})).Return(expected, &github.Response{}, nil)

		result, err := client.CreateIssue(context.Background(), title, body, nil)

		require.NoError(t, err)
		assert.Equal(t, 42, result.Number)
		assert.Equal(t, "https://github.com/test-owner/test-repo/issues/42", result.HTMLURL)
		assert.Equal(t, body, result.Body)
		mockIssues.AssertExpectations(t)
	})

	t.Run("should pass labels when given", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		mockIssues.On("Create", mock.Anything, "test-owner", "test-repo", mock.MatchedBy(func(req *github.IssueRequest) bool {
			return req.Labels != nil && len(*req.Labels) == 1 && (*req.Labels)[0] == "DEVICE:Steam Deck OLED"
		})).Return(&github.Issue{Number: github.Ptr(1), HTMLURL: github.Ptr("https://x/1")}, &github.Response{}, nil)

		_, err := client.CreateIssue(context.Background(), "t", "b", []string{"DEVICE:Steam Deck OLED"})

		require.NoError(t, err)
		mockIssues.AssertExpectations(t)
	})

	t.Run("should wrap generic failures as remote write errors", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		mockIssues.On("Create", mock.Anything, "test-owner", "test-repo", mock.Anything).
			Return((*github.Issue)(nil), statusResponse(http.StatusInternalServerError), assert.AnError)

		_, err := client.CreateIssue(context.Background(), "Title", "Body", nil)

		require.Error(t, err)
		assert.ErrorIs(t, err, domainErrors.ErrCreateIssue)
		assert.ErrorIs(t, err, assert.AnError)
		assert.True(t, domainErrors.IsType(err, domainErrors.TypeRemoteWrite))
	})

	t.Run("should map 401 to an invalid token error", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		mockIssues.On("Create", mock.Anything, "test-owner", "test-repo", mock.Anything).
			Return((*github.Issue)(nil), statusResponse(http.StatusUnauthorized), assert.AnError)

		_, err := client.CreateIssue(context.Background(), "Title", "Body", nil)

		assert.ErrorIs(t, err, domainErrors.ErrGitHubTokenInvalid)
	})

	t.Run("should map 404 to repository not found", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		mockIssues.On("Create", mock.Anything, "test-owner", "test-repo", mock.Anything).
			Return((*github.Issue)(nil), statusResponse(http.StatusNotFound), assert.AnError)

		_, err := client.CreateIssue(context.Background(), "Title", "Body", nil)

		assert.ErrorIs(t, err, domainErrors.ErrRepositoryNotFound)
		assert.Contains(t, err.Error(), "reports repository not found")
	})

	t.Run("should reject a response without html_url", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		mockIssues.On("Create", mock.Anything, "test-owner", "test-repo", mock.Anything).
			Return(&github.Issue{Number: github.Ptr(7)}, &github.Response{}, nil)

		_, err := client.CreateIssue(context.Background(), "Title", "Body", nil)

		assert.ErrorIs(t, err, domainErrors.ErrMissingIssueURL)
	})
}

func TestGitHubClient_EditIssue(t *testing.T) {
	t.Run("should replace title and body", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		mockIssues.On("Edit", mock.Anything, "test-owner", "test-repo", 321, mock.MatchedBy(func(req *github.IssueRequest) bool {
			return req.GetTitle() == "(Report updated from Deck Settings Decky Plugin)" && req.GetBody() == "new body"
		})).Return(&github.Issue{
			Number:  github.Ptr(321),
			HTMLURL: github.Ptr("https://github.com/test-owner/test-repo/issues/321"),
		}, &github.Response{}, nil)

		result, err := client.EditIssue(context.Background(), 321, "(Report updated from Deck Settings Decky Plugin)", "new body")

		require.NoError(t, err)
		assert.Equal(t, "https://github.com/test-owner/test-repo/issues/321", result.HTMLURL)
		mockIssues.AssertExpectations(t)
	})

	t.Run("should wrap failures as update errors", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		mockIssues.On("Edit", mock.Anything, "test-owner", "test-repo", 9, mock.Anything).
			Return((*github.Issue)(nil), statusResponse(http.StatusUnprocessableEntity), assert.AnError)

		_, err := client.EditIssue(context.Background(), 9, "t", "b")

		assert.ErrorIs(t, err, domainErrors.ErrUpdateIssue)
		var appErr *domainErrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 9, appErr.Context["issue_number"])
	})

	t.Run("should survive a nil response", func(t *testing.T) {
		mockIssues := &MockIssuesService{}
		client := newTestClient(mockIssues, &MockUserService{})

		mockIssues.On("Edit", mock.Anything, "test-owner", "test-repo", 9, mock.Anything).
			Return((*github.Issue)(nil), (*github.Response)(nil), assert.AnError)

		_, err := client.EditIssue(context.Background(), 9, "t", "b")

		assert.ErrorIs(t, err, domainErrors.ErrUpdateIssue)
	})
}

func TestGitHubClient_GetAuthenticatedUser(t *testing.T) {
	t.Run("should map the user profile", func(t *testing.T) {
		mockUsers := &MockUserService{}
		client := newTestClient(&MockIssuesService{}, mockUsers)

		mockUsers.On("Get", mock.Anything, "").Return(&github.User{
			Login:     github.Ptr("octocat"),
			Name:      github.Ptr("The Octocat"),
			AvatarURL: github.Ptr("https://avatars.example/octocat"),
			HTMLURL:   github.Ptr("https://github.com/octocat"),
		}, &github.Response{}, nil)

		profile, err := client.GetAuthenticatedUser(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "octocat", profile.Login)
		assert.Equal(t, "The Octocat", profile.Name)
		assert.Equal(t, "https://github.com/octocat", profile.HTMLURL)
	})

	t.Run("should map 401", func(t *testing.T) {
		mockUsers := &MockUserService{}
		client := newTestClient(&MockIssuesService{}, mockUsers)

		mockUsers.On("Get", mock.Anything, "").Return((*github.User)(nil), statusResponse(http.StatusUnauthorized), assert.AnError)

		_, err := client.GetAuthenticatedUser(context.Background())

		assert.ErrorIs(t, err, domainErrors.ErrGitHubTokenInvalid)
	})

	t.Run("should reject a user without login", func(t *testing.T) {
		mockUsers := &MockUserService{}
		client := newTestClient(&MockIssuesService{}, mockUsers)

		mockUsers.On("Get", mock.Anything, "").Return(&github.User{}, &github.Response{}, nil)

		_, err := client.GetAuthenticatedUser(context.Background())

		assert.EqualError(t, err, "authenticated user has no login")
	})
}

func TestNewFactory(t *testing.T) {
	client := NewFactory("o", "r")("token")

	gh, ok := client.(*GitHubClient)
	require.True(t, ok)
	assert.Equal(t, "o", gh.owner)
	assert.Equal(t, "r", gh.repo)
}
