package services

import (
	"context"
	"errors"
	"strings"

	"github.com/thomas-vilte/deckreport/internal/assets"
	"github.com/thomas-vilte/deckreport/internal/auth"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/vcs"
)

// The reports repository derives the canonical title server side; these are placeholders.
const (
	SubmitIssueTitle = "(Report submitted from Deck Settings Decky Plugin)"
	UpdateIssueTitle = "(Report updated from Deck Settings Decky Plugin)"

	noResponse = "_No response_"
)

// IssueSyncer publishes a draft as a remote issue and returns the issue URL.
type IssueSyncer interface {
	Submit(ctx context.Context, draft models.Draft, templateBody []models.FormItem) (string, error)
	Update(ctx context.Context, draft models.Draft, templateBody []models.FormItem, issueNumber int) (string, error)
}

type IssueSync struct {
	tokens   auth.TokenProvider
	uploader assets.Uploader
	clients  vcs.ClientFactory
}

var _ IssueSyncer = (*IssueSync)(nil)

func NewIssueSync(tokens auth.TokenProvider, uploader assets.Uploader, clients vcs.ClientFactory) *IssueSync {
	return &IssueSync{
		tokens:   tokens,
		uploader: uploader,
		clients:  clients,
	}
}

// Submit uploads the draft's images and opens a new report issue.
func (s *IssueSync) Submit(ctx context.Context, draft models.Draft, templateBody []models.FormItem) (string, error) {
	token, body, err := s.prepare(ctx, draft, templateBody)
	if err != nil {
		return "", err
	}

	issue, err := s.clients(token).CreateIssue(ctx, SubmitIssueTitle, body, nil)
	if err != nil {
		return "", asRemoteWrite(err, domainErrors.ErrCreateIssue)
	}
	logger.Info(ctx, "report submitted", "issue_number", issue.Number, "issue_url", issue.HTMLURL)
	return issue.HTMLURL, nil
}

// Update regenerates the whole body of an existing report issue.
func (s *IssueSync) Update(ctx context.Context, draft models.Draft, templateBody []models.FormItem, issueNumber int) (string, error) {
	token, body, err := s.prepare(ctx, draft, templateBody)
	if err != nil {
		return "", err
	}

	issue, err := s.clients(token).EditIssue(ctx, issueNumber, UpdateIssueTitle, body)
	if err != nil {
		return "", asRemoteWrite(err, domainErrors.ErrUpdateIssue).WithContext("issue_number", issueNumber)
	}
	logger.Info(ctx, "report updated", "issue_number", issue.Number, "issue_url", issue.HTMLURL)
	return issue.HTMLURL, nil
}

func (s *IssueSync) prepare(ctx context.Context, draft models.Draft, templateBody []models.FormItem) (string, string, error) {
	token, err := s.tokens.EnsureFreshToken(ctx)
	if err != nil {
		return "", "", err
	}
	if token == "" {
		return "", "", domainErrors.ErrAuthRequired
	}

	paths := make([]string, 0, len(draft.Images))
	for _, p := range draft.Images {
		paths = append(paths, assets.NormalizePath(p))
	}

	var urls []string
	if len(paths) > 0 {
		urls, err = s.uploader.Upload(ctx, paths, token)
		if err != nil {
			if domainErrors.IsType(err, domainErrors.TypeAssetUpload) {
				return "", "", err
			}
			return "", "", domainErrors.ErrUploadFailed.WithError(err)
		}
		if len(urls) == 0 {
			logger.Warn(ctx, "upload returned no urls", "images_count", len(paths))
			return "", "", domainErrors.ErrUploadFailed
		}
	}

	return token, BuildIssueBody(draft.Values, templateBody, urls), nil
}

// asRemoteWrite keeps typed client errors and wraps anything else in fallback.
func asRemoteWrite(err error, fallback *domainErrors.AppError) *domainErrors.AppError {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return fallback.WithError(err)
}

// BuildIssueBody renders one "### <label>" block per non-markdown template item in template order.
// Empty values become "_No response_". The game display settings block carries its text and
// then the uploaded screenshots, and only falls back to the placeholder when both are missing.
func BuildIssueBody(values map[string]string, templateBody []models.FormItem, imageURLs []string) string {
	var imagesMD string
	if len(imageURLs) > 0 {
		embeds := make([]string, len(imageURLs))
		for i, u := range imageURLs {
			embeds[i] = "![screenshot](" + u + ")"
		}
		imagesMD = strings.Join(embeds, "\n\n")
	}

	var b strings.Builder
	for _, item := range templateBody {
		if !item.IsField() {
			continue
		}
		label := item.Attributes.Label
		if label == "" {
			label = item.ID
		}
		b.WriteString("### " + label + "\n\n")

		text := strings.TrimSpace(values[item.ID])
		if item.ID != models.FieldIDGameDisplaySettings {
			if text == "" {
				text = noResponse
			}
			b.WriteString(text + "\n\n")
			continue
		}

		if text != "" {
			b.WriteString(text + "\n\n")
		}
		if imagesMD != "" {
			b.WriteString(imagesMD + "\n\n")
		}
		if text == "" && imagesMD == "" {
			b.WriteString(noResponse + "\n\n")
		}
	}
	return b.String()
}
