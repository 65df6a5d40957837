package services

import (
	"context"

	"github.com/thomas-vilte/deckreport/internal/drafts"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/form"
	"github.com/thomas-vilte/deckreport/internal/identity"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
)

// DefinitionSource yields the current report form, or nil when it is unavailable.
type DefinitionSource interface {
	Get(ctx context.Context) (*models.FormDefinition, error)
}

// ReportService opens report sessions: it loads the definition, seeds the values and hands the
// session its validator and sync pipeline.
type ReportService struct {
	definitions DefinitionSource
	resolver    *identity.Resolver
	drafts      *drafts.Store
	syncer      IssueSyncer
	localizer   form.Localizer
}

type ReportOption func(*ReportService)

func WithLocalizer(l form.Localizer) ReportOption {
	return func(s *ReportService) {
		s.localizer = l
	}
}

func NewReportService(definitions DefinitionSource, resolver *identity.Resolver, store *drafts.Store, syncer IssueSyncer, opts ...ReportOption) *ReportService {
	s := &ReportService{
		definitions: definitions,
		resolver:    resolver,
		drafts:      store,
		syncer:      syncer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open starts a report for the game in `in`, resuming its saved draft if there is one.
func (s *ReportService) Open(ctx context.Context, in identity.Input) (*ReportSession, error) {
	def, err := s.definition(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.resolver.Resolve(ctx, in, def)
	if err != nil {
		return nil, err
	}
	ctx = logger.With(ctx, "draft_key", res.DraftKey)
	logger.Debug(ctx, "opening report", "editing", res.IsEditing())
	return NewReportSession(ctx, def, res, s.drafts, s.syncer, s.validator(def))
}

// OpenDraft resumes the draft stored under key exactly as saved.
func (s *ReportService) OpenDraft(ctx context.Context, key string) (*ReportSession, error) {
	d, ok, err := s.drafts.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainErrors.ErrDraftMissing.WithContext("detail", key)
	}
	def, err := s.definition(ctx)
	if err != nil {
		return nil, err
	}
	res := identity.Resolution{
		Values:             d.Values,
		Images:             d.Images,
		DraftKey:           key,
		EditingIssueNumber: d.EditingIssueNumber,
		EditingIssueTitle:  d.EditingIssueTitle,
	}
	return NewReportSession(ctx, def, res, s.drafts, s.syncer, s.validator(def))
}

// OpenEdit seeds an edit draft from a published report and opens it.
func (s *ReportService) OpenEdit(ctx context.Context, report models.GameReport) (*ReportSession, error) {
	key, _, err := s.drafts.SeedEditDraft(ctx, report)
	if err != nil {
		return nil, err
	}
	return s.OpenDraft(ctx, key)
}

func (s *ReportService) definition(ctx context.Context) (*models.FormDefinition, error) {
	def, err := s.definitions.Get(ctx)
	if err != nil {
		return nil, err
	}
	if def == nil {
		return nil, domainErrors.ErrDefinitionUnavailable
	}
	return def, nil
}

func (s *ReportService) validator(def *models.FormDefinition) *form.Validator {
	if s.localizer == nil {
		return form.NewValidator(def.Schema)
	}
	return form.NewValidator(def.Schema, form.WithLocalizer(s.localizer))
}
