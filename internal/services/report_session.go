package services

import (
	"context"
	"sync"

	"github.com/thomas-vilte/deckreport/internal/drafts"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/form"
	"github.com/thomas-vilte/deckreport/internal/identity"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
)

// DraftWriter is the write side of drafts.Store.
type DraftWriter interface {
	Save(ctx context.Context, key string, draft models.Draft) error
	Remove(ctx context.Context, key string) error
}

// ReportSession is one open report form: seeded values, the derived sections for the current
// device, and the draft they are mirrored into after every change.
type ReportSession struct {
	mu        sync.Mutex
	def       *models.FormDefinition
	drafts    DraftWriter
	syncer    IssueSyncer
	validator *form.Validator

	key           string
	values        map[string]string
	images        []string
	editingNumber *int
	editingTitle  string
	sections      []models.Section
	errs          models.ValidationErrors
}

// NewReportSession derives the form from res and persists the starting draft.
func NewReportSession(ctx context.Context, def *models.FormDefinition, res identity.Resolution, d DraftWriter, syncer IssueSyncer, validator *form.Validator) (*ReportSession, error) {
	if def == nil {
		return nil, domainErrors.ErrDefinitionUnavailable
	}
	s := &ReportSession{
		def:           def,
		drafts:        d,
		syncer:        syncer,
		validator:     validator,
		key:           res.DraftKey,
		values:        res.Values,
		images:        append([]string(nil), res.Images...),
		editingNumber: res.EditingIssueNumber,
		editingTitle:  res.EditingIssueTitle,
	}
	if s.values == nil {
		s.values = map[string]string{}
	}
	if s.key == "" {
		s.key = drafts.KeyFor(s.values)
	}
	if err := s.derive(); err != nil {
		return nil, err
	}
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ReportSession) Key() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.key
}

func (s *ReportSession) IsEditing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editingNumber != nil
}

// EditingIssue returns the issue number and title being edited, or 0 in the create flow.
func (s *ReportSession) EditingIssue() (int, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editingNumber == nil {
		return 0, ""
	}
	return *s.editingNumber, s.editingTitle
}

func (s *ReportSession) Sections() []models.Section {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sections
}

func (s *ReportSession) Values() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *ReportSession) Images() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.images...)
}

// Errors returns the outstanding per-field errors: those found by the last failed submit and by
// later edits.
func (s *ReportSession) Errors() models.ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs
}

// SetField coerces and validates raw for the derived field id. The value is merged even when it
// fails validation, so a field can be cleared; the failure is recorded in Errors and returned as a
// *models.ValidationError. The form is then re-derived, since the device drives slider bounds and
// VRR, and the draft is saved. Input that cannot be coerced is rejected without merging.
func (s *ReportSession) SetField(ctx context.Context, id, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	field, ok := models.FindField(s.sections, id)
	if !ok {
		// Hidden items such as enable_vrr on hardware without VRR still take a plain value.
		item, found := s.def.Item(id)
		if !found || !item.IsField() {
			return domainErrors.NewAppError(domainErrors.TypeValidation, "Unknown report field", nil).
				WithContext("detail", id)
		}
		field = hiddenField(item)
	}
	if field.Synthetic {
		return domainErrors.NewAppError(domainErrors.TypeValidation, "Field only holds images", nil).
			WithContext("detail", id)
	}

	value, verr := s.validator.Coerce(field, raw)
	if verr != nil {
		return verr
	}
	if field.Kind == models.FieldImageSelect {
		verr = s.validator.ValidateImageSelect(field.Item, value, s.images)
	} else {
		verr = s.validator.Validate(field.Item, value)
	}

	s.values[id] = value
	s.errs = withFieldError(s.errs, id, verr)
	if err := s.derive(); err != nil {
		return err
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	if verr != nil {
		return verr
	}
	return nil
}

// withFieldError replaces the entry for id, dropping it when verr is nil.
func withFieldError(errs models.ValidationErrors, id string, verr *models.ValidationError) models.ValidationErrors {
	var out models.ValidationErrors
	for _, e := range errs {
		if e.FieldID != id {
			out = append(out, e)
		}
	}
	if verr != nil {
		out = append(out, *verr)
	}
	return out
}

// SetImages replaces the selected screenshots and saves the draft.
func (s *ReportSession) SetImages(ctx context.Context, images []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.images = append([]string(nil), images...)
	return s.persist(ctx)
}

// Close is the back action. Abandoning an edit discards its draft; a new report keeps it.
func (s *ReportSession) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.editingNumber != nil {
		logger.Debug(ctx, "discarding edit draft", "draft_key", s.key)
		return s.drafts.Remove(ctx, s.key)
	}
	return s.persist(ctx)
}

// Submit gives every template item a value, validates them all and publishes the report. The
// draft is only removed once the remote write succeeded.
func (s *ReportSession) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.def.FieldItems() {
		if _, ok := s.values[item.ID]; !ok {
			s.values[item.ID] = ""
		}
	}

	isEditing := s.editingNumber != nil
	if errs := s.validator.ValidateAll(s.def, s.values, s.images, isEditing); len(errs) > 0 {
		s.errs = errs
		logger.Debug(ctx, "report failed validation", "draft_key", s.key, "count", len(errs))
		return "", domainErrors.ErrValidationFailed.WithError(errs)
	}
	s.errs = nil

	draft := s.draft()
	if err := s.persist(ctx); err != nil {
		return "", err
	}

	var (
		url string
		err error
	)
	if isEditing {
		url, err = s.syncer.Update(ctx, draft, s.def.Template.Body, *s.editingNumber)
	} else {
		url, err = s.syncer.Submit(ctx, draft, s.def.Template.Body)
	}
	if err != nil {
		logger.Error(ctx, "report sync failed, draft kept", err, "draft_key", s.key)
		return "", err
	}

	if err := s.drafts.Remove(ctx, s.key); err != nil {
		logger.Warn(ctx, "report published but draft could not be removed", "draft_key", s.key, "error", err)
	}
	return url, nil
}

func hiddenField(item models.FormItem) models.DerivedField {
	kind := models.FieldInput
	switch item.Type {
	case models.ItemTextarea:
		kind = models.FieldTextarea
	case models.ItemDropdown:
		kind = models.FieldDropdown
	}
	return models.DerivedField{Kind: kind, ID: item.ID, Options: item.Attributes.Options, Item: item}
}

func (s *ReportSession) derive() error {
	res, err := form.Derive(s.def, form.Context{
		IsEditing:      s.editingNumber != nil,
		SelectedDevice: s.values[models.FieldIDDevice],
	}, s.values)
	if err != nil {
		return err
	}
	s.sections = res.Sections
	s.values = res.Values
	return nil
}

// persist saves under the identity of the current values, moving the draft when the game name or
// app id changed. A blank game name still yields a key, " [no appid]" at worst.
func (s *ReportSession) persist(ctx context.Context) error {
	key := drafts.KeyFor(s.values)
	if key != s.key {
		if err := s.drafts.Remove(ctx, s.key); err != nil {
			return err
		}
		s.key = key
	}
	return s.drafts.Save(ctx, s.key, s.draft())
}

func (s *ReportSession) draft() models.Draft {
	d := models.NewDraft(s.values, s.images)
	d.EditingIssueNumber = s.editingNumber
	d.EditingIssueTitle = s.editingTitle
	return d
}
