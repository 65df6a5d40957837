// Package identity works out which game a report is about and seeds the form's starting values.
package identity

import (
	"context"

	"github.com/thomas-vilte/deckreport/internal/drafts"
	"github.com/thomas-vilte/deckreport/internal/form"
	"github.com/thomas-vilte/deckreport/internal/logger"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/steam"
	"github.com/thomas-vilte/deckreport/internal/sysinfo"
)

// DraftSource is the read side of drafts.Store.
type DraftSource interface {
	Get(ctx context.Context, key string) (models.Draft, bool, error)
}

// Input holds the values passed explicitly into a report flow.
type Input struct {
	GameName string
	AppID    string
	// Values are further explicit field values; GameName and AppID win over entries here.
	Values map[string]string
}

// Resolution is the seeded state a report session starts from.
type Resolution struct {
	Values             map[string]string
	Images             []string
	DraftKey           string
	EditingIssueNumber *int
	EditingIssueTitle  string
}

// IsEditing reports whether the restored draft edits a published report.
func (r Resolution) IsEditing() bool {
	return r.EditingIssueNumber != nil
}

type Resolver struct {
	drafts  DraftSource
	running steam.RunningGameProvider
	system  sysinfo.Provider
}

type Option func(*Resolver)

func WithRunningGame(p steam.RunningGameProvider) Option {
	return func(r *Resolver) {
		r.running = p
	}
}

func WithSystemInfo(p sysinfo.Provider) Option {
	return func(r *Resolver) {
		r.system = p
	}
}

func NewResolver(d DraftSource, opts ...Option) *Resolver {
	r := &Resolver{drafts: d}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve seeds values in precedence order: explicit input, the running game, template defaults,
// the saved draft for the resulting identity (which may switch the session into edit mode), and
// finally the inferred OS version and device. Failures of the optional sources are logged and
// skipped.
func (r *Resolver) Resolve(ctx context.Context, in Input, def *models.FormDefinition) (Resolution, error) {
	values := make(map[string]string, len(in.Values)+2)
	for k, v := range in.Values {
		values[k] = v
	}
	if in.GameName != "" {
		values[models.FieldIDGameName] = in.GameName
	}
	if in.AppID != "" {
		values[models.FieldIDAppID] = in.AppID
	}

	if r.running != nil && (values[models.FieldIDGameName] == "" || values[models.FieldIDAppID] == "") {
		r.applyRunningGame(ctx, values)
	}

	explicit := make(map[string]bool, len(values))
	for k, v := range values {
		if v != "" {
			explicit[k] = true
		}
	}

	form.SeedDefaults(def, values)

	res := Resolution{DraftKey: drafts.KeyFor(values)}
	draft, found, err := r.drafts.Get(ctx, res.DraftKey)
	if err != nil {
		return Resolution{}, err
	}
	if found {
		for k, v := range draft.Values {
			if !explicit[k] {
				values[k] = v
			}
		}
		res.Images = append([]string(nil), draft.Images...)
		res.EditingIssueNumber = draft.EditingIssueNumber
		res.EditingIssueTitle = draft.EditingIssueTitle
		logger.Debug(ctx, "restored saved draft", "draft_key", res.DraftKey, "editing", res.IsEditing())
	}

	if r.system != nil {
		r.applySystemInfo(ctx, values, def)
	}

	res.Values = values
	return res, nil
}

func (r *Resolver) applyRunningGame(ctx context.Context, values map[string]string) {
	game, err := r.running.RunningGame(ctx)
	if err != nil {
		logger.Warn(ctx, "could not detect running game", "error", err)
		return
	}
	if game == nil {
		return
	}
	if values[models.FieldIDGameName] == "" && game.Title != "" {
		values[models.FieldIDGameName] = game.Title
	}
	if values[models.FieldIDAppID] == "" {
		if id := game.AppIDString(); id != "" {
			values[models.FieldIDAppID] = id
		}
	}
}

func (r *Resolver) applySystemInfo(ctx context.Context, values map[string]string, def *models.FormDefinition) {
	info, err := r.system.SystemInfo(ctx)
	if err != nil {
		logger.Warn(ctx, "could not infer system fields", "error", err)
		return
	}

	if values[models.FieldIDOSVersion] == "" {
		if v := sysinfo.InferOSVersionString(info); v != "" {
			values[models.FieldIDOSVersion] = v
		}
	}

	if values[models.FieldIDDevice] != "" {
		return
	}
	label := sysinfo.InferDeviceLabel(info)
	if label == "" {
		return
	}
	item, ok := def.Item(models.FieldIDDevice)
	if !ok {
		return
	}
	for _, opt := range item.Attributes.Options {
		if opt == label {
			values[models.FieldIDDevice] = opt
			return
		}
	}
}
