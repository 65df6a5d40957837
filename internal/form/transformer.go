package form

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/thomas-vilte/deckreport/internal/models"
)

var (
	inGameHeading      = regexp.MustCompile(`(?i)##\s*In-Game Settings`)
	additionalHeading  = regexp.MustCompile(`(?i)##\s*Additional Notes`)
	performanceHeading = regexp.MustCompile(`(?i)##\s*SteamOS Performance Settings`)
)

const (
	imageSelectLabel       = "Game Display Settings"
	imageSelectDescription = "Upload screenshots of your in-game settings."
	additionalShotsLabel   = "Additional Screenshots"
)

// Context is everything besides the definition that shapes the derived form.
type Context struct {
	IsEditing bool
	// SelectedDevice picks the hardware profile; when empty the seeded "device" value is used.
	SelectedDevice string
}

// Result is the derived form plus the value map with template defaults applied.
type Result struct {
	Sections []models.Section
	Values   map[string]string
}

type sliderBounds struct {
	min, max, step float64
}

// Derive splits the template into sections and rewrites its items into field descriptors. It is
// pure: seed is copied, and equal inputs always give equal output.
func Derive(def *models.FormDefinition, dctx Context, seed map[string]string) (Result, error) {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	if def == nil {
		return Result{Sections: []models.Section{}, Values: values}, nil
	}

	device := dctx.SelectedDevice
	if device == "" {
		device = values[models.FieldIDDevice]
	}
	profile, hasProfile := def.Profile(device)

	sections := make([]models.Section, 0)
	var current *models.Section
	push := func() {
		if current != nil {
			sections = append(sections, *current)
			current = nil
		}
	}

	for i, item := range def.Template.Body {
		switch item.Type {
		case models.ItemMarkdown:
			push()
			kind, md := classifyHeading(item.Attributes.Value)
			current = &models.Section{Kind: kind, Markdown: md, Fields: []models.DerivedField{}}
			continue
		case models.ItemInput, models.ItemTextarea, models.ItemDropdown:
		default:
			return Result{}, fmt.Errorf("template item %d (%q) has unsupported type %q", i, item.ID, item.Type)
		}
		if item.ID == "" {
			continue
		}
		if current == nil {
			current = &models.Section{Kind: models.SectionGeneric, Fields: []models.DerivedField{}}
		}

		if !dctx.IsEditing {
			switch item.ID {
			case models.FieldIDGameDisplaySettings:
				current.Fields = append(current.Fields, models.DerivedField{
					Kind:        models.FieldImageSelect,
					ID:          item.ID,
					Label:       imageSelectLabel,
					Description: imageSelectDescription,
					Required:    item.Validations.Required,
					Item:        item,
				})
				continue
			case models.FieldIDGameGraphicsSettings:
				continue
			}
		}

		seedDefault(values, item, def.Schema)

		field := baseField(item)
		if current.Kind == models.SectionPerformanceSettings {
			field.Description = ""
			if item.Type == models.ItemInput {
				if b, ok := boundsFor(item.ID, profile); ok {
					field = models.DerivedField{
						Kind:     models.FieldSlider,
						ID:       item.ID,
						Label:    item.Attributes.Label,
						Min:      b.min,
						Max:      b.max,
						Step:     b.step,
						Required: item.Validations.Required,
						Item:     item,
					}
				}
			}
		}

		if item.Type == models.ItemDropdown {
			if isOnOff(item.Attributes.Options) {
				field = models.DerivedField{
					Kind:     models.FieldToggle,
					ID:       item.ID,
					Label:    item.Attributes.Label,
					Options:  []string{models.ToggleOn, models.ToggleOff},
					Required: item.Validations.Required,
					Item:     item,
				}
			}
			if item.ID == models.FieldIDEnableVRR && !(hasProfile && profile.SupportsVRR) {
				if values[item.ID] == "" {
					values[item.ID] = hiddenDropdownDefault(item)
				}
				continue
			}
		}

		current.Fields = append(current.Fields, field)

		if dctx.IsEditing && item.Type == models.ItemTextarea && item.ID == models.FieldIDAdditionalNotes {
			current.Fields = append(current.Fields, models.DerivedField{
				Kind:      models.FieldImageSelect,
				ID:        models.FieldIDAdditionalScreens,
				Label:     additionalShotsLabel,
				Synthetic: true,
			})
		}
	}
	push()

	return Result{Sections: sections, Values: values}, nil
}

func classifyHeading(text string) (models.SectionKind, string) {
	switch {
	case inGameHeading.MatchString(text):
		return models.SectionInGameSettings, "## In-Game Settings"
	case additionalHeading.MatchString(text):
		return models.SectionAdditionalNotes, "## Additional Notes"
	case performanceHeading.MatchString(text):
		return models.SectionPerformanceSettings, text
	default:
		return models.SectionGeneric, text
	}
}

func baseField(item models.FormItem) models.DerivedField {
	f := models.DerivedField{
		ID:          item.ID,
		Label:       item.Attributes.Label,
		Description: item.Attributes.Description,
		Placeholder: item.Attributes.Placeholder,
		Required:    item.Validations.Required,
		Item:        item,
	}
	switch item.Type {
	case models.ItemInput:
		f.Kind = models.FieldInput
	case models.ItemTextarea:
		f.Kind = models.FieldTextarea
		f.Multiline = true
	case models.ItemDropdown:
		f.Kind = models.FieldDropdown
		f.Options = append([]string(nil), item.Attributes.Options...)
	}
	return f
}

// SeedDefaults applies every field item's declared default to values where it is still unset.
func SeedDefaults(def *models.FormDefinition, values map[string]string) {
	if def == nil {
		return
	}
	for _, item := range def.FieldItems() {
		seedDefault(values, item, def.Schema)
	}
}

// seedDefault writes the item's declared default when the value is still unset. Input and
// textarea items use attributes.value, dropdowns use options[default]; the schema default is the
// fallback for both.
func seedDefault(values map[string]string, item models.FormItem, schema models.FormSchema) {
	if values[item.ID] != "" {
		return
	}
	switch item.Type {
	case models.ItemInput, models.ItemTextarea:
		if item.Attributes.Value != "" {
			values[item.ID] = item.Attributes.Value
			return
		}
	case models.ItemDropdown:
		if v, ok := item.DefaultOption(); ok {
			values[item.ID] = v
			return
		}
	}
	if c, ok := schema.Constraint(item.Attributes.Label); ok {
		if s, ok := c.Default.(string); ok && s != "" {
			values[item.ID] = s
		}
	}
}

func boundsFor(id string, profile models.HardwareProfile) (sliderBounds, bool) {
	orDefault := func(v, fallback float64) float64 {
		if v > 0 {
			return v
		}
		return fallback
	}
	switch strings.ToLower(id) {
	case models.FieldIDFrameLimit:
		return sliderBounds{min: 10, max: orDefault(profile.MaxRefreshRate, 60), step: 1}, true
	case models.FieldIDTDPLimit:
		return sliderBounds{min: 3, max: orDefault(profile.MaxTDPW, 15), step: 1}, true
	case models.FieldIDManualGPUClock:
		return sliderBounds{min: 200, max: orDefault(profile.MaxGPUClk, 1600), step: 100}, true
	default:
		return sliderBounds{}, false
	}
}

func isOnOff(options []string) bool {
	if len(options) != 2 {
		return false
	}
	a, b := strings.ToLower(options[0]), strings.ToLower(options[1])
	return (a == "on" && b == "off") || (a == "off" && b == "on")
}

// hiddenDropdownDefault is options[default], else the first option, else "Off".
func hiddenDropdownDefault(item models.FormItem) string {
	if v, ok := item.DefaultOption(); ok {
		return v
	}
	if len(item.Attributes.Options) > 0 {
		return item.Attributes.Options[0]
	}
	return models.ToggleOff
}
