package models

// FieldKind is the closed set of field descriptors the transformer can emit.
type FieldKind string

const (
	FieldMarkdown    FieldKind = "markdown"
	FieldInput       FieldKind = "input"
	FieldTextarea    FieldKind = "textarea"
	FieldDropdown    FieldKind = "dropdown"
	FieldSlider      FieldKind = "slider"
	FieldToggle      FieldKind = "toggle"
	FieldImageSelect FieldKind = "image_select"
)

// Toggle values are persisted as these literal strings.
const (
	ToggleOn  = "On"
	ToggleOff = "Off"
)

// Well-known field ids the transformer and sync pipeline treat specially.
const (
	FieldIDGameName             = "game_name"
	FieldIDAppID                = "app_id"
	FieldIDDevice               = "device"
	FieldIDOSVersion            = "os_version"
	FieldIDFrameLimit           = "frame_limit"
	FieldIDTDPLimit             = "tdp_limit"
	FieldIDManualGPUClock       = "manual_gpu_clock"
	FieldIDEnableVRR            = "enable_vrr"
	FieldIDGameDisplaySettings  = "game_display_settings"
	FieldIDGameGraphicsSettings = "game_graphics_settings"
	FieldIDAdditionalNotes      = "additional_notes"
	FieldIDAdditionalScreens    = "additional_screenshots"
)

// DerivedField is a UI-agnostic field descriptor produced from one template item.
type DerivedField struct {
	Kind        FieldKind `json:"kind"`
	ID          string    `json:"id"`
	Label       string    `json:"label,omitempty"`
	Description string    `json:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Min         float64   `json:"min,omitempty"`
	Max         float64   `json:"max,omitempty"`
	Step        float64   `json:"step,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Multiline   bool      `json:"multiline,omitempty"`
	// Synthetic is set for fields with no template item behind them.
	Synthetic bool `json:"synthetic,omitempty"`
	// Item is the template item this field was derived from; zero when Synthetic.
	Item FormItem `json:"-"`
}

// SectionKind is resolved once while splitting the template at markdown boundaries.
type SectionKind string

const (
	SectionGeneric             SectionKind = "generic"
	SectionInGameSettings      SectionKind = "in_game_settings"
	SectionAdditionalNotes     SectionKind = "additional_notes"
	SectionPerformanceSettings SectionKind = "performance_settings"
)

// Section is a contiguous run of fields under one markdown heading.
type Section struct {
	Kind     SectionKind    `json:"kind"`
	Markdown string         `json:"markdown"`
	Fields   []DerivedField `json:"fields"`
}

// FindField finds a derived field by id across all sections.
func FindField(sections []Section, id string) (DerivedField, bool) {
	for _, s := range sections {
		for _, f := range s.Fields {
			if f.ID == id {
				return f, true
			}
		}
	}
	return DerivedField{}, false
}

// ValidationError is a transient per-field validation failure.
type ValidationError struct {
	FieldID string `json:"field_id"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.FieldID + ": " + e.Message
}

// ValidationErrors aggregates the failures found on submit, in template order.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "no validation errors"
	}
	msg := v[0].Error()
	if len(v) > 1 {
		msg += " (and more)"
	}
	return msg
}

// ByField indexes the errors by field id.
func (v ValidationErrors) ByField() map[string]string {
	out := make(map[string]string, len(v))
	for _, e := range v {
		out[e.FieldID] = e.Message
	}
	return out
}
