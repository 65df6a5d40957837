package models

import "fmt"

// ItemType is the closed set of template item types the remote form definition may declare.
type ItemType string

const (
	ItemMarkdown ItemType = "markdown"
	ItemInput    ItemType = "input"
	ItemTextarea ItemType = "textarea"
	ItemDropdown ItemType = "dropdown"
)

// Valid reports whether t is one of the known template item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemMarkdown, ItemInput, ItemTextarea, ItemDropdown:
		return true
	default:
		return false
	}
}

// FormDefinition is the remote report form: template, schema and hardware table.
type FormDefinition struct {
	Template FormTemplate      `json:"template" yaml:"template"`
	Schema   FormSchema        `json:"schema" yaml:"schema"`
	Hardware []HardwareProfile `json:"hardware" yaml:"hardware"`
}

// FormTemplate mirrors the body of a GitHub Issue Form.
type FormTemplate struct {
	Name        string     `json:"name,omitempty" yaml:"name,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Title       string     `json:"title,omitempty" yaml:"title,omitempty"`
	Labels      []string   `json:"labels,omitempty" yaml:"labels,omitempty"`
	Body        []FormItem `json:"body" yaml:"body"`
}

// FormItem represents an item within the report template.
type FormItem struct {
	Type        ItemType        `json:"type" yaml:"type"`
	ID          string          `json:"id,omitempty" yaml:"id,omitempty"`
	Attributes  FormAttributes  `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Validations FormValidations `json:"validations,omitempty" yaml:"validations,omitempty"`
}

// FormAttributes contains the visual and behavioral attributes of the field.
type FormAttributes struct {
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Value       string   `json:"value,omitempty" yaml:"value,omitempty"`     // markdown text, or suggested value for inputs
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"` // For dropdowns
	Default     *int     `json:"default,omitempty" yaml:"default,omitempty"` // index into Options
	Multiple    bool     `json:"multiple,omitempty" yaml:"multiple,omitempty"`
}

// FormValidations defines validation rules.
type FormValidations struct {
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`
}

// IsField reports whether the item carries a value, i.e. it is not markdown and has an id.
func (i FormItem) IsField() bool {
	return i.Type != ItemMarkdown && i.ID != ""
}

// DefaultOption returns options[default] when the dropdown declares a usable default index.
func (i FormItem) DefaultOption() (string, bool) {
	if i.Attributes.Default == nil {
		return "", false
	}
	idx := *i.Attributes.Default
	if idx < 0 || idx >= len(i.Attributes.Options) {
		return "", false
	}
	return i.Attributes.Options[idx], true
}

// FormSchema holds per-field constraints keyed by the field's human-readable label.
type FormSchema struct {
	Properties map[string]SchemaConstraint `json:"properties" yaml:"properties"`
}

// Constraint looks a constraint up by label.
func (s FormSchema) Constraint(label string) (SchemaConstraint, bool) {
	if label == "" || s.Properties == nil {
		return SchemaConstraint{}, false
	}
	c, ok := s.Properties[label]
	return c, ok
}

// SchemaConstraint is the subset of JSON schema the report schema uses.
type SchemaConstraint struct {
	Type      string `json:"type,omitempty" yaml:"type,omitempty"`
	Enum      []any  `json:"enum,omitempty" yaml:"enum,omitempty"`
	MinLength *int   `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int   `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Default   any    `json:"default,omitempty" yaml:"default,omitempty"`
}

// HasEnum reports whether the constraint restricts values to an enum.
func (c SchemaConstraint) HasEnum() bool {
	return c.Enum != nil
}

// EnumContains uses strict string equality, so non-string enum members never match.
func (c SchemaConstraint) EnumContains(value string) bool {
	for _, e := range c.Enum {
		if s, ok := e.(string); ok && s == value {
			return true
		}
	}
	return false
}

// HardwareProfile describes the limits of one recognized device.
type HardwareProfile struct {
	Name           string  `json:"name" yaml:"name"`
	MaxRefreshRate float64 `json:"max_refresh_rate,omitempty" yaml:"max_refresh_rate,omitempty"`
	MaxTDPW        float64 `json:"max_tdp_w,omitempty" yaml:"max_tdp_w,omitempty"`
	MaxGPUClk      float64 `json:"max_gpu_clk,omitempty" yaml:"max_gpu_clk,omitempty"`
	SupportsVRR    bool    `json:"supports_vrr,omitempty" yaml:"supports_vrr,omitempty"`
}

// Profile returns the hardware entry whose name equals device.
func (d *FormDefinition) Profile(device string) (HardwareProfile, bool) {
	if d == nil || device == "" {
		return HardwareProfile{}, false
	}
	for _, h := range d.Hardware {
		if h.Name == device {
			return h, true
		}
	}
	return HardwareProfile{}, false
}

// FieldItems returns the non-markdown template items in template order.
func (d *FormDefinition) FieldItems() []FormItem {
	if d == nil {
		return nil
	}
	items := make([]FormItem, 0, len(d.Template.Body))
	for _, it := range d.Template.Body {
		if it.IsField() {
			items = append(items, it)
		}
	}
	return items
}

// Item finds a template item by id.
func (d *FormDefinition) Item(id string) (FormItem, bool) {
	if d == nil {
		return FormItem{}, false
	}
	for _, it := range d.Template.Body {
		if it.ID == id {
			return it, true
		}
	}
	return FormItem{}, false
}

// Validate checks that every template item declares a known type and that field ids are unique.
func (d *FormDefinition) Validate() error {
	seen := make(map[string]struct{}, len(d.Template.Body))
	for i, it := range d.Template.Body {
		if !it.Type.Valid() {
			return fmt.Errorf("template item %d (%q) has unknown type %q", i, it.ID, it.Type)
		}
		if !it.IsField() {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			return fmt.Errorf("template item id %q is declared twice", it.ID)
		}
		seen[it.ID] = struct{}{}
	}
	return nil
}
