// Package form is the schema-driven report form engine: it validates field values against the
// definition's schema and derives renderable sections from its template.
package form

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/thomas-vilte/deckreport/internal/models"
)

var numberPattern = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+$`)

// Message ids resolved through the Localizer.
const (
	MsgRequired      = "validation_required"
	MsgInvalidOption = "validation_invalid_option"
	MsgNotANumber    = "validation_not_a_number"
	MsgMinLength     = "validation_min_length"
	MsgMaxLength     = "validation_max_length"
	MsgOutOfRange    = "validation_out_of_range"
)

var englishMessages = map[string]string{
	MsgRequired:      "This field is required.",
	MsgInvalidOption: "Invalid option.",
	MsgNotANumber:    "Must be a number.",
	MsgMinLength:     "Must be at least {{.Count}} characters.",
	MsgMaxLength:     "Must be at most {{.Count}} characters.",
	MsgOutOfRange:    "Must be between {{.Min}} and {{.Max}}.",
}

// Localizer matches i18n.Translations.
type Localizer interface {
	GetMessage(messageID string, count int, templateData map[string]interface{}) string
}

type englishLocalizer struct{}

func (englishLocalizer) GetMessage(id string, _ int, data map[string]interface{}) string {
	msg, ok := englishMessages[id]
	if !ok {
		return id
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{{."+k+"}}", fmt.Sprint(v))
	}
	return msg
}

type Validator struct {
	schema models.FormSchema
	msg    Localizer
}

type ValidatorOption func(*Validator)

// WithLocalizer translates validation messages; English is used otherwise.
func WithLocalizer(l Localizer) ValidatorOption {
	return func(v *Validator) {
		if l != nil {
			v.msg = l
		}
	}
}

func NewValidator(schema models.FormSchema, opts ...ValidatorOption) *Validator {
	v := &Validator{schema: schema, msg: englishLocalizer{}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate checks one raw value against its template item. Rules short-circuit in order:
// required, then the schema constraint looked up by the item's label (enum, number, string length).
func (v *Validator) Validate(item models.FormItem, raw string) *models.ValidationError {
	trimmed := strings.TrimSpace(raw)

	if item.Validations.Required && trimmed == "" {
		return v.fail(item.ID, MsgRequired, 0, nil)
	}

	constraint, ok := v.schema.Constraint(item.Attributes.Label)
	if !ok {
		return nil
	}

	if constraint.HasEnum() && !constraint.EnumContains(trimmed) {
		return v.fail(item.ID, MsgInvalidOption, 0, nil)
	}

	switch constraint.Type {
	case "number":
		if trimmed == "" {
			return nil
		}
		if !numberPattern.MatchString(trimmed) {
			return v.fail(item.ID, MsgNotANumber, 0, nil)
		}
	case "string":
		n := utf8.RuneCountInString(trimmed)
		if constraint.MinLength != nil && n < *constraint.MinLength {
			return v.fail(item.ID, MsgMinLength, *constraint.MinLength, map[string]interface{}{"Count": *constraint.MinLength})
		}
		if constraint.MaxLength != nil && n > *constraint.MaxLength {
			return v.fail(item.ID, MsgMaxLength, *constraint.MaxLength, map[string]interface{}{"Count": *constraint.MaxLength})
		}
	}
	return nil
}

// ValidateImageSelect is satisfied by at least one selected image or, failing that, by the
// backing text item passing Validate.
func (v *Validator) ValidateImageSelect(item models.FormItem, raw string, images []string) *models.ValidationError {
	if len(images) > 0 {
		return nil
	}
	return v.Validate(item, raw)
}

// ValidateAll checks every non-markdown item of the template in order. In the create flow the
// game_display_settings item is an image selector and may be satisfied by images alone.
func (v *Validator) ValidateAll(def *models.FormDefinition, values map[string]string, images []string, isEditing bool) models.ValidationErrors {
	var errs models.ValidationErrors
	for _, item := range def.FieldItems() {
		raw := values[item.ID]
		var verr *models.ValidationError
		if !isEditing && item.ID == models.FieldIDGameDisplaySettings {
			verr = v.ValidateImageSelect(item, raw, images)
		} else {
			verr = v.Validate(item, raw)
		}
		if verr != nil {
			errs = append(errs, *verr)
		}
	}
	return errs
}

func (v *Validator) fail(fieldID, msgID string, count int, data map[string]interface{}) *models.ValidationError {
	return &models.ValidationError{
		FieldID: fieldID,
		Message: v.msg.GetMessage(msgID, count, data),
	}
}
