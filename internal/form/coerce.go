package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/thomas-vilte/deckreport/internal/models"
)

// Coerce turns free-form user input into the value a derived field stores: toggles become
// "On"/"Off", slider values are range checked and dropdown options are matched case-insensitively.
func (v *Validator) Coerce(field models.DerivedField, input string) (string, *models.ValidationError) {
	trimmed := strings.TrimSpace(input)

	switch field.Kind {
	case models.FieldToggle:
		switch strings.ToLower(trimmed) {
		case "on", "true", "yes", "1":
			return models.ToggleOn, nil
		case "off", "false", "no", "0":
			return models.ToggleOff, nil
		default:
			return "", v.fail(field.ID, MsgInvalidOption, 0, nil)
		}
	case models.FieldSlider:
		if trimmed == "" {
			return "", nil
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil || !numberPattern.MatchString(trimmed) {
			return "", v.fail(field.ID, MsgNotANumber, 0, nil)
		}
		if n < field.Min || n > field.Max {
			return "", v.fail(field.ID, MsgOutOfRange, 0, map[string]interface{}{
				"Min": formatNumber(field.Min),
				"Max": formatNumber(field.Max),
			})
		}
		return formatNumber(n), nil
	case models.FieldDropdown:
		for _, opt := range field.Options {
			if strings.EqualFold(opt, trimmed) {
				return opt, nil
			}
		}
		return input, nil
	case models.FieldInput, models.FieldTextarea, models.FieldMarkdown, models.FieldImageSelect:
		return input, nil
	default:
		panic(fmt.Sprintf("unhandled field kind %q", field.Kind))
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
