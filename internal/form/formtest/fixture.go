// Package formtest provides a report form definition shaped like the published one, for tests.
package formtest

import (
	"encoding/json"

	"github.com/thomas-vilte/deckreport/internal/models"
)

// DeviceOptions are the device dropdown options of the fixture.
var DeviceOptions = []string{
	"Steam Deck LCD (64GB)",
	"Steam Deck LCD (256GB/512GB)",
	"Steam Deck OLED",
	"ROG Ally Z1 Extreme",
}

func intPtr(i int) *int { return &i }

// Definition returns a fresh copy of the fixture on every call.
func Definition() *models.FormDefinition {
	return &models.FormDefinition{
		Template: models.FormTemplate{
			Name: "Game Report",
			Body: []models.FormItem{
				{Type: models.ItemMarkdown, Attributes: models.FormAttributes{Value: "Thanks for taking the time to fill out this report!"}},
				{Type: models.ItemInput, ID: "game_name", Attributes: models.FormAttributes{Label: "Game Name"}, Validations: models.FormValidations{Required: true}},
				{Type: models.ItemInput, ID: "app_id", Attributes: models.FormAttributes{Label: "App ID"}},
				{Type: models.ItemDropdown, ID: "launcher", Attributes: models.FormAttributes{Label: "Launcher", Options: []string{"Steam", "Heroic", "Lutris"}, Default: intPtr(0)}, Validations: models.FormValidations{Required: true}},
				{Type: models.ItemDropdown, ID: "device", Attributes: models.FormAttributes{Label: "Device", Options: DeviceOptions}, Validations: models.FormValidations{Required: true}},
				{Type: models.ItemInput, ID: "os_version", Attributes: models.FormAttributes{Label: "OS Version", Placeholder: "3.6.19"}, Validations: models.FormValidations{Required: true}},
				{Type: models.ItemDropdown, ID: "target_framerate", Attributes: models.FormAttributes{Label: "Target Framerate", Options: []string{"30FPS", "40FPS", "60FPS"}}, Validations: models.FormValidations{Required: true}},
				{Type: models.ItemTextarea, ID: "summary", Attributes: models.FormAttributes{Label: "Summary", Description: "Short overview of how the game runs"}, Validations: models.FormValidations{Required: true}},
				{Type: models.ItemMarkdown, Attributes: models.FormAttributes{Value: "## In-Game Settings\nSettings changed inside the game."}},
				{Type: models.ItemTextarea, ID: "game_display_settings", Attributes: models.FormAttributes{Label: "Game Display Settings"}, Validations: models.FormValidations{Required: true}},
				{Type: models.ItemTextarea, ID: "game_graphics_settings", Attributes: models.FormAttributes{Label: "Game Graphics Settings"}},
				{Type: models.ItemMarkdown, Attributes: models.FormAttributes{Value: "## SteamOS Performance Settings"}},
				{Type: models.ItemInput, ID: "frame_limit", Attributes: models.FormAttributes{Label: "Frame Limit", Description: "Frame limit set in the performance overlay"}},
				{Type: models.ItemDropdown, ID: "disable_frame_limit", Attributes: models.FormAttributes{Label: "Disable Frame Limit", Options: []string{"On", "Off"}, Default: intPtr(1)}},
				{Type: models.ItemDropdown, ID: "enable_vrr", Attributes: models.FormAttributes{Label: "Enable VRR", Options: []string{"On", "Off"}, Default: intPtr(1)}},
				{Type: models.ItemInput, ID: "tdp_limit", Attributes: models.FormAttributes{Label: "TDP Limit", Description: "Watts"}},
				{Type: models.ItemInput, ID: "manual_gpu_clock", Attributes: models.FormAttributes{Label: "Manual GPU Clock"}},
				{Type: models.ItemDropdown, ID: "scaling_mode", Attributes: models.FormAttributes{Label: "Scaling Mode", Options: []string{"Auto", "Integer", "Fit", "Stretch"}}},
				{Type: models.ItemMarkdown, Attributes: models.FormAttributes{Value: "## Additional Notes"}},
				{Type: models.ItemTextarea, ID: "additional_notes", Attributes: models.FormAttributes{Label: "Additional Notes"}},
			},
		},
		Schema: models.FormSchema{Properties: map[string]models.SchemaConstraint{
			"Launcher":            {Type: "string", Enum: []any{"Steam", "Heroic", "Lutris"}},
			"Device":              {Type: "string", Enum: stringsToAny(DeviceOptions)},
			"Target Framerate":    {Type: "string", Enum: []any{"30FPS", "40FPS", "60FPS"}},
			"Summary":             {Type: "string", MinLength: intPtr(10), MaxLength: intPtr(500)},
			"Frame Limit":         {Type: "number"},
			"TDP Limit":           {Type: "number"},
			"Manual GPU Clock":    {Type: "number"},
			"Disable Frame Limit": {Type: "string", Enum: []any{"On", "Off"}},
			"Enable VRR":          {Type: "string", Enum: []any{"On", "Off"}},
		}},
		Hardware: []models.HardwareProfile{
			{Name: "Steam Deck LCD (256GB/512GB)", MaxRefreshRate: 60, MaxTDPW: 15, MaxGPUClk: 1600, SupportsVRR: false},
			{Name: "Steam Deck OLED", MaxRefreshRate: 90, MaxTDPW: 15, MaxGPUClk: 1600, SupportsVRR: false},
			{Name: "ROG Ally Z1 Extreme", MaxRefreshRate: 120, MaxTDPW: 30, MaxGPUClk: 2700, SupportsVRR: true},
		},
	}
}

// DefinitionJSON is Definition encoded as the report_form endpoint returns it.
func DefinitionJSON() []byte {
	data, err := json.Marshal(Definition())
	if err != nil {
		panic(err)
	}
	return data
}

// CompleteValues fills every required field of the fixture with a valid value.
func CompleteValues() map[string]string {
	return map[string]string{
		"game_name":           "Hades II",
		"app_id":              "1145350",
		"launcher":            "Steam",
		"device":              "Steam Deck OLED",
		"os_version":          "3.6.19",
		"target_framerate":    "60FPS",
		"summary":             "Runs great with the default settings.",
		"frame_limit":         "60",
		"disable_frame_limit": "Off",
		"enable_vrr":          "Off",
		"tdp_limit":           "12",
		"manual_gpu_clock":    "",
		"scaling_mode":        "",
		"additional_notes":    "",
	}
}

func stringsToAny(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}
