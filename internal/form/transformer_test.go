package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomas-vilte/deckreport/internal/form/formtest"
	"github.com/thomas-vilte/deckreport/internal/models"
)

func fieldIDs(s models.Section) []string {
	ids := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		ids = append(ids, f.ID)
	}
	return ids
}

func mustDerive(t *testing.T, def *models.FormDefinition, dctx Context, seed map[string]string) Result {
	t.Helper()
	res, err := Derive(def, dctx, seed)
	require.NoError(t, err)
	return res
}

func TestDerive_IsDeterministic(t *testing.T) {
	def := formtest.Definition()
	dctx := Context{IsEditing: false, SelectedDevice: "Steam Deck OLED"}

	first := mustDerive(t, def, dctx, map[string]string{"game_name": "Hades II"})
	second := mustDerive(t, def, dctx, map[string]string{"game_name": "Hades II"})

	assert.Equal(t, first, second)
}

func TestDerive_Sections(t *testing.T) {
	res := mustDerive(t, formtest.Definition(), Context{SelectedDevice: "Steam Deck OLED"}, nil)

	require.Len(t, res.Sections, 4)
	kinds := []models.SectionKind{res.Sections[0].Kind, res.Sections[1].Kind, res.Sections[2].Kind, res.Sections[3].Kind}
	assert.Equal(t, []models.SectionKind{
		models.SectionGeneric,
		models.SectionInGameSettings,
		models.SectionPerformanceSettings,
		models.SectionAdditionalNotes,
	}, kinds)

	assert.Equal(t, "Thanks for taking the time to fill out this report!", res.Sections[0].Markdown)
	assert.Equal(t, "## In-Game Settings", res.Sections[1].Markdown)
	assert.Equal(t, "## SteamOS Performance Settings", res.Sections[2].Markdown)
	assert.Equal(t, "## Additional Notes", res.Sections[3].Markdown)
	assert.Equal(t, []string{"game_name", "app_id", "launcher", "device", "os_version", "target_framerate", "summary"}, fieldIDs(res.Sections[0]))
}

func TestDerive_FieldsBeforeFirstHeading(t *testing.T) {
	def := &models.FormDefinition{Template: models.FormTemplate{Body: []models.FormItem{
		{Type: models.ItemInput, ID: "game_name", Attributes: models.FormAttributes{Label: "Game Name"}},
	}}}

	res := mustDerive(t, def, Context{}, nil)

	require.Len(t, res.Sections, 1)
	assert.Equal(t, models.SectionGeneric, res.Sections[0].Kind)
	assert.Equal(t, "", res.Sections[0].Markdown)
	assert.Equal(t, models.FieldInput, res.Sections[0].Fields[0].Kind)
}

func TestDerive_CreateFlow(t *testing.T) {
	res := mustDerive(t, formtest.Definition(), Context{IsEditing: false}, nil)

	inGame := res.Sections[1]
	require.Len(t, inGame.Fields, 1)
	f := inGame.Fields[0]
	assert.Equal(t, models.FieldImageSelect, f.Kind)
	assert.Equal(t, "game_display_settings", f.ID)
	assert.Equal(t, "Game Display Settings", f.Label)
	assert.Equal(t, "Upload screenshots of your in-game settings.", f.Description)
	assert.Equal(t, "game_display_settings", f.Item.ID)

	_, found := models.FindField(res.Sections, "game_graphics_settings")
	assert.False(t, found)
	_, found = models.FindField(res.Sections, "additional_screenshots")
	assert.False(t, found)
}

func TestDerive_EditFlow(t *testing.T) {
	res := mustDerive(t, formtest.Definition(), Context{IsEditing: true}, nil)

	inGame := res.Sections[1]
	assert.Equal(t, []string{"game_display_settings", "game_graphics_settings"}, fieldIDs(inGame))
	for _, f := range inGame.Fields {
		assert.Equal(t, models.FieldTextarea, f.Kind)
		assert.True(t, f.Multiline)
	}

	notes := res.Sections[3]
	assert.Equal(t, []string{"additional_notes", "additional_screenshots"}, fieldIDs(notes))
	shots := notes.Fields[1]
	assert.Equal(t, models.FieldImageSelect, shots.Kind)
	assert.Equal(t, "Additional Screenshots", shots.Label)
	assert.True(t, shots.Synthetic)
}

func TestDerive_EditFlowCreatesSectionForScreenshots(t *testing.T) {
	def := &models.FormDefinition{Template: models.FormTemplate{Body: []models.FormItem{
		{Type: models.ItemTextarea, ID: "additional_notes", Attributes: models.FormAttributes{Label: "Additional Notes"}},
	}}}

	res := mustDerive(t, def, Context{IsEditing: true}, nil)

	require.Len(t, res.Sections, 1)
	assert.Equal(t, []string{"additional_notes", "additional_screenshots"}, fieldIDs(res.Sections[0]))
}

func TestDerive_SliderBounds(t *testing.T) {
	t.Run("profile limits", func(t *testing.T) {
		def := formtest.Definition()
		def.Hardware = append(def.Hardware, models.HardwareProfile{Name: "Handheld X", MaxTDPW: 12})

		res := mustDerive(t, def, Context{SelectedDevice: "Handheld X"}, nil)

		tdp, ok := models.FindField(res.Sections, "tdp_limit")
		require.True(t, ok)
		assert.Equal(t, models.FieldSlider, tdp.Kind)
		assert.Equal(t, 3.0, tdp.Min)
		assert.Equal(t, 12.0, tdp.Max)
		assert.Equal(t, 1.0, tdp.Step)

		// zero limits in the profile fall back to the built-in defaults
		fl, _ := models.FindField(res.Sections, "frame_limit")
		assert.Equal(t, 60.0, fl.Max)
	})

	t.Run("no matching profile", func(t *testing.T) {
		res := mustDerive(t, formtest.Definition(), Context{SelectedDevice: "Unknown Handheld"}, nil)

		tdp, _ := models.FindField(res.Sections, "tdp_limit")
		assert.Equal(t, 3.0, tdp.Min)
		assert.Equal(t, 15.0, tdp.Max)

		gpu, _ := models.FindField(res.Sections, "manual_gpu_clock")
		assert.Equal(t, models.FieldSlider, gpu.Kind)
		assert.Equal(t, 200.0, gpu.Min)
		assert.Equal(t, 1600.0, gpu.Max)
		assert.Equal(t, 100.0, gpu.Step)
	})

	t.Run("device taken from seed when context has none", func(t *testing.T) {
		res := mustDerive(t, formtest.Definition(), Context{}, map[string]string{"device": "ROG Ally Z1 Extreme"})

		fl, _ := models.FindField(res.Sections, "frame_limit")
		assert.Equal(t, 120.0, fl.Max)
	})
}

func TestDerive_PerformanceDescriptionsStripped(t *testing.T) {
	res := mustDerive(t, formtest.Definition(), Context{SelectedDevice: "Steam Deck OLED"}, nil)

	for _, f := range res.Sections[2].Fields {
		assert.Empty(t, f.Description, f.ID)
	}
	summary, _ := models.FindField(res.Sections, "summary")
	assert.Equal(t, "Short overview of how the game runs", summary.Description)
}

func TestDerive_Toggle(t *testing.T) {
	res := mustDerive(t, formtest.Definition(), Context{SelectedDevice: "Steam Deck OLED"}, nil)

	f, ok := models.FindField(res.Sections, "disable_frame_limit")
	require.True(t, ok)
	assert.Equal(t, models.FieldToggle, f.Kind)
	assert.Equal(t, []string{"On", "Off"}, f.Options)

	scaling, _ := models.FindField(res.Sections, "scaling_mode")
	assert.Equal(t, models.FieldDropdown, scaling.Kind)
}

func TestDerive_VRR(t *testing.T) {
	t.Run("hidden without vrr support but seeded", func(t *testing.T) {
		res := mustDerive(t, formtest.Definition(), Context{SelectedDevice: "Steam Deck OLED"}, nil)

		_, found := models.FindField(res.Sections, "enable_vrr")
		assert.False(t, found)
		assert.Equal(t, "Off", res.Values["enable_vrr"])
	})

	t.Run("hidden value keeps an existing choice", func(t *testing.T) {
		res := mustDerive(t, formtest.Definition(), Context{SelectedDevice: "Steam Deck OLED"}, map[string]string{"enable_vrr": "On"})
		assert.Equal(t, "On", res.Values["enable_vrr"])
	})

	t.Run("hidden without default index uses first option", func(t *testing.T) {
		def := formtest.Definition()
		for i := range def.Template.Body {
			if def.Template.Body[i].ID == "enable_vrr" {
				def.Template.Body[i].Attributes.Default = nil
			}
		}
		res := mustDerive(t, def, Context{}, nil)
		assert.Equal(t, "On", res.Values["enable_vrr"])
	})

	t.Run("shown as toggle with vrr support", func(t *testing.T) {
		res := mustDerive(t, formtest.Definition(), Context{SelectedDevice: "ROG Ally Z1 Extreme"}, nil)

		f, found := models.FindField(res.Sections, "enable_vrr")
		require.True(t, found)
		assert.Equal(t, models.FieldToggle, f.Kind)
	})
}

func TestDerive_DefaultSeeding(t *testing.T) {
	seed := map[string]string{"launcher": "Lutris"}

	res := mustDerive(t, formtest.Definition(), Context{}, seed)

	assert.Equal(t, "Lutris", res.Values["launcher"])
	assert.Equal(t, "Off", res.Values["disable_frame_limit"])
	assert.Equal(t, map[string]string{"launcher": "Lutris"}, seed)

	fresh := mustDerive(t, formtest.Definition(), Context{}, nil)
	assert.Equal(t, "Steam", fresh.Values["launcher"])
	_, hasDevice := fresh.Values["device"]
	assert.False(t, hasDevice)
}

func TestDerive_SeedsInputValueAndSchemaDefault(t *testing.T) {
	def := &models.FormDefinition{
		Template: models.FormTemplate{Body: []models.FormItem{
			{Type: models.ItemInput, ID: "launch_options", Attributes: models.FormAttributes{Label: "Launch Options", Value: "%command%"}},
			{Type: models.ItemDropdown, ID: "scaling_filter", Attributes: models.FormAttributes{Label: "Scaling Filter", Options: []string{"Linear", "Nearest"}}},
		}},
		Schema: models.FormSchema{Properties: map[string]models.SchemaConstraint{
			"Scaling Filter": {Type: "string", Default: "Linear"},
		}},
	}

	res := mustDerive(t, def, Context{}, nil)

	assert.Equal(t, "%command%", res.Values["launch_options"])
	assert.Equal(t, "Linear", res.Values["scaling_filter"])
}

func TestDerive_UnknownItemType(t *testing.T) {
	def := &models.FormDefinition{Template: models.FormTemplate{Body: []models.FormItem{
		{Type: "checkboxes", ID: "extras"},
	}}}

	_, err := Derive(def, Context{}, nil)

	assert.ErrorContains(t, err, `unsupported type "checkboxes"`)
}

func TestDerive_NilDefinition(t *testing.T) {
	res, err := Derive(nil, Context{}, map[string]string{"a": "b"})

	require.NoError(t, err)
	assert.Empty(t, res.Sections)
	assert.Equal(t, "b", res.Values["a"])
}

func TestSeedDefaults(t *testing.T) {
	values := map[string]string{"launcher": "Heroic"}

	SeedDefaults(formtest.Definition(), values)

	assert.Equal(t, "Heroic", values["launcher"])
	assert.Equal(t, "Off", values["disable_frame_limit"])
	assert.Equal(t, "Off", values["enable_vrr"])
}
