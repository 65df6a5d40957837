package report

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/config"
	"github.com/thomas-vilte/deckreport/internal/drafts"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/form/formtest"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/identity"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/services"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

const hadesKey = "Hades II [1145350]"

type fixedDefinitions struct{}

func (fixedDefinitions) Get(context.Context) (*models.FormDefinition, error) {
	return formtest.Definition(), nil
}

type reportEnv struct {
	store  *drafts.Store
	syncer *services.MockIssueSyncer
	games  *MockGameDetailsFetcher
	cmd    *cli.Command
	out    *bytes.Buffer
}

func setupReportTest(t *testing.T) *reportEnv {
	t.Helper()
	color.NoColor = true
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	store := drafts.NewStore(storage.NewMemoryStore(), "decky-game-settings")
	env := &reportEnv{
		store:  store,
		syncer: &services.MockIssueSyncer{},
		games:  &MockGameDetailsFetcher{},
		out:    &bytes.Buffer{},
	}
	svc := services.NewReportService(fixedDefinitions{}, identity.NewResolver(store), store, env.syncer)
	provider := func() (ReportOpener, error) { return svc, nil }
	env.cmd = NewReportCommandFactory(provider, env.games).CreateCommand(trans, &config.Config{Language: "en"})
	return env
}

func (e *reportEnv) run(input string, args ...string) error {
	app := &cli.Command{
		Name:     "deckreport",
		Writer:   e.out,
		Reader:   strings.NewReader(input),
		Commands: []*cli.Command{e.cmd},
	}
	return app.Run(context.Background(), append([]string{"deckreport", "report"}, args...))
}

func completeSets() []string {
	return []string{
		"--set", "device=steam deck oled",
		"--set", "os_version=3.6.19",
		"--set", "target_framerate=60FPS",
		"--set", "summary=Locked 60 fps on the default preset.",
		"--set", "game_display_settings=1280x800 fullscreen",
	}
}

func TestCreateCommand(t *testing.T) {
	t.Run("saves a draft without submitting", func(t *testing.T) {
		env := setupReportTest(t)

		err := env.run("", "create", "--game", "Hades II", "--appid", "1145350", "--set", "os_version=3.6.19")

		require.NoError(t, err)
		assert.Contains(t, env.out.String(), hadesKey)
		d, ok, err := env.store.Get(context.Background(), hadesKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "3.6.19", d.Value("os_version"))
		env.syncer.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejected value names the field", func(t *testing.T) {
		env := setupReportTest(t)

		err := env.run("", "create", "--game", "Hades II", "--set", "summary=short")

		require.Error(t, err)
		assert.ErrorIs(t, err, domainErrors.ErrValidationFailed)
		var verrs models.ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Equal(t, "summary", verrs[0].FieldID)
	})

	t.Run("malformed set flag", func(t *testing.T) {
		env := setupReportTest(t)

		err := env.run("", "create", "--game", "Hades II", "--set", "summary")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "summary")
	})

	t.Run("submits and clears the draft", func(t *testing.T) {
		env := setupReportTest(t)
		env.syncer.On("Submit", mock.Anything, mock.MatchedBy(func(d models.Draft) bool {
			return d.Value("device") == "Steam Deck OLED" && d.Value("game_name") == "Hades II"
		}), mock.Anything).Return("https://github.com/DeckSettings/game-reports-steamos/issues/9", nil)

		args := append([]string{"create", "--game", "Hades II", "--appid", "1145350", "--submit"}, completeSets()...)
		err := env.run("", args...)

		require.NoError(t, err)
		assert.Contains(t, env.out.String(), "https://github.com/DeckSettings/game-reports-steamos/issues/9")
		_, ok, err := env.store.Get(context.Background(), hadesKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCreateCommand_Interactive(t *testing.T) {
	t.Run("prompts every field and re-asks on invalid input", func(t *testing.T) {
		env := setupReportTest(t)
		input := strings.Join([]string{
			"",                         // game_name keeps the flag value
			"",                         // app_id
			"",                         // launcher keeps Steam
			"steam deck oled",          // device
			"3.6.19",                   // os_version
			"60fps",                    // target_framerate
			"short",                    // summary, rejected
			"Runs at a locked 60 fps.", // summary
		}, "\n") + "\n"

		err := env.run(input, "create", "--game", "Hades II", "--appid", "1145350", "--interactive")

		require.NoError(t, err)
		assert.Contains(t, env.out.String(), "Must be at least 10 characters.")
		d, ok, err := env.store.Get(context.Background(), hadesKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Steam Deck OLED", d.Value("device"))
		assert.Equal(t, "60FPS", d.Value("target_framerate"))
		assert.Equal(t, "Runs at a locked 60 fps.", d.Value("summary"))
		assert.Equal(t, "Steam", d.Value("launcher"))
	})

	t.Run("clearing a value", func(t *testing.T) {
		env := setupReportTest(t)

		err := env.run("\n-\n", "create", "--game", "Hades II", "--appid", "1145350", "--interactive")

		require.NoError(t, err)
		d, ok, err := env.store.Get(context.Background(), "Hades II [no appid]")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Empty(t, d.Value("app_id"))
	})
}

func publishedReport() *models.GameDetails {
	return &models.GameDetails{
		GameName: "Hades II",
		Reports: []models.GameReport{
			{
				Number:  321,
				Title:   "Hades II - Steam Deck OLED",
				HTMLURL: "https://github.com/DeckSettings/game-reports-steamos/issues/321",
				Data: map[string]any{
					"game_name":             "Hades II",
					"app_id":                float64(1145350),
					"launcher":              "Steam",
					"device":                "Steam Deck OLED",
					"os_version":            "3.6.19",
					"target_framerate":      "60FPS",
					"summary":               "Locked 60 fps on the default preset.",
					"game_display_settings": "1280x800 fullscreen",
				},
			},
		},
	}
}

func TestEditCommand(t *testing.T) {
	t.Run("updates the published report", func(t *testing.T) {
		env := setupReportTest(t)
		env.games.On("GameDetailsByAppID", mock.Anything, 1145350).Return(publishedReport(), nil)
		env.syncer.On("Update", mock.Anything, mock.MatchedBy(func(d models.Draft) bool {
			return d.Value("tdp_limit") == "10"
		}), mock.Anything, 321).Return("https://github.com/DeckSettings/game-reports-steamos/issues/321", nil)

		err := env.run("", "edit", "--appid", "1145350", "--report", "321", "--set", "tdp_limit=10", "--submit")

		require.NoError(t, err)
		assert.Contains(t, env.out.String(), "issues/321")
		env.syncer.AssertExpectations(t)
	})

	t.Run("abandoning the edit discards its draft", func(t *testing.T) {
		env := setupReportTest(t)
		env.games.On("GameDetailsByName", mock.Anything, "Hades II").Return(publishedReport(), nil)

		err := env.run(":q\n", "edit", "--game", "Hades II", "--report", "321", "--interactive")

		require.NoError(t, err)
		_, ok, err := env.store.Get(context.Background(), hadesKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("unknown report number", func(t *testing.T) {
		env := setupReportTest(t)
		env.games.On("GameDetailsByAppID", mock.Anything, 1145350).Return(publishedReport(), nil)

		err := env.run("", "edit", "--appid", "1145350", "--report", "7")

		assert.ErrorIs(t, err, domainErrors.ErrReportNotFound)
	})

	t.Run("needs a game", func(t *testing.T) {
		env := setupReportTest(t)

		err := env.run("", "edit", "--report", "7")

		require.Error(t, err)
		env.games.AssertNotCalled(t, "GameDetailsByAppID", mock.Anything, mock.Anything)
	})

	t.Run("invalid app id", func(t *testing.T) {
		env := setupReportTest(t)

		err := env.run("", "edit", "--appid", "hades", "--report", "7")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "hades")
	})
}

func TestSubmitCommand(t *testing.T) {
	t.Run("submits a saved draft", func(t *testing.T) {
		env := setupReportTest(t)
		values := formtest.CompleteValues()
		values["game_display_settings"] = "1280x800 fullscreen"
		require.NoError(t, env.store.Save(context.Background(), hadesKey, models.NewDraft(values, nil)))
		env.syncer.On("Submit", mock.Anything, mock.Anything, mock.Anything).
			Return("https://github.com/DeckSettings/game-reports-steamos/issues/10", nil)

		err := env.run("", "submit", "--key", hadesKey)

		require.NoError(t, err)
		assert.Contains(t, env.out.String(), "issues/10")
	})

	t.Run("missing draft", func(t *testing.T) {
		env := setupReportTest(t)

		err := env.run("", "submit", "--key", "Nope [1]")

		assert.ErrorIs(t, err, domainErrors.ErrDraftMissing)
	})
}
