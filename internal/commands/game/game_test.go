package game

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/config"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	"github.com/thomas-vilte/deckreport/internal/models"
	"github.com/thomas-vilte/deckreport/internal/settings"
	"github.com/thomas-vilte/deckreport/internal/steam"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

type gameEnv struct {
	catalog  *MockGameCatalog
	settings *settings.Store
	shotsDir string
	cmd      *cli.Command
}

func setupGameTest(t *testing.T) *gameEnv {
	t.Helper()
	color.NoColor = true
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	env := &gameEnv{
		catalog:  &MockGameCatalog{},
		settings: settings.NewStore(storage.NewMemoryStore(), "decky-game-settings"),
		shotsDir: t.TempDir(),
	}
	provider := func() (SettingsLoader, error) { return env.settings, nil }
	env.cmd = NewGameCommandFactory(env.catalog, provider, steam.NewScreenshotLister(env.shotsDir)).
		CreateCommand(trans, &config.Config{})
	return env
}

func (e *gameEnv) run(args ...string) (string, error) {
	var buf bytes.Buffer
	app := &cli.Command{Name: "deckreport", Writer: &buf, Commands: []*cli.Command{e.cmd}}
	err := app.Run(context.Background(), append([]string{"deckreport", "game"}, args...))
	return buf.String(), err
}

func hadesDetails() *models.GameDetails {
	appID := 1145350
	return &models.GameDetails{
		GameName: "Hades II",
		AppID:    &appID,
		Reports: []models.GameReport{
			{
				Number:  12,
				Title:   "Hades II - Steam Deck OLED",
				HTMLURL: "https://github.com/DeckSettings/game-reports-steamos/issues/12",
				Data:    map[string]any{"device": "Steam Deck OLED"},
				User:    models.GameReportUser{Login: "deckfan"},
			},
			{
				Title:   "Hades II - ROG Ally",
				HTMLURL: "https://github.com/DeckSettings/game-reports-steamos/issues/15",
				Data:    map[string]any{"device": "ROG Ally Z1 Extreme"},
				User:    models.GameReportUser{Login: "allyuser"},
			},
		},
	}
}

func TestGameSearch(t *testing.T) {
	env := setupGameTest(t)
	env.catalog.On("SearchGames", mock.Anything, "hades").
		Return([]models.GameSearchResult{{GameName: "Hades II", AppID: 1145350}}, nil)
	env.catalog.On("SearchGames", mock.Anything, "ha").Return([]models.GameSearchResult{}, nil)

	out, err := env.run("search", "hades")
	require.NoError(t, err)
	assert.Contains(t, out, "1145350")
	assert.Contains(t, out, "Hades II")

	out, err = env.run("search", "ha")
	require.NoError(t, err)
	assert.Contains(t, out, `No games found for "ha"`)
}

func TestGameDetails(t *testing.T) {
	t.Run("all reports without a filter", func(t *testing.T) {
		env := setupGameTest(t)
		env.catalog.On("GameDetailsByAppID", mock.Anything, 1145350).Return(hadesDetails(), nil)

		out, err := env.run("details", "--appid", "1145350")

		require.NoError(t, err)
		assert.Contains(t, out, "Hades II [1145350]")
		assert.Contains(t, out, "#12")
		assert.Contains(t, out, "#15")
		assert.Contains(t, out, "deckfan")
	})

	t.Run("device filter hides other hardware", func(t *testing.T) {
		env := setupGameTest(t)
		require.NoError(t, env.settings.Save(context.Background(), settings.PluginConfig{FilterDevices: []string{"steam deck oled"}}))
		env.catalog.On("GameDetailsByName", mock.Anything, "Hades II").Return(hadesDetails(), nil)

		out, err := env.run("details", "--game", "Hades II")

		require.NoError(t, err)
		assert.Contains(t, out, "#12")
		assert.NotContains(t, out, "allyuser")
		assert.Contains(t, out, "1 report hidden by your device filter")
	})

	t.Run("unknown game", func(t *testing.T) {
		env := setupGameTest(t)
		env.catalog.On("GameDetailsByName", mock.Anything, "Nope").Return(nil, nil)

		out, err := env.run("details", "--game", "Nope")

		require.NoError(t, err)
		assert.Contains(t, out, "No game data found")
	})

	t.Run("needs a game", func(t *testing.T) {
		env := setupGameTest(t)

		_, err := env.run("details")

		assert.Error(t, err)
		env.catalog.AssertNotCalled(t, "GameDetailsByName", mock.Anything, mock.Anything)
	})

	t.Run("remote failure", func(t *testing.T) {
		env := setupGameTest(t)
		env.catalog.On("GameDetailsByAppID", mock.Anything, 1).Return(nil, domainErrors.ErrGameDataUnavailable)

		_, err := env.run("details", "--appid", "1")

		assert.ErrorIs(t, err, domainErrors.ErrGameDataUnavailable)
	})
}

func TestGameDevices(t *testing.T) {
	env := setupGameTest(t)
	env.catalog.On("Devices", mock.Anything).Return([]models.Device{
		{Name: "DEVICE:Steam Deck OLED", Description: "Valve Steam Deck OLED"},
	}, nil)

	out, err := env.run("devices")

	require.NoError(t, err)
	assert.Contains(t, out, "DEVICE:Steam Deck OLED: Valve Steam Deck OLED")
}

func TestGameScreenshots(t *testing.T) {
	env := setupGameTest(t)

	out, err := env.run("screenshots")
	require.NoError(t, err)
	assert.Contains(t, out, "No screenshots found")

	dir := filepath.Join(env.shotsDir, "1000", "760", "remote", "1145350", "screenshots")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20261019_1.jpg"), []byte("jpg"), 0o644))
	other := filepath.Join(env.shotsDir, "1000", "760", "remote", "504230", "screenshots")
	require.NoError(t, os.MkdirAll(other, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(other, "20261019_2.png"), []byte("png"), 0o644))

	out, err = env.run("screenshots", "--appid", "1145350")
	require.NoError(t, err)
	assert.Contains(t, out, "20261019_1.jpg")
	assert.NotContains(t, out, "20261019_2.png")
}
