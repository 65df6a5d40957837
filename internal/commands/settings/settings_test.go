package settings

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/thomas-vilte/deckreport/internal/config"
	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/i18n"
	plugin "github.com/thomas-vilte/deckreport/internal/settings"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

func setupSettingsTest(t *testing.T) (*plugin.Store, func(args ...string) (string, error)) {
	t.Helper()
	color.NoColor = true
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	store := plugin.NewStore(storage.NewMemoryStore(), "decky-game-settings")
	cmd := NewSettingsCommandFactory(func() (SettingsStore, error) { return store, nil }).
		CreateCommand(trans, &config.Config{})

	return store, func(args ...string) (string, error) {
		var buf bytes.Buffer
		app := &cli.Command{Name: "deckreport", Writer: &buf, Commands: []*cli.Command{cmd}}
		err := app.Run(context.Background(), append([]string{"deckreport", "settings"}, args...))
		return buf.String(), err
	}
}

func TestSettingsCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		_, run := setupSettingsTest(t)

		out, err := run("show")

		require.NoError(t, err)
		assert.Contains(t, out, "Device filter: All devices")
		assert.Contains(t, out, "Installed games only: off")
	})

	t.Run("set devices", func(t *testing.T) {
		store, run := setupSettingsTest(t)

		out, err := run("set-devices", "Steam Deck OLED", " Steam Deck OLED ", "ROG Ally Z1 Extreme")

		require.NoError(t, err)
		assert.Contains(t, out, "Steam Deck OLED, ROG Ally Z1 Extreme")
		cfg, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Steam Deck OLED", "ROG Ally Z1 Extreme"}, cfg.FilterDevices)

		_, err = run("set-devices")
		require.NoError(t, err)
		cfg, err = store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, cfg.FilterDevices)
	})

	t.Run("blank device is rejected", func(t *testing.T) {
		store, run := setupSettingsTest(t)
		_, err := run("set-devices", "Steam Deck OLED")
		require.NoError(t, err)

		out, err := run("set-devices", "  ")
		assert.ErrorIs(t, err, domainErrors.ErrConfigInvalid)
		assert.NotContains(t, out, "All devices")

		_, err = run("set-devices", "ROG Ally Z1 Extreme", "")
		assert.ErrorIs(t, err, domainErrors.ErrConfigInvalid)

		cfg, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Steam Deck OLED"}, cfg.FilterDevices)
	})

	t.Run("installed only", func(t *testing.T) {
		store, run := setupSettingsTest(t)

		_, err := run("installed-only", "on")
		require.NoError(t, err)
		cfg, err := store.Load(ctx)
		require.NoError(t, err)
		assert.True(t, cfg.ShowInstalledOnly)

		_, err = run("installed-only", "maybe")
		assert.Error(t, err)
	})
}
