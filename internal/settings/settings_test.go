package settings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/thomas-vilte/deckreport/internal/errors"
	"github.com/thomas-vilte/deckreport/internal/storage"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	s := NewStore(mem, "decky-game-settings")

	t.Run("empty by default", func(t *testing.T) {
		cfg, err := s.Load(ctx)

		require.NoError(t, err)
		assert.Equal(t, PluginConfig{FilterDevices: []string{}}, cfg)
	})

	t.Run("save normalizes devices", func(t *testing.T) {
		err := s.Save(ctx, PluginConfig{
			FilterDevices:     []string{" Steam Deck OLED ", "Steam Deck OLED", "ROG Ally Z1 Extreme"},
			ShowInstalledOnly: true,
		})
		require.NoError(t, err)

		raw, ok, err := mem.Get(ctx, "decky-game-settings:pluginConfig")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `{"filterDevices":["Steam Deck OLED","ROG Ally Z1 Extreme"],"showInstalledOnly":true}`, string(raw))

		cfg, err := s.Load(ctx)
		require.NoError(t, err)
		assert.True(t, cfg.ShowInstalledOnly)
		assert.Equal(t, []string{"Steam Deck OLED", "ROG Ally Z1 Extreme"}, cfg.FilterDevices)
	})

	t.Run("blank device is rejected", func(t *testing.T) {
		err := s.Save(ctx, PluginConfig{FilterDevices: []string{"  "}})

		assert.ErrorIs(t, err, domainErrors.ErrConfigInvalid)
	})

	t.Run("corrupt blob reads as empty", func(t *testing.T) {
		require.NoError(t, mem.Set(ctx, "decky-game-settings:pluginConfig", []byte("{nope")))

		cfg, err := s.Load(ctx)

		require.NoError(t, err)
		assert.Empty(t, cfg.FilterDevices)
		assert.False(t, cfg.ShowInstalledOnly)
	})
}

func TestPluginConfig_Matches(t *testing.T) {
	tests := []struct {
		name   string
		filter []string
		device string
		want   bool
	}{
		{"no filter", nil, "Steam Deck OLED", true},
		{"listed", []string{"Steam Deck OLED"}, "steam deck oled", true},
		{"not listed", []string{"Steam Deck OLED"}, "ROG Ally Z1 Extreme", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PluginConfig{FilterDevices: tt.filter}.Matches(tt.device))
		})
	}
}
