package sheet

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/logger"
	"github.com/devnullvoid/dungeondraw/internal/settings"
	"github.com/devnullvoid/dungeondraw/internal/themes"
)

type recordingRenderer struct {
	mu      sync.Mutex
	renders []string
}

func (r *recordingRenderer) Render(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders = append(r.renders, id)
}

func (r *recordingRenderer) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.renders...)
}

type recordingScene struct {
	updates []dungeon.SceneProps
	err     error
}

func (s *recordingScene) UpdateScene(p dungeon.SceneProps) error {
	if s.err != nil {
		return s.err
	}
	s.updates = append(s.updates, p)
	return nil
}

var testBuiltins = themes.Presets{
	"night": {Name: "Night", Config: dungeon.Config{
		"wallColor":                     "#111111",
		dungeon.KeySceneBackgroundColor: "#000000",
		dungeon.KeySceneGridAlpha:       0.5,
		dungeon.KeySceneGridColor:       "#333333",
	}},
	"plain": {Name: "Plain", Config: dungeon.Config{"wallColor": "#444444"}},
}

type fixture struct {
	registry *themes.Registry
	dungeon  *dungeon.Dungeon
	scene    *recordingScene
	renderer *recordingRenderer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	nop := logger.NewNopLogger()
	return &fixture{
		registry: themes.NewRegistry(settings.NewMemoryStore(), "dungeon-draw",
			themes.WithLogger(nop), themes.WithBuiltins(testBuiltins)),
		dungeon:  dungeon.New(nil, nil),
		scene:    &recordingScene{},
		renderer: &recordingRenderer{},
	}
}

func (f *fixture) opts(isGM bool) []Option {
	return []Option{
		WithDungeon(f.dungeon),
		WithScene(f.scene),
		WithRenderer(f.renderer),
		WithGM(isGM),
		WithLogger(logger.NewNopLogger()),
	}
}

func TestActive(t *testing.T) {
	assert.Nil(t, Active(nil))
	assert.NotNil(t, Active(dungeon.New(nil, nil)))
}

func TestConfigSheet_Data(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.CreateFromConfig("Mine", dungeon.Config{"x": 1.0}))
	require.NoError(t, f.dungeon.SetConfig(dungeon.Config{"wallColor": "#ABCDEF"}))

	s := NewConfigSheet(f.registry, "", f.opts(true)...)
	data := s.Data()

	assert.Equal(t, ConfigSheetID, s.ID())
	assert.Equal(t, TabSettings, data.ActiveTab)
	assert.Equal(t, "#ABCDEF", data.Config["wallColor"])
	assert.Equal(t, []string{"Mine"}, data.CustomThemeKeys)
	assert.Equal(t, []string{"night", "plain"}, data.ThemeKeys)
	assert.Len(t, data.Themes, 2)
}

func TestConfigSheet_DataWithoutDungeon(t *testing.T) {
	f := newFixture(t)
	s := NewConfigSheet(f.registry, TabThemes, WithLogger(logger.NewNopLogger()))

	data := s.Data()
	assert.Equal(t, dungeon.DefaultConfig(), data.Config)
	assert.Equal(t, TabThemes, data.ActiveTab)
	assert.Empty(t, data.CustomThemeKeys)
}

func TestConfigSheet_UpdateObjectStripsThemeName(t *testing.T) {
	f := newFixture(t)
	s := NewConfigSheet(f.registry, "", f.opts(true)...)

	require.NoError(t, s.UpdateObject(dungeon.Config{"wallColor": "#010101", "customThemeName": "ignored"}))

	cfg := f.dungeon.State().Config
	assert.Equal(t, "#010101", cfg["wallColor"])
	assert.NotContains(t, cfg, "customThemeName")
}

func TestConfigSheet_WritesSkippedWithoutDungeon(t *testing.T) {
	f := newFixture(t)
	s := NewConfigSheet(f.registry, "", WithRenderer(f.renderer), WithLogger(logger.NewNopLogger()))

	assert.NoError(t, s.UpdateObject(dungeon.Config{"wallColor": "#010101"}))
	assert.NoError(t, s.ResetDefaults())
	assert.NoError(t, s.ApplyTheme(themes.Builtin("plain")))
}

func TestConfigSheet_ResetDefaults(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.dungeon.SetConfig(dungeon.Config{"wallColor": "#010101", "extra": true}))
	s := NewConfigSheet(f.registry, "", f.opts(true)...)

	require.NoError(t, s.ResetDefaults())

	assert.Equal(t, dungeon.DefaultConfig(), f.dungeon.State().Config)
	assert.Equal(t, []string{ConfigSheetID}, f.renderer.all())
}

func TestConfigSheet_ApplyTheme(t *testing.T) {
	tests := []struct {
		name        string
		isGM        bool
		ref         themes.Ref
		wantUpdates int
	}{
		{"gm builtin", true, themes.Builtin("night"), 1},
		{"player builtin", false, themes.Builtin("night"), 0},
		{"gm custom", true, themes.Custom("night"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.registry.CreateFromConfig("night", dungeon.Config{
				"wallColor":               "#222222",
				dungeon.KeySceneGridColor: "#FF0000",
			}))
			s := NewConfigSheet(f.registry, "", f.opts(tt.isGM)...)

			require.NoError(t, s.ApplyTheme(tt.ref))

			want, _ := f.registry.Lookup(tt.ref)
			assert.Equal(t, want.Config["wallColor"], f.dungeon.State().Config["wallColor"])
			assert.Len(t, f.scene.updates, tt.wantUpdates)
			if tt.wantUpdates > 0 {
				assert.Equal(t, want.Config.SceneProps(), f.scene.updates[0])
			}
			assert.Equal(t, []string{ConfigSheetID}, f.renderer.all())
		})
	}
}

func TestConfigSheet_ApplyThemeMergesOverCurrent(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.dungeon.SetConfig(dungeon.Config{"doorColor": "#0000FF"}))
	s := NewConfigSheet(f.registry, "", f.opts(true)...)

	require.NoError(t, s.ApplyTheme(themes.Builtin("plain")))

	cfg := f.dungeon.State().Config
	assert.Equal(t, "#444444", cfg["wallColor"])
	assert.Equal(t, "#0000FF", cfg["doorColor"])
	// plain carries no scene keys, so nothing is pushed.
	require.Len(t, f.scene.updates, 1)
	assert.True(t, f.scene.updates[0].IsZero())
}

func TestConfigSheet_ApplyThemeErrors(t *testing.T) {
	f := newFixture(t)
	s := NewConfigSheet(f.registry, "", f.opts(true)...)

	err := s.ApplyTheme(themes.Custom("plain"))
	assert.ErrorIs(t, err, themes.ErrThemeNotFound)
	assert.Empty(t, f.renderer.all())

	f.scene.err = errors.New("permission denied")
	err = s.ApplyTheme(themes.Builtin("night"))
	assert.ErrorIs(t, err, f.scene.err)
}

func TestConfigSheet_SaveAsTheme(t *testing.T) {
	f := newFixture(t)
	s := NewConfigSheet(f.registry, "", f.opts(true)...)

	err := s.SaveAsTheme("Foo", dungeon.Config{"wallColor": "#123123", "saveAsThemeName": "Foo"})
	require.NoError(t, err)

	preset, ok := f.registry.Lookup(themes.Custom("Foo"))
	require.True(t, ok)
	assert.Equal(t, dungeon.Config{"wallColor": "#123123"}, preset.Config)
	assert.Equal(t, TabThemes, s.ActiveTab())
	assert.Equal(t, []string{ConfigSheetID}, f.renderer.all())

	assert.ErrorIs(t, s.SaveAsTheme("", dungeon.Config{}), themes.ErrEmptyName)
}

func TestConfigSheet_CopyAndDelete(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.CreateFromConfig("Foo", dungeon.Config{"x": 1.0}))
	s := NewConfigSheet(f.registry, "", f.opts(true)...)

	key, err := s.CopyTheme("Foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo (1)", key)

	require.NoError(t, s.DeleteTheme("Foo"))
	require.NoError(t, s.DeleteTheme("missing"))

	assert.Equal(t, []string{"Foo (1)"}, s.Data().CustomThemeKeys)
	assert.Equal(t, []string{ConfigSheetID, ConfigSheetID, ConfigSheetID}, f.renderer.all())
}

func TestThemeSheet(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.CreateFromConfig("Foo", dungeon.Config{"wallColor": "#000000", "doorColor": "#111111"}))
	require.NoError(t, f.registry.CreateFromConfig("Bar", dungeon.Config{}))
	s := NewConfigSheet(f.registry, "", f.opts(true)...)

	_, err := s.EditTheme("missing")
	assert.ErrorIs(t, err, themes.ErrThemeNotFound)

	ts, err := s.EditTheme("Foo")
	require.NoError(t, err)
	assert.Equal(t, "dd-theme-sheet-Foo", ts.ID())

	data, err := ts.Data()
	require.NoError(t, err)
	assert.Equal(t, "Foo", data.Name)

	require.NoError(t, ts.UpdateObject("", dungeon.Config{"wallColor": "#FFFFFF"}))
	preset, _ := f.registry.Lookup(themes.Custom("Foo"))
	assert.Equal(t, dungeon.Config{"wallColor": "#FFFFFF", "doorColor": "#111111"}, preset.Config)

	require.NoError(t, ts.UpdateObject("Baz", dungeon.Config{}))
	assert.Equal(t, "Baz", ts.Key())
	assert.Equal(t, []string{"Bar", "Baz"}, f.registry.CustomKeys())

	err = ts.UpdateObject("Bar", dungeon.Config{})
	assert.ErrorIs(t, err, themes.ErrThemeExists)
	assert.Equal(t, "Baz", ts.Key())

	assert.Equal(t, []string{
		"dd-theme-sheet-Foo",
		"dd-theme-sheet-Foo", ConfigSheetID,
		"dd-theme-sheet-Baz", ConfigSheetID,
	}, f.renderer.all())
}

func TestThemeSheet_Standalone(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.CreateFromConfig("Foo", dungeon.Config{}))

	ts := NewThemeSheet(f.registry, "Foo", WithRenderer(f.renderer), WithLogger(logger.NewNopLogger()))
	require.NoError(t, ts.UpdateObject("", dungeon.Config{"wallColor": "#FFFFFF"}))
	assert.Equal(t, []string{"dd-theme-sheet-Foo"}, f.renderer.all())

	require.NoError(t, f.registry.Delete("Foo"))
	_, err := ts.Data()
	assert.ErrorIs(t, err, themes.ErrThemeNotFound)
}

func TestDungeonConfigSheet(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.registry.CreateFromConfig("night", dungeon.Config{"wallColor": "#999999"}))
	s := NewDungeonConfigSheet(f.registry, f.opts(false)...)

	data := s.Data()
	assert.Equal(t, DungeonConfigSheetID, s.ID())
	assert.Equal(t, []string{"night", "plain"}, data.ThemeKeys)
	assert.Equal(t, dungeon.DefaultConfig(), data.Object)

	require.NoError(t, s.UpdateObject(dungeon.Config{"wallThickness": 12.0}))
	assert.Equal(t, 12.0, f.dungeon.State().Config["wallThickness"])
	assert.Empty(t, f.renderer.all())

	t.Run("empty selection is a no-op", func(t *testing.T) {
		require.NoError(t, s.ChangeTheme(""))
		assert.Empty(t, f.scene.updates)
		assert.Empty(t, f.renderer.all())
	})

	t.Run("builtin applied and scene updated without gm", func(t *testing.T) {
		require.NoError(t, s.ChangeTheme("night"))
		assert.Equal(t, "#111111", f.dungeon.State().Config["wallColor"])
		require.Len(t, f.scene.updates, 1)
		require.NotNil(t, f.scene.updates[0].GridAlpha)
		assert.Equal(t, 0.5, *f.scene.updates[0].GridAlpha)
		assert.Equal(t, []string{DungeonConfigSheetID}, f.renderer.all())
	})

	t.Run("unknown builtin", func(t *testing.T) {
		assert.ErrorIs(t, s.ChangeTheme("missing"), themes.ErrThemeNotFound)
	})

	t.Run("reset", func(t *testing.T) {
		require.NoError(t, s.ResetDefaults())
		assert.Equal(t, dungeon.DefaultConfig(), f.dungeon.State().Config)
	})
}
