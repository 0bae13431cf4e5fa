package themes

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devnullvoid/dungeondraw/internal/dungeon"
	"github.com/devnullvoid/dungeondraw/internal/settings"
)

const testModule = "dungeon-draw"

type recordingLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *recordingLogger) Debug(string, ...interface{}) {}
func (l *recordingLogger) Info(string, ...interface{})  {}
func (l *recordingLogger) Error(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

type failingStore struct {
	getErr, setErr error
	value          string
}

func (s *failingStore) Get(string, string) (string, error) { return s.value, s.getErr }
func (s *failingStore) Set(_, _, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.value = value
	return nil
}

func newTestRegistry(t *testing.T) (*Registry, *settings.MemoryStore, *recordingLogger) {
	t.Helper()
	store := settings.NewMemoryStore()
	log := &recordingLogger{}
	return NewRegistry(store, testModule, WithLogger(log)), store, log
}

func stored(t *testing.T, store *settings.MemoryStore) string {
	t.Helper()
	raw, err := store.Get(testModule, SettingKey)
	require.NoError(t, err)
	return raw
}

func TestParseSerializeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		themes Presets
	}{
		{"empty", Presets{}},
		{"single", Presets{"A": {Name: "A", Config: dungeon.Config{"x": 1.0}}}},
		{"mixed values", Presets{
			"Dark":     {Name: "Dark", Config: dungeon.Config{"wallColor": "#000000", "wallThickness": 8.5, "shadows": true}},
			"Dark (1)": {Name: "Dark (1)", Config: dungeon.Config{}},
		}},
		{"key differs from name", Presets{"legacy": {Name: "Renamed", Config: dungeon.Config{"y": "z"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Serialize(tt.themes)
			require.NoError(t, err)

			parsed, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, tt.themes, parsed)
		})
	}
}

func TestSerializeFormat(t *testing.T) {
	raw, err := Serialize(Presets{"B": {Name: "B", Config: dungeon.Config{"y": 2.0}}})
	require.NoError(t, err)
	assert.Equal(t, `{"B":{"name":"B","config":{"y":2}}}`, raw)

	raw, err = Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, `{}`, raw)

	raw, err = Serialize(Presets{"Dark & <Stormy>": {Name: "Dark & <Stormy>", Config: dungeon.Config{"note": "a<b>"}}})
	require.NoError(t, err)
	assert.Equal(t, `{"Dark & <Stormy>":{"name":"Dark & <Stormy>","config":{"note":"a<b>"}}}`, raw)
}

func TestParseNullAndMissingConfig(t *testing.T) {
	themes, err := Parse("null")
	require.NoError(t, err)
	assert.Equal(t, Presets{}, themes)

	themes, err = Parse(`{"A":{"name":"A"}}`)
	require.NoError(t, err)
	assert.Equal(t, dungeon.Config{}, themes["A"].Config)
}

func TestLoad_FailOpen(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		wantError bool
	}{
		{"unset", "", false},
		{"whitespace", "   ", false},
		{"not json", "not json", true},
		{"truncated", `{"A":{"name":"A"`, true},
		{"wrong shape", `[1,2,3]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store, log := newTestRegistry(t)
			require.NoError(t, store.Set(testModule, SettingKey, tt.stored))

			themes := r.Load()

			assert.NotNil(t, themes)
			assert.Empty(t, themes)
			if tt.wantError {
				assert.Len(t, log.errors, 1)
			} else {
				assert.Empty(t, log.errors)
			}
		})
	}
}

func TestLoad_StoreReadFailure(t *testing.T) {
	log := &recordingLogger{}
	r := NewRegistry(&failingStore{getErr: errors.New("io error")}, testModule, WithLogger(log))

	assert.Equal(t, Presets{}, r.Load())
	assert.Len(t, log.errors, 1)
}

func TestSave_PropagatesStoreFailure(t *testing.T) {
	storeErr := errors.New("read-only")
	r := NewRegistry(&failingStore{setErr: storeErr}, testModule, WithLogger(&recordingLogger{}))

	err := r.Save(Presets{"A": {Name: "A", Config: dungeon.Config{}}})
	assert.ErrorIs(t, err, storeErr)

	err = r.CreateFromConfig("A", dungeon.Config{})
	assert.ErrorIs(t, err, storeErr)
}

func TestCreateFromConfig(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	cfg := dungeon.Config{"wallColor": "#112233", "wallThickness": 9.0}

	require.NoError(t, r.CreateFromConfig("Foo", cfg))

	themes := r.Load()
	require.Contains(t, themes, "Foo")
	assert.Equal(t, "Foo", themes["Foo"].Name)
	assert.Equal(t, cfg, themes["Foo"].Config)

	cfg["wallColor"] = "#FFFFFF"
	assert.Equal(t, "#112233", r.Load()["Foo"].Config["wallColor"], "stored config must not alias the caller's map")
}

func TestCreateFromConfig_OverwritesSameName(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	require.NoError(t, r.CreateFromConfig("Foo", dungeon.Config{"v": 1.0}))
	require.NoError(t, r.CreateFromConfig("Foo", dungeon.Config{"v": 2.0}))

	themes := r.Load()
	assert.Len(t, themes, 1)
	assert.Equal(t, 2.0, themes["Foo"].Config["v"])
}

func TestCreateFromConfig_EmptyName(t *testing.T) {
	r, store, _ := newTestRegistry(t)

	assert.ErrorIs(t, r.CreateFromConfig("", dungeon.Config{}), ErrEmptyName)
	assert.ErrorIs(t, r.CreateFromConfig("  ", dungeon.Config{}), ErrEmptyName)
	assert.Empty(t, stored(t, store))
}

func TestCreateAfterCorruptState(t *testing.T) {
	r, store, _ := newTestRegistry(t)
	require.NoError(t, store.Set(testModule, SettingKey, "not json"))

	assert.Equal(t, Presets{}, r.Load())
	require.NoError(t, r.CreateFromConfig("B", dungeon.Config{"y": 2.0}))

	assert.Equal(t, `{"B":{"name":"B","config":{"y":2}}}`, stored(t, store))
}

func TestCopyIn_Probing(t *testing.T) {
	themes := Presets{"Foo": {Name: "Foo", Config: dungeon.Config{"x": 1.0}}}

	first, ok := CopyIn(themes, "Foo")
	require.True(t, ok)
	assert.Equal(t, "Foo (1)", first)

	second, ok := CopyIn(themes, "Foo")
	require.True(t, ok)
	assert.Equal(t, "Foo (2)", second)

	// Copying a copy probes on its own name.
	third, ok := CopyIn(themes, "Foo (1)")
	require.True(t, ok)
	assert.Equal(t, "Foo (1) (1)", third)

	assert.Equal(t, "Foo (2)", themes["Foo (2)"].Name)
	assert.Equal(t, dungeon.Config{"x": 1.0}, themes["Foo (2)"].Config)
}

func TestCopyIn_SkipsTakenNames(t *testing.T) {
	themes := Presets{
		"Foo":     {Name: "Foo", Config: dungeon.Config{}},
		"Foo (1)": {Name: "Foo (1)", Config: dungeon.Config{}},
		"Foo (3)": {Name: "Foo (3)", Config: dungeon.Config{}},
	}

	key, ok := CopyIn(themes, "Foo")
	require.True(t, ok)
	assert.Equal(t, "Foo (2)", key)

	key, ok = CopyIn(themes, "Foo")
	require.True(t, ok)
	assert.Equal(t, "Foo (4)", key)
}

func TestCopyIn_UsesPresetNameNotKey(t *testing.T) {
	themes := Presets{"legacy-key": {Name: "Pretty", Config: dungeon.Config{}}}

	key, ok := CopyIn(themes, "legacy-key")
	require.True(t, ok)
	assert.Equal(t, "Pretty (1)", key)
}

func TestCopyIn_DeepCopy(t *testing.T) {
	themes := Presets{"Foo": {Name: "Foo", Config: dungeon.Config{"nested": map[string]any{"a": 1.0}}}}

	key, _ := CopyIn(themes, "Foo")
	themes[key].Config["nested"].(map[string]any)["a"] = 5.0

	assert.Equal(t, 1.0, themes["Foo"].Config["nested"].(map[string]any)["a"])
}

func TestCopy_Persists(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.CreateFromConfig("Foo", dungeon.Config{"x": 1.0}))

	first, err := r.Copy("Foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo (1)", first)

	second, err := r.Copy("Foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo (2)", second)

	assert.Equal(t, []string{"Foo", "Foo (1)", "Foo (2)"}, r.CustomKeys())
}

func TestCopy_IgnoresBuiltinKeys(t *testing.T) {
	store := settings.NewMemoryStore()
	r := NewRegistry(store, testModule,
		WithLogger(&recordingLogger{}),
		WithBuiltins(Presets{"Foo (1)": {Name: "Foo (1)", Config: dungeon.Config{}}}),
	)
	require.NoError(t, r.CreateFromConfig("Foo", dungeon.Config{}))

	key, err := r.Copy("Foo")
	require.NoError(t, err)
	assert.Equal(t, "Foo (1)", key)
}

func TestCopy_MissingIsNoop(t *testing.T) {
	r, store, _ := newTestRegistry(t)
	require.NoError(t, r.CreateFromConfig("A", dungeon.Config{}))
	before := stored(t, store)

	key, err := r.Copy("missing")
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Equal(t, before, stored(t, store))
}

func TestDelete(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.CreateFromConfig("Foo", dungeon.Config{}))
	require.NoError(t, r.CreateFromConfig("Bar", dungeon.Config{}))

	require.NoError(t, r.Delete("Foo"))
	assert.Equal(t, []string{"Bar"}, r.CustomKeys())

	require.NoError(t, r.Delete("Foo"))
	assert.Equal(t, []string{"Bar"}, r.CustomKeys())
}

func TestDelete_MissingOnCorruptState(t *testing.T) {
	r, store, _ := newTestRegistry(t)
	require.NoError(t, store.Set(testModule, SettingKey, "{broken"))

	require.NoError(t, r.Delete("Foo"))
	assert.Equal(t, "{}", stored(t, store))
}

func TestScenario_CopyThenDeleteOriginal(t *testing.T) {
	r, store, _ := newTestRegistry(t)
	require.NoError(t, r.Save(Presets{"A": {Name: "A", Config: dungeon.Config{"x": 1.0}}}))

	key, err := r.Copy("A")
	require.NoError(t, err)
	assert.Equal(t, "A (1)", key)
	assert.Equal(t, Presets{
		"A":     {Name: "A", Config: dungeon.Config{"x": 1.0}},
		"A (1)": {Name: "A (1)", Config: dungeon.Config{"x": 1.0}},
	}, r.Load())

	require.NoError(t, r.Delete("A"))
	assert.Equal(t, Presets{"A (1)": {Name: "A (1)", Config: dungeon.Config{"x": 1.0}}}, r.Load())
	assert.Equal(t, `{"A (1)":{"name":"A (1)","config":{"x":1}}}`, stored(t, store))
}

func TestEdit(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.CreateFromConfig("Foo", dungeon.Config{"wallColor": "#000000"}))
	require.NoError(t, r.CreateFromConfig("Bar", dungeon.Config{}))

	t.Run("config only keeps key", func(t *testing.T) {
		key, err := r.Edit("Foo", func(p *Preset) error {
			p.Config["wallColor"] = "#FF0000"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Foo", key)
		assert.Equal(t, "#FF0000", r.Load()["Foo"].Config["wallColor"])
	})

	t.Run("rename moves key", func(t *testing.T) {
		key, err := r.Edit("Foo", func(p *Preset) error {
			p.Name = "Baz"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Baz", key)
		assert.Equal(t, []string{"Bar", "Baz"}, r.CustomKeys())
		assert.Equal(t, "#FF0000", r.Load()["Baz"].Config["wallColor"])
	})

	t.Run("rename onto existing fails", func(t *testing.T) {
		_, err := r.Edit("Baz", func(p *Preset) error {
			p.Name = "Bar"
			return nil
		})
		assert.ErrorIs(t, err, ErrThemeExists)
		assert.Equal(t, []string{"Bar", "Baz"}, r.CustomKeys())
	})

	t.Run("empty name fails", func(t *testing.T) {
		_, err := r.Edit("Baz", func(p *Preset) error {
			p.Name = ""
			return nil
		})
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("editor error aborts", func(t *testing.T) {
		boom := errors.New("cancelled")
		_, err := r.Edit("Baz", func(p *Preset) error {
			p.Config["wallColor"] = "#00FF00"
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, "#FF0000", r.Load()["Baz"].Config["wallColor"])
	})

	t.Run("missing", func(t *testing.T) {
		_, err := r.Edit("nope", func(*Preset) error { return nil })
		assert.ErrorIs(t, err, ErrThemeNotFound)
	})
}

func TestLookup(t *testing.T) {
	store := settings.NewMemoryStore()
	r := NewRegistry(store, testModule,
		WithLogger(&recordingLogger{}),
		WithBuiltins(Presets{"Shared": {Name: "Shared", Config: dungeon.Config{"from": "builtin"}}}),
	)
	require.NoError(t, r.CreateFromConfig("Shared", dungeon.Config{"from": "custom"}))

	p, ok := r.Lookup(Builtin("Shared"))
	require.True(t, ok)
	assert.Equal(t, "builtin", p.Config["from"])

	p, ok = r.Lookup(Custom("Shared"))
	require.True(t, ok)
	assert.Equal(t, "custom", p.Config["from"])

	_, ok = r.Lookup(Custom("missing"))
	assert.False(t, ok)
	_, ok = r.Lookup(Ref{Key: "Shared"})
	assert.False(t, ok)

	// Returned presets are copies.
	p.Config["from"] = "changed"
	again, _ := r.Lookup(Custom("Shared"))
	assert.Equal(t, "custom", again.Config["from"])
}

func TestBuiltinsAreReadOnly(t *testing.T) {
	r, _, _ := newTestRegistry(t)

	builtins := r.Builtins()
	builtins["default"].Config["wallColor"] = "#ABCDEF"
	delete(builtins, "cavern")

	assert.Equal(t, "#000000", r.Builtins()["default"].Config["wallColor"])
	assert.Contains(t, r.BuiltinKeys(), "cavern")
}

func TestImport(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.CreateFromConfig("Foo", dungeon.Config{"v": 1.0}))

	incoming := Presets{
		"Foo":      {Name: "Foo", Config: dungeon.Config{"v": 2.0}},
		"nameless": {Config: nil},
	}

	written, err := r.Import(incoming, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo (1)", "nameless"}, written)

	themes := r.Load()
	assert.Equal(t, 1.0, themes["Foo"].Config["v"])
	assert.Equal(t, 2.0, themes["Foo (1)"].Config["v"])
	assert.Equal(t, dungeon.Config{}, themes["nameless"].Config)

	written, err = r.Import(Presets{"Foo": {Name: "Foo", Config: dungeon.Config{"v": 3.0}}}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo"}, written)
	assert.Equal(t, 3.0, r.Load()["Foo"].Config["v"])
}

func TestImportOverwriteKeepsBatchDuplicates(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.CreateFromConfig("Foo", dungeon.Config{"v": 1.0}))

	incoming := Presets{
		"a": {Name: "Foo", Config: dungeon.Config{"v": 2.0}},
		"b": {Name: "Foo", Config: dungeon.Config{"v": 3.0}},
	}

	written, err := r.Import(incoming, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foo", "Foo (1)"}, written)

	themes := r.Load()
	assert.Len(t, themes, 2)
	assert.Equal(t, 2.0, themes["Foo"].Config["v"])
	assert.Equal(t, 3.0, themes["Foo (1)"].Config["v"])
	assert.Equal(t, "Foo (1)", themes["Foo (1)"].Name)
}

func TestExport(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	require.NoError(t, r.CreateFromConfig("B", dungeon.Config{"y": 2.0}))

	raw, err := r.Export()
	require.NoError(t, err)
	assert.Equal(t, `{"B":{"name":"B","config":{"y":2}}}`, raw)
}
