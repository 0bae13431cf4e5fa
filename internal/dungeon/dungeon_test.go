package dungeon

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDungeon_SetConfigMergesAndPersists(t *testing.T) {
	var persisted []Config
	d := New(Config{"wallColor": "#000000", "wallThickness": 8.0}, func(cfg Config) error {
		persisted = append(persisted, cfg)
		return nil
	})

	require.NoError(t, d.SetConfig(Config{"wallThickness": 10.0}))

	assert.Equal(t, Config{"wallColor": "#000000", "wallThickness": 10.0}, d.State().Config)
	require.Len(t, persisted, 1)
	assert.Equal(t, d.State().Config, persisted[0])
}

func TestDungeon_FailedPersistKeepsState(t *testing.T) {
	d := New(Config{"wallColor": "#000000"}, func(Config) error {
		return errors.New("disk full")
	})

	err := d.SetConfig(Config{"wallColor": "#FFFFFF"})
	require.Error(t, err)
	assert.Equal(t, "#000000", d.State().Config["wallColor"])
}

func TestDungeon_Reset(t *testing.T) {
	d := New(Config{"wallColor": "#123456", "custom": "x"}, nil)

	require.NoError(t, d.Reset())

	assert.Equal(t, DefaultConfig(), d.State().Config)
}

func TestDungeon_StateIsACopy(t *testing.T) {
	d := New(nil, nil)

	state := d.State()
	state.Config["wallColor"] = "#ABCDEF"

	assert.Equal(t, "#000000", d.State().Config["wallColor"])
}
