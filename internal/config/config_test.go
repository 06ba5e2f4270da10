package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifficultyTable(t *testing.T) {
	tests := []struct {
		tier    Tier
		pairs   int
		columns int
	}{
		{Easy, 8, 4},
		{Medium, 12, 6},
		{Hard, 16, 8},
	}
	for _, tt := range tests {
		d, err := DifficultyFor(tt.tier)
		require.NoError(t, err)
		assert.Equal(t, tt.pairs, d.Pairs, "pairs for %s", tt.tier)
		assert.Equal(t, tt.columns, d.Columns, "columns for %s", tt.tier)
	}

	_, err := DifficultyFor("nightmare")
	assert.Error(t, err)
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier(" HARD ")
	require.NoError(t, err)
	assert.Equal(t, Hard, tier)

	_, err = ParseTier("expert")
	assert.Error(t, err)
}

func TestGameConfig_Round(t *testing.T) {
	g := Default().Game
	d, _ := DifficultyFor(Easy)

	r := g.Round(d, RoundOptions{TimeLimit: true, Preview: true})

	assert.Equal(t, 8, r.Pairs)
	assert.True(t, r.TimeLimit)
	assert.True(t, r.Preview)
	assert.Equal(t, 60, r.TimeCap)
	assert.Equal(t, 3*time.Second, r.PreviewFor)
	assert.Equal(t, time.Second, r.MismatchDelay)
	assert.Equal(t, 300*time.Millisecond, r.CompleteDelay)
	assert.Equal(t, 200*time.Millisecond, r.TimeoutDelay)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	def := Default()
	assert.Equal(t, def.Game, cfg.Game)
	assert.Equal(t, def.Log, cfg.Log)
	assert.Equal(t, def.Images.ListURL, cfg.Images.ListURL)
	assert.Equal(t, def.Images.PlaceholderURL, cfg.Images.PlaceholderURL)
	assert.Empty(t, cfg.Images.Paths)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[game]
default_difficulty = "hard"
time_limit = true

[images]
offline = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	t.Setenv("GOMATCH_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hard", cfg.Game.DefaultDifficulty)
	assert.True(t, cfg.Game.TimeLimit)
	assert.True(t, cfg.Images.Offline)
	assert.Equal(t, 60, cfg.Game.TimeCapSeconds, "unset keys keep their default")
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[game]\ndefault_difficulty = \"extreme\"\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	created, err := WriteDefault(path)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = WriteDefault(path)
	require.NoError(t, err)
	assert.False(t, created, "existing file must not be overwritten")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Game, cfg.Game)
	assert.Equal(t, Default().Images.ListURL, cfg.Images.ListURL)
}

func TestPaths(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")

	cfg := Default()
	assert.Equal(t, filepath.Join("/data", "go-match", "store.json"), cfg.StorePath())
	assert.Equal(t, filepath.Join("/state", "go-match", "go-match.log"), cfg.LogPath())

	cfg.Storage.Path = "/tmp/custom.json"
	assert.Equal(t, "/tmp/custom.json", cfg.StorePath())
}
