package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"go-match/internal/config"
	"go-match/internal/scoring"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintScores(t *testing.T) {
	color.NoColor = true
	table := scoring.NewTable()
	table[config.Medium] = &scoring.Best{Time: 75, Moves: 14}

	var buf bytes.Buffer
	printScores(&buf, table)

	out := buf.String()
	assert.Contains(t, out, "Best scores")
	assert.Contains(t, out, "Easy   no record yet")
	assert.Contains(t, out, "Medium 01:15 in 14 moves")
	assert.Contains(t, out, "Hard   no record yet")
}

func TestConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetArgs([]string{"config", "path", "--config", path})
	t.Cleanup(func() {
		RootCmd.SetArgs(nil)
		RootCmd.SetOut(nil)
		configFile = ""
	})

	require.NoError(t, Execute())
	assert.Equal(t, path+"\n", buf.String())
}

func TestConfigInit(t *testing.T) {
	color.NoColor = true
	path := filepath.Join(t.TempDir(), "go-match", "config.toml")
	RootCmd.SetArgs([]string{"config", "init", "--config", path})
	t.Cleanup(func() {
		RootCmd.SetArgs(nil)
		configFile = ""
	})

	require.NoError(t, Execute())

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "medium", cfg.Game.DefaultDifficulty)
}
