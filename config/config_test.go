package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostpatch.toml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Config
	_, err = toml.Decode(string(data), &onDisk)
	require.NoError(t, err)
	assert.Equal(t, *Default(), onDisk)
}

func TestLoadFillsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostpatch.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[core]
auto_load_scene = true
scene_terrain = "terrain/naboo.trn"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Core.AutoLoadScene)
	assert.Equal(t, "terrain/naboo.trn", cfg.Core.Terrain())
	assert.Equal(t, DefaultAvatar, cfg.Core.Avatar())
	assert.Equal(t, DefaultScreenshotDir, cfg.Core.ScreenshotDir)
	assert.Equal(t, "info", cfg.Log.Level)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	md, err := toml.Decode(string(data), &Config{})
	require.NoError(t, err)
	assert.Empty(t, missingKeys(md))
}

func TestLoadKeepsCompleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostpatch.toml")
	cfg := Default()
	cfg.Core.Extensions = []string{"a", "b"}
	require.NoError(t, Save(path, cfg))
	before, err := os.Stat(path)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.Core.Extensions)

	after, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
}

func TestLoadParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostpatch.toml")
	require.NoError(t, os.WriteFile(path, []byte("[core\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSceneDefaults(t *testing.T) {
	var c Core
	assert.Equal(t, DefaultTerrain, c.Terrain())
	assert.Equal(t, DefaultAvatar, c.Avatar())
}
