// Package config loads the TOML settings store read at attach time.
//
// A missing file is created with defaults, and keys missing from an existing
// file are filled in and written back, so the file on disk always lists every
// setting.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

const (
	DefaultTerrain       = "terrain/tatooine.trn"
	DefaultAvatar        = "object/creature/player/shared_human_male.iff"
	DefaultScreenshotDir = "screenshots"
)

// Config is the whole settings file.
type Config struct {
	Core Core `toml:"core"`
	Log  Log  `toml:"log"`
}

// Core holds the settings the interception engine consumes.
type Core struct {
	// AutoLoadScene requests a scene load once the game is installed. It
	// needs an extension that installs a scene factory; without one the
	// request is dropped.
	AutoLoadScene bool     `toml:"auto_load_scene"`
	Extensions    []string `toml:"extensions"`
	// SceneTerrain and SceneAvatar override the built-in scene files
	SceneTerrain  string `toml:"scene_terrain"`
	SceneAvatar   string `toml:"scene_avatar"`
	ScreenshotDir string `toml:"screenshot_dir"`
}

type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	PatchDebug bool   `toml:"patch_debug"`
}

// Default returns the settings written to a fresh file.
func Default() *Config {
	return &Config{
		Core: Core{
			Extensions:    []string{"framestats"},
			ScreenshotDir: DefaultScreenshotDir,
		},
		Log: Log{
			Level: "info",
			File:  "hostpatch.log",
		},
	}
}

// Terrain returns the configured terrain file or the built-in default.
func (c Core) Terrain() string {
	if c.SceneTerrain != "" {
		return c.SceneTerrain
	}
	return DefaultTerrain
}

// Avatar returns the configured avatar object file or the built-in default.
func (c Core) Avatar() string {
	if c.SceneAvatar != "" {
		return c.SceneAvatar
	}
	return DefaultAvatar
}

// Load reads path, creating it with defaults when it does not exist.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		return cfg, Save(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if missing := missingKeys(md); len(missing) > 0 {
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

var keys = [][]string{
	{"core", "auto_load_scene"},
	{"core", "extensions"},
	{"core", "scene_terrain"},
	{"core", "scene_avatar"},
	{"core", "screenshot_dir"},
	{"log", "level"},
	{"log", "file"},
	{"log", "patch_debug"},
}

func missingKeys(md toml.MetaData) []string {
	var out []string
	for _, k := range keys {
		if !md.IsDefined(k...) {
			out = append(out, k[0]+"."+k[1])
		}
	}
	return out
}
