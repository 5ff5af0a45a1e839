//go:build windows

// Command hostpatch-dll is built with -buildmode=c-shared and injected into
// the host. The loader calls Attach once, before the host main loop starts.
package main

import "C"

import (
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/k2io/hostpatch"
	"github.com/k2io/hostpatch/config"
	"github.com/k2io/hostpatch/extension"
	_ "github.com/k2io/hostpatch/extension/framestats"
	"github.com/k2io/hostpatch/intercept"
	"github.com/k2io/hostpatch/internal/hostcall"
	"github.com/k2io/hostpatch/internal/logflags"
	"github.com/k2io/hostpatch/memory"
)

const configName = "hostpatch.toml"

var (
	attachOnce sync.Once
	engine     *intercept.Engine
)

//export Attach
func Attach() C.int {
	status := C.int(0)
	attachOnce.Do(func() {
		if err := attach(); err != nil {
			status = 1
		}
	})
	return status
}

func attach() error {
	dir := "."
	if exe, err := os.Executable(); err == nil {
		dir = filepath.Dir(exe)
	}
	cfg, cfgErr := config.Load(filepath.Join(dir, configName))
	if cfgErr != nil {
		cfg = config.Default()
	}

	log, err := logflags.New(cfg.Log)
	if err != nil {
		log = zap.NewExample().Sugar()
		log.Errorw("cannot open log file, logging to stdout", "file", cfg.Log.File, "error", err)
	}
	defer log.Sync()
	if cfgErr != nil {
		log.Warnw("config not loaded, using defaults", "error", cfgErr)
	}

	bridges, err := hostcall.Bridges()
	if err != nil {
		log.Errorw("host ABI unavailable", "error", err)
		return err
	}
	patcher := hostpatch.New(memory.Self,
		hostpatch.WithMode(32),
		hostpatch.WithLogger(logflags.Patcher(log, cfg.Log)),
	)
	engine = intercept.New(intercept.Options{
		Memory:  memory.Self,
		Patcher: patcher,
		Bridges: bridges,
		Core:    cfg.Core,
		Log:     log.Named("engine"),
	})

	if err := engine.InstallGame(); err != nil {
		log.Errorw("game hooks not installed", "error", err)
		return err
	}
	if err := engine.InstallGraphics(); err != nil {
		log.Errorw("graphics hooks not installed", "error", err)
	}

	manager := extension.NewManager(log.Named("extension"))
	if err := manager.Load(engine, cfg.Core.Extensions); err != nil {
		log.Warnw("some extensions did not load", "error", err)
	}
	if cfg.Core.AutoLoadScene && !engine.HasSceneFactory() {
		log.Errorw("auto_load_scene is set but no extension installed a scene factory, no scene will load")
	}
	log.Infow("attached", "extensions", len(manager.Loaded()))
	return nil
}

func main() {}
