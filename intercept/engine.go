// Package intercept owns the interception points placed on host routines and
// the callback registries extensions hang off them.
//
// Every replacement runs on the host thread that called the routine: the
// pre callbacks in registration order, then the original routine, then the
// post callbacks in registration order. Nothing here locks; the host drives
// one main loop and all of this runs inside it.
package intercept

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/k2io/hostpatch"
	"github.com/k2io/hostpatch/addrtable"
	"github.com/k2io/hostpatch/config"
	"github.com/k2io/hostpatch/memory"
	"github.com/k2io/hostpatch/scene"
)

var (
	// ErrHostRunning means the host main loop has started and patching
	// its routines is no longer safe
	ErrHostRunning = errors.New("host main loop already running")
	// ErrNoRegistry means the operation has no callback registry
	ErrNoRegistry = errors.New("no callback registry for operation")
	// ErrCallbackType means the callback does not match the registry
	ErrCallbackType = errors.New("callback type does not match operation")
)

// Host routine signatures.
type (
	VoidFunc          func()
	BoolFunc          func() bool
	GameInstallFunc   func(applicationType int32)
	MainLoopFunc      func(presentToWindow bool, hwnd uintptr, width, height int32) int32
	SetupSceneFunc    func(scene uintptr)
	UpdateFunc        func(elapsed float32)
	PresentWindowFunc func(hwnd uintptr, width, height int32) int32
	ScreenshotFunc    func(filename string) bool
	ResizeFunc        func(width, height int32)
	FlushFunc         func(full bool)
	ToggleFunc        func(on bool) bool
)

// Bridges holds one Bridge per host signature.
type Bridges struct {
	Void          Bridge[VoidFunc]
	Bool          Bridge[BoolFunc]
	GameInstall   Bridge[GameInstallFunc]
	MainLoop      Bridge[MainLoopFunc]
	SetupScene    Bridge[SetupSceneFunc]
	Update        Bridge[UpdateFunc]
	PresentWindow Bridge[PresentWindowFunc]
	Screenshot    Bridge[ScreenshotFunc]
	Resize        Bridge[ResizeFunc]
	Flush         Bridge[FlushFunc]
	Toggle        Bridge[ToggleFunc]
}

// SceneFactory builds a host scene object for the setup call.
type SceneFactory interface {
	NewScene(terrain, avatar string) uintptr
}

type Options struct {
	// Memory holds the host statics, usually memory.Self
	Memory  memory.Space
	Patcher Patcher
	Bridges Bridges
	Core    config.Core
	Log     *zap.SugaredLogger
}

// Engine is the process-wide interception context.
type Engine struct {
	mem     memory.Space
	patcher Patcher
	log     *zap.SugaredLogger
	core    config.Core
	factory SceneFactory
	scenes  *scene.Loader

	GameInstall     Hooks[func()]
	MainLoop        Hooks[func()]
	SceneSetup      Hooks[func()]
	SceneTeardown   Hooks[func()]
	GraphicsInstall Hooks[func()]
	Update          Hooks[func(elapsed float32)]
	BeginFrame      Hooks[func()]
	EndFrame        Hooks[func()]
	PresentWindow   Hooks[func(hwnd uintptr, width, height int32)]
	Present         Hooks[func()]

	gameInstall     *Point[GameInstallFunc]
	mainLoop        *Point[MainLoopFunc]
	graphicsInstall *Point[BoolFunc]
	update          *Point[UpdateFunc]
	beginFrame      *Point[VoidFunc]
	endFrame        *Point[VoidFunc]
	presentWindow   *Point[PresentWindowFunc]
	present         *Point[VoidFunc]
	screenshot      *Point[ScreenshotFunc]
	// install order
	points []point

	quit           VoidFunc
	setupScene     SetupSceneFunc
	cleanupScene   VoidFunc
	resize         ResizeFunc
	flushResources FlushFunc
	reloadTextures VoidFunc
	showCursor     ToggleFunc
}

// New binds every host routine in the address table. Nothing is patched
// until InstallGame or InstallGraphics.
func New(opts Options) *Engine {
	e := &Engine{
		mem:     opts.Memory,
		patcher: opts.Patcher,
		log:     opts.Log,
		core:    opts.Core,
	}
	if e.log == nil {
		e.log = zap.NewNop().Sugar()
	}
	if e.core.ScreenshotDir == "" {
		e.core.ScreenshotDir = config.DefaultScreenshotDir
	}
	e.scenes = scene.NewLoader((*sceneHost)(e), e.log.Named("scene"))

	b := opts.Bridges
	e.mainLoop = newPoint(addrtable.MainLoop, hostpatch.StylePushRet, 0, b.MainLoop, MainLoopFunc(e.mainLoopHook))
	e.gameInstall = newPoint(addrtable.GameInstall, hostpatch.StylePushRet, 0, b.GameInstall, GameInstallFunc(e.gameInstallHook))
	e.graphicsInstall = newPoint(addrtable.GraphicsInstall, hostpatch.StylePushRet, 0, b.Bool, BoolFunc(e.graphicsInstallHook))
	e.update = newPoint(addrtable.Update, hostpatch.StylePushRet, 0, b.Update, UpdateFunc(e.updateHook))
	e.beginFrame = newPoint(addrtable.BeginFrame, hostpatch.StyleJump, 5, b.Void, VoidFunc(e.beginFrameHook))
	e.endFrame = newPoint(addrtable.EndFrame, hostpatch.StyleJump, 5, b.Void, VoidFunc(e.endFrameHook))
	e.presentWindow = newPoint(addrtable.PresentWindow, hostpatch.StyleJump, 5, b.PresentWindow, PresentWindowFunc(e.presentWindowHook))
	e.present = newPoint(addrtable.Present, hostpatch.StyleJump, 5, b.Void, VoidFunc(e.presentHook))
	e.screenshot = newPoint(addrtable.Screenshot, hostpatch.StylePushRet, 0, b.Screenshot, ScreenshotFunc(e.screenshotHook))
	e.points = []point{
		e.mainLoop, e.gameInstall,
		e.graphicsInstall, e.update, e.beginFrame, e.endFrame, e.presentWindow, e.present, e.screenshot,
	}

	e.quit = b.Void.Call(addrtable.Resolve(addrtable.GameQuit))
	e.setupScene = b.SetupScene.Call(addrtable.Resolve(addrtable.SceneSetup))
	e.cleanupScene = b.Void.Call(addrtable.Resolve(addrtable.SceneCleanup))
	e.resize = b.Resize.Call(addrtable.Resolve(addrtable.Resize))
	e.flushResources = b.Flush.Call(addrtable.Resolve(addrtable.FlushResources))
	e.reloadTextures = b.Void.Call(addrtable.Resolve(addrtable.ReloadTextures))
	e.showCursor = b.Toggle.Call(addrtable.Resolve(addrtable.ShowCursor))
	return e
}

// InstallGame intercepts the main loop and the game install routine. The
// host must still be in its startup phase: when its main loop counter is not
// zero, nothing is patched and ErrHostRunning is returned.
func (e *Engine) InstallGame() error {
	if n := e.MainLoopCount(); n != 0 {
		e.log.Warnw("host main loop already running, game hooks not installed", "iterations", n)
		return ErrHostRunning
	}
	return e.installAll("game", e.mainLoop, e.gameInstall)
}

// InstallGraphics intercepts the graphics routines.
func (e *Engine) InstallGraphics() error {
	return e.installAll("graphics",
		e.graphicsInstall, e.update, e.beginFrame, e.endFrame, e.presentWindow, e.present, e.screenshot)
}

// installAll installs points in order. On failure the points installed by
// this call are removed again.
func (e *Engine) installAll(group string, points ...point) error {
	var done []point
	for _, p := range points {
		if p.Installed() {
			continue
		}
		if err := p.install(e.patcher); err != nil {
			e.log.Errorw("install failed", "group", group, "op", p.Op(), "error", err)
			for i := len(done) - 1; i >= 0; i-- {
				if uerr := done[i].uninstall(e.patcher); uerr != nil {
					e.log.Errorw("rollback failed", "op", done[i].Op(), "error", uerr)
				}
			}
			return fmt.Errorf("install %s: %w", p.Op(), err)
		}
		done = append(done, p)
		e.log.Infow("hook installed", "group", group, "op", p.Op())
	}
	return nil
}

// Uninstall restores every installed routine in reverse table order.
func (e *Engine) Uninstall() error {
	var errs []error
	for i := len(e.points) - 1; i >= 0; i-- {
		p := e.points[i]
		if !p.Installed() {
			continue
		}
		if err := p.uninstall(e.patcher); err != nil {
			errs = append(errs, fmt.Errorf("uninstall %s: %w", p.Op(), err))
			continue
		}
		e.log.Infow("hook removed", "op", p.Op())
	}
	return errors.Join(errs...)
}

// Installed reports whether op is currently intercepted.
func (e *Engine) Installed(op addrtable.Op) bool {
	for _, p := range e.points {
		if p.Op() == op {
			return p.Installed()
		}
	}
	return false
}

// MainLoopCount is the number of main loop iterations the host has run.
func (e *Engine) MainLoopCount() int32 {
	return memory.Read[int32](e.mem, addrtable.Resolve(addrtable.MainLoopCount))
}

func (e *Engine) IsRunning() bool {
	return e.MainLoopCount() != 0
}

// RenderTargetSize returns the host's current render target dimensions.
func (e *Engine) RenderTargetSize() (width, height int32) {
	width = memory.Read[int32](e.mem, addrtable.Resolve(addrtable.RenderTargetWidth))
	height = memory.Read[int32](e.mem, addrtable.Resolve(addrtable.RenderTargetHeight))
	return
}

// Log returns the engine logger for extensions.
func (e *Engine) Log() *zap.SugaredLogger {
	return e.log
}
