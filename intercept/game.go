package intercept

import (
	"github.com/k2io/hostpatch/scene"
)

func (e *Engine) gameInstallHook(applicationType int32) {
	for _, fn := range e.GameInstall.Pre.Snapshot() {
		fn()
	}
	e.gameInstall.Original()(applicationType)
	for _, fn := range e.GameInstall.Post.Snapshot() {
		fn()
	}
	if e.core.AutoLoadScene {
		e.LoadScene()
	}
}

func (e *Engine) mainLoopHook(presentToWindow bool, hwnd uintptr, width, height int32) int32 {
	for _, fn := range e.MainLoop.Pre.Snapshot() {
		fn()
	}
	result := e.mainLoop.Original()(presentToWindow, hwnd, width, height)
	for _, fn := range e.MainLoop.Post.Snapshot() {
		fn()
	}
	e.scenes.Tick()
	return result
}

// Quit asks the host to shut down.
func (e *Engine) Quit() {
	e.quit()
}

// SetSceneFactory wires the builder used for scene setup. Scene loads are
// dropped until one is set.
func (e *Engine) SetSceneFactory(f SceneFactory) {
	e.factory = f
}

func (e *Engine) HasSceneFactory() bool {
	return e.factory != nil
}

// LoadScene requests the configured terrain and avatar, or the built-in
// ones.
func (e *Engine) LoadScene() {
	e.LoadSceneWith(e.core.Terrain(), e.core.Avatar())
}

// LoadSceneWith requests a scene change. The old scene is torn down on the
// next main loop iteration and the new one set up on the one after.
func (e *Engine) LoadSceneWith(terrain, avatar string) {
	if e.factory == nil {
		e.log.Warnw("no scene factory, scene load dropped", "terrain", terrain, "avatar", avatar)
		return
	}
	e.scenes.Request(terrain, avatar)
}

func (e *Engine) SceneState() scene.State {
	return e.scenes.State()
}

// sceneHost runs the scene calls for the loader.
type sceneHost Engine

func (h *sceneHost) Teardown() {
	e := (*Engine)(h)
	for _, fn := range e.SceneTeardown.Pre.Snapshot() {
		fn()
	}
	e.cleanupScene()
	for _, fn := range e.SceneTeardown.Post.Snapshot() {
		fn()
	}
}

func (h *sceneHost) Setup(terrain, avatar string) {
	e := (*Engine)(h)
	// the old scene is gone by now; a failed setup leaves the host without one
	if e.factory == nil {
		e.log.Errorw("no scene factory, host left without a scene", "terrain", terrain, "avatar", avatar)
		return
	}
	obj := e.factory.NewScene(terrain, avatar)
	if obj == 0 {
		e.log.Errorw("scene factory returned no scene, host left without a scene", "terrain", terrain, "avatar", avatar)
		return
	}
	for _, fn := range e.SceneSetup.Pre.Snapshot() {
		fn()
	}
	e.setupScene(obj)
	for _, fn := range e.SceneSetup.Post.Snapshot() {
		fn()
	}
}
