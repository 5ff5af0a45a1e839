package intercept

import (
	"os"
	"path"
	"path/filepath"
	"strings"
)

func (e *Engine) graphicsInstallHook() bool {
	for _, fn := range e.GraphicsInstall.Pre.Snapshot() {
		fn()
	}
	result := e.graphicsInstall.Original()()
	for _, fn := range e.GraphicsInstall.Post.Snapshot() {
		fn()
	}
	return result
}

func (e *Engine) updateHook(elapsed float32) {
	for _, fn := range e.Update.Pre.Snapshot() {
		fn(elapsed)
	}
	e.update.Original()(elapsed)
	for _, fn := range e.Update.Post.Snapshot() {
		fn(elapsed)
	}
}

func (e *Engine) beginFrameHook() {
	for _, fn := range e.BeginFrame.Pre.Snapshot() {
		fn()
	}
	e.beginFrame.Original()()
	for _, fn := range e.BeginFrame.Post.Snapshot() {
		fn()
	}
}

func (e *Engine) endFrameHook() {
	for _, fn := range e.EndFrame.Pre.Snapshot() {
		fn()
	}
	e.endFrame.Original()()
	for _, fn := range e.EndFrame.Post.Snapshot() {
		fn()
	}
}

func (e *Engine) presentWindowHook(hwnd uintptr, width, height int32) int32 {
	for _, fn := range e.PresentWindow.Pre.Snapshot() {
		fn(hwnd, width, height)
	}
	result := e.presentWindow.Original()(hwnd, width, height)
	for _, fn := range e.PresentWindow.Post.Snapshot() {
		fn(hwnd, width, height)
	}
	return result
}

func (e *Engine) presentHook() {
	for _, fn := range e.Present.Pre.Snapshot() {
		fn()
	}
	e.present.Original()()
	for _, fn := range e.Present.Post.Snapshot() {
		fn()
	}
}

// ScreenshotPath keeps only the base name of the host supplied file and
// places it under dir.
func ScreenshotPath(dir, filename string) string {
	if i := strings.LastIndexByte(filename, '/'); i >= 0 {
		filename = filename[i+1:]
	}
	return path.Join(filepath.ToSlash(dir), filename)
}

func (e *Engine) screenshotHook(filename string) bool {
	dir := e.core.ScreenshotDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		e.log.Warnw("cannot create screenshot directory", "dir", dir, "error", err)
	}
	return e.screenshot.Original()(ScreenshotPath(dir, filename))
}

// TakeScreenshot saves a screenshot under the screenshot directory.
func (e *Engine) TakeScreenshot(filename string) bool {
	return e.screenshotHook(filename)
}

func (e *Engine) Resize(width, height int32) {
	e.resize(width, height)
}

// FlushResources releases device resources; full also drops textures.
func (e *Engine) FlushResources(full bool) {
	e.flushResources(full)
}

func (e *Engine) ReloadTextures() {
	e.reloadTextures()
}

// ShowCursor sets the cursor visibility and returns the host's result.
func (e *Engine) ShowCursor(visible bool) bool {
	return e.showCursor(visible)
}
