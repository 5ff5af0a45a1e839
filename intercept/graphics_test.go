package intercept

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/k2io/hostpatch"
	"github.com/k2io/hostpatch/addrtable"
	"github.com/k2io/hostpatch/config"
)

func TestInstallGraphicsStyles(t *testing.T) {
	e, h, p := newTestEngine(t, config.Core{})
	require.NoError(t, e.InstallGraphics())

	jumps := []addrtable.Op{addrtable.BeginFrame, addrtable.EndFrame, addrtable.PresentWindow, addrtable.Present}
	for _, op := range jumps {
		rec, ok := p.Lookup(addrtable.Resolve(op))
		require.True(t, ok, op)
		assert.Equal(t, hostpatch.StyleJump, rec.Style, op)
		assert.Equal(t, 5, rec.Length, op)
		assert.Equal(t, byte(0xe9), h.code(rec.Target, 1)[0], op)
	}
	pushes := []addrtable.Op{addrtable.GraphicsInstall, addrtable.Update, addrtable.Screenshot}
	for _, op := range pushes {
		rec, ok := p.Lookup(addrtable.Resolve(op))
		require.True(t, ok, op)
		assert.Equal(t, hostpatch.StylePushRet, rec.Style, op)
		assert.Equal(t, byte(0x68), h.code(rec.Target, 1)[0], op)
	}
	assert.False(t, e.Installed(addrtable.MainLoop))
}

func TestFrameDispatch(t *testing.T) {
	e, h, _ := newTestEngine(t, config.Core{})
	require.NoError(t, e.InstallGraphics())
	e.BeginFrame.Post.Register(func() { h.record("began") })
	e.EndFrame.Pre.Register(func() { h.record("ending") })
	e.PresentWindow.Pre.Register(func(hwnd uintptr, width, height int32) {
		assert.Equal(t, uintptr(0x20), hwnd)
		h.record("window")
	})
	e.GraphicsInstall.Post.Register(func() { h.record("installed") })

	assert.True(t, enter[BoolFunc](h, addrtable.GraphicsInstall)())
	enter[VoidFunc](h, addrtable.BeginFrame)()
	enter[VoidFunc](h, addrtable.EndFrame)()
	assert.Equal(t, int32(1), enter[PresentWindowFunc](h, addrtable.PresentWindow)(0x20, 640, 480))

	assert.Equal(t, []string{
		"graphicsInstall", "installed",
		"beginFrame", "began",
		"ending", "endFrame",
		"window", "presentWindow 640x480",
	}, h.calls)
}

func TestInstallGraphicsRollback(t *testing.T) {
	e, h, p := newTestEngine(t, config.Core{})
	present := addrtable.Resolve(addrtable.Present)
	broken := []byte{0xeb, 0x10, 0x90, 0x90, 0x90} // jmp short
	h.mem.WriteMemory(present, broken)

	err := e.InstallGraphics()
	assert.ErrorIs(t, err, hostpatch.ErrRelativeAddr)
	assert.Empty(t, p.Records())
	for _, op := range []addrtable.Op{addrtable.GraphicsInstall, addrtable.Update, addrtable.BeginFrame, addrtable.EndFrame, addrtable.PresentWindow} {
		assert.False(t, e.Installed(op), op)
		assert.Equal(t, prologue, h.code(addrtable.Resolve(op), 8), op)
	}
	assert.Equal(t, broken, h.code(present, 5))
}

func TestScreenshotPath(t *testing.T) {
	assert.Equal(t, "screenshots/shot0001.tga", ScreenshotPath("screenshots", "shot0001.tga"))
	assert.Equal(t, "screenshots/shot.tga", ScreenshotPath("screenshots", "C:/game/shot.tga"))
	assert.Equal(t, "out/shot.tga", ScreenshotPath("out/", "a/b/shot.tga"))
}

func TestScreenshotRedirected(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	e, h, _ := newTestEngine(t, config.Core{ScreenshotDir: dir})
	require.NoError(t, e.InstallGraphics())

	assert.True(t, enter[ScreenshotFunc](h, addrtable.Screenshot)("data/shot0001.tga"))
	want := filepath.ToSlash(dir) + "/shot0001.tga"
	assert.Equal(t, []string{want}, h.shots)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.True(t, e.TakeScreenshot("manual.tga"))
	assert.Equal(t, filepath.ToSlash(dir)+"/manual.tga", h.shots[1])
}

func TestPassThroughs(t *testing.T) {
	e, h, _ := newTestEngine(t, config.Core{})

	e.Resize(1280, 720)
	e.FlushResources(true)
	e.ReloadTextures()
	assert.False(t, e.ShowCursor(true))
	e.Quit()

	assert.Equal(t, []string{"resize 1280x720", "flush true", "reloadTextures", "cursor true", "quit"}, h.calls)
}
