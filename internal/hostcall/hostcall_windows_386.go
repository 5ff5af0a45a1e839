//go:build windows && 386

package hostcall

import (
	"math"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/k2io/hostpatch/intercept"
)

// Bridges returns cdecl bridges for every host signature.
func Bridges() (intercept.Bridges, error) {
	return intercept.Bridges{
		Void:          voidBridge{},
		Bool:          boolBridge{},
		GameInstall:   gameInstallBridge{},
		MainLoop:      mainLoopBridge{},
		SetupScene:    setupSceneBridge{},
		Update:        updateBridge{},
		PresentWindow: presentWindowBridge{},
		Screenshot:    screenshotBridge{},
		Resize:        resizeBridge{},
		Flush:         flushBridge{},
		Toggle:        toggleBridge{},
	}, nil
}

func flag(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

// al holds a bool result; the upper bytes of eax are undefined
func al(r uintptr) bool {
	return r&0xff != 0
}

type voidBridge struct{}

func (voidBridge) Call(addr uintptr) intercept.VoidFunc {
	return func() { syscall.SyscallN(addr) }
}

func (voidBridge) Export(fn intercept.VoidFunc) uintptr {
	return windows.NewCallbackCDecl(func() uintptr { fn(); return 0 })
}

type boolBridge struct{}

func (boolBridge) Call(addr uintptr) intercept.BoolFunc {
	return func() bool {
		r, _, _ := syscall.SyscallN(addr)
		return al(r)
	}
}

func (boolBridge) Export(fn intercept.BoolFunc) uintptr {
	return windows.NewCallbackCDecl(func() uintptr { return flag(fn()) })
}

type gameInstallBridge struct{}

func (gameInstallBridge) Call(addr uintptr) intercept.GameInstallFunc {
	return func(applicationType int32) { syscall.SyscallN(addr, uintptr(applicationType)) }
}

func (gameInstallBridge) Export(fn intercept.GameInstallFunc) uintptr {
	return windows.NewCallbackCDecl(func(applicationType uintptr) uintptr {
		fn(int32(applicationType))
		return 0
	})
}

type mainLoopBridge struct{}

func (mainLoopBridge) Call(addr uintptr) intercept.MainLoopFunc {
	return func(presentToWindow bool, hwnd uintptr, width, height int32) int32 {
		r, _, _ := syscall.SyscallN(addr, flag(presentToWindow), hwnd, uintptr(width), uintptr(height))
		return int32(r)
	}
}

func (mainLoopBridge) Export(fn intercept.MainLoopFunc) uintptr {
	return windows.NewCallbackCDecl(func(presentToWindow, hwnd, width, height uintptr) uintptr {
		return uintptr(fn(al(presentToWindow), hwnd, int32(width), int32(height)))
	})
}

type setupSceneBridge struct{}

func (setupSceneBridge) Call(addr uintptr) intercept.SetupSceneFunc {
	return func(scene uintptr) { syscall.SyscallN(addr, scene) }
}

func (setupSceneBridge) Export(fn intercept.SetupSceneFunc) uintptr {
	return windows.NewCallbackCDecl(func(scene uintptr) uintptr { fn(scene); return 0 })
}

type updateBridge struct{}

// float32 arguments travel on the stack as their bit pattern
func (updateBridge) Call(addr uintptr) intercept.UpdateFunc {
	return func(elapsed float32) { syscall.SyscallN(addr, uintptr(math.Float32bits(elapsed))) }
}

func (updateBridge) Export(fn intercept.UpdateFunc) uintptr {
	return windows.NewCallbackCDecl(func(elapsed uintptr) uintptr {
		fn(math.Float32frombits(uint32(elapsed)))
		return 0
	})
}

type presentWindowBridge struct{}

func (presentWindowBridge) Call(addr uintptr) intercept.PresentWindowFunc {
	return func(hwnd uintptr, width, height int32) int32 {
		r, _, _ := syscall.SyscallN(addr, hwnd, uintptr(width), uintptr(height))
		return int32(r)
	}
}

func (presentWindowBridge) Export(fn intercept.PresentWindowFunc) uintptr {
	return windows.NewCallbackCDecl(func(hwnd, width, height uintptr) uintptr {
		return uintptr(fn(hwnd, int32(width), int32(height)))
	})
}

type screenshotBridge struct{}

func (screenshotBridge) Call(addr uintptr) intercept.ScreenshotFunc {
	return func(filename string) bool {
		p, err := windows.BytePtrFromString(filename)
		if err != nil {
			return false
		}
		r, _, _ := syscall.SyscallN(addr, uintptr(unsafe.Pointer(p)))
		runtime.KeepAlive(p)
		return al(r)
	}
}

func (screenshotBridge) Export(fn intercept.ScreenshotFunc) uintptr {
	return windows.NewCallbackCDecl(func(filename uintptr) uintptr {
		return flag(fn(windows.BytePtrToString((*byte)(unsafe.Pointer(filename)))))
	})
}

type resizeBridge struct{}

func (resizeBridge) Call(addr uintptr) intercept.ResizeFunc {
	return func(width, height int32) { syscall.SyscallN(addr, uintptr(width), uintptr(height)) }
}

func (resizeBridge) Export(fn intercept.ResizeFunc) uintptr {
	return windows.NewCallbackCDecl(func(width, height uintptr) uintptr {
		fn(int32(width), int32(height))
		return 0
	})
}

type flushBridge struct{}

func (flushBridge) Call(addr uintptr) intercept.FlushFunc {
	return func(full bool) { syscall.SyscallN(addr, flag(full)) }
}

func (flushBridge) Export(fn intercept.FlushFunc) uintptr {
	return windows.NewCallbackCDecl(func(full uintptr) uintptr { fn(al(full)); return 0 })
}

type toggleBridge struct{}

func (toggleBridge) Call(addr uintptr) intercept.ToggleFunc {
	return func(on bool) bool {
		r, _, _ := syscall.SyscallN(addr, flag(on))
		return al(r)
	}
}

func (toggleBridge) Export(fn intercept.ToggleFunc) uintptr {
	return windows.NewCallbackCDecl(func(on uintptr) uintptr { return flag(fn(al(on))) })
}
