package intercept

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/arch/x86/x86asm"

	"github.com/k2io/hostpatch"
	"github.com/k2io/hostpatch/addrtable"
	"github.com/k2io/hostpatch/config"
	"github.com/k2io/hostpatch/memory"
)

const (
	hostBase   = uintptr(0x400000)
	hostSize   = 0x1530000
	exportBase = uintptr(0x70000000)
)

// push ebp; mov ebp, esp; push 0; sub esp, 0x10
var prologue = []byte{0x55, 0x8b, 0xec, 0x6a, 0x00, 0x83, 0xec, 0x10}

// fakeHost stands in for the host image. Calls through a bridge are
// resolved the way the CPU would: patched entries are followed to the
// exported replacement, trampolines run the original routine.
type fakeHost struct {
	t       *testing.T
	mem     *memory.Buffer
	routine map[uintptr]any
	exports map[uintptr]any
	next    uintptr
	calls   []string
	shots   []string
	scene   uintptr
}

func newFakeHost(t *testing.T) *fakeHost {
	t.Helper()
	h := &fakeHost{
		t:       t,
		mem:     memory.NewBuffer(hostBase, make([]byte, hostSize)).Reserve(0x10000),
		routine: map[uintptr]any{},
		exports: map[uintptr]any{},
		next:    exportBase,
	}
	for _, e := range addrtable.Entries() {
		if e.Kind == addrtable.Routine {
			h.mem.WriteMemory(e.Addr, prologue)
		}
	}
	h.define(addrtable.GameInstall, func(applicationType int32) { h.record("gameInstall") })
	h.define(addrtable.GameQuit, func() { h.record("quit") })
	h.define(addrtable.MainLoop, func(presentToWindow bool, hwnd uintptr, width, height int32) int32 {
		h.record("mainLoop")
		addr := addrtable.Resolve(addrtable.MainLoopCount)
		memory.Write(h.mem, addr, memory.Read[int32](h.mem, addr)+1)
		return 7
	})
	h.define(addrtable.SceneSetup, func(scene uintptr) {
		h.record("setupScene")
		h.scene = scene
	})
	h.define(addrtable.SceneCleanup, func() { h.record("cleanupScene") })
	h.define(addrtable.GraphicsInstall, func() bool { h.record("graphicsInstall"); return true })
	h.define(addrtable.Update, func(elapsed float32) { h.record(fmt.Sprintf("update %.2f", elapsed)) })
	h.define(addrtable.BeginFrame, func() { h.record("beginFrame") })
	h.define(addrtable.EndFrame, func() { h.record("endFrame") })
	h.define(addrtable.PresentWindow, func(hwnd uintptr, width, height int32) int32 {
		h.record(fmt.Sprintf("presentWindow %dx%d", width, height))
		return 1
	})
	h.define(addrtable.Present, func() { h.record("present") })
	h.define(addrtable.Resize, func(width, height int32) { h.record(fmt.Sprintf("resize %dx%d", width, height)) })
	h.define(addrtable.FlushResources, func(full bool) { h.record(fmt.Sprintf("flush %t", full)) })
	h.define(addrtable.ReloadTextures, func() { h.record("reloadTextures") })
	h.define(addrtable.ShowCursor, func(on bool) bool { h.record(fmt.Sprintf("cursor %t", on)); return !on })
	h.define(addrtable.Screenshot, func(filename string) bool {
		h.record("screenshot")
		h.shots = append(h.shots, filename)
		return true
	})
	return h
}

func (h *fakeHost) define(op addrtable.Op, fn any) {
	h.routine[addrtable.Resolve(op)] = fn
}

func (h *fakeHost) record(call string) {
	h.calls = append(h.calls, call)
}

func (h *fakeHost) reset() {
	h.calls = nil
}

func (h *fakeHost) code(addr uintptr, n int) []byte {
	buf := make([]byte, n)
	h.mem.ReadMemory(buf, addr)
	return buf
}

// resolve returns the Go func that runs when the CPU enters addr.
func (h *fakeHost) resolve(addr uintptr) any {
	if fn, ok := h.exports[addr]; ok {
		return fn
	}
	if addr >= h.mem.Base()+uintptr(h.mem.Len()) {
		return h.routine[h.trampolineTarget(addr)]
	}
	code := h.code(addr, 8)
	switch {
	case code[0] == 0xe9:
		rel := int32(binary.LittleEndian.Uint32(code[1:]))
		return h.resolve(addr + 5 + uintptr(int64(rel)))
	case code[0] == 0x68 && code[5] == 0xc3:
		return h.resolve(uintptr(binary.LittleEndian.Uint32(code[1:])))
	}
	fn, ok := h.routine[addr]
	if !ok {
		h.t.Fatalf("no host routine at %#x", addr)
	}
	return fn
}

// trampolineTarget finds the routine a trampoline continues into.
func (h *fakeHost) trampolineTarget(tramp uintptr) uintptr {
	code := h.code(tramp, 64)
	off := 0
	for off < len(code) {
		inst, err := x86asm.Decode(code[off:], 32)
		require.NoError(h.t, err)
		if code[off] == 0xe9 {
			rel := int32(binary.LittleEndian.Uint32(code[off+1:]))
			back := tramp + uintptr(off+5) + uintptr(int64(rel))
			return back - uintptr(off)
		}
		off += inst.Len
	}
	h.t.Fatalf("no jump back in trampoline %#x", tramp)
	return 0
}

// enter calls the host routine for op the way the host itself would.
func enter[F any](h *fakeHost, op addrtable.Op) F {
	return fakeBridge[F]{h}.Call(addrtable.Resolve(op))
}

type fakeBridge[F any] struct {
	h *fakeHost
}

func (b fakeBridge[F]) Call(addr uintptr) F {
	typ := reflect.TypeOf((*F)(nil)).Elem()
	fn := reflect.MakeFunc(typ, func(args []reflect.Value) []reflect.Value {
		return reflect.ValueOf(b.h.resolve(addr)).Call(args)
	})
	return fn.Interface().(F)
}

func (b fakeBridge[F]) Export(fn F) uintptr {
	addr := b.h.next
	b.h.next += 0x10
	b.h.exports[addr] = fn
	return addr
}

func (h *fakeHost) bridges() Bridges {
	return Bridges{
		Void:          fakeBridge[VoidFunc]{h},
		Bool:          fakeBridge[BoolFunc]{h},
		GameInstall:   fakeBridge[GameInstallFunc]{h},
		MainLoop:      fakeBridge[MainLoopFunc]{h},
		SetupScene:    fakeBridge[SetupSceneFunc]{h},
		Update:        fakeBridge[UpdateFunc]{h},
		PresentWindow: fakeBridge[PresentWindowFunc]{h},
		Screenshot:    fakeBridge[ScreenshotFunc]{h},
		Resize:        fakeBridge[ResizeFunc]{h},
		Flush:         fakeBridge[FlushFunc]{h},
		Toggle:        fakeBridge[ToggleFunc]{h},
	}
}

type fakeFactory struct {
	scene uintptr
	made  []string
}

func (f *fakeFactory) NewScene(terrain, avatar string) uintptr {
	f.made = append(f.made, terrain+" "+avatar)
	return f.scene
}

// newTestEngine returns an engine over a fresh fake host with a 32-bit
// patcher.
func newTestEngine(t *testing.T, core config.Core) (*Engine, *fakeHost, *hostpatch.Patcher) {
	t.Helper()
	h := newFakeHost(t)
	p := hostpatch.New(h.mem, hostpatch.WithMode(32))
	e := New(Options{
		Memory:  h.mem,
		Patcher: p,
		Bridges: h.bridges(),
		Core:    core,
	})
	return e, h, p
}

func runMainLoop(h *fakeHost) int32 {
	return enter[MainLoopFunc](h, addrtable.MainLoop)(true, 0x10, 800, 600)
}
