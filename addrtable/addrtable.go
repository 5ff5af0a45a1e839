// Package addrtable maps logical host operations to the fixed addresses they
// occupy in the one client build this module targets. Every address here is
// invalidated by any host update; there is no runtime validation.
package addrtable

import (
	"fmt"
	"sort"
)

// Op names an interceptable host routine or a host-owned static.
type Op string

const (
	GameInstall  Op = "game.install"
	GameQuit     Op = "game.quit"
	MainLoop     Op = "game.mainLoop"
	SceneSetup   Op = "game.setupScene"
	SceneCleanup Op = "game.cleanupScene"

	GraphicsInstall    Op = "graphics.install"
	Update             Op = "graphics.update"
	BeginFrame         Op = "graphics.beginScene"
	EndFrame           Op = "graphics.endScene"
	PresentWindow      Op = "graphics.presentWindow"
	Present            Op = "graphics.present"
	Resize             Op = "graphics.resize"
	FlushResources     Op = "graphics.flushResources"
	ReloadTextures     Op = "graphics.reloadTextures"
	ShowCursor         Op = "graphics.showMouseCursor"
	Screenshot         Op = "graphics.screenshot"
	MainLoopCount      Op = "state.mainLoopCount"
	RenderTargetWidth  Op = "state.renderTargetWidth"
	RenderTargetHeight Op = "state.renderTargetHeight"
)

// Conv is the calling convention of a host routine.
type Conv int

const (
	CDecl Conv = iota
	StdCall
	ThisCall
)

func (c Conv) String() string {
	switch c {
	case CDecl:
		return "cdecl"
	case StdCall:
		return "stdcall"
	case ThisCall:
		return "thiscall"
	}
	return fmt.Sprintf("Conv(%d)", int(c))
}

// Kind tells routines apart from plain data locations.
type Kind int

const (
	Routine Kind = iota
	Data
)

// Entry describes one fixed location in the host image.
type Entry struct {
	Op     Op
	Addr   uintptr
	Conv   Conv
	Kind   Kind
	Params []string
	Result string
}

var entries = map[Op]Entry{
	GameInstall:  {Op: GameInstall, Addr: 0x00422E80, Params: []string{"int32 applicationType"}},
	GameQuit:     {Op: GameQuit, Addr: 0x00423720},
	MainLoop:     {Op: MainLoop, Addr: 0x004237C0, Params: []string{"bool presentToWindow", "HWND hwnd", "int32 width", "int32 height"}, Result: "int32"},
	SceneSetup:   {Op: SceneSetup, Addr: 0x00424220, Params: []string{"GroundScene* scene"}},
	SceneCleanup: {Op: SceneCleanup, Addr: 0x00423700},

	GraphicsInstall: {Op: GraphicsInstall, Addr: 0x007548A0, Result: "bool"},
	Update:          {Op: Update, Addr: 0x00755700, Params: []string{"float32 elapsedTime"}},
	BeginFrame:      {Op: BeginFrame, Addr: 0x00755730},
	EndFrame:        {Op: EndFrame, Addr: 0x00755740},
	PresentWindow:   {Op: PresentWindow, Addr: 0x00755810, Params: []string{"HWND hwnd", "int32 width", "int32 height"}, Result: "int32"},
	Present:         {Op: Present, Addr: 0x00755800},
	Resize:          {Op: Resize, Addr: 0x00754E40, Params: []string{"int32 width", "int32 height"}},
	FlushResources:  {Op: FlushResources, Addr: 0x00755520, Params: []string{"bool fullFlush"}},
	ReloadTextures:  {Op: ReloadTextures, Addr: 0x00764B70},
	ShowCursor:      {Op: ShowCursor, Addr: 0x00755A50, Params: []string{"bool isShown"}, Result: "bool"},
	Screenshot:      {Op: Screenshot, Addr: 0x00755890, Params: []string{"char* filename"}, Result: "bool"},

	MainLoopCount:      {Op: MainLoopCount, Addr: 0x01908830, Kind: Data, Result: "int32"},
	RenderTargetWidth:  {Op: RenderTargetWidth, Addr: 0x01922E64, Kind: Data, Result: "int32"},
	RenderTargetHeight: {Op: RenderTargetHeight, Addr: 0x01922E60, Kind: Data, Result: "int32"},
}

// Resolve returns the address of op. An unknown op means the caller was built
// against a different table, which is not recoverable.
func Resolve(op Op) uintptr {
	e, ok := entries[op]
	if !ok {
		panic(fmt.Sprintf("addrtable: unknown operation %q", op))
	}
	return e.Addr
}

// Lookup returns the entry for op.
func Lookup(op Op) (Entry, bool) {
	e, ok := entries[op]
	return e, ok
}

// Entries returns every entry ordered by address.
func Entries() []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Addr < out[j].Addr })
	return out
}
