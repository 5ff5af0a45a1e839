package intercept

import (
	"fmt"

	"github.com/k2io/hostpatch/addrtable"
)

// registry returns the Hooks for op as an untyped value.
func (e *Engine) registry(op addrtable.Op) any {
	switch op {
	case addrtable.GameInstall:
		return &e.GameInstall
	case addrtable.MainLoop:
		return &e.MainLoop
	case addrtable.SceneSetup:
		return &e.SceneSetup
	case addrtable.SceneCleanup:
		return &e.SceneTeardown
	case addrtable.GraphicsInstall:
		return &e.GraphicsInstall
	case addrtable.Update:
		return &e.Update
	case addrtable.BeginFrame:
		return &e.BeginFrame
	case addrtable.EndFrame:
		return &e.EndFrame
	case addrtable.PresentWindow:
		return &e.PresentWindow
	case addrtable.Present:
		return &e.Present
	}
	return nil
}

// Register appends fn to the (op, phase) registry. fn must have the
// registry's exact callback type, e.g. func(float32) for addrtable.Update.
func Register[F any](e *Engine, op addrtable.Op, phase Phase, fn F) error {
	r := e.registry(op)
	if r == nil {
		return fmt.Errorf("%w: %s", ErrNoRegistry, op)
	}
	h, ok := r.(*Hooks[F])
	if !ok {
		return fmt.Errorf("%w: %s wants %T", ErrCallbackType, op, r)
	}
	reg := h.Phase(phase)
	if reg == nil {
		return fmt.Errorf("%w: %s %s", ErrNoRegistry, op, phase)
	}
	reg.Register(fn)
	return nil
}
