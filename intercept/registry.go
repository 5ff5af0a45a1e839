package intercept

import "fmt"

// Phase positions a callback relative to the original routine.
type Phase int

const (
	Pre Phase = iota
	Post
)

func (p Phase) String() string {
	switch p {
	case Pre:
		return "pre"
	case Post:
		return "post"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Registry is an append-only list of callbacks kept in registration order.
// Like the rest of the engine it is only touched from the host main thread.
type Registry[F any] struct {
	fns []F
}

// Register appends fn.
func (r *Registry[F]) Register(fn F) {
	r.fns = append(r.fns, fn)
}

func (r *Registry[F]) Len() int {
	return len(r.fns)
}

// Snapshot returns the callbacks registered so far. Callbacks registered
// while a snapshot is walked do not show up in it.
func (r *Registry[F]) Snapshot() []F {
	n := len(r.fns)
	return r.fns[:n:n]
}

// Hooks pairs the registries on both sides of one operation.
type Hooks[F any] struct {
	Pre  Registry[F]
	Post Registry[F]
}

// Phase returns the registry for p, or nil for an unknown phase.
func (h *Hooks[F]) Phase(p Phase) *Registry[F] {
	switch p {
	case Pre:
		return &h.Pre
	case Post:
		return &h.Post
	}
	return nil
}
