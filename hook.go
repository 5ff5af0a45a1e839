// Package hostpatch redirects machine code entry points of an already loaded
// image to replacement code.
//
// Installing a hook overwrites the first instructions of the target with a
// redirect and moves them into a trampoline that ends with a jump back to the
// rest of the target, so calling the trampoline still runs the original.
package hostpatch

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/k2io/hostpatch/memory"
)

// Style selects how the target is redirected.
type Style int

const (
	// StyleJump writes JMP rel32.
	StyleJump Style = iota
	// StylePushRet pushes the replacement address and returns into it.
	StylePushRet
)

func (s Style) String() string {
	switch s {
	case StyleJump:
		return "jmp"
	case StylePushRet:
		return "push/ret"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// Record is one applied patch.
type Record struct {
	Target uintptr
	// Length is the number of bytes replaced at Target
	Length int
	// Original holds the replaced bytes
	Original []byte
	// Trampoline runs the original instructions, 0 for raw patches
	Trampoline uintptr
	Style      Style
}

var (
	// ErrDoubleHook means already hooked
	ErrDoubleHook = errors.New("double hook")
	// ErrHookNotFound means the hook not found
	ErrHookNotFound = errors.New("hook not found")
	// ErrRelativeAddr means an instruction cannot be moved to the trampoline
	ErrRelativeAddr = errors.New("relative address in instruction")
	// ErrPatchLength means the patch is shorter than the redirect encoding
	ErrPatchLength = errors.New("patch shorter than redirect")
	// ErrSplitInstruction means the patch length ends inside an instruction
	ErrSplitInstruction = errors.New("patch length splits an instruction")
	// ErrFarJump means a rel32 cannot reach the destination
	ErrFarJump = errors.New(">32bit rel offset needed")
)

// Patcher applies and reverts patches in one CodeSpace.
type Patcher struct {
	mem  memory.CodeSpace
	mode int
	log  *zap.SugaredLogger
	// hooks applied with target addresses as keys
	hooks map[uintptr]*Record
	// protect the hooks map
	lock sync.Mutex
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithMode sets the instruction set width, 32 or 64. It defaults to the
// width of the running process.
func WithMode(bits int) Option {
	return func(p *Patcher) { p.mode = bits }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Patcher) { p.log = log }
}

func New(mem memory.CodeSpace, opts ...Option) *Patcher {
	p := &Patcher{
		mem:   mem,
		mode:  32 << (^uintptr(0) >> 63),
		log:   zap.NewNop().Sugar(),
		hooks: make(map[uintptr]*Record),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Lookup returns the active patch at target.
func (p *Patcher) Lookup(target uintptr) (*Record, bool) {
	p.lock.Lock()
	defer p.lock.Unlock()
	r, ok := p.hooks[target]
	return r, ok
}

// Records returns every active patch.
func (p *Patcher) Records() []*Record {
	p.lock.Lock()
	defer p.lock.Unlock()
	out := make([]*Record, 0, len(p.hooks))
	for _, r := range p.hooks {
		out = append(out, r)
	}
	return out
}
