package intercept

import (
	"github.com/k2io/hostpatch"
	"github.com/k2io/hostpatch/addrtable"
)

// Bridge moves one host routine signature across the machine code boundary.
type Bridge[F any] interface {
	// Call returns a Go func that calls the machine code at addr.
	Call(addr uintptr) F
	// Export returns a machine code entry point, in the host calling
	// convention, that runs fn.
	Export(fn F) uintptr
}

// Patcher installs and reverts code patches; *hostpatch.Patcher is one.
type Patcher interface {
	Install(target, replacement uintptr, style hostpatch.Style, length int) (*hostpatch.Record, error)
	Uninstall(r *hostpatch.Record) error
}

// Point is one interceptable host routine. Before install, Original calls
// the routine itself; after install it calls the trampoline, which behaves
// the same while the routine's entry now leads to the replacement.
type Point[F any] struct {
	op     addrtable.Op
	style  hostpatch.Style
	length int
	bridge Bridge[F]
	hook   F
	entry  uintptr
	slot   uintptr
	orig   F
	record *hostpatch.Record
}

func newPoint[F any](op addrtable.Op, style hostpatch.Style, length int, bridge Bridge[F], hook F) *Point[F] {
	p := &Point[F]{
		op:     op,
		style:  style,
		length: length,
		bridge: bridge,
		hook:   hook,
		slot:   addrtable.Resolve(op),
	}
	p.orig = bridge.Call(p.slot)
	return p
}

func (p *Point[F]) Op() addrtable.Op { return p.op }

// Original returns the callable that runs the host behavior.
func (p *Point[F]) Original() F { return p.orig }

// Slot is the address Original calls.
func (p *Point[F]) Slot() uintptr { return p.slot }

func (p *Point[F]) Installed() bool { return p.record != nil }

func (p *Point[F]) Record() *hostpatch.Record { return p.record }

func (p *Point[F]) install(pt Patcher) error {
	if p.record != nil {
		return nil
	}
	if p.entry == 0 {
		p.entry = p.bridge.Export(p.hook)
	}
	rec, err := pt.Install(p.slot, p.entry, p.style, p.length)
	if err != nil {
		return err
	}
	p.record = rec
	p.slot = rec.Trampoline
	p.orig = p.bridge.Call(p.slot)
	return nil
}

func (p *Point[F]) uninstall(pt Patcher) error {
	if p.record == nil {
		return nil
	}
	if err := pt.Uninstall(p.record); err != nil {
		return err
	}
	p.slot = p.record.Target
	p.record = nil
	p.orig = p.bridge.Call(p.slot)
	return nil
}

// point is a Point of any signature.
type point interface {
	Op() addrtable.Op
	Installed() bool
	install(pt Patcher) error
	uninstall(pt Patcher) error
}
