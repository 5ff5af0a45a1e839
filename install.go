package hostpatch

import (
	"errors"
	"fmt"
)

// Install redirects target to replacement and returns the patch record. The
// record's Trampoline runs the displaced instructions and continues in the
// target, so calling it behaves like calling the unpatched target.
//
// length is the number of bytes to replace. Zero sizes the patch to the
// smallest run of whole instructions that fits the redirect; otherwise it
// must fit the redirect and end on an instruction boundary.
func (p *Patcher) Install(target, replacement uintptr, style Style, length int) (*Record, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if _, ok := p.hooks[target]; ok {
		return nil, ErrDoubleHook
	}
	need := style.size(p.mode)
	if length != 0 && length < need {
		return nil, fmt.Errorf("%w: %d < %d", ErrPatchLength, length, need)
	}
	want := length
	if want == 0 {
		want = need
	}

	src, insts, err := p.readInstructions(target, want, length != 0)
	if errors.Is(err, ErrSplitInstruction) {
		return nil, fmt.Errorf("%w: %#x+%d", ErrSplitInstruction, target, length)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %#x: %w", target, err)
	}
	n := len(src)
	p.log.Debugw("patch region", "target", target, "length", n, "instructions", len(insts))

	patch, err := p.redirect(target, replacement, style)
	if err != nil {
		return nil, err
	}
	for len(patch) < n {
		patch = append(patch, nop)
	}

	tramp, err := p.mem.AllocExec(n + p.maxJumpLen())
	if err != nil {
		return nil, err
	}
	code, err := p.relocate(src, insts, target, tramp)
	if err != nil {
		p.mem.FreeExec(tramp)
		return nil, err
	}
	code = append(code, p.jump(tramp+uintptr(n), target+uintptr(n))...)
	p.mem.WriteMemory(tramp, code)

	rec := &Record{
		Target:     target,
		Length:     n,
		Original:   append([]byte(nil), src...),
		Trampoline: tramp,
		Style:      style,
	}
	if err := p.write(target, patch); err != nil {
		p.mem.FreeExec(tramp)
		return nil, err
	}
	p.hooks[target] = rec
	p.log.Debugw("hook installed", "target", target, "replacement", replacement, "style", style, "trampoline", tramp)
	return rec, nil
}

// Patch overwrites target with data and records the bytes it replaced. The
// pages are made writable for the write and then get their previous
// protection back where the platform reports it; elsewhere they are left
// read and execute, so Patch is meant for code.
func (p *Patcher) Patch(target uintptr, data []byte) (*Record, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if _, ok := p.hooks[target]; ok {
		return nil, ErrDoubleHook
	}
	orig := make([]byte, len(data))
	p.mem.ReadMemory(orig, target)
	if err := p.write(target, data); err != nil {
		return nil, err
	}
	rec := &Record{Target: target, Length: len(data), Original: orig}
	p.hooks[target] = rec
	return rec, nil
}

// Nop replaces n bytes at target with NOPs.
func (p *Patcher) Nop(target uintptr, n int) (*Record, error) {
	data := make([]byte, n)
	for i := range data {
		data[i] = nop
	}
	return p.Patch(target, data)
}

// Uninstall writes back the bytes replaced by r and releases its trampoline.
func (p *Patcher) Uninstall(r *Record) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	if r == nil || p.hooks[r.Target] != r {
		return ErrHookNotFound
	}
	if err := p.write(r.Target, r.Original); err != nil {
		return err
	}
	delete(p.hooks, r.Target)
	if r.Trampoline != 0 {
		if err := p.mem.FreeExec(r.Trampoline); err != nil {
			p.log.Warnw("free trampoline", "trampoline", r.Trampoline, "error", err)
		}
	}
	p.log.Debugw("hook removed", "target", r.Target)
	return nil
}

func (p *Patcher) write(addr uintptr, data []byte) error {
	restore, err := p.mem.Unprotect(addr, uintptr(len(data)))
	if err != nil {
		return fmt.Errorf("unprotect %#x: %w", addr, err)
	}
	p.mem.WriteMemory(addr, data)
	return restore()
}
