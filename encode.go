package hostpatch

import (
	"encoding/binary"

	"golang.org/x/arch/x86/x86asm"
)

const (
	jmp32relLen = 5  // JMP rel32
	jmpAbsLen   = 14 // JMP [RIP+0]; dq addr
	nop         = 0x90
	maxInstLen  = 15
)

// size of the redirect encoding for style in mode
func (s Style) size(mode int) int {
	if s == StylePushRet {
		if mode == 64 {
			return 14
		}
		return 6
	}
	return jmp32relLen
}

func overflowsS32(v1, v2 uintptr) bool {
	d := int64(v2) - int64(v1)
	return d > 1<<31-1 || d < -1<<31
}

// rel32 returns the displacement from the end of an instruction at from
// with length n to dest.
func (p *Patcher) rel32(from uintptr, n int, dest uintptr) (uint32, bool) {
	next := from + uintptr(n)
	if p.mode == 64 && overflowsS32(next, dest) {
		return 0, false
	}
	return uint32(dest - next), true
}

// redirect encodes the bytes written at target.
func (p *Patcher) redirect(target, to uintptr, style Style) ([]byte, error) {
	if style == StylePushRet {
		seq := []byte{0x68, 0, 0, 0, 0} // PUSH imm32
		binary.LittleEndian.PutUint32(seq[1:], uint32(to))
		if p.mode == 64 {
			// PUSH sign-extends, patch the high half in place
			hi := []byte{0xc7, 0x44, 0x24, 0x04, 0, 0, 0, 0} // MOV DWORD [RSP+4], imm32
			binary.LittleEndian.PutUint32(hi[4:], uint32(uint64(to)>>32))
			seq = append(seq, hi...)
		}
		return append(seq, 0xc3), nil // RET
	}
	rel, ok := p.rel32(target, jmp32relLen, to)
	if !ok {
		return nil, ErrFarJump
	}
	seq := []byte{0xe9, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(seq[1:], rel)
	return seq, nil
}

// jump encodes a jump from `from` to `to` for trampolines, falling back to
// an absolute indirect jump when rel32 is out of range.
func (p *Patcher) jump(from, to uintptr) []byte {
	if rel, ok := p.rel32(from, jmp32relLen, to); ok {
		seq := []byte{0xe9, 0, 0, 0, 0}
		binary.LittleEndian.PutUint32(seq[1:], rel)
		return seq
	}
	seq := []byte{0xff, 0x25, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint64(seq[6:], uint64(to))
	return seq
}

// maxJumpLen bounds the size of jump().
func (p *Patcher) maxJumpLen() int {
	if p.mode == 64 {
		return jmpAbsLen
	}
	return jmp32relLen
}

// readInstructions reads and decodes whole instructions at target until at
// least size bytes are covered. Nothing past the last decoded instruction is
// read. With exact set the instructions must end at size and nothing past it
// is read.
func (p *Patcher) readInstructions(target uintptr, size int, exact bool) ([]byte, []x86asm.Inst, error) {
	src := make([]byte, size)
	p.mem.ReadMemory(src, target)
	var insts []x86asm.Inst
	length := 0
	for length < size {
		inst, err := x86asm.Decode(src[length:], p.mode)
		if err == x86asm.ErrTruncated {
			if exact {
				return nil, nil, ErrSplitInstruction
			}
			if len(src)-length >= maxInstLen {
				return nil, nil, err
			}
			// one more byte and try again
			src = append(src, 0)
			p.mem.ReadMemory(src[len(src)-1:], target+uintptr(len(src)-1))
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		insts = append(insts, inst)
		length += inst.Len
	}
	return src[:length], insts, nil
}

// relocate copies the instructions in src, which were decoded at from, so
// that they behave the same when placed at to.
func (p *Patcher) relocate(src []byte, insts []x86asm.Inst, from, to uintptr) ([]byte, error) {
	out := make([]byte, len(src))
	copy(out, src)
	off := 0
	for _, inst := range insts {
		switch inst.PCRel {
		case 0:
		case 4:
			at := off + inst.PCRelOff
			rel := int32(binary.LittleEndian.Uint32(out[at:]))
			dest := from + uintptr(off+inst.Len) + uintptr(int64(rel))
			nrel, ok := p.rel32(to+uintptr(off), inst.Len, dest)
			if !ok {
				return nil, ErrFarJump
			}
			binary.LittleEndian.PutUint32(out[at:], nrel)
		default:
			// rel8/rel16 branches cannot reach back from the trampoline
			return nil, ErrRelativeAddr
		}
		off += inst.Len
	}
	return out, nil
}
