// Package memory provides typed, mostly unchecked access to raw process
// memory, byte pattern scanning and pointer chasing.
//
// Only the zero address is guarded. Anything else is dereferenced as is: an
// invalid address crashes the process the same way it would in the host.
package memory

import (
	"errors"
	"unsafe"
)

var (
	// ErrArenaExhausted means a Buffer has no executable space left
	ErrArenaExhausted = errors.New("executable arena exhausted")
	// ErrModuleNotFound means no loaded module matched the name
	ErrModuleNotFound = errors.New("module not found")
	// ErrBadPattern means a textual pattern could not be parsed
	ErrBadPattern = errors.New("malformed pattern")
)

// Space is a flat, byte-addressable view of a process.
type Space interface {
	ReadMemory(buf []byte, addr uintptr)
	WriteMemory(addr uintptr, data []byte)
}

// CodeSpace is a Space that code can be patched into.
type CodeSpace interface {
	Space
	// Unprotect makes [addr, addr+size) writable and returns a func that
	// puts the previous protection back.
	Unprotect(addr, size uintptr) (restore func() error, err error)
	// AllocExec returns size bytes of executable, writable memory.
	AllocExec(size int) (uintptr, error)
	FreeExec(addr uintptr) error
}

// Self is the current process.
var Self = &Process{regions: map[uintptr][]byte{}}

// makeSlice views raw memory as a byte slice.
func makeSlice(addr uintptr, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}

// Process accesses the memory of the running process directly.
type Process struct {
	// executable regions handed out by AllocExec
	regions map[uintptr][]byte
}

func (p *Process) ReadMemory(buf []byte, addr uintptr) {
	copy(buf, makeSlice(addr, uintptr(len(buf))))
}

func (p *Process) WriteMemory(addr uintptr, data []byte) {
	copy(makeSlice(addr, uintptr(len(data))), data)
}

// Buffer maps a byte slice at a fixed base address. Offline tools load host
// images into one, and tests use it as a stand-in host.
type Buffer struct {
	base  uintptr
	data  []byte
	arena int // offset of the executable arena
	next  int
}

// NewBuffer maps data at base. The slice is used, not copied.
func NewBuffer(base uintptr, data []byte) *Buffer {
	return &Buffer{base: base, data: data, arena: len(data), next: len(data)}
}

// Reserve appends an n byte executable arena right after the mapped data.
func (b *Buffer) Reserve(n int) *Buffer {
	b.data = append(b.data[:b.arena:b.arena], make([]byte, n)...)
	b.next = b.arena
	return b
}

func (b *Buffer) Base() uintptr { return b.base }

// Len is the mapped size, excluding the arena.
func (b *Buffer) Len() int { return b.arena }

// Bytes returns the mapped data, excluding the arena.
func (b *Buffer) Bytes() []byte { return b.data[:b.arena] }

func (b *Buffer) slice(addr uintptr, n int) []byte {
	off := int(addr - b.base)
	return b.data[off : off+n]
}

func (b *Buffer) ReadMemory(buf []byte, addr uintptr) {
	copy(buf, b.slice(addr, len(buf)))
}

func (b *Buffer) WriteMemory(addr uintptr, data []byte) {
	copy(b.slice(addr, len(data)), data)
}

func (b *Buffer) Unprotect(addr, size uintptr) (func() error, error) {
	return func() error { return nil }, nil
}

func (b *Buffer) AllocExec(size int) (uintptr, error) {
	if b.next+size > len(b.data) {
		return 0, ErrArenaExhausted
	}
	addr := b.base + uintptr(b.next)
	b.next += size
	return addr, nil
}

// FreeExec is a no-op; the arena is a bump allocator.
func (b *Buffer) FreeExec(addr uintptr) error {
	return nil
}
