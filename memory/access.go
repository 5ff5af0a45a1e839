package memory

import (
	"unsafe"
)

// bytesOf views a plain-data value as its raw bytes. T must not contain Go
// pointers, strings, slices or maps.
func bytesOf[T any](v *T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), unsafe.Sizeof(*v))
}

// Read returns the T stored at addr, or the zero T when addr is 0.
func Read[T any](s Space, addr uintptr) T {
	var v T
	if addr == 0 {
		return v
	}
	s.ReadMemory(bytesOf(&v), addr)
	return v
}

// ReadOffset dereferences the pointer stored at addr and reads T at
// pointer+offset. Either address being 0 yields the zero T.
func ReadOffset[T any](s Space, addr uintptr, offset int) T {
	p := ReadPointer(s, addr)
	if p == 0 {
		var v T
		return v
	}
	return Read[T](s, p+uintptr(offset))
}

// Write stores v at addr. A zero addr is ignored.
func Write[T any](s Space, addr uintptr, v T) {
	if addr == 0 {
		return
	}
	s.WriteMemory(addr, bytesOf(&v))
}

// WriteOffset stores v at offset from the pointer stored at addr.
func WriteOffset[T any](s Space, addr uintptr, offset int, v T) {
	p := ReadPointer(s, addr)
	if p == 0 {
		return
	}
	Write(s, p+uintptr(offset), v)
}

func ReadPointer(s Space, addr uintptr) uintptr {
	return Read[uintptr](s, addr)
}

func WritePointer(s Space, addr, v uintptr) {
	Write(s, addr, v)
}

// Copy moves n bytes from src to dst. Unchecked.
func Copy(s Space, dst, src uintptr, n int) {
	buf := make([]byte, n)
	s.ReadMemory(buf, src)
	s.WriteMemory(dst, buf)
}

// Set fills n bytes at dst with value. Unchecked.
func Set(s Space, dst uintptr, value byte, n int) {
	buf := make([]byte, n)
	if value != 0 {
		for i := range buf {
			buf[i] = value
		}
	}
	s.WriteMemory(dst, buf)
}

// GetAddress follows the pointer at base depth times.
func GetAddress(s Space, base uintptr, depth int) uintptr {
	addr := base
	for i := 0; i < depth; i++ {
		addr = ReadPointer(s, addr)
	}
	return addr
}

// GetAddressChain dereferences addr and adds the next offset, once per
// offset, starting from base.
func GetAddressChain(s Space, base uintptr, offsets []int) uintptr {
	addr := base
	for _, off := range offsets {
		addr = ReadPointer(s, addr) + uintptr(off)
	}
	return addr
}

// Field is a fixed-offset view into a host-owned structure. The layout
// belongs to the host build; nothing checks it.
type Field[T any] struct {
	Offset uintptr
}

// Get reads the field of the structure at base.
func (f Field[T]) Get(s Space, base uintptr) T {
	if base == 0 {
		var v T
		return v
	}
	return Read[T](s, base+f.Offset)
}

// Set writes the field of the structure at base.
func (f Field[T]) Set(s Space, base uintptr, v T) {
	if base == 0 {
		return
	}
	Write(s, base+f.Offset, v)
}
