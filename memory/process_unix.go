//go:build unix

package memory

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

var pageSize = uintptr(unix.Getpagesize())

func pageSpan(addr, size uintptr) (start, length uintptr) {
	start = pageSize * (addr / pageSize)
	length = pageSize * ((addr + size + pageSize - 1 - start) / pageSize)
	return
}

// Unprotect makes the pages spanning [addr, addr+size) RWX. The restore func
// puts back the protection the first page had, where the platform reports
// it, else read and execute.
func (p *Process) Unprotect(addr, size uintptr) (func() error, error) {
	start, length := pageSpan(addr, size)
	prot, ok := currentProt(start)
	if !ok {
		prot = unix.PROT_READ | unix.PROT_EXEC
	}
	err := unix.Mprotect(makeSlice(start, length), unix.PROT_EXEC|unix.PROT_READ|unix.PROT_WRITE)
	if err != nil {
		return nil, err
	}
	return func() error {
		return unix.Mprotect(makeSlice(start, length), prot)
	}, nil
}

func (p *Process) AllocExec(size int) (uintptr, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_EXEC|unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return 0, err
	}
	addr := uintptr(unsafe.Pointer(&data[0]))
	p.regions[addr] = data
	return addr, nil
}

func (p *Process) FreeExec(addr uintptr) error {
	data, ok := p.regions[addr]
	if !ok {
		return nil
	}
	delete(p.regions, addr)
	return unix.Munmap(data)
}
