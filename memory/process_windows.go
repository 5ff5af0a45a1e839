//go:build windows

package memory

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func (p *Process) Unprotect(addr, size uintptr) (func() error, error) {
	var old uint32
	if err := windows.VirtualProtect(addr, size, windows.PAGE_EXECUTE_READWRITE, &old); err != nil {
		return nil, err
	}
	return func() error {
		var prev uint32
		return windows.VirtualProtect(addr, size, old, &prev)
	}, nil
}

func (p *Process) AllocExec(size int) (uintptr, error) {
	addr, err := windows.VirtualAlloc(0, uintptr(size), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return 0, err
	}
	p.regions[addr] = makeSlice(addr, uintptr(size))
	return addr, nil
}

func (p *Process) FreeExec(addr uintptr) error {
	if _, ok := p.regions[addr]; !ok {
		return nil
	}
	delete(p.regions, addr)
	return windows.VirtualFree(addr, 0, windows.MEM_RELEASE)
}

// ModuleBounds returns the image range of a loaded module. An empty name is
// the host executable.
func ModuleBounds(name string) (uintptr, uintptr, error) {
	var namep *uint16
	if name != "" {
		var err error
		namep, err = windows.UTF16PtrFromString(name)
		if err != nil {
			return 0, 0, err
		}
	}
	var h windows.Handle
	if err := windows.GetModuleHandleEx(0, namep, &h); err != nil {
		return 0, 0, ErrModuleNotFound
	}
	var mi windows.ModuleInfo
	if err := windows.GetModuleInformation(windows.CurrentProcess(), h, &mi, uint32(unsafe.Sizeof(mi))); err != nil {
		return 0, 0, err
	}
	return mi.BaseOfDll, uintptr(mi.SizeOfImage), nil
}
