//go:build !linux && !windows

package memory

// ModuleBounds is only implemented on linux and windows.
func ModuleBounds(name string) (uintptr, uintptr, error) {
	return 0, 0, ErrModuleNotFound
}
