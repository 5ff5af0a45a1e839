//go:build unix && !linux

package memory

// currentProt is unknown off linux; callers fall back to read and execute.
func currentProt(addr uintptr) (int, bool) {
	return 0, false
}
