package memory

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ModuleBounds returns the span of every mapping backed by the named file in
// /proc/self/maps. An empty name is the running executable.
func ModuleBounds(name string) (uintptr, uintptr, error) {
	if name == "" {
		exe, err := os.Executable()
		if err != nil {
			return 0, 0, err
		}
		name = filepath.Base(exe)
	}
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	return scanMaps(bufio.NewScanner(f), name)
}

func scanMaps(sc *bufio.Scanner, name string) (uintptr, uintptr, error) {
	var lo, hi uint64
	found := false
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 6 || filepath.Base(fields[5]) != name {
			continue
		}
		addrs := strings.SplitN(fields[0], "-", 2)
		if len(addrs) != 2 {
			continue
		}
		start, err1 := strconv.ParseUint(addrs[0], 16, 64)
		end, err2 := strconv.ParseUint(addrs[1], 16, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		if !found || start < lo {
			lo = start
		}
		found = true
		if end > hi {
			hi = end
		}
	}
	if err := sc.Err(); err != nil {
		return 0, 0, err
	}
	if !found {
		return 0, 0, ErrModuleNotFound
	}
	return uintptr(lo), uintptr(hi - lo), nil
}

// currentProt reports the protection of the mapping holding addr.
func currentProt(addr uintptr) (int, bool) {
	f, err := os.Open("/proc/self/maps")
	if err != nil {
		return 0, false
	}
	defer f.Close()
	return scanProt(bufio.NewScanner(f), addr)
}

func scanProt(sc *bufio.Scanner, addr uintptr) (int, bool) {
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		addrs := strings.SplitN(fields[0], "-", 2)
		if len(addrs) != 2 {
			continue
		}
		start, err1 := strconv.ParseUint(addrs[0], 16, 64)
		end, err2 := strconv.ParseUint(addrs[1], 16, 64)
		if err1 != nil || err2 != nil || uint64(addr) < start || uint64(addr) >= end {
			continue
		}
		prot := unix.PROT_NONE
		perms := fields[1]
		if strings.Contains(perms, "r") {
			prot |= unix.PROT_READ
		}
		if strings.Contains(perms, "w") {
			prot |= unix.PROT_WRITE
		}
		if strings.Contains(perms, "x") {
			prot |= unix.PROT_EXEC
		}
		return prot, true
	}
	return 0, false
}
