package memory

import (
	"fmt"
	"strconv"
	"strings"
)

// FindPattern scans [start, start+length) for pattern and returns the address
// of the first match, or 0. In mask an 'x' byte must match and a '?' byte is
// ignored; an empty mask requires every byte to match.
func FindPattern(s Space, start uintptr, length int, pattern []byte, mask string) uintptr {
	n := len(pattern)
	if n == 0 || length < n || (mask != "" && len(mask) != n) {
		return 0
	}
	region := make([]byte, length)
	s.ReadMemory(region, start)
	if i := indexPattern(region, pattern, mask); i >= 0 {
		return start + uintptr(i)
	}
	return 0
}

// FindPatternInModule scans the image of a loaded module.
func FindPatternInModule(s Space, module string, pattern []byte, mask string) (uintptr, error) {
	start, size, err := ModuleBounds(module)
	if err != nil {
		return 0, err
	}
	return FindPattern(s, start, int(size), pattern, mask), nil
}

func indexPattern(region, pattern []byte, mask string) int {
	n := len(pattern)
outer:
	for i := 0; i+n <= len(region); i++ {
		for j := 0; j < n; j++ {
			if mask != "" && mask[j] == '?' {
				continue
			}
			if region[i+j] != pattern[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}

// ParsePattern turns "48 8B ?? 05" style text into a pattern and mask.
func ParsePattern(text string) ([]byte, string, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil, "", fmt.Errorf("%w: empty", ErrBadPattern)
	}
	pattern := make([]byte, len(fields))
	mask := make([]byte, len(fields))
	for i, f := range fields {
		if f == "?" || f == "??" {
			mask[i] = '?'
			continue
		}
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %q", ErrBadPattern, f)
		}
		pattern[i] = byte(v)
		mask[i] = 'x'
	}
	return pattern, string(mask), nil
}
