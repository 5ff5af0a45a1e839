// Package image reads executable images from disk so that offline tools can
// look at a host build the way it is laid out once loaded.
package image

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/k2io/hostpatch/memory"
)

// maxSpan bounds the size of a mapped image.
const maxSpan = 1 << 30

// Section is one loadable section at its virtual address.
type Section struct {
	Name string
	Addr uintptr
	Data []byte
	Exec bool
}

// Image is an object file's loadable sections and symbols.
type Image struct {
	Format   string
	Sections []Section
	Symbols  map[string]uintptr
}

type rawFile interface {
	image() (*Image, error)
}

var objType = []func(io.ReaderAt) (rawFile, error){
	openElf,
	openPE,
	openMacho,
}

// Open reads the ELF, PE or Mach-O file name.
func Open(name string) (*Image, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	for _, try := range objType {
		if raw, err := try(r); err == nil {
			return raw.image()
		}
	}
	return nil, fmt.Errorf("open %s: unrecognized object file", name)
}

// Bounds returns the address range covered by the sections, optionally only
// executable ones.
func (img *Image) Bounds(execOnly bool) (lo, hi uintptr) {
	found := false
	for _, s := range img.Sections {
		if execOnly && !s.Exec {
			continue
		}
		end := s.Addr + uintptr(len(s.Data))
		if !found || s.Addr < lo {
			lo = s.Addr
		}
		found = true
		if end > hi {
			hi = end
		}
	}
	return
}

// Space maps every section into one Buffer. Gaps between sections read as
// zero.
func (img *Image) Space() (*memory.Buffer, error) {
	lo, hi := img.Bounds(false)
	if hi <= lo {
		return nil, fmt.Errorf("image has no loadable sections")
	}
	if hi-lo > maxSpan {
		return nil, fmt.Errorf("image spans %#x bytes", hi-lo)
	}
	buf := memory.NewBuffer(lo, make([]byte, hi-lo))
	for _, s := range img.Sections {
		buf.WriteMemory(s.Addr, s.Data)
	}
	return buf, nil
}

// Nearest returns the closest symbol at or below addr.
func (img *Image) Nearest(addr uintptr) (string, uintptr, bool) {
	best, bestAddr, found := "", uintptr(0), false
	for name, a := range img.Symbols {
		if a > addr || a == 0 {
			continue
		}
		if !found || a > bestAddr || (a == bestAddr && name < best) {
			best, bestAddr, found = name, a, true
		}
	}
	return best, bestAddr, found
}

func (img *Image) sortSections() {
	sort.Slice(img.Sections, func(i, j int) bool { return img.Sections[i].Addr < img.Sections[j].Addr })
}
