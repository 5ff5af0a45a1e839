package image

import (
	"debug/elf"
	"io"
)

type elfFile struct {
	elf *elf.File
}

func openElf(r io.ReaderAt) (rawFile, error) {
	f, err := elf.NewFile(r)
	if err != nil {
		return nil, err
	}
	return &elfFile{f}, nil
}

func (e *elfFile) image() (*Image, error) {
	img := &Image{Format: "elf", Symbols: map[string]uintptr{}}
	for _, s := range e.elf.Sections {
		if s.Flags&elf.SHF_ALLOC == 0 || s.Type == elf.SHT_NOBITS || s.Size == 0 {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, err
		}
		img.Sections = append(img.Sections, Section{
			Name: s.Name,
			Addr: uintptr(s.Addr),
			Data: data,
			Exec: s.Flags&elf.SHF_EXECINSTR != 0,
		})
	}
	// stripped binaries have no symbol table
	if syms, err := e.elf.Symbols(); err == nil {
		for _, k := range syms {
			img.Symbols[k.Name] = uintptr(k.Value)
		}
	}
	img.sortSections()
	return img, nil
}
