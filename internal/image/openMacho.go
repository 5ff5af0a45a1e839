package image

import (
	"debug/macho"
	"io"
)

type machoFile struct {
	macho *macho.File
}

func openMacho(r io.ReaderAt) (rawFile, error) {
	f, err := macho.NewFile(r)
	if err != nil {
		return nil, err
	}
	return &machoFile{f}, nil
}

func (f *machoFile) image() (*Image, error) {
	img := &Image{Format: "macho", Symbols: map[string]uintptr{}}
	for _, s := range f.macho.Sections {
		// zero-fill sections have no file data
		if s.Offset == 0 || s.Size == 0 {
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
			Exec: s.Seg == "__TEXT",
		})
	}
	if f.macho.Symtab != nil {
		for _, s := range f.macho.Symtab.Syms {
			img.Symbols[s.Name] = uintptr(s.Value)
		}
	}
	img.sortSections()
	return img, nil
}
