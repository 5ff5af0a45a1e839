package image

import (
	"debug/pe"
	"io"
)

type peFile struct {
	pe *pe.File
}

func openPE(r io.ReaderAt) (rawFile, error) {
	f, err := pe.NewFile(r)
	if err != nil {
		return nil, err
	}
	return &peFile{f}, nil
}

func (f *peFile) imageBase() uintptr {
	switch oh := f.pe.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		return uintptr(oh.ImageBase)
	case *pe.OptionalHeader64:
		return uintptr(oh.ImageBase)
	}
	return 0
}

func (f *peFile) image() (*Image, error) {
	img := &Image{Format: "pe", Symbols: map[string]uintptr{}}
	base := f.imageBase()
	for _, s := range f.pe.Sections {
		data, err := s.Data()
		if err != nil {
			return nil, err
		}
		img.Sections = append(img.Sections, Section{
			Name: s.Name,
			Addr: base + uintptr(s.VirtualAddress),
			Data: data,
			Exec: s.Characteristics&pe.IMAGE_SCN_MEM_EXECUTE != 0,
		})
	}
	for _, s := range f.pe.Symbols {
		if int(s.SectionNumber) < 1 || int(s.SectionNumber) > len(f.pe.Sections) {
			continue
		}
		sect := f.pe.Sections[s.SectionNumber-1]
		img.Symbols[s.Name] = base + uintptr(sect.VirtualAddress) + uintptr(s.Value)
	}
	img.sortSections()
	return img, nil
}
