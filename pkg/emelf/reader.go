package emelf

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"emlin/pkg/utils"
)

type Header struct {
	Ident       [6]byte /* "EMELF" and version. */
	Type        uint16  /* File type. */
	CPU         uint16  /* Required CPU variant. */
	Flags       uint16  /* FlagEntry. */
	Entry       uint16  /* Entry point. */
	ImageSize   uint32  /* Image length in words. */
	SymbolCount uint32  /* Number of symbol table entries. */
	NamesSize   uint32  /* Size of the name table in bytes. */
	RelocCount  uint32  /* Number of relocation entries. */
}

// maxEntries bounds table sizes read from a header before allocating.
const maxEntries = 1 << 20

type rawSymbol struct {
	Name  uint32 /* Name table offset. */
	Value uint16
	Flags uint16
}

type rawReloc struct {
	Addr  uint16
	Flags uint16
	Sym   uint32 /* Name table offset of the referenced symbol. */
}

func CheckMagic(ident []byte) bool {
	return bytes.HasPrefix(ident, []byte(Magic))
}

func WriteMagic(ident []byte) {
	copy(ident, Magic)
}

func GetNameFromTable(strTable []byte, offset uint32) (string, error) {
	if uint64(offset) >= uint64(len(strTable)) {
		return "", fmt.Errorf("%w: name offset %d outside name table of %d bytes",
			ErrMalformed, offset, len(strTable))
	}
	length := bytes.IndexByte(strTable[offset:], 0)
	if length < 0 {
		return "", fmt.Errorf("%w: unterminated name at offset %d", ErrMalformed, offset)
	}
	return string(strTable[offset : int(offset)+length]), nil
}

// Load parses one EMELF container from r.
func Load(r io.Reader) (*File, error) {
	var ident [6]byte
	n, err := io.ReadFull(r, ident[:])
	if n > 0 && !bytes.HasPrefix([]byte(Magic), ident[:min(n, len(Magic))]) {
		return nil, ErrBadMagic
	}
	if err != nil {
		return nil, truncated("header", err)
	}

	hdr, err := utils.Read[Header](io.MultiReader(bytes.NewReader(ident[:]), r))
	if err != nil {
		return nil, truncated("header", err)
	}
	if hdr.Ident[len(Magic)] != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, hdr.Ident[len(Magic)])
	}

	f := &File{
		Type:     Type(hdr.Type),
		CPU:      CPU(hdr.CPU),
		HasEntry: hdr.Flags&FlagEntry != 0,
		Entry:    hdr.Entry,
	}
	if f.Type != TypeReloc && f.Type != TypeExec {
		return nil, fmt.Errorf("%w: unknown file %s", ErrMalformed, f.Type)
	}
	if f.CPU != CPUMera400 && f.CPU != CPUMX16 {
		return nil, fmt.Errorf("%w: unknown %s", ErrMalformed, f.CPU)
	}
	if hdr.ImageSize > ImageMax {
		return nil, fmt.Errorf("%w: image of %d words", ErrMalformed, hdr.ImageSize)
	}
	if hdr.SymbolCount > maxEntries || hdr.RelocCount > maxEntries || hdr.NamesSize > maxEntries {
		return nil, fmt.Errorf("%w: table sizes out of range", ErrMalformed)
	}

	if f.Image, err = utils.ReadSlice[uint16](r, int(hdr.ImageSize)); err != nil {
		return nil, truncated("image", err)
	}

	syms, err := utils.ReadSlice[rawSymbol](r, int(hdr.SymbolCount))
	if err != nil {
		return nil, truncated("symbol table", err)
	}

	names, err := utils.ReadSlice[byte](r, int(hdr.NamesSize))
	if err != nil {
		return nil, truncated("name table", err)
	}

	relocs, err := utils.ReadSlice[rawReloc](r, int(hdr.RelocCount))
	if err != nil {
		return nil, truncated("relocations", err)
	}

	f.Symbols = make([]Symbol, 0, len(syms))
	for _, s := range syms {
		name, err := GetNameFromTable(names, s.Name)
		if err != nil {
			return nil, err
		}
		f.Symbols = append(f.Symbols, Symbol{Name: name, Value: s.Value, Flags: s.Flags})
	}

	f.Relocs = make([]Reloc, 0, len(relocs))
	for _, rel := range relocs {
		if uint32(rel.Addr) >= hdr.ImageSize {
			return nil, fmt.Errorf("%w: relocation at %d outside image of %d words",
				ErrMalformed, rel.Addr, hdr.ImageSize)
		}
		reloc := Reloc{Addr: rel.Addr, Flags: rel.Flags}
		if reloc.IsSym() {
			if reloc.Sym, err = GetNameFromTable(names, rel.Sym); err != nil {
				return nil, err
			}
			if reloc.Sym == "" {
				return nil, fmt.Errorf("%w: symbol relocation at %d without a name", ErrMalformed, rel.Addr)
			}
		}
		f.Relocs = append(f.Relocs, reloc)
	}

	return f, nil
}

func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: reading %s: %w", ErrMalformed, what, err)
}
