package emelf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"emlin/pkg/utils"
)

// nameTable deduplicates names. Offset 0 always holds the empty name.
type nameTable struct {
	buf     bytes.Buffer
	offsets map[string]uint32
}

func newNameTable() *nameTable {
	t := &nameTable{offsets: map[string]uint32{"": 0}}
	t.buf.WriteByte(0)
	return t
}

func (t *nameTable) add(name string) uint32 {
	if off, ok := t.offsets[name]; ok {
		return off
	}
	off := uint32(t.buf.Len())
	t.buf.WriteString(name)
	t.buf.WriteByte(0)
	t.offsets[name] = off
	return off
}

// Write serializes f to w.
func (f *File) Write(w io.Writer) error {
	if len(f.Image) > ImageMax {
		return fmt.Errorf("%w: %d words", ErrImageFull, len(f.Image))
	}

	names := newNameTable()
	syms := make([]rawSymbol, 0, len(f.Symbols))
	for _, s := range f.Symbols {
		syms = append(syms, rawSymbol{Name: names.add(s.Name), Value: s.Value, Flags: s.Flags})
	}
	relocs := make([]rawReloc, 0, len(f.Relocs))
	for _, r := range f.Relocs {
		rel := rawReloc{Addr: r.Addr, Flags: r.Flags}
		if r.IsSym() {
			rel.Sym = names.add(r.Sym)
		}
		relocs = append(relocs, rel)
	}

	hdr := Header{
		Type:        uint16(f.Type),
		CPU:         uint16(f.CPU),
		Entry:       f.Entry,
		ImageSize:   uint32(len(f.Image)),
		SymbolCount: uint32(len(syms)),
		NamesSize:   uint32(names.buf.Len()),
		RelocCount:  uint32(len(relocs)),
	}
	WriteMagic(hdr.Ident[:])
	hdr.Ident[len(Magic)] = Version
	if f.HasEntry {
		hdr.Flags |= FlagEntry
	}

	bw := bufio.NewWriter(w)
	if err := utils.Write(bw, hdr); err != nil {
		return err
	}
	if err := utils.Write(bw, f.Image); err != nil {
		return err
	}
	if err := utils.Write(bw, syms); err != nil {
		return err
	}
	if _, err := bw.Write(names.buf.Bytes()); err != nil {
		return err
	}
	if err := utils.Write(bw, relocs); err != nil {
		return err
	}
	return bw.Flush()
}
