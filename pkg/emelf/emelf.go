// Package emelf reads and writes EMELF containers: relocatable objects and
// executables for the 16-bit word-addressed MERA 400 and MX-16 CPUs.
//
// A container holds a header, an image of 16-bit words, a symbol table backed
// by a NUL-terminated name table, and a relocation list. Every multi-byte
// field is stored big-endian.
package emelf

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Magic   = "EMELF"
	Version = 1

	// ImageMax is the number of words addressable by a 16-bit address.
	ImageMax = 1 << 16
)

var (
	ErrBadMagic  = errors.New("not an EMELF file")
	ErrVersion   = errors.New("unsupported EMELF version")
	ErrMalformed = errors.New("malformed EMELF file")
	ErrImageFull = errors.New("image exceeds 16-bit address space")
)

type Type uint16

const (
	TypeReloc Type = 1
	TypeExec  Type = 2
)

func (t Type) String() string {
	switch t {
	case TypeReloc:
		return "relocatable"
	case TypeExec:
		return "executable"
	}
	return fmt.Sprintf("type(%d)", uint16(t))
}

type CPU uint16

const (
	CPUMera400 CPU = 0
	CPUMX16    CPU = 1
)

func (c CPU) String() string {
	switch c {
	case CPUMera400:
		return "mera400"
	case CPUMX16:
		return "mx16"
	}
	return fmt.Sprintf("cpu(%d)", uint16(c))
}

func ParseCPU(s string) (CPU, error) {
	switch strings.ToLower(s) {
	case "mera400":
		return CPUMera400, nil
	case "mx16":
		return CPUMX16, nil
	}
	return 0, fmt.Errorf("unknown CPU: %q", s)
}

const (
	FlagEntry uint16 = 1 << 0
)

const (
	SymGlobal   uint16 = 1 << 0
	SymRelative uint16 = 1 << 1
)

const (
	RelocBase   uint16 = 1 << 0
	RelocSym    uint16 = 1 << 1
	RelocSymNeg uint16 = 1 << 2
)

type Symbol struct {
	Name  string
	Value uint16
	Flags uint16
}

func (s *Symbol) IsGlobal() bool   { return s.Flags&SymGlobal != 0 }
func (s *Symbol) IsRelative() bool { return s.Flags&SymRelative != 0 }

// Reloc patches the image word at Addr. Sym names the referenced symbol when
// RelocSym is set.
type Reloc struct {
	Addr  uint16
	Flags uint16
	Sym   string
}

func (r *Reloc) IsBase() bool     { return r.Flags&RelocBase != 0 }
func (r *Reloc) IsSym() bool      { return r.Flags&RelocSym != 0 }
func (r *Reloc) IsNegative() bool { return r.Flags&RelocSymNeg != 0 }

type File struct {
	Type     Type
	CPU      CPU
	HasEntry bool
	Entry    uint16
	Image    []uint16
	Symbols  []Symbol
	Relocs   []Reloc
}

func New(typ Type, cpu CPU) *File {
	return &File{
		Type:  typ,
		CPU:   cpu,
		Image: make([]uint16, 0),
	}
}

func (f *File) AppendImage(words []uint16) error {
	if len(f.Image)+len(words) > ImageMax {
		return fmt.Errorf("%w: %d + %d words", ErrImageFull, len(f.Image), len(words))
	}
	f.Image = append(f.Image, words...)
	return nil
}

func (f *File) SetEntry(addr uint16) {
	f.Entry = addr
	f.HasEntry = true
}

// GlobalSymbol returns the global symbol called name, or nil. Locals sharing
// the name are skipped.
func (f *File) GlobalSymbol(name string) *Symbol {
	for i := range f.Symbols {
		if f.Symbols[i].Name == name && f.Symbols[i].IsGlobal() {
			return &f.Symbols[i]
		}
	}
	return nil
}

// Symbol returns the first symbol called name, or nil.
func (f *File) Symbol(name string) *Symbol {
	for i := range f.Symbols {
		if f.Symbols[i].Name == name {
			return &f.Symbols[i]
		}
	}
	return nil
}
