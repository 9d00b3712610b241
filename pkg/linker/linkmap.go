package linker

import (
	"bytes"
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

type LinkMap struct {
	CPU     string          `yaml:"cpu"`
	Entry   uint16          `yaml:"entry"`
	Size    int             `yaml:"size"`
	Modules []ModuleMapping `yaml:"modules"`
}

// ModuleMapping describes one input. Offset is nil for modules the entry
// module never reached.
type ModuleMapping struct {
	File    string          `yaml:"file"`
	Offset  *int            `yaml:"offset"`
	Size    int             `yaml:"size"`
	Symbols []SymbolMapping `yaml:"symbols,omitempty"`
}

// SymbolMapping lists a global symbol and its value in the linked image.
// Relative symbols are shifted by their module's offset.
type SymbolMapping struct {
	Name    string `yaml:"name"`
	Address uint16 `yaml:"address"`
}

func BuildLinkMap(ctx *Context) *LinkMap {
	m := &LinkMap{
		CPU:     MachineTypeStringer{ctx.Machine}.String(),
		Modules: make([]ModuleMapping, 0, len(ctx.Objs)),
	}
	if ctx.Image != nil {
		m.Entry = ctx.Image.Entry
		m.Size = len(ctx.Image.Image)
	}

	for _, obj := range ctx.Objs {
		mod := ModuleMapping{File: obj.Name, Size: obj.Size()}
		if obj.IsLinked() {
			offset := obj.Offset()
			mod.Offset = &offset
		}
		for _, sym := range obj.File.Symbols {
			if !sym.IsGlobal() {
				continue
			}
			addr := sym.Value
			if sym.IsRelative() && obj.IsLinked() {
				addr += uint16(obj.Offset())
			}
			mod.Symbols = append(mod.Symbols, SymbolMapping{Name: sym.Name, Address: addr})
		}
		m.Modules = append(m.Modules, mod)
	}

	return m
}

func WriteLinkMap(ctx *Context, filename string) error {
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(BuildLinkMap(ctx)); err != nil {
		return fmt.Errorf("cannot encode link map: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("cannot encode link map: %w", err)
	}
	if err := afero.WriteFile(ctx.Fs, filename, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("cannot write link map '%s': %w", filename, err)
	}
	return nil
}
