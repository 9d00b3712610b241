package linker

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"emlin/pkg/emelf"
)

func newTestContext(t *testing.T) (*Context, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return NewContext(afero.NewMemMapFs(), logger), hook
}

type objDef struct {
	image  []uint16
	entry  *uint16
	cpu    emelf.CPU
	syms   []emelf.Symbol
	relocs []emelf.Reloc
}

func entryAt(addr uint16) *uint16 { return &addr }

func global(name string, value uint16) emelf.Symbol {
	return emelf.Symbol{Name: name, Value: value, Flags: emelf.SymGlobal}
}

func relGlobal(name string, value uint16) emelf.Symbol {
	return emelf.Symbol{Name: name, Value: value, Flags: emelf.SymGlobal | emelf.SymRelative}
}

func symRef(addr uint16, name string) emelf.Reloc {
	return emelf.Reloc{Addr: addr, Flags: emelf.RelocSym, Sym: name}
}

func (s objDef) build() *emelf.File {
	f := emelf.New(emelf.TypeReloc, s.cpu)
	f.Image = append([]uint16{}, s.image...)
	f.Symbols = s.syms
	f.Relocs = s.relocs
	if s.entry != nil {
		f.SetEntry(*s.entry)
	}
	return f
}

func writeObject(t *testing.T, fs afero.Fs, name string, def objDef) {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, def.build().Write(buf))
	require.NoError(t, afero.WriteFile(fs, name, buf.Bytes(), 0o644))
}

// linkObjects writes every object to the context filesystem and links them
// in the given order.
func linkObjects(t *testing.T, ctx *Context, names []string, defs map[string]objDef) error {
	t.Helper()
	for _, name := range names {
		writeObject(t, ctx.Fs, name, defs[name])
	}
	if err := ReadInputFiles(ctx, names); err != nil {
		return err
	}
	return Link(ctx)
}

func objByName(ctx *Context, name string) *ObjectFile {
	for _, obj := range ctx.Objs {
		if obj.Name == name {
			return obj
		}
	}
	return nil
}
