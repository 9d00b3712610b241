package emelf

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleObject() *File {
	f := New(TypeReloc, CPUMX16)
	f.Image = []uint16{0x1234, 0, 0xffff}
	f.SetEntry(1)
	f.Symbols = []Symbol{
		{Name: "start", Value: 1, Flags: SymGlobal | SymRelative},
		{Name: "local", Value: 2},
	}
	f.Relocs = []Reloc{
		{Addr: 1, Flags: RelocBase},
		{Addr: 2, Flags: RelocSym | RelocSymNeg, Sym: "extern"},
		{Addr: 0, Flags: RelocSym, Sym: "start"},
	}
	return f
}

func TestWriteLoad(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, sampleObject().Write(buf))

	f, err := Load(buf)
	require.NoError(t, err)
	assert.Equal(t, sampleObject(), f)
}

func TestWriteHeaderLayout(t *testing.T) {
	f := New(TypeExec, CPUMera400)
	require.NoError(t, f.AppendImage([]uint16{0xabcd}))
	f.SetEntry(0)

	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	b := buf.Bytes()

	assert.Equal(t, []byte("EMELF\x01"), b[:6])
	assert.Equal(t, []byte{0, 2}, b[6:8], "type")
	assert.Equal(t, []byte{0, 0}, b[8:10], "cpu")
	assert.Equal(t, []byte{0, 1}, b[10:12], "flags")
	assert.Equal(t, []byte{0, 0, 0, 1}, b[14:18], "image size")
	assert.Equal(t, []byte{0xab, 0xcd}, b[30:32], "image")
	// the name table always carries the empty name
	assert.Equal(t, []byte{0}, b[32:])
}

func TestNamesAreShared(t *testing.T) {
	f := New(TypeReloc, CPUMera400)
	f.Image = []uint16{0, 0}
	f.Symbols = []Symbol{{Name: "x", Flags: SymGlobal}}
	f.Relocs = []Reloc{
		{Addr: 0, Flags: RelocSym, Sym: "x"},
		{Addr: 1, Flags: RelocSym, Sym: "x"},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	// "\0x\0"
	assert.Equal(t, []byte{0, 0, 0, 3}, buf.Bytes()[22:26], "names size")
}

func TestLoadErrors(t *testing.T) {
	valid := &bytes.Buffer{}
	require.NoError(t, sampleObject().Write(valid))

	corrupt := func(fn func(b []byte)) io.Reader {
		b := bytes.Clone(valid.Bytes())
		fn(b)
		return bytes.NewReader(b)
	}

	tests := []struct {
		name string
		in   io.Reader
		err  error
	}{
		{"empty", bytes.NewReader(nil), io.ErrUnexpectedEOF},
		{"short script", strings.NewReader("#!/bin/sh\n"), ErrBadMagic},
		{"short text", strings.NewReader("hi"), ErrBadMagic},
		{"short magic", strings.NewReader("EMEL"), io.ErrUnexpectedEOF},
		{"magic", corrupt(func(b []byte) { b[0] = 'X' }), ErrBadMagic},
		{"version", corrupt(func(b []byte) { b[5] = 9 }), ErrVersion},
		{"type", corrupt(func(b []byte) { b[7] = 7 }), ErrMalformed},
		{"cpu", corrupt(func(b []byte) { b[9] = 5 }), ErrMalformed},
		{"truncated", bytes.NewReader(valid.Bytes()[:valid.Len()-1]), io.ErrUnexpectedEOF},
		{"image size", corrupt(func(b []byte) { b[14] = 1 }), ErrMalformed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.in)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestLoadRejectsRelocOutsideImage(t *testing.T) {
	f := New(TypeReloc, CPUMera400)
	f.Image = []uint16{0}
	f.Relocs = []Reloc{{Addr: 1, Flags: RelocBase}}

	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	_, err := Load(buf)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestLoadRejectsAnonymousSymbolReloc(t *testing.T) {
	f := New(TypeReloc, CPUMera400)
	f.Image = []uint16{0}
	f.Relocs = []Reloc{{Addr: 0, Flags: RelocSym}}

	buf := &bytes.Buffer{}
	require.NoError(t, f.Write(buf))
	_, err := Load(buf)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestGetNameFromTable(t *testing.T) {
	table := []byte("\x00abc\x00de")

	name, err := GetNameFromTable(table, 1)
	require.NoError(t, err)
	assert.Equal(t, "abc", name)

	_, err = GetNameFromTable(table, 5)
	assert.ErrorIs(t, err, ErrMalformed, "unterminated")

	_, err = GetNameFromTable(table, 100)
	assert.ErrorIs(t, err, ErrMalformed, "out of range")
}

func TestAppendImage(t *testing.T) {
	f := New(TypeExec, CPUMera400)
	require.NoError(t, f.AppendImage(make([]uint16, ImageMax-1)))
	require.NoError(t, f.AppendImage([]uint16{7}))
	assert.Len(t, f.Image, ImageMax)

	err := f.AppendImage([]uint16{1})
	assert.ErrorIs(t, err, ErrImageFull)
	assert.Len(t, f.Image, ImageMax)
}

func TestSymbolLookup(t *testing.T) {
	f := sampleObject()
	require.NotNil(t, f.Symbol("start"))
	assert.True(t, f.Symbol("start").IsRelative())
	assert.False(t, f.Symbol("local").IsGlobal())
	assert.Nil(t, f.Symbol("extern"))
}

func TestGlobalSymbolSkipsLocals(t *testing.T) {
	f := New(TypeReloc, CPUMera400)
	f.Symbols = []Symbol{
		{Name: "X", Value: 99},
		{Name: "X", Value: 10, Flags: SymGlobal},
		{Name: "L", Value: 5},
	}

	require.NotNil(t, f.GlobalSymbol("X"))
	assert.Equal(t, uint16(10), f.GlobalSymbol("X").Value)
	assert.Equal(t, uint16(99), f.Symbol("X").Value)
	assert.Nil(t, f.GlobalSymbol("L"))
}

func TestCPU(t *testing.T) {
	cpu, err := ParseCPU("MX16")
	require.NoError(t, err)
	assert.Equal(t, CPUMX16, cpu)
	assert.Equal(t, "mera400", CPUMera400.String())

	_, err = ParseCPU("z80")
	assert.Error(t, err)
}
