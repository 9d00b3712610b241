package linker

import (
	"emlin/pkg/emelf"
	"emlin/pkg/utils"
)

type ObjectFile struct {
	Name string
	File *emelf.File

	offset int
	linked bool
}

// NewObjectFile wraps a loaded container. The module is unplaced until it is
// linked.
func NewObjectFile(name string, file *emelf.File) *ObjectFile {
	return &ObjectFile{Name: name, File: file}
}

func (o *ObjectFile) IsLinked() bool {
	return o.linked
}

// Offset is the base address of the module image in the composite image. It
// is only meaningful once IsLinked reports true.
func (o *ObjectFile) Offset() int {
	utils.Assert(o.linked, "%s: offset read before linking", o.Name)
	return o.offset
}

func (o *ObjectFile) setOffset(offset int) {
	utils.Assert(!o.linked, "%s: offset assigned twice", o.Name)
	o.offset = offset
	o.linked = true
}

func (o *ObjectFile) HasEntry() bool {
	return o.File.HasEntry
}

func (o *ObjectFile) Size() int {
	return len(o.File.Image)
}
