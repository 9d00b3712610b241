package linker

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"emlin/pkg/emelf"
	"emlin/pkg/errext"
)

// Link builds the composite image starting from the entry module. Modules
// are pulled in only when reachable from it through symbol references.
func Link(ctx *Context) error {
	if len(ctx.Objs) == 0 {
		return ErrNoInputFiles
	}
	if ctx.Entry == nil {
		return errext.WithHint(ErrNoEntryPoint, "exactly one input must declare the program entry point")
	}

	ctx.Image = emelf.New(emelf.TypeExec, MachineTypeCPU(ctx.Machine))
	ctx.AddrTop = 0

	if err := LinkObject(ctx, ctx.Entry); err != nil {
		return err
	}

	ctx.Image.SetEntry(ctx.Entry.File.Entry + uint16(ctx.Entry.Offset()))
	ctx.Logger.WithFields(logrus.Fields{
		"entry": ctx.Image.Entry,
		"size":  len(ctx.Image.Image),
		"cpu":   MachineTypeStringer{ctx.Machine},
	}).Debug("link done")
	return nil
}

// LinkObject appends obj to the composite image and applies its relocations,
// linking every module it references first. A module already linked is left
// alone, which bounds the recursion on reference cycles.
func LinkObject(ctx *Context, obj *ObjectFile) error {
	if obj.IsLinked() {
		return nil
	}

	log := ctx.Logger.WithField("file", obj.Name)
	log.Debug("linking")

	if err := ctx.Image.AppendImage(obj.File.Image); err != nil {
		return fmt.Errorf("%s: cannot append image: %w", obj.Name, err)
	}
	obj.setOffset(ctx.AddrTop)
	ctx.AddrTop += obj.Size()

	for i := range obj.File.Relocs {
		if err := applyReloc(ctx, obj, &obj.File.Relocs[i], log); err != nil {
			return err
		}
	}

	return nil
}

func applyReloc(ctx *Context, obj *ObjectFile, rel *emelf.Reloc, log logrus.FieldLogger) error {
	if int(rel.Addr) >= obj.Size() {
		return &RelocationError{File: obj.Name, Addr: rel.Addr, Size: obj.Size()}
	}
	addr := int(rel.Addr) + obj.Offset()

	if rel.IsBase() {
		log.WithFields(logrus.Fields{"addr": addr, "offset": obj.Offset()}).Debug("base relocation")
		ctx.patch(addr, obj.Offset())
	}

	if !rel.IsSym() {
		return nil
	}

	sign := 1
	if rel.IsNegative() {
		sign = -1
	}

	log.WithField("symbol", rel.Sym).Debug("references")
	symObj, ok := ctx.Symbols.Lookup(rel.Sym)
	if !ok {
		return errext.WithHint(
			&UndefinedSymbolError{File: obj.Name, Symbol: rel.Sym},
			"define the symbol as global in one of the inputs",
		)
	}
	log.WithFields(logrus.Fields{"symbol": rel.Sym, "defined_in": symObj.Name}).Debug("found")

	if err := LinkObject(ctx, symObj); err != nil {
		return err
	}

	sym := symObj.File.GlobalSymbol(rel.Sym)
	if sym == nil {
		return fmt.Errorf("%s: cannot get symbol '%s'", symObj.Name, rel.Sym)
	}

	log.WithFields(logrus.Fields{"addr": addr, "symbol": rel.Sym, "value": sym.Value}).Debug("symbol relocation")
	ctx.patch(addr, sign*int(sym.Value))
	if sym.IsRelative() {
		log.WithFields(logrus.Fields{"addr": addr, "symbol": rel.Sym, "offset": symObj.Offset()}).
			Debug("symbol relocation by module offset")
		ctx.patch(addr, sign*symObj.Offset())
	}

	return nil
}

// patch adds delta to the composite image word at addr, wrapping at 16 bits.
func (ctx *Context) patch(addr, delta int) {
	ctx.Image.Image[addr] = uint16(int(ctx.Image.Image[addr]) + delta)
}
