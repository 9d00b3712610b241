package linker

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"emlin/pkg/emelf"
	"emlin/pkg/errext"
)

// ReadInputFiles loads every input in command-line order, records the entry
// module, registers global symbols and escalates the target CPU. The first
// failure aborts the run.
func ReadInputFiles(ctx *Context, filenames []string) error {
	if len(filenames) == 0 {
		return ErrNoInputFiles
	}

	for _, dir := range ctx.Args.LibraryPaths {
		ctx.Logger.WithField("dir", dir).Debug("library search path recorded, not searched")
	}

	for _, filename := range filenames {
		obj, err := LoadObjectFile(ctx.Fs, filename)
		if err != nil {
			return err
		}
		ctx.Objs = append(ctx.Objs, obj)

		if err := CollectEntry(ctx, obj); err != nil {
			return err
		}
		if err := RegisterGlobals(ctx, obj); err != nil {
			return err
		}
		ctx.Machine = MergeMachineType(ctx.Machine, GetMachineTypeFromCPU(obj.File.CPU))
	}

	return nil
}

func LoadObjectFile(fs afero.Fs, filename string) (*ObjectFile, error) {
	f, err := fs.Open(filename)
	if err != nil {
		return nil, &LoadError{File: filename, Err: err}
	}
	defer f.Close()

	file, err := emelf.Load(f)
	if err != nil {
		return nil, &LoadError{File: filename, Err: err}
	}
	return NewObjectFile(filename, file), nil
}

func CollectEntry(ctx *Context, obj *ObjectFile) error {
	if !obj.HasEntry() {
		return nil
	}
	if ctx.Entry != nil && ctx.Entry != obj {
		return errext.WithHint(
			&MultipleEntryError{File: obj.Name, Previous: ctx.Entry.Name},
			"exactly one input may declare the program entry point",
		)
	}
	ctx.Entry = obj
	return nil
}

func RegisterGlobals(ctx *Context, obj *ObjectFile) error {
	for i := range obj.File.Symbols {
		sym := &obj.File.Symbols[i]
		if !sym.IsGlobal() {
			continue
		}
		if err := ctx.Symbols.Register(sym.Name, obj); err != nil {
			return errext.WithHint(err, "a global symbol may be defined by one object only")
		}
		ctx.Logger.WithFields(logrus.Fields{
			"file":   obj.Name,
			"symbol": sym.Name,
		}).Debug("adding global name")
	}
	return nil
}
