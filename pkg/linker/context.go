package linker

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"emlin/pkg/emelf"
)

// ContextArgs carries the user-facing options of a link run.
type ContextArgs struct {
	Output       string
	OutputType   OutputType
	LibraryPaths []string
	MapFile      string
}

// Context holds the state of one link run. Nothing in it outlives the run.
type Context struct {
	Args   ContextArgs
	Fs     afero.Fs
	Logger logrus.FieldLogger

	Objs    []*ObjectFile
	Symbols *SymbolTable
	Entry   *ObjectFile
	Machine MachineType

	Image   *emelf.File
	AddrTop int
}

// NewContext returns a context writing EMELF to a.out. A nil logger discards
// all output.
func NewContext(fs afero.Fs, logger logrus.FieldLogger) *Context {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	return &Context{
		Args: ContextArgs{
			Output:     "a.out",
			OutputType: OutputTypeEmelf,
		},
		Fs:      fs,
		Logger:  logger,
		Symbols: NewSymbolTable(),
		Machine: MachineTypeMera400,
	}
}
