package linker

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"emlin/pkg/utils"
)

type OutputType uint8

const (
	OutputTypeEmelf OutputType = iota
	OutputTypeRaw
)

func (t OutputType) String() string {
	switch t {
	case OutputTypeRaw:
		return "raw"
	case OutputTypeEmelf:
		return "emelf"
	}
	return fmt.Sprintf("otype(%d)", uint8(t))
}

func ParseOutputType(s string) (OutputType, error) {
	switch strings.ToLower(s) {
	case "raw":
		return OutputTypeRaw, nil
	case "emelf":
		return OutputTypeEmelf, nil
	}
	return 0, fmt.Errorf("%w: '%s'", ErrUnknownOutputType, s)
}

// WriteRaw writes image as bare big-endian words with no header.
func WriteRaw(w io.Writer, image []uint16) error {
	return utils.Write(w, image)
}

func EncodeOutput(ctx *Context) ([]byte, error) {
	if ctx.Image == nil {
		return nil, errors.New("nothing linked")
	}

	buf := &bytes.Buffer{}
	var err error
	switch ctx.Args.OutputType {
	case OutputTypeEmelf:
		err = ctx.Image.Write(buf)
	case OutputTypeRaw:
		err = WriteRaw(buf, ctx.Image.Image)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownOutputType, ctx.Args.OutputType)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteOutput encodes the linked image and writes it to ctx.Args.Output. The
// destination is only touched once the whole image is encoded.
func WriteOutput(ctx *Context) error {
	data, err := EncodeOutput(ctx)
	if err != nil {
		return fmt.Errorf("cannot encode output file '%s': %w", ctx.Args.Output, err)
	}
	if err := afero.WriteFile(ctx.Fs, ctx.Args.Output, data, 0o644); err != nil {
		return fmt.Errorf("cannot write output file '%s': %w", ctx.Args.Output, err)
	}
	ctx.Logger.WithFields(logrus.Fields{
		"file":  ctx.Args.Output,
		"otype": ctx.Args.OutputType,
		"bytes": len(data),
	}).Debug("output written")
	return nil
}
