package linker

import (
	"errors"
	"fmt"
)

var (
	ErrNoInputFiles      = errors.New("no input files")
	ErrNoEntryPoint      = errors.New("no program entry point defined")
	ErrOutputIsInput     = errors.New("input file is also listed as the output file")
	ErrMapIsOutput       = errors.New("link map file is also the output file")
	ErrUnknownOutputType = errors.New("unknown output type")
)

type LoadError struct {
	File string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load object file '%s': %v", e.File, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

type DuplicateSymbolError struct {
	Symbol   string
	File     string
	Previous string
}

func (e *DuplicateSymbolError) Error() string {
	return fmt.Sprintf("%s: symbol '%s' already defined in object '%s'", e.File, e.Symbol, e.Previous)
}

type UndefinedSymbolError struct {
	File   string
	Symbol string
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("%s: symbol '%s' not defined", e.File, e.Symbol)
}

type MultipleEntryError struct {
	File     string
	Previous string
}

func (e *MultipleEntryError) Error() string {
	return fmt.Sprintf("%s: entry point already defined in: %s", e.File, e.Previous)
}

// RelocationError reports a relocation whose address lies outside the image
// of the module that owns it.
type RelocationError struct {
	File string
	Addr uint16
	Size int
}

func (e *RelocationError) Error() string {
	return fmt.Sprintf("%s: relocation at %d outside image of %d words", e.File, e.Addr, e.Size)
}
