package main

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
)

// globalState is everything the command touches outside of its own memory,
// so tests can swap in an in-memory filesystem and buffers.
type globalState struct {
	fs        afero.Fs
	args      []string
	env       map[string]string
	stdout    io.Writer
	stderr    io.Writer
	stderrTTY bool
}

func newGlobalState() *globalState {
	stderrTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	return &globalState{
		fs:        afero.NewOsFs(),
		args:      os.Args,
		env:       buildEnvMap(os.Environ()),
		stdout:    colorable.NewColorableStdout(),
		stderr:    colorable.NewColorableStderr(),
		stderrTTY: stderrTTY,
	}
}

func buildEnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}
