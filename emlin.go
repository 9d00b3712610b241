package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"emlin/pkg/errext"
	"emlin/pkg/linker"
)

var version = "0.2.0"

type rootCommand struct {
	gs      *globalState
	cmd     *cobra.Command
	noColor bool
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:           "emlin [options] -o output input [input ...]",
		Short:         "linker for MERA 400 EMELF objects",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          c.run,
	}
	c.cmd.SetVersionTemplate("EMLIN v{{.Version}} - linker for MERA 400 EMELF objects\n")
	c.cmd.Flags().SortFlags = false
	c.cmd.Flags().AddFlagSet(linkFlagSet())
	c.cmd.SetArgs(gs.args[1:])
	c.cmd.SetOut(gs.stdout)
	c.cmd.SetErr(gs.stderr)
	return c
}

func (c *rootCommand) execute() int {
	if err := c.cmd.Execute(); err != nil {
		printFatal(c.gs, err, c.noColor)
		return 1
	}
	return 0
}

func (c *rootCommand) run(cmd *cobra.Command, args []string) error {
	conf, err := getConsolidatedConfig(c.gs, cmd.Flags())
	if err != nil {
		return err
	}
	c.noColor = conf.NoColor.Bool

	otype, err := linker.ParseOutputType(conf.OutputType.String)
	if err != nil {
		return errext.WithHint(err, "use raw or emelf")
	}
	if len(args) == 0 {
		return errext.WithHint(linker.ErrNoInputFiles, "run 'emlin -h' for usage")
	}

	output := filepath.Clean(conf.Output.String)
	if conf.MapFile.String != "" && filepath.Clean(conf.MapFile.String) == output {
		return fmt.Errorf("%w: '%s'", linker.ErrMapIsOutput, conf.MapFile.String)
	}
	for _, input := range args {
		if filepath.Clean(input) == output {
			return fmt.Errorf("%w: '%s'", linker.ErrOutputIsInput, input)
		}
		if conf.MapFile.String != "" && filepath.Clean(input) == filepath.Clean(conf.MapFile.String) {
			return fmt.Errorf("%w: '%s' is the link map", linker.ErrOutputIsInput, input)
		}
	}

	ctx := linker.NewContext(c.gs.fs, newLogger(c.gs, conf))
	ctx.Args = linker.ContextArgs{
		Output:       conf.Output.String,
		OutputType:   otype,
		LibraryPaths: conf.LibDirs,
		MapFile:      conf.MapFile.String,
	}

	if err := linker.ReadInputFiles(ctx, args); err != nil {
		return err
	}
	if err := linker.Link(ctx); err != nil {
		return err
	}
	if err := linker.WriteOutput(ctx); err != nil {
		return err
	}
	if ctx.Args.MapFile != "" {
		if err := linker.WriteLinkMap(ctx, ctx.Args.MapFile); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	os.Exit(newRootCommand(newGlobalState()).execute())
}
