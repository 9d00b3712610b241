package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"

	"emlin/pkg/errext"
)

func newLogger(gs *globalState, conf Config) *logrus.Logger {
	level := logrus.InfoLevel
	if conf.Verbose.Bool {
		level = logrus.DebugLevel
	}
	noColor := conf.NoColor.Bool || !gs.stderrTTY
	return &logrus.Logger{
		Out: gs.stderr,
		Formatter: &logrus.TextFormatter{
			ForceColors:      !noColor,
			DisableColors:    noColor,
			DisableTimestamp: true,
		},
		Hooks: make(logrus.LevelHooks),
		Level: level,
	}
}

func printFatal(gs *globalState, err error, noColor bool) {
	c := color.New(color.FgRed, color.Bold)
	if noColor || !gs.stderrTTY {
		c.DisableColor()
	} else {
		c.EnableColor()
	}

	msg, fields := errext.Format(err)
	fmt.Fprintf(gs.stderr, "emlin: %s: %s\n", c.Sprint("fatal"), msg)
	if hint, ok := fields["hint"]; ok {
		fmt.Fprintf(gs.stderr, "  hint: %s\n", hint)
	}
}
