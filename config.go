package main

import (
	"path/filepath"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/pflag"
	null "gopkg.in/guregu/null.v3"
)

const envPrefix = "emlin"

type Config struct {
	Output     null.String `envconfig:"output"`
	OutputType null.String `envconfig:"otype"`
	LibDirs    []string    `envconfig:"libdirs"`
	MapFile    null.String `envconfig:"map"`
	Verbose    null.Bool   `envconfig:"verbose"`
	NoColor    null.Bool   `envconfig:"no_color"`
}

func defaultConfig() Config {
	return Config{
		Output:     null.NewString("a.out", false),
		OutputType: null.NewString("emelf", false),
		Verbose:    null.NewBool(false, false),
		NoColor:    null.NewBool(false, false),
	}
}

func linkFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringP("output", "o", "a.out", "write output to `file`")
	flags.StringP("otype", "O", "emelf", "set output `type`: raw, emelf")
	flags.StringArrayP("libdir", "L", nil, "search for libraries in `dir`")
	flags.StringP("map", "M", "", "write a YAML link map to `file`")
	flags.Bool("verbose", false, "trace symbol registration and relocations")
	flags.Bool("no-color", false, "disable colored output")
	return flags
}

func getNullString(flags *pflag.FlagSet, key string) null.String {
	v, err := flags.GetString(key)
	if err != nil {
		panic(err)
	}
	return null.NewString(v, flags.Changed(key))
}

func getNullBool(flags *pflag.FlagSet, key string) null.Bool {
	v, err := flags.GetBool(key)
	if err != nil {
		panic(err)
	}
	return null.NewBool(v, flags.Changed(key))
}

// Gets configuration from CLI flags.
func getConfig(flags *pflag.FlagSet) Config {
	libdirs, err := flags.GetStringArray("libdir")
	if err != nil {
		panic(err)
	}
	return Config{
		Output:     getNullString(flags, "output"),
		OutputType: getNullString(flags, "otype"),
		LibDirs:    libdirs,
		MapFile:    getNullString(flags, "map"),
		Verbose:    getNullBool(flags, "verbose"),
		NoColor:    getNullBool(flags, "no-color"),
	}
}

// Reads configuration variables from the environment.
func readEnvConfig(env map[string]string) (Config, error) {
	var conf Config
	err := envconfig.Process(envPrefix, &conf, func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	return conf, err
}

func (c Config) Apply(cfg Config) Config {
	if cfg.Output.Valid {
		c.Output = cfg.Output
	}
	if cfg.OutputType.Valid {
		c.OutputType = cfg.OutputType
	}
	if len(cfg.LibDirs) > 0 {
		c.LibDirs = cfg.LibDirs
	}
	if cfg.MapFile.Valid {
		c.MapFile = cfg.MapFile
	}
	if cfg.Verbose.Valid {
		c.Verbose = cfg.Verbose
	}
	if cfg.NoColor.Valid {
		c.NoColor = cfg.NoColor
	}
	return c
}

// getConsolidatedConfig layers defaults, then the environment, then flags.
func getConsolidatedConfig(gs *globalState, flags *pflag.FlagSet) (Config, error) {
	envConf, err := readEnvConfig(gs.env)
	if err != nil {
		return Config{}, err
	}
	conf := defaultConfig().Apply(envConf).Apply(getConfig(flags))

	for i, dir := range conf.LibDirs {
		conf.LibDirs[i] = filepath.Clean(dir)
	}
	return conf, nil
}
