package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/odvcencio/gotag/pkg/repo"
)

const version = "gotag 0.1.0-dev"

// app carries the state shared by every command: flag and environment
// defaults and the logger.
type app struct {
	v   *viper.Viper
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), log: zap.NewNop()}

	root := &cobra.Command{
		Use:           "gotag",
		Short:         "Tag releases across a got repository and its submodules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("dir", "C", ".", "run as if gotag was started in `dir`")
	flags.String("config", "", "read flag defaults from `file` (toml, yaml or json)")
	flags.String("env-file", "", "load environment variables such as GOTAG_* and GOT_TOKEN from `file`")
	flags.BoolP("verbose", "v", false, "log debug details to stderr")
	flags.Bool("no-color", false, "disable colored output")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newCommitCmd(a))
	root.AddCommand(newTagCmd(a))
	root.AddCommand(newSubmoduleCmd(a))
	root.AddCommand(newRemoteCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newTagReleaseCmd(a))
	return root
}

// setup binds the running command's flags to GOTAG_* environment variables
// and the optional config file, then builds the logger. Flags win over the
// environment, which wins over the config file.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	// Variables already set in the process are not overridden.
	if path := a.v.GetString("env-file"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	}
	a.v.SetEnvPrefix("GOTAG")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	if a.v.GetBool("no-color") {
		color.NoColor = true
	}
	a.log = newLogger(cmd.ErrOrStderr(), a.v.GetBool("verbose"))
	return nil
}

// newLogger writes human-readable entries to w. Only warnings and errors
// are shown unless verbose is set.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	if !color.NoColor {
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// dir resolves the -C directory.
func (a *app) dir() (string, error) {
	d := a.v.GetString("dir")
	if d == "" {
		d = "."
	}
	abs, err := filepath.Abs(d)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	return abs, nil
}

func (a *app) openRepo() (*repo.Repo, error) {
	d, err := a.dir()
	if err != nil {
		return nil, err
	}
	return repo.Open(d)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
