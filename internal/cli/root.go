// Package cli implements the statebus command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/statebus/internal/config"
	"github.com/dshills/statebus/internal/logging"
)

// BuildInfo identifies the binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// app is the state shared by all commands of one invocation.
type app struct {
	info   BuildInfo
	stdout io.Writer
	stderr io.Writer

	cfgFile   string
	logLevel  string
	logFormat string
	isolate   bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree writing to stdout and stderr.
func NewRootCommand(info BuildInfo, stdout, stderr io.Writer) *cobra.Command {
	a := &app{info: info, stdout: stdout, stderr: stderr, logger: logging.Discard()}

	root := &cobra.Command{
		Use:   "statebus",
		Short: "Statebus - a reactive store and event bus",
		Long: `Statebus keeps a data file in a reactive store, runs Lua listeners
over every change and publishes the result on an event bus.`,
		Version:           info.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(versionLine(info) + "\n")

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file path (TOML, YAML or JSON)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")
	flags.BoolVar(&a.isolate, "recover", false, "isolate panicking bus handlers")

	root.AddCommand(
		newWatchCommand(a),
		newViewCommand(a),
		newEmitCommand(a),
		newVersionCommand(a),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, info BuildInfo, args []string) int {
	root := NewRootCommand(info, os.Stdout, os.Stderr)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// setup loads the configuration with flag overrides and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	overrides := make(map[string]any)
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		overrides["log.level"] = a.logLevel
	}
	if flags.Changed("log-format") {
		overrides["log.format"] = a.logFormat
	}
	if flags.Changed("recover") {
		overrides["bus.recover"] = a.isolate
	}

	cfg, err := config.Load(a.cfgFile, config.WithOverrides(overrides))
	if err != nil {
		return err
	}
	logger, err := logging.New(a.stderr, cfg.Log())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	a.logger.Debug("config loaded", "path", cfg.Path())
	return nil
}
