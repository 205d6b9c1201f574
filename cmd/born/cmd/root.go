// Package cmd implements the born command tree.
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/born-ml/zeroout/internal/ops"
	"github.com/born-ml/zeroout/internal/ops/zeroout"
)

const version = "v0.1.0"

// Configuration keys.
const (
	keyDType         = "dtype"
	keyPreserveIndex = "preserve_index"
	keyOutput        = "output"
	keyLogLevel      = "log_level"
	keyMetrics       = "metrics"
)

// app carries the state shared by subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	stdout  io.Writer
	stderr  io.Writer
}

// NewRootCommand builds the born command tree writing to stdout and stderr.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "born",
		Short:         "Run Born custom operators from the command line",
		Long:          `born registers the ZeroOut operator, builds a node from flags, config or a YAML node file, and runs it on the given values.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.initConfig()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.born/config.yaml)")
	pf.String("output", "table", "output format: table or json")
	pf.String("log-level", "warn", "log level: debug, info, warn or error")
	_ = a.v.BindPFlag(keyOutput, pf.Lookup("output"))
	_ = a.v.BindPFlag(keyLogLevel, pf.Lookup("log-level"))

	root.AddCommand(a.newRunCommand(), a.newOpsCommand(), a.newVersionCommand())
	return root
}

// initConfig reads in config file and ENV variables if set.
func (a *app) initConfig() error {
	a.v.SetDefault(keyDType, "int32")
	a.v.SetDefault(keyPreserveIndex, 0)

	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		a.v.AddConfigPath(filepath.Join(home, ".born"))
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	a.v.SetEnvPrefix("BORN")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func (a *app) logger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString(keyLogLevel))); err != nil {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
}

// newRegistry registers every operator the CLI can run.
func newRegistry() (*ops.Registry, error) {
	r := ops.NewRegistry()
	if err := zeroout.Register(r); err != nil {
		return nil, fmt.Errorf("register %s: %w", zeroout.OpName, err)
	}
	return r, nil
}

func (a *app) jsonOutput() bool {
	return a.v.GetString(keyOutput) == "json"
}

func (a *app) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "Born operators %s\n", version)
		},
	}
}
