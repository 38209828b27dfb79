package main

import (
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"flexp/engine"
)

type app struct {
	configPath string
	logLevel   string
	develop    bool

	cfg *engine.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "flexp",
		Short:        "Psychophysics experiment toolkit",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./flexp.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error")
	root.PersistentFlags().BoolVar(&a.develop, "develop", false, "use a standard window instead of the experiment display")

	root.AddCommand(a.newCheckHeaderCmd())
	root.AddCommand(a.newDemoCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := engine.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("develop") {
		cfg.Develop = a.develop
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}

	a.cfg = cfg
	a.log = newLogger(cfg.LogLevel, cmd.ErrOrStderr())
	slog.SetDefault(a.log)
	return nil
}

// newLogger builds a text logger at the given level. Unknown levels fall back
// to info with a warning.
func newLogger(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	known := true
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info", "":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
		known = false
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	if !known {
		logger.Warn("invalid log level configured, using default level",
			"configured_level", level,
			"default_level", "info")
	}
	return logger
}
