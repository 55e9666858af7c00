// Package cli is the missingstar command line: the desktop window by default, plus
// headless chart generation and catalog listing.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"missingstar/internal/app"
	"missingstar/internal/config"
	"missingstar/internal/logger"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath string
	logLevel   logLevelFlag
	logFile    string
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:          "missingstar",
		Short:        "Star chart quizzes: find the stars that went missing",
		Version:      app.AppVersion,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			core, err := g.setup(nil)
			if err != nil {
				return err
			}
			return app.NewApplication(core).Run()
		},
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file")
	cmd.PersistentFlags().Var(&g.logLevel, "log-level", "log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&g.logFile, "log-file", "", "also write JSON logs to this file, rotated by size")

	cmd.AddCommand(generateCmd(&g))
	cmd.AddCommand(starsCmd(&g))
	return cmd
}

// setup loads configuration, lets adjust change it, and builds the services.
func (g *globalFlags) setup(adjust func(*config.Config)) (*app.Core, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.logLevel.set {
		cfg.LogLevel = g.logLevel.value
	}
	if g.logFile != "" {
		cfg.LogFile = g.logFile
	}
	if adjust != nil {
		adjust(&cfg)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	log, closer, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}
	core, err := app.NewCore(cfg, log, closer)
	if err != nil {
		_ = closer.Close()
		return nil, err
	}
	return core, nil
}

type logLevelFlag struct {
	value string
	set   bool
}

func (l *logLevelFlag) String() string {
	return l.value
}

func (l *logLevelFlag) Set(value string) error {
	if _, err := logger.ParseLevel(value); err != nil {
		return err
	}
	l.value = value
	l.set = true
	return nil
}

func (l *logLevelFlag) Type() string {
	return "level"
}
