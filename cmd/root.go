// Package cmd wires the mediaseed command line.
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tphakala/mediaseed/cmd/config"
	"github.com/tphakala/mediaseed/cmd/generate"
	"github.com/tphakala/mediaseed/cmd/history"
	"github.com/tphakala/mediaseed/internal/buildinfo"
	"github.com/tphakala/mediaseed/internal/conf"
	"github.com/tphakala/mediaseed/internal/errors"
	"github.com/tphakala/mediaseed/internal/logger"
)

const sentryFlushTimeout = 2 * time.Second

// Execute runs the command line with args. Error telemetry and buffered log
// output are flushed after the command returns, whether or not it failed.
func Execute(settings *conf.Settings, info *buildinfo.Info, args []string) error {
	rootCmd, sess := newRootCommand(settings, info)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return errors.Join(err, sess.close())
}

// session holds what initialize set up, for shutdown.
type session struct {
	settings *conf.Settings
	central  *logger.CentralLogger
}

func (s *session) close() error {
	if s.central == nil {
		return nil
	}
	if s.settings.Sentry.Enabled {
		errors.FlushSentry(sentryFlushTimeout)
	}
	err := s.central.Close()
	s.central = nil
	return err
}

// newRootCommand creates the root command. settings is filled from the
// configuration file before any subcommand runs.
func newRootCommand(settings *conf.Settings, info *buildinfo.Info) (*cobra.Command, *session) {
	var (
		configPath string
		debug      bool
	)
	sess := &session{settings: settings}

	rootCmd := &cobra.Command{
		Use:          "mediaseed",
		Short:        "Synthetic camera media generator and Elasticsearch loader",
		Version:      info.String(),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output")

	initCmd := config.InitCommand()
	rootCmd.AddCommand(
		generate.Command(settings),
		config.Command(settings, initCmd),
		history.Command(settings),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Writing the default config must work even when the current one is broken.
		if cmd == initCmd {
			return nil
		}
		var err error
		sess.central, err = initialize(cmd, configPath, debug, settings, info)
		return err
	}

	return rootCmd, sess
}

// initialize loads the configuration, then sets up logging and error
// telemetry according to it.
func initialize(cmd *cobra.Command, configPath string, debug bool, settings *conf.Settings, info *buildinfo.Info) (*logger.CentralLogger, error) {
	result, err := conf.Load(configPath)
	if err != nil {
		return nil, err
	}
	if result.FallbackReason != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error loading configuration: %v\nUsing default configuration\n", result.FallbackReason)
	}
	*settings = *result.Settings
	if debug {
		settings.Debug = true
	}

	if settings.Debug {
		settings.Logging.DefaultLevel = "debug"
		if settings.Logging.Console != nil {
			settings.Logging.Console.Level = "debug"
		}
	}
	central, err := logger.NewCentralLogger(&settings.Logging)
	if err != nil {
		return nil, errors.New(err).
			Component("cmd").
			Category(errors.CategoryConfiguration).
			Build()
	}
	logger.SetGlobal(central)

	log := logger.Global().Module("cmd")
	if result.Source != "" {
		log.Info("configuration loaded", logger.String("path", result.Source))
	} else {
		log.Info("using built-in configuration")
	}

	if settings.Sentry.Enabled {
		if _, err := errors.InitSentry(settings.Sentry.DSN, info.Release()); err != nil {
			log.Warn("error telemetry disabled", logger.Error(err))
		}
	}
	return central, nil
}
