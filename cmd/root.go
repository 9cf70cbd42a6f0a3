package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"repairbot/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "repairbot",
	Short:        "RoboFix repair intake bot for Telegram",
	RunE:         runBot,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "enter path to config file")
	rootCmd.AddCommand(migrateCmd)
}

// setup reads the config and builds the logger. Call the returned func to
// close the log file.
func setup() (*config.Config, *logrus.Logger, func(), error) {
	logger := logrus.New()

	conf, err := config.NewConfig(configPath)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "incorrect path or config itself")
	}

	lvl, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "cannot parse log level")
	}

	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	closeLog := func() {}
	if conf.LogFile != "" {
		f, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "cannot open log file")
		}
		logger.SetOutput(io.MultiWriter(os.Stdout, f))
		closeLog = func() { _ = f.Close() }
	}

	return conf, logger, closeLog, nil
}
