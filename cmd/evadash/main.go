// Command evadash serves the U.S. and Russian spacewalk dashboard.
package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/scarnyc/spacewalks/pkg/config"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

type options struct {
	configPath string
	logLevel   string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "evadash",
		Short:         "Dashboard of U.S. and Russian extravehicular activities",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (overrides log_level from the configuration)")

	root.AddCommand(
		newServeCommand(opts),
		newFetchCommand(opts),
		newRenderCommand(opts),
	)

	return root
}

// load reads the configuration and applies the logging settings.
func (o *options) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	cfg.Version = version

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	logrus.SetLevel(level)

	return cfg, nil
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := newRootCommand().Execute(); err != nil {
		logrus.Fatal(err)
	}
}
