package main

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	defaultConfigFile = "config.yml"
)

func init() {
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat:        time.RFC3339Nano,
		DisableColors:          true,
		DisableLevelTruncation: true,
		ForceQuote:             true,
		FullTimestamp:          true,
	})
}

type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gura-langid",
		Short: "Character n-gram language identification",
		Long: `Identifies the natural language of text with a character n-gram
naive Bayes classifier, and serves it over HTTP, WebSocket and Telegram.

Examples:
  gura-langid detect --profiles profiles "Bonjour tout le monde"
  gura-langid compile --profiles profiles --out table.msgpack
  gura-langid serve --config config.yml`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logLevel == "" {
				return nil
			}
			return reloadLogConfig(opts.logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", defaultConfigFile, "path to config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level, overrides the config file (trace, debug, info, warn, error)")

	cmd.AddCommand(
		newServeCmd(opts),
		newDetectCmd(),
		newCompileCmd(),
		newProfileCmd(),
	)
	return cmd
}

func reloadLogConfig(level string) (err error) {
	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	logrus.SetLevel(logLevel)
	logrus.Debugf("log level changed to: %s", level)
	return
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
