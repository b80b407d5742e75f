package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/4O4-Not-F0und/gura-langid/detection"
	"github.com/4O4-Not-F0und/gura-langid/metrics"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the detection API and the Telegram bot",
		Long: `Loads the detectors of the config file and serves them over HTTP
(/api/v1/detect, /api/v1/languages, /api/v1/stream, /metrics).
The Telegram bot starts when bot.enabled is set. SIGHUP reloads the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			app, err := newApp(root)
			if err != nil {
				return
			}
			app.serve()
			return
		},
	}
}

type app struct {
	root   *rootOptions
	server *Server
	bot    *Bot
}

func newApp(root *rootOptions) (a *app, err error) {
	appConfig, err := loadAppConfig(root)
	if err != nil {
		return
	}

	metrics.InitMetricServer(appConfig.Metric)

	detectService, err := detection.NewDetectService(appConfig.DetectService)
	if err != nil {
		return
	}

	a = &app{
		root:   root,
		server: newServer(appConfig.Server, detectService),
	}
	if appConfig.Bot.Enabled {
		a.bot, err = newBot(appConfig.Bot, detectService)
		if err != nil {
			return nil, err
		}
	}
	go a.server.Serve(appConfig.Server.Listen)
	return
}

func loadAppConfig(root *rootOptions) (appConfig *Config, err error) {
	appConfig, err = loadConfig(root.configFile)
	if err != nil {
		return
	}
	logrus.Infof("loaded config from '%s'", root.configFile)

	level := appConfig.LogLevel
	if root.logLevel != "" {
		level = root.logLevel
	}
	if err = reloadLogConfig(level); err != nil {
		logrus.Errorf("error parsing new log level '%s': %v", level, err)
		err = nil
	}
	return
}

func (a *app) serve() {
	if a.bot != nil {
		go a.bot.ServeBot()
	}
	a.handleSignals()
}

func (a *app) handleSignals() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

	for sig := range sigChan {
		switch sig {
		case syscall.SIGHUP:
			logrus.Infof("received %s, attempting to reload config", sig.String())
			if err := a.reload(); err != nil {
				logrus.Error(err)
				continue
			}
			logrus.Info("config reloaded")
		default:
			logrus.Infof("received %s, exiting", sig.String())
			return
		}
	}
}

func (a *app) reload() (err error) {
	appConfig, err := loadAppConfig(a.root)
	if err != nil {
		return
	}

	detectService, err := detection.NewDetectService(appConfig.DetectService)
	if err != nil {
		return
	}

	if a.bot != nil {
		if err = a.bot.Reload(appConfig.Bot, detectService); err != nil {
			return
		}
	} else if appConfig.Bot.Enabled {
		logrus.Warn("bot enabled, please restart to apply")
	}
	a.server.Reload(detectService)
	return
}
