package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/4O4-Not-F0und/gura-langid/detection"
	"github.com/4O4-Not-F0und/gura-langid/metrics"
)

type Config struct {
	Bot           BotConfig                     `yaml:"bot"`
	LogLevel      string                        `yaml:"log_level"`
	DetectService detection.DetectServiceConfig `yaml:"detect_service"`
	Metric        metrics.MetricConfig          `yaml:"metric"`
	Server        ServerConfig                  `yaml:"server"`
}

func newConfig() *Config {
	return &Config{
		Bot:           newBotConfig(),
		LogLevel:      "info",
		DetectService: detection.NewDetectServiceConfig(),
		Server:        newServerConfig(),
	}
}

func loadConfig(configFile string) (cfg *Config, err error) {
	cfg = newConfig()
	yamlFile, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			err = fmt.Errorf("config file '%s' not found", configFile)
			return
		}
		return nil, fmt.Errorf("read config file '%s' failed: %w", configFile, err)
	}

	err = yaml.Unmarshal(yamlFile, cfg)
	if err != nil {
		return nil, fmt.Errorf("parse '%s' failed: %w", configFile, err)
	}
	return
}
