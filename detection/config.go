package detection

import (
	"github.com/4O4-Not-F0und/gura-langid/detection/detector"
	"github.com/4O4-Not-F0und/gura-langid/selector"
)

// DetectServiceConfig holds all configuration related to detection services.
type DetectServiceConfig struct {
	MaxRetry              int                            `yaml:"max_retry"`
	RetryCooldown         int                            `yaml:"retry_cooldown"`
	DetectorSelector      string                         `yaml:"detector_selector"`
	Detectors             []detector.DetectorConfig      `yaml:"detectors"`
	DefaultDetectorConfig detector.DefaultDetectorConfig `yaml:"default_detector_config"`
}

// NewDetectServiceConfig returns a config with the default failover policy.
func NewDetectServiceConfig() (c DetectServiceConfig) {
	c = DetectServiceConfig{
		RetryCooldown:    1,
		DetectorSelector: selector.FALLBACK,
		Detectors:        make([]detector.DetectorConfig, 0),
	}
	c.DefaultDetectorConfig.Weight = 1

	// By default config, will disable detectors consistently fail for:
	// 3  failures: 1 * 60 secs cooldown
	// 6  failures: 2 * 60 secs cooldown
	// 9  failures: 3 * 60 secs cooldown
	// 12 failures: disable it until next config reloading or restarting
	c.DefaultDetectorConfig.Failover.MaxFailures = 3
	c.DefaultDetectorConfig.Failover.CooldownBaseSec = 60
	c.DefaultDetectorConfig.Failover.MaxDisableCycles = 4

	return
}
