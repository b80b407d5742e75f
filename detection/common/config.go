package common

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type FailoverConfig struct {
	// Disable a detector for CooldownBaseSec * cycle once it failed
	// MaxFailures times in a row. Set MaxFailures to 1 to disable a
	// failed detector immediately.
	MaxFailures     int `yaml:"max_failures"`
	CooldownBaseSec int `yaml:"cooldown_base_sec"`

	// Disable detector permanently if disable cycles reached MaxDisableCycles
	MaxDisableCycles int `yaml:"max_disable_cycles"`
}

// CheckAndMerge fills unset fields from def and validates the result.
func (fc *FailoverConfig) CheckAndMerge(def FailoverConfig) (err error) {
	if fc.MaxFailures <= 0 {
		fc.MaxFailures = def.MaxFailures
	}
	if fc.CooldownBaseSec <= 0 {
		fc.CooldownBaseSec = def.CooldownBaseSec
	}
	if fc.MaxDisableCycles <= 0 {
		fc.MaxDisableCycles = def.MaxDisableCycles
	}

	if fc.MaxFailures <= 0 {
		err = fmt.Errorf("failover: max_failures must be positive")
		return
	}
	if fc.CooldownBaseSec <= 0 {
		err = fmt.Errorf("failover: cooldown_base_sec must be positive")
		return
	}
	if fc.MaxDisableCycles <= 0 {
		err = fmt.Errorf("failover: max_disable_cycles must be positive")
	}
	return
}

// RateLimitConfig defines the parameters for the rate limiter.
type RateLimitConfig struct {
	Enabled    bool    `yaml:"enabled"`
	BucketSize int     `yaml:"bucket_size"`
	RefillTPS  float64 `yaml:"refill_token_per_sec"`
}

func (rc *RateLimitConfig) Check() (err error) {
	if !rc.Enabled {
		return
	}
	if rc.BucketSize <= 0 {
		err = fmt.Errorf("rate_limit: bucket_size must be positive")
		return
	}
	if rc.RefillTPS <= 0 {
		err = fmt.Errorf("rate_limit: refill_token_per_sec must be positive")
	}
	return
}

// NewLimiterFromConfig returns nil when rate limiting is disabled.
func (rc *RateLimitConfig) NewLimiterFromConfig(logger *logrus.Entry) *rate.Limiter {
	if !rc.Enabled {
		logger.Debug("rate limiter disabled")
		return nil
	}
	logger.Infof("rate limiter enabled, bucket size: %d, refill: %.2f/s", rc.BucketSize, rc.RefillTPS)
	return rate.NewLimiter(rate.Limit(rc.RefillTPS), rc.BucketSize)
}
