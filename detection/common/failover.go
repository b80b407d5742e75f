package common

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type FailoverHandler interface {
	OnSuccess()
	OnFailure() (isDisabled bool)
	IsDisabled() bool
}

// GeneralFailoverHandler disables a component for a growing cooldown after
// consecutive failures, and permanently after MaxDisableCycles cooldowns.
type GeneralFailoverHandler struct {
	logger *logrus.Entry
	conf   FailoverConfig

	failures          int
	disableCycleCount int
	disableUntil      time.Time
	permanent         bool
	now               func() time.Time
	mu                sync.Mutex
}

func NewGeneralFailoverHandler(conf FailoverConfig, logger *logrus.Entry) (h *GeneralFailoverHandler) {
	h = &GeneralFailoverHandler{
		logger: logger,
		conf:   conf,
		now:    time.Now,
	}
	h.resetState()
	return
}

func (h *GeneralFailoverHandler) OnSuccess() {
	h.mu.Lock()
	if h.failures > 0 || h.disableCycleCount > 0 {
		h.resetState()
	}
	h.mu.Unlock()
}

// resetState must be called with mu held.
func (h *GeneralFailoverHandler) resetState() {
	h.failures = 0
	h.disableCycleCount = 0
	h.permanent = false
	h.logger.Debug("failover state reset")
}

// OnFailure records a failure and reports whether the component has just
// entered a disabled state because of it.
func (h *GeneralFailoverHandler) OnFailure() (isDisabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.failures++
	h.logger.Warnf("new failure. Current failures: %d/%d", h.failures, h.conf.MaxFailures)
	if h.failures < h.conf.MaxFailures {
		return
	}

	h.failures = 0
	h.disableCycleCount++
	if h.disableCycleCount >= h.conf.MaxDisableCycles {
		h.logger.Errorf("reached maximum disable cycles: %d. Component permanently disabled",
			h.conf.MaxDisableCycles)
		h.permanent = true
		return true
	}

	cooldown := time.Duration(h.disableCycleCount*h.conf.CooldownBaseSec) * time.Second
	h.disableUntil = h.now().Add(cooldown)
	h.logger.Warnf("reached maximum failures, disable it until %s",
		h.disableUntil.Local().Format(time.RFC3339Nano))
	return true
}

func (h *GeneralFailoverHandler) IsDisabled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.permanent || h.now().Before(h.disableUntil)
}
