package detector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/4O4-Not-F0und/gura-langid/detection/common"
	"github.com/4O4-Not-F0und/gura-langid/langdetect"
	"github.com/4O4-Not-F0und/gura-langid/metrics"
	"github.com/4O4-Not-F0und/gura-langid/selector"
)

const (
	detectorTaskStatePending    = "pending"
	detectorTaskStateProcessing = "processing"
	detectorTaskStateSuccess    = "success"
	detectorTaskStateRejected   = "rejected"
	detectorTaskStateFailed     = "failed"
)

var (
	registeredDetectorInstances = map[string]newDetectorInstanceFunc{}

	allDetectorTaskStates = []string{
		detectorTaskStatePending,
		detectorTaskStateProcessing,
		detectorTaskStateSuccess,
		detectorTaskStateRejected,
		detectorTaskStateFailed,
	}
)

type newDetectorInstanceFunc func(DetectorConfig) (Instance, error)

func registerDetectorInstance(name string, f newDetectorInstanceFunc) {
	if _, ok := registeredDetectorInstances[name]; !ok {
		registeredDetectorInstances[name] = f
		return
	}
	panic(fmt.Sprintf("detector instance type '%s' already registered", name))
}

func NewDetectorInstance(conf DetectorConfig) (Instance, error) {
	if f, ok := registeredDetectorInstances[conf.Type]; ok {
		return f(conf)
	}
	return nil, fmt.Errorf("unknown detector type '%s', detector: %s", conf.Type, conf.Name)
}

func NewDetector(selectorType string, conf DetectorConfig) (LanguageDetector, error) {
	switch selectorType {
	case selector.WRR, selector.FALLBACK:
	default:
		return nil, fmt.Errorf("unrecognized detector selector: %s", selectorType)
	}

	instance, err := NewDetectorInstance(conf)
	if err != nil {
		return nil, err
	}

	return newGeneralLanguageDetector(DetectorOptions{
		Instance:        instance,
		Timeout:         conf.Timeout,
		FailoverConfig:  conf.Failover,
		RateLimitConfig: conf.RateLimit,
		Weight:          conf.Weight,
	}), nil
}

type DetectRequest struct {
	Text    string
	TraceId string
}

type DetectResponse struct {
	Language   string
	Confidence float64
	// Every candidate, best first.
	Ranking []langdetect.Result
}

type LanguageDetector interface {
	selector.WeightedItem

	Detect(context.Context, DetectRequest) (*DetectResponse, error)
	// NewStream returns an empty classifier for incremental detection.
	NewStream() (*langdetect.Detector, error)
	Languages() []string
}

type DetectorOptions struct {
	Instance Instance
	Timeout  int64

	// Failover
	FailoverConfig  common.FailoverConfig
	RateLimitConfig common.RateLimitConfig

	// WRR
	Weight int
}

type GeneralLanguageDetector struct {
	instance        Instance
	logger          *logrus.Entry
	limiter         *rate.Limiter
	timeout         time.Duration
	failoverHandler common.FailoverHandler

	// Weighted
	configWeight  int
	currentWeight int
	weightedMu    *sync.Mutex
}

func newGeneralLanguageDetector(opts DetectorOptions) (gld *GeneralLanguageDetector) {
	gld = &GeneralLanguageDetector{
		instance: opts.Instance,
		timeout:  time.Duration(opts.Timeout) * time.Second,
		logger:   logrus.WithField("detector_name", opts.Instance.Name()),

		// Weighted
		configWeight:  opts.Weight,
		currentWeight: 0,
		weightedMu:    new(sync.Mutex),
	}
	gld.failoverHandler = common.NewGeneralFailoverHandler(opts.FailoverConfig, gld.logger)
	gld.limiter = opts.RateLimitConfig.NewLimiterFromConfig(gld.logger)
	gld.initMetrics()
	return
}

func (gld *GeneralLanguageDetector) initMetrics() {
	for _, state := range allDetectorTaskStates {
		metrics.MetricDetectorTasks.WithLabelValues(state, gld.GetName()).Set(0)
	}
	metrics.MetricDetectorUp.WithLabelValues(gld.GetName()).Set(1)
}

func (gld *GeneralLanguageDetector) Detect(ctx context.Context, req DetectRequest) (resp *DetectResponse, err error) {
	name := gld.GetName()
	metrics.MetricDetectorSelectionTotal.WithLabelValues(name).Inc()

	ctx, cancel := context.WithTimeout(ctx, gld.timeout)
	defer cancel()

	logger := gld.logger.WithField("trace_id", req.TraceId)

	logger.Trace("waiting for limiter")
	metrics.MetricDetectorTasks.WithLabelValues(detectorTaskStatePending, name).Inc()
	err = gld.wait(ctx)
	metrics.MetricDetectorTasks.WithLabelValues(detectorTaskStatePending, name).Dec()
	if err != nil {
		metrics.MetricDetectorTasks.WithLabelValues(detectorTaskStateFailed, name).Inc()
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}
	logger.Trace("acquired limiter")

	metrics.MetricDetectorTasks.WithLabelValues(detectorTaskStateProcessing, name).Inc()
	defer metrics.MetricDetectorTasks.WithLabelValues(detectorTaskStateProcessing, name).Dec()

	logger.Debug("waiting for detect response")
	start := time.Now()
	resp, err = gld.instance.Detect(ctx, req)
	metrics.MetricDetectionDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.MetricDetectorTasks.WithLabelValues(detectorTaskStateSuccess, name).Inc()
		gld.onSuccess()
	case CheckWeakError(err):
		metrics.MetricDetectorTasks.WithLabelValues(detectorTaskStateRejected, name).Inc()
		logger.Debugf("detection rejected: %v", err)
		gld.onSuccess()
	default:
		metrics.MetricDetectorTasks.WithLabelValues(detectorTaskStateFailed, name).Inc()
		gld.onFailure()
	}
	return
}

func (gld *GeneralLanguageDetector) NewStream() (d *langdetect.Detector, err error) {
	si, ok := gld.instance.(StreamInstance)
	if !ok {
		err = fmt.Errorf("detector '%s' does not support streaming", gld.GetName())
		return
	}
	return si.NewStream(), nil
}

func (gld *GeneralLanguageDetector) Languages() []string {
	return gld.instance.Languages()
}

func (gld *GeneralLanguageDetector) wait(ctx context.Context) (err error) {
	if gld.limiter != nil {
		err = gld.limiter.Wait(ctx)
	}
	return
}

func (gld *GeneralLanguageDetector) GetName() string {
	return gld.instance.Name()
}

func (gld *GeneralLanguageDetector) onSuccess() {
	gld.failoverHandler.OnSuccess()
}

func (gld *GeneralLanguageDetector) onFailure() {
	if gld.failoverHandler.OnFailure() {
		metrics.MetricDetectorUp.WithLabelValues(gld.GetName()).Set(0)
	}
}

func (gld *GeneralLanguageDetector) IsDisabled() bool {
	disabled := gld.failoverHandler.IsDisabled()
	if !disabled {
		metrics.MetricDetectorUp.WithLabelValues(gld.GetName()).Set(1)
	}
	return disabled
}

func (gld *GeneralLanguageDetector) GetConfigWeight() int {
	gld.weightedMu.Lock()
	defer gld.weightedMu.Unlock()
	return gld.configWeight
}

func (gld *GeneralLanguageDetector) GetCurrentWeight() int {
	gld.weightedMu.Lock()
	defer gld.weightedMu.Unlock()
	return gld.currentWeight
}

func (gld *GeneralLanguageDetector) SetCurrentWeight(s int) {
	gld.weightedMu.Lock()
	gld.currentWeight = s
	gld.weightedMu.Unlock()
}
