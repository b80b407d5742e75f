package detection

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/4O4-Not-F0und/gura-langid/detection/detector"
	"github.com/4O4-Not-F0und/gura-langid/langdetect"
	"github.com/4O4-Not-F0und/gura-langid/selector"
)

// DetectService routes detection requests to the configured detectors.
type DetectService struct {
	// set to negative or zero to disable retry
	maxRetry              int
	retryCooldown         time.Duration
	defaultDetectorConfig detector.DefaultDetectorConfig
	detectorSelector      selector.Selector[detector.LanguageDetector]
	detectors             []detector.LanguageDetector
}

func NewDetectService(conf DetectServiceConfig) (ds *DetectService, err error) {
	ds = &DetectService{
		maxRetry: conf.MaxRetry,
	}

	var ok bool
	ds.detectorSelector, ok = selector.New[detector.LanguageDetector](conf.DetectorSelector)
	if !ok {
		err = fmt.Errorf("unrecognized detector selector: %s", conf.DetectorSelector)
		return
	}

	if conf.RetryCooldown <= 0 {
		err = fmt.Errorf("retry cooldown must be positive")
		return
	}
	ds.retryCooldown = time.Duration(conf.RetryCooldown) * time.Second

	// No need to validate default config here
	ds.defaultDetectorConfig = conf.DefaultDetectorConfig

	err = ds.initDetectors(conf.Detectors)
	return
}

func (ds *DetectService) initDetectors(detectorConfs []detector.DetectorConfig) (err error) {
	if len(detectorConfs) == 0 {
		err = fmt.Errorf("no detector configured")
		return
	}

	names := []string{}
	for _, dc := range detectorConfs {
		err = dc.CheckAndMergeDefaultConfig(ds.defaultDetectorConfig)
		if err != nil {
			return
		}

		if slices.Contains(names, dc.Name) {
			err = fmt.Errorf("duplicated detector name: %s", dc.Name)
			return
		}

		var d detector.LanguageDetector
		d, err = detector.NewDetector(ds.detectorSelector.GetType(), dc)
		if err != nil {
			return
		}

		names = append(names, d.GetName())
		ds.detectors = append(ds.detectors, d)
		ds.detectorSelector.AddItem(d)
	}
	logrus.Debugf("total weight of %s selector: %d", ds.detectorSelector.GetType(), ds.detectorSelector.TotalConfigWeight())
	return
}

// Languages returns the sorted union of the languages of all detectors.
func (ds *DetectService) Languages() (langs []string) {
	for _, d := range ds.detectors {
		for _, l := range d.Languages() {
			if !slices.Contains(langs, l) {
				langs = append(langs, l)
			}
		}
	}
	slices.Sort(langs)
	return
}

// Detect selects a detector and retries with another selection on failure.
// Weak errors are returned at once: another detector would see the same text.
func (ds *DetectService) Detect(ctx context.Context, req detector.DetectRequest) (resp *detector.DetectResponse, name string, err error) {
	retry := 0
	logger := logrus.WithField("trace_id", req.TraceId)
	for {
		resp, name, err = ds.detect(ctx, req)
		if err == nil || detector.CheckWeakError(err) {
			return
		}

		if retry >= ds.maxRetry {
			logger.Errorf("no more retries: maximum retries exceeded after %d attempts", retry)
			return
		}
		retry += 1
		if name != "" {
			logger.WithField("detector_name", name).
				Warnf("%v. Retry attempt %d/%d in %s", err, retry, ds.maxRetry, ds.retryCooldown)
		} else {
			logger.Warnf("%v. Retry attempt %d/%d in %s", err, retry, ds.maxRetry, ds.retryCooldown)
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-time.After(ds.retryCooldown):
		}
	}
}

func (ds *DetectService) detect(ctx context.Context, req detector.DetectRequest) (resp *detector.DetectResponse, name string, err error) {
	d, err := ds.detectorSelector.Select()
	if err != nil {
		err = fmt.Errorf("error on select detector: %w", err)
		return
	}
	name = d.GetName()

	resp, err = d.Detect(ctx, req)
	return
}

// NewStream returns an incremental classifier from the first enabled
// detector that supports streaming.
func (ds *DetectService) NewStream() (stream *langdetect.Detector, name string, err error) {
	for _, d := range ds.detectors {
		if d.IsDisabled() {
			continue
		}
		if stream, err = d.NewStream(); err == nil {
			return stream, d.GetName(), nil
		}
	}
	err = fmt.Errorf("no enabled detector supports streaming")
	return
}
