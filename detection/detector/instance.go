package detector

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

type Instance interface {
	Detect(context.Context, DetectRequest) (*DetectResponse, error)
	Languages() []string
	Name() string
}

// StreamInstance is implemented by instances that can accumulate text over
// several messages.
type StreamInstance interface {
	NewStream() *langdetect.Detector
}

type baseInstance struct {
	name                string
	confidenceThreshold float64
	languageFilter      []string
	logger              *logrus.Entry
}

func newBaseInstance(conf DetectorConfig) baseInstance {
	filter := make([]string, 0, len(conf.LanguageFilter))
	for _, l := range conf.LanguageFilter {
		filter = append(filter, strings.ToLower(l))
	}
	return baseInstance{
		name:                conf.Name,
		confidenceThreshold: conf.ConfidenceThreshold,
		languageFilter:      filter,
		logger:              logrus.WithField("detector_instance", conf.Name),
	}
}

func (t *baseInstance) Name() string {
	return t.name
}

// response validates the best candidate of a ranking sorted by descending
// confidence.
func (t *baseInstance) response(ranking []langdetect.Result) (resp *DetectResponse, err error) {
	if len(ranking) == 0 {
		err = newWeakError(fmt.Errorf("no reliable language detected"))
		return
	}
	top := ranking[0]
	if err = t.checkDetectResult(top.Language, top.Probability); err != nil {
		return
	}
	return &DetectResponse{
		Language:   top.Language,
		Confidence: top.Probability,
		Ranking:    ranking,
	}, nil
}

func (t *baseInstance) checkDetectResult(lang string, confidence float64) (err error) {
	if lang == "" {
		err = newWeakError(fmt.Errorf("no reliable language detected"))
		return
	}
	if len(t.languageFilter) > 0 && !slices.Contains(t.languageFilter, lang) {
		err = newWeakError(fmt.Errorf("detected language '%s' is not in the configured language filter", lang))
		return
	}
	if confidence < t.confidenceThreshold {
		err = newWeakError(
			fmt.Errorf("detected language '%s' (confidence: %.2f) is below threshold (%.2f)",
				lang, confidence, t.confidenceThreshold),
		)
		return
	}
	return
}

// sortRanking orders candidates by descending confidence, then language.
func sortRanking(ranking []langdetect.Result) {
	slices.SortStableFunc(ranking, func(a, b langdetect.Result) int {
		switch {
		case a.Probability > b.Probability:
			return -1
		case a.Probability < b.Probability:
			return 1
		}
		return strings.Compare(a.Language, b.Language)
	})
}
