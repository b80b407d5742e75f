package detector

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/pemistahl/lingua-go"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

const (
	LINGUA = "lingua"
)

func init() {
	registerDetectorInstance(LINGUA, newLinguaInstance)
}

type InstanceLingua struct {
	baseInstance
	languages []string
	detector  lingua.LanguageDetector
}

func newLinguaInstance(conf DetectorConfig) (instance Instance, err error) {
	ld := &InstanceLingua{
		baseInstance: newBaseInstance(conf),
	}

	allLanguages := map[string]lingua.Language{}
	for _, l := range lingua.AllLanguages() {
		allLanguages[linguaCode(l)] = l
	}

	unconfigured := lingua.NewLanguageDetectorBuilder()
	var builder lingua.LanguageDetectorBuilder
	if len(conf.DetectLangs) == 0 {
		for code := range allLanguages {
			ld.languages = append(ld.languages, code)
		}
		builder = unconfigured.FromAllLanguages()
	} else {
		availableLangs := []lingua.Language{}
		for _, code := range conf.DetectLangs {
			code = strings.ToLower(code)
			l, ok := allLanguages[code]
			if !ok {
				err = fmt.Errorf("unsupported language: %s", code)
				return
			}
			ld.logger.Infof("found detect language: %s", code)
			availableLangs = append(availableLangs, l)
			ld.languages = append(ld.languages, code)
		}
		builder = unconfigured.FromLanguages(availableLangs...)
	}
	slices.Sort(ld.languages)

	ld.detector = builder.Build()
	return ld, nil
}

func linguaCode(l lingua.Language) string {
	return strings.ToLower(l.IsoCode639_1().String())
}

func (ld *InstanceLingua) Languages() []string {
	return append([]string(nil), ld.languages...)
}

func (ld *InstanceLingua) Detect(_ context.Context, req DetectRequest) (resp *DetectResponse, err error) {
	values := ld.detector.ComputeLanguageConfidenceValues(req.Text)
	ranking := make([]langdetect.Result, 0, len(values))
	for _, cv := range values {
		ranking = append(ranking, langdetect.Result{
			Language:    linguaCode(cv.Language()),
			Probability: cv.Value(),
		})
	}
	sortRanking(ranking)
	return ld.response(ranking)
}
