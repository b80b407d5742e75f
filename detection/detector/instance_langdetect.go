package detector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

const (
	LANGDETECT = "langdetect"
)

func init() {
	registerDetectorInstance(LANGDETECT, newLangDetectInstance)
}

// InstanceLangDetect runs the built-in n-gram classifier. All requests share
// one immutable probability table.
type InstanceLangDetect struct {
	baseInstance
	table *langdetect.Table
	opts  []langdetect.Option
}

func newLangDetectInstance(conf DetectorConfig) (instance Instance, err error) {
	ld := &InstanceLangDetect{
		baseInstance: newBaseInstance(conf),
	}
	if ld.confidenceThreshold <= 0 {
		ld.confidenceThreshold = langdetect.DefaultProbabilityThreshold
	}

	lc := conf.LangDetect
	ld.table, err = loadLangDetectTable(lc, conf.DetectLangs)
	if err != nil {
		return
	}
	ld.logger.Infof("loaded %d languages, %d n-grams", ld.table.NumLanguages(), ld.table.Len())

	ld.opts = append(ld.opts, langdetect.WithLogger(ld.logger))
	if lc.NormalizationTable != "" {
		var n *langdetect.Normalizer
		n, err = langdetect.LoadNormalizer(lc.NormalizationTable)
		if err != nil {
			return
		}
		ld.logger.Infof("using normalization table version %s", n.Version())
		ld.opts = append(ld.opts, langdetect.WithNormalizer(n))
	}
	if lc.Alpha > 0 {
		ld.opts = append(ld.opts, langdetect.WithAlpha(lc.Alpha))
	}
	if lc.Seed != nil {
		ld.opts = append(ld.opts, langdetect.WithSeed(*lc.Seed))
	}
	if lc.Trials > 0 {
		ld.opts = append(ld.opts, langdetect.WithTrials(lc.Trials))
	}
	if lc.MaxTextLength > 0 {
		ld.opts = append(ld.opts, langdetect.WithMaxTextLength(lc.MaxTextLength))
	}
	ld.opts = append(ld.opts,
		langdetect.WithParallelTrials(lc.ParallelTrials),
		langdetect.WithProbabilityThreshold(ld.confidenceThreshold),
	)
	return ld, nil
}

func loadLangDetectTable(lc LangDetectConfig, langs []string) (t *langdetect.Table, err error) {
	if lc.TableSnapshot == "" {
		return langdetect.LoadTable(context.Background(), os.DirFS(lc.ProfilesDir), langs)
	}

	f, err := os.Open(lc.TableSnapshot)
	if err != nil {
		err = fmt.Errorf("open table snapshot failed: %w", err)
		return
	}
	defer f.Close()

	if t, err = langdetect.ReadSnapshot(f); err != nil {
		return
	}
	available := t.Languages()
	for _, l := range langs {
		if !slices.Contains(available, strings.ToLower(l)) {
			return nil, fmt.Errorf("language '%s' is not in table snapshot '%s'", l, lc.TableSnapshot)
		}
	}
	return
}

func (ld *InstanceLangDetect) NewStream() *langdetect.Detector {
	return ld.table.NewDetector(ld.opts...)
}

func (ld *InstanceLangDetect) Languages() []string {
	return ld.table.Languages()
}

func (ld *InstanceLangDetect) Detect(_ context.Context, req DetectRequest) (resp *DetectResponse, err error) {
	d := ld.NewStream()
	d.Append(req.Text)

	ranking, err := d.DetectAll()
	if errors.Is(err, langdetect.ErrNoText) {
		err = newWeakError(err)
		return
	}
	if err != nil {
		return
	}
	return ld.response(ranking)
}
