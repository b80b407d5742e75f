package langdetect

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"
)

// Builder collects language profiles and freezes them into a Table.
//
// Profiles are converted to per-language probability maps as they are added;
// Build materializes one fixed-order vector per n-gram. A Builder is not safe
// for concurrent use.
type Builder struct {
	logger    *logrus.Entry
	langProbs map[string]map[string]float64
	skipped   int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		logger:    logrus.WithField("component", "langdetect_builder"),
		langProbs: make(map[string]map[string]float64),
	}
}

// AddProfile folds the profile into the builder. It fails with
// ErrDuplicateLanguage if a profile with the same name was already added, in
// which case the builder is left unchanged.
func (b *Builder) AddProfile(p *Profile) (err error) {
	if p == nil || p.Name == "" {
		err = fmt.Errorf("language profile name is required")
		return
	}
	if _, ok := b.langProbs[p.Name]; ok {
		err = fmt.Errorf("%w: %s", ErrDuplicateLanguage, p.Name)
		return
	}

	logger := b.logger.WithField("language", p.Name)
	probs := make(map[string]float64, len(p.Freq))
	for gram, count := range p.Freq {
		n, ok := validNGramLength(gram)
		if !ok {
			b.skipped++
			logger.Warn(fmt.Errorf("%w: %q", ErrInvalidNGram, gram))
			continue
		}
		if count == 0 {
			continue
		}
		total := p.NWords[n-1]
		if total == 0 {
			b.skipped++
			logger.Warnf("no total count for %d-grams, skipping %q", n, gram)
			continue
		}
		probs[gram] = float64(count) / float64(total)
	}

	b.langProbs[p.Name] = probs
	logger.Debugf("added language profile with %d n-grams", len(probs))
	return
}

// Languages returns the sorted names of the profiles added so far.
func (b *Builder) Languages() []string {
	langs := make([]string, 0, len(b.langProbs))
	for lang := range b.langProbs {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Skipped returns the number of profile entries ignored so far.
func (b *Builder) Skipped() int {
	return b.skipped
}

// Build freezes the added profiles into a Table. The builder stays usable.
func (b *Builder) Build() (t *Table, err error) {
	if len(b.langProbs) == 0 {
		err = ErrNoProfilesLoaded
		return
	}

	langs := b.Languages()
	probs := make(map[string][]float64)
	for i, lang := range langs {
		for gram, p := range b.langProbs[lang] {
			vec, ok := probs[gram]
			if !ok {
				vec = make([]float64, len(langs))
				probs[gram] = vec
			}
			vec[i] = p
		}
	}

	b.logger.Infof("built probability table: %d languages, %d n-grams, %d entries skipped",
		len(langs), len(probs), b.skipped)
	return newTable(langs, probs), nil
}
