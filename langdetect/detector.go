package langdetect

import (
	"cmp"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultAlpha                = 0.5
	DefaultTrials               = 7
	DefaultAlphaWidth           = 0.05
	DefaultIterationLimit       = 1000
	DefaultConvergenceThreshold = 0.99999
	DefaultProbabilityThreshold = 0.1
	DefaultMaxTextLength        = 10000

	// baseFreq scales alpha into the additive smoothing term of an update.
	baseFreq = 10000

	// convergenceCheckInterval is the number of updates between checks of
	// the convergence threshold.
	convergenceCheckInterval = 5
)

// Result is one candidate language and its estimated probability.
type Result struct {
	Language    string  `json:"language"`
	Probability float64 `json:"probability"`
}

func (r Result) String() string {
	return r.Language + ":" + strconv.FormatFloat(r.Probability, 'f', -1, 64)
}

// Option configures a Detector.
type Option func(*Detector)

// WithAlpha sets the smoothing parameter.
func WithAlpha(alpha float64) Option {
	return func(d *Detector) { d.alpha = alpha }
}

// WithSeed makes every estimation run reproducible.
func WithSeed(seed uint64) Option {
	return func(d *Detector) {
		d.seed = seed
		d.hasSeed = true
	}
}

// WithTrials sets the number of independent trials averaged per run.
func WithTrials(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.trials = n
		}
	}
}

// WithAlphaWidth sets the standard deviation of the per-trial alpha jitter.
func WithAlphaWidth(w float64) Option {
	return func(d *Detector) { d.alphaWidth = w }
}

// WithIterationLimit caps the number of updates in one trial.
func WithIterationLimit(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.iterationLimit = n
		}
	}
}

// WithConvergenceThreshold sets the probability at which a trial stops early.
func WithConvergenceThreshold(p float64) Option {
	return func(d *Detector) { d.convThreshold = p }
}

// WithProbabilityThreshold sets the minimum probability Detect accepts.
func WithProbabilityThreshold(p float64) Option {
	return func(d *Detector) { d.probThreshold = p }
}

// WithMaxTextLength caps the number of runes Append consumes in total.
func WithMaxTextLength(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.maxTextLength = n
		}
	}
}

// WithNormalizer replaces the embedded normalization table. It must match
// the table the profiles were generated with.
func WithNormalizer(n *Normalizer) Option {
	return func(d *Detector) {
		if n != nil {
			d.normalizer = n
		}
	}
}

// WithParallelTrials runs the trials of one estimation concurrently.
func WithParallelTrials(parallel bool) Option {
	return func(d *Detector) { d.parallel = parallel }
}

// WithLogger sets the entry used for trace logging.
func WithLogger(logger *logrus.Entry) Option {
	return func(d *Detector) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// Detector accumulates text and estimates its language against a Table.
//
// A Detector is cheap to create and meant for a single detection task. It is
// not safe for concurrent use.
type Detector struct {
	table      *Table
	normalizer *Normalizer
	logger     *logrus.Entry

	alpha          float64
	alphaWidth     float64
	trials         int
	iterationLimit int
	convThreshold  float64
	probThreshold  float64
	maxTextLength  int
	parallel       bool
	seed           uint64
	hasSeed        bool

	freq       map[string]int
	textLength int
	latin      int
	nonLatin   int

	// ranked caches the last estimation; nil while evidence is pending.
	ranked []Result
}

// NewDetector returns a Detector reading probabilities from t.
func (t *Table) NewDetector(opts ...Option) *Detector {
	d := &Detector{
		table:          t,
		normalizer:     defaultNormalizer,
		logger:         logrus.WithField("component", "langdetect"),
		alpha:          DefaultAlpha,
		alphaWidth:     DefaultAlphaWidth,
		trials:         DefaultTrials,
		iterationLimit: DefaultIterationLimit,
		convThreshold:  DefaultConvergenceThreshold,
		probThreshold:  DefaultProbabilityThreshold,
		maxTextLength:  DefaultMaxTextLength,
		freq:           make(map[string]int),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Languages returns the languages the detector can report.
func (d *Detector) Languages() []string {
	return d.table.Languages()
}

// Append adds the n-grams of text to the accumulated evidence. N-grams
// unknown to the table are dropped. Once the text length cap is reached
// further text is ignored.
func (d *Detector) Append(text string) {
	if text == "" {
		return
	}
	remaining := d.maxTextLength - d.textLength
	if remaining <= 0 {
		d.logger.Tracef("text length cap %d reached, ignoring %d bytes", d.maxTextLength, len(text))
		return
	}
	text, consumed := truncateRunes(text, remaining)
	d.textLength += consumed

	normalized := d.normalizer.Normalize(text)
	changed := false
	for _, r := range normalized {
		switch {
		case isASCIILetter(r):
			d.latin++
			changed = true
		case isNonLatin(r):
			d.nonLatin++
			changed = true
		}
	}
	for _, gram := range extractNGrams(normalized) {
		if !d.table.Contains(gram) {
			continue
		}
		d.freq[gram]++
		changed = true
	}

	if changed {
		d.ranked = nil
	}
}

// Detect returns the most probable language. It fails with ErrNoText when no
// evidence was appended and with ErrCannotDetect when the best candidate is
// below the probability threshold.
func (d *Detector) Detect() (lang string, err error) {
	ranked, err := d.DetectAll()
	if err != nil {
		return
	}
	top := ranked[0]
	if top.Probability < d.probThreshold {
		err = fmt.Errorf("%w: best candidate '%s' (%.5f) is below threshold (%.2f)",
			ErrCannotDetect, top.Language, top.Probability, d.probThreshold)
		return
	}
	return top.Language, nil
}

// DetectAll returns every language of the table sorted by descending
// probability, ties broken by language. Repeated calls without Append return
// the cached ranking.
func (d *Detector) DetectAll() (results []Result, err error) {
	if d.ranked == nil {
		var probs []float64
		if probs, err = d.estimate(); err != nil {
			return
		}
		d.ranked = d.rank(probs)
	}
	return slices.Clone(d.ranked), nil
}

func (d *Detector) estimate() (probs []float64, err error) {
	evidence := d.evidence()
	if len(evidence) == 0 {
		err = ErrNoText
		return
	}

	seed := d.seed
	if !d.hasSeed {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	seeds := make([]uint64, d.trials)
	for i := range seeds {
		seeds[i] = rng.Uint64()
	}

	trialProbs := make([][]float64, d.trials)
	if d.parallel {
		var g errgroup.Group
		g.SetLimit(runtime.GOMAXPROCS(0))
		for i := range trialProbs {
			g.Go(func() error {
				trialProbs[i] = d.runTrial(evidence, seeds[i])
				return nil
			})
		}
		if err = g.Wait(); err != nil {
			return
		}
	} else {
		for i := range trialProbs {
			trialProbs[i] = d.runTrial(evidence, seeds[i])
		}
	}

	probs = make([]float64, d.table.NumLanguages())
	for _, p := range trialProbs {
		floats.AddScaled(probs, 1/float64(d.trials), p)
	}
	return
}

// runTrial performs one randomized sequence of Bayesian updates and returns
// the normalized probability vector it ends with.
func (d *Detector) runTrial(evidence [][]float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed))
	n := d.table.NumLanguages()
	prob := make([]float64, n)
	for j := range prob {
		prob[j] = 1 / float64(n)
	}

	alpha := max(d.alpha+rng.NormFloat64()*d.alphaWidth, 0)
	weight := alpha / baseFreq

	i := 0
	for ; ; i++ {
		vec := evidence[rng.IntN(len(evidence))]
		for j := range prob {
			prob[j] *= weight + vec[j]
		}
		maxProb := normalizeProb(prob)
		if i >= d.iterationLimit {
			break
		}
		if i%convergenceCheckInterval == 0 && maxProb >= d.convThreshold {
			break
		}
	}
	d.logger.Tracef("trial finished after %d updates, alpha %.5f: %v", i+1, alpha, prob)
	return prob
}

// normalizeProb scales prob to sum to 1 and returns its largest entry.
func normalizeProb(prob []float64) float64 {
	sum := floats.Sum(prob)
	if sum <= 0 {
		return 0
	}
	floats.Scale(1/sum, prob)
	return floats.Max(prob)
}

// evidence expands the frequency map into the multiset of probability
// vectors sampled by the trials. Keys are visited in sorted order so a fixed
// seed yields a fixed result.
func (d *Detector) evidence() [][]float64 {
	grams := make([]string, 0, len(d.freq))
	for gram := range d.freq {
		grams = append(grams, gram)
	}
	slices.Sort(grams)

	// Text dominated by another script: Latin letters are most likely
	// embedded names or code, not signal.
	if d.latin > 0 && d.latin*2 < d.nonLatin {
		if ev := d.expand(grams, true); len(ev) > 0 {
			return ev
		}
	}
	return d.expand(grams, false)
}

func (d *Detector) expand(grams []string, skipLatin bool) [][]float64 {
	var ev [][]float64
	for _, gram := range grams {
		if skipLatin && containsASCIILetter(gram) {
			continue
		}
		vec := d.table.probs[gram]
		for range d.freq[gram] {
			ev = append(ev, vec)
		}
	}
	return ev
}

func (d *Detector) rank(probs []float64) []Result {
	results := make([]Result, len(probs))
	for j, lang := range d.table.languages {
		results[j] = Result{
			Language:    lang,
			Probability: min(max(probs[j], 0), 1),
		}
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		if c := cmp.Compare(b.Probability, a.Probability); c != 0 {
			return c
		}
		return cmp.Compare(a.Language, b.Language)
	})
	return results
}

func truncateRunes(s string, limit int) (string, int) {
	n := 0
	for i := range s {
		if n == limit {
			return s[:i], n
		}
		n++
	}
	return s, n
}

func isASCIILetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// isNonLatin reports whether r belongs to a script other than Latin. Latin
// Extended Additional is folded to a single letter and counted as Latin.
func isNonLatin(r rune) bool {
	return r >= 0x0300 && (r < 0x1E00 || r > 0x1EFF)
}

func containsASCIILetter(s string) bool {
	for _, r := range s {
		if isASCIILetter(r) {
			return true
		}
	}
	return false
}
