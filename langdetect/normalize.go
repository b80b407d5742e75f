package langdetect

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
	"mvdan.cc/xurls/v2"
)

// maxRepeat is the longest run of one character kept by Normalize.
const maxRepeat = 3

//go:embed normalize.toml
var defaultNormalizationData []byte

var (
	mailPattern = regexp.MustCompile(`[-_.0-9A-Za-z]{1,64}@[-_0-9A-Za-z]{1,255}[-_.0-9A-Za-z]{1,255}`)
	urlPattern  = xurls.Relaxed()

	defaultNormalizer = mustParseNormalizer(defaultNormalizationData)
)

type runeRange struct {
	first, last rune
}

func (rr runeRange) contains(r rune) bool {
	return r >= rr.first && r <= rr.last
}

type runeFold struct {
	runeRange
	to rune
}

// Normalizer turns raw text into the canonical character stream n-grams are
// extracted from. Its tables are loaded from TOML data so profiles and
// detectors can agree on a versioned character mapping.
//
// A Normalizer is immutable and safe for concurrent use.
type Normalizer struct {
	version     string
	punctuation bool
	stopRanges  []runeRange
	stopChars   map[rune]struct{}
	folds       []runeFold
	variants    map[rune]rune
}

type normalizationData struct {
	Version string `toml:"version"`
	Stop    struct {
		Punctuation bool       `toml:"punctuation"`
		Ranges      [][]string `toml:"ranges"`
		Chars       []string   `toml:"chars"`
	} `toml:"stop"`
	Folds []struct {
		Name  string `toml:"name"`
		First string `toml:"first"`
		Last  string `toml:"last"`
		To    string `toml:"to"`
	} `toml:"fold"`
	Variants map[string]string `toml:"variants"`
}

// DefaultNormalizer returns the normalizer built from the embedded table.
func DefaultNormalizer() *Normalizer {
	return defaultNormalizer
}

// LoadNormalizer reads a normalization table from a TOML file.
func LoadNormalizer(path string) (n *Normalizer, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("read normalization table '%s' failed: %w", path, err)
		return
	}
	n, err = ParseNormalizer(data)
	if err != nil {
		err = fmt.Errorf("parse '%s' failed: %w", path, err)
	}
	return
}

// ParseNormalizer builds a Normalizer from TOML table data.
func ParseNormalizer(data []byte) (n *Normalizer, err error) {
	var d normalizationData
	if _, err = toml.Decode(string(data), &d); err != nil {
		return
	}
	if d.Version == "" {
		err = fmt.Errorf("normalization table version is required")
		return
	}

	n = &Normalizer{
		version:     d.Version,
		punctuation: d.Stop.Punctuation,
		stopChars:   make(map[rune]struct{}, len(d.Stop.Chars)),
		variants:    make(map[rune]rune, len(d.Variants)),
	}

	for _, pair := range d.Stop.Ranges {
		if len(pair) != 2 {
			return nil, fmt.Errorf("stop range must have 2 code points, got %d", len(pair))
		}
		var rr runeRange
		if rr, err = parseRange(pair[0], pair[1]); err != nil {
			return nil, err
		}
		n.stopRanges = append(n.stopRanges, rr)
	}

	for _, c := range d.Stop.Chars {
		var r rune
		if r, err = parseCodePoint(c); err != nil {
			return nil, err
		}
		n.stopChars[r] = struct{}{}
	}

	for _, f := range d.Folds {
		var rr runeRange
		if rr, err = parseRange(f.First, f.Last); err != nil {
			return nil, fmt.Errorf("fold '%s': %w", f.Name, err)
		}
		var to rune
		if to, err = parseCodePoint(f.To); err != nil {
			return nil, fmt.Errorf("fold '%s': %w", f.Name, err)
		}
		n.folds = append(n.folds, runeFold{runeRange: rr, to: to})
	}

	for from, to := range d.Variants {
		var fr, tr rune
		if fr, err = parseCodePoint(from); err != nil {
			return nil, err
		}
		if tr, err = parseCodePoint(to); err != nil {
			return nil, err
		}
		n.variants[fr] = tr
	}
	return n, nil
}

func mustParseNormalizer(data []byte) *Normalizer {
	n, err := ParseNormalizer(data)
	if err != nil {
		panic(fmt.Sprintf("embedded normalization table: %v", err))
	}
	return n
}

func parseCodePoint(s string) (r rune, err error) {
	v, err := strconv.ParseUint(strings.TrimPrefix(strings.ToUpper(s), "U+"), 16, 32)
	if err != nil {
		err = fmt.Errorf("invalid code point '%s': %w", s, err)
		return
	}
	if v > unicode.MaxRune {
		err = fmt.Errorf("code point '%s' out of range", s)
		return
	}
	return rune(v), nil
}

func parseRange(first, last string) (rr runeRange, err error) {
	if rr.first, err = parseCodePoint(first); err != nil {
		return
	}
	if rr.last, err = parseCodePoint(last); err != nil {
		return
	}
	if rr.first > rr.last {
		err = fmt.Errorf("invalid range %s-%s", first, last)
	}
	return
}

// Version returns the version string of the loaded table.
func (n *Normalizer) Version() string {
	return n.version
}

// NormalizeRune maps r to its canonical form, or to a space if r is a stop
// character.
func (n *Normalizer) NormalizeRune(r rune) rune {
	if unicode.IsSpace(r) || (n.punctuation && unicode.IsPunct(r)) {
		return ' '
	}
	if v, ok := n.variants[r]; ok {
		r = v
	}
	for _, f := range n.folds {
		if f.contains(r) {
			return f.to
		}
	}
	for _, rr := range n.stopRanges {
		if rr.contains(r) {
			return ' '
		}
	}
	if _, ok := n.stopChars[r]; ok {
		return ' '
	}
	return r
}

// Normalize cleans text for n-gram extraction. URLs and e-mail addresses are
// removed, long character runs are shortened, and the result is a sequence of
// words separated by single spaces with one leading and one trailing space.
func (n *Normalizer) Normalize(text string) string {
	text = mailPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	text = collapseRepeats(text)
	text = width.Fold.String(norm.NFC.String(text))

	var b strings.Builder
	b.Grow(len(text) + 2)
	b.WriteByte(' ')
	prevSpace := true
	for _, r := range text {
		r = n.NormalizeRune(r)
		if r == ' ' {
			if prevSpace {
				continue
			}
			prevSpace = true
		} else {
			prevSpace = false
		}
		b.WriteRune(r)
	}
	if !prevSpace {
		b.WriteByte(' ')
	}
	return b.String()
}

// NGrams normalizes text and returns its 1-, 2- and 3-grams in text order.
// Duplicates are kept.
func (n *Normalizer) NGrams(text string) []string {
	return extractNGrams(n.Normalize(text))
}

func collapseRepeats(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	prev, run := rune(-1), 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run <= maxRepeat {
			b.WriteRune(r)
		}
	}
	return b.String()
}
