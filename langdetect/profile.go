package langdetect

import (
	"regexp"
)

const (
	// lessFrequentRatio and minimumFrequency control OmitLessFrequent.
	lessFrequentRatio = 100000
	minimumFrequency  = 2
)

var (
	romanCharPattern     = regexp.MustCompile(`^[A-Za-z]$`)
	containsRomanPattern = regexp.MustCompile(`[A-Za-z]`)
)

// Profile holds the n-gram counts of one language.
//
// NWords[L-1] is the total of all counts of n-grams of length L.
type Profile struct {
	Name   string
	Freq   map[string]uint64
	NWords [MaxNGramLength]uint64
}

// NewProfile returns an empty profile for the language name.
func NewProfile(name string) *Profile {
	return &Profile{
		Name: name,
		Freq: make(map[string]uint64),
	}
}

// Add counts one occurrence of gram. Grams of invalid length are ignored.
func (p *Profile) Add(gram string) {
	n, ok := validNGramLength(gram)
	if !ok {
		return
	}
	p.NWords[n-1]++
	p.Freq[gram]++
}

// AddText counts every n-gram extracted from text by n.
func (p *Profile) AddText(n *Normalizer, text string) {
	for _, gram := range n.NGrams(text) {
		p.Add(gram)
	}
}

// OmitLessFrequent removes rare n-grams. For profiles of non-Latin script
// languages it also drops n-grams containing Latin letters, which usually
// come from embedded foreign words.
func (p *Profile) OmitLessFrequent() {
	threshold := p.NWords[0] / lessFrequentRatio
	if threshold < minimumFrequency {
		threshold = minimumFrequency
	}

	var roman uint64
	for gram, count := range p.Freq {
		if count <= threshold {
			p.remove(gram, count)
			continue
		}
		if romanCharPattern.MatchString(gram) {
			roman += count
		}
	}

	if roman < p.NWords[0]/3 {
		for gram, count := range p.Freq {
			if containsRomanPattern.MatchString(gram) {
				p.remove(gram, count)
			}
		}
	}
}

func (p *Profile) remove(gram string, count uint64) {
	delete(p.Freq, gram)
	n, ok := validNGramLength(gram)
	if !ok {
		return
	}
	if p.NWords[n-1] < count {
		p.NWords[n-1] = 0
		return
	}
	p.NWords[n-1] -= count
}
