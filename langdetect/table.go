package langdetect

import (
	"fmt"
	"io"
	"slices"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotSchemaVersion must be incremented when tableSnapshot changes.
const snapshotSchemaVersion uint16 = 1

// Table maps n-grams to per-language probabilities. Vectors are indexed by
// the position of the language in Languages.
//
// A Table is never modified after it is built and is safe for concurrent use
// by any number of Detectors.
type Table struct {
	languages []string
	probs     map[string][]float64
}

func newTable(languages []string, probs map[string][]float64) *Table {
	return &Table{
		languages: languages,
		probs:     probs,
	}
}

// Languages returns a copy of the sorted language identifiers.
func (t *Table) Languages() []string {
	return slices.Clone(t.languages)
}

// NumLanguages returns the number of languages in the table.
func (t *Table) NumLanguages() int {
	return len(t.languages)
}

// Len returns the number of distinct n-grams in the table.
func (t *Table) Len() int {
	return len(t.probs)
}

// Probabilities returns a copy of the probability vector of gram, or nil if
// gram is not in the table.
func (t *Table) Probabilities(gram string) []float64 {
	vec, ok := t.probs[gram]
	if !ok {
		return nil
	}
	return slices.Clone(vec)
}

// Contains reports whether gram has a probability vector.
func (t *Table) Contains(gram string) bool {
	_, ok := t.probs[gram]
	return ok
}

type tableSnapshot struct {
	Schema    uint16               `msgpack:"schema"`
	Languages []string             `msgpack:"languages"`
	NGrams    map[string][]float64 `msgpack:"ngrams"`
}

// WriteSnapshot serializes the table so it can be restored with ReadSnapshot
// without re-reading the profiles.
func (t *Table) WriteSnapshot(w io.Writer) error {
	return msgpack.NewEncoder(w).Encode(&tableSnapshot{
		Schema:    snapshotSchemaVersion,
		Languages: t.languages,
		NGrams:    t.probs,
	})
}

// ReadSnapshot restores a table written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (t *Table, err error) {
	var s tableSnapshot
	if err = msgpack.NewDecoder(r).Decode(&s); err != nil {
		err = fmt.Errorf("decode table snapshot failed: %w", err)
		return
	}
	if s.Schema != snapshotSchemaVersion {
		err = fmt.Errorf("unsupported table snapshot schema %d, want %d", s.Schema, snapshotSchemaVersion)
		return
	}
	if len(s.Languages) == 0 {
		err = ErrNoProfilesLoaded
		return
	}
	if !slices.IsSorted(s.Languages) {
		err = fmt.Errorf("table snapshot languages are not sorted")
		return
	}
	for gram, vec := range s.NGrams {
		if len(vec) != len(s.Languages) {
			err = fmt.Errorf("n-gram %q has %d probabilities, want %d", gram, len(vec), len(s.Languages))
			return
		}
	}
	if s.NGrams == nil {
		s.NGrams = make(map[string][]float64)
	}
	return newTable(s.Languages, s.NGrams), nil
}
