package langdetect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSeed = 20240601

// unigramProfile counts every whitespace separated word of corpus as a
// single gram.
func unigramProfile(name, corpus string) *Profile {
	p := NewProfile(name)
	for _, w := range strings.Fields(corpus) {
		p.Add(w)
	}
	return p
}

func testProfiles() []*Profile {
	return []*Profile{
		unigramProfile("en", "a a a b b c c d e"),
		unigramProfile("fr", "a b b c c c d d d"),
		unigramProfile("ja", "あ あ あ い う え え"),
	}
}

func newTestTable(t testing.TB) *Table {
	t.Helper()
	b := NewBuilder()
	for _, p := range testProfiles() {
		require.NoError(t, b.AddProfile(p))
	}
	table, err := b.Build()
	require.NoError(t, err)
	return table
}
