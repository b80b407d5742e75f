package langdetect

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detect(t *testing.T, table *Table, text string, opts ...Option) string {
	t.Helper()
	d := table.NewDetector(append([]Option{WithSeed(testSeed)}, opts...)...)
	d.Append(text)
	lang, err := d.Detect()
	require.NoError(t, err)
	return lang
}

func TestDetect(t *testing.T) {
	table := newTestTable(t)

	cases := []struct {
		text string
		want string
	}{
		{"a", "en"},
		{"b d", "fr"},
		{"d e", "en"},
		{"ああああa", "ja"},
		{"あいう", "ja"},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.want, detect(t, table, tc.text))
			assert.Equal(t, tc.want, detect(t, table, tc.text, WithParallelTrials(true)))
		})
	}
}

func TestDetectAll(t *testing.T) {
	table := newTestTable(t)
	d := table.NewDetector(WithSeed(testSeed))
	d.Append("b d")

	results, err := d.DetectAll()
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "fr", results[0].Language)

	sum := 0.0
	for i, r := range results {
		assert.GreaterOrEqual(t, r.Probability, 0.0)
		assert.LessOrEqual(t, r.Probability, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, results[i-1].Probability, r.Probability)
		}
		sum += r.Probability
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDetectNoText(t *testing.T) {
	table := newTestTable(t)

	d := table.NewDetector()
	_, err := d.Detect()
	assert.ErrorIs(t, err, ErrNoText)

	// Only digits and n-grams the table does not know.
	d.Append("123 xyz")
	_, err = d.DetectAll()
	assert.ErrorIs(t, err, ErrNoText)
}

func TestDetectBelowThreshold(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.AddProfile(unigramProfile("x", "a b")))
	require.NoError(t, b.AddProfile(unigramProfile("y", "a b")))
	table, err := b.Build()
	require.NoError(t, err)

	d := table.NewDetector(WithSeed(testSeed), WithProbabilityThreshold(0.9))
	d.Append("a b")
	_, err = d.Detect()
	assert.True(t, errors.Is(err, ErrCannotDetect), err)

	results, err := d.DetectAll()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "x", results[0].Language)
	assert.InDelta(t, 0.5, results[0].Probability, 1e-9)
	assert.InDelta(t, 0.5, results[1].Probability, 1e-9)

	assert.Equal(t, "x", detect(t, table, "a b"))
}

func TestDetectDeterministic(t *testing.T) {
	table := newTestTable(t)

	run := func(opts ...Option) []Result {
		d := table.NewDetector(append([]Option{WithSeed(testSeed)}, opts...)...)
		d.Append("a b c d e")
		results, err := d.DetectAll()
		require.NoError(t, err)
		return results
	}

	first := run()
	assert.Equal(t, first, run())
	assert.Equal(t, first, run(WithParallelTrials(true)))
}

func TestDetectAllCached(t *testing.T) {
	table := newTestTable(t)
	d := table.NewDetector()
	d.Append("b d")

	first, err := d.DetectAll()
	require.NoError(t, err)
	first[0].Probability = -1

	second, err := d.DetectAll()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	d.Append("")
	d.Append("!!! 42")
	third, err := d.DetectAll()
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestAppendInvalidatesResult(t *testing.T) {
	table := newTestTable(t)
	d := table.NewDetector(WithSeed(testSeed))

	d.Append("d")
	lang, err := d.Detect()
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)

	d.Append("e")
	lang, err = d.Detect()
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
}

func TestMaxTextLength(t *testing.T) {
	table := newTestTable(t)
	d := table.NewDetector(WithSeed(testSeed), WithMaxTextLength(1))

	d.Append("d")
	d.Append("e")
	lang, err := d.Detect()
	require.NoError(t, err)
	assert.Equal(t, "fr", lang)
}

func TestTruncateRunes(t *testing.T) {
	s, n := truncateRunes("ああa", 2)
	assert.Equal(t, "ああ", s)
	assert.Equal(t, 2, n)

	s, n = truncateRunes("ab", 5)
	assert.Equal(t, "ab", s)
	assert.Equal(t, 2, n)
}

func TestZeroAlpha(t *testing.T) {
	table := newTestTable(t)
	d := table.NewDetector(WithSeed(testSeed), WithAlpha(0), WithAlphaWidth(0))
	d.Append("d e")

	results, err := d.DetectAll()
	require.NoError(t, err)
	assert.Equal(t, "en", results[0].Language)
	assert.InDelta(t, 1.0, results[0].Probability, 1e-9)
}

func TestConcurrentDetectors(t *testing.T) {
	table := newTestTable(t)
	texts := map[string]string{"a": "en", "b d": "fr", "ああ": "ja"}

	var wg sync.WaitGroup
	for range 8 {
		for text, want := range texts {
			wg.Add(1)
			go func() {
				defer wg.Done()
				d := table.NewDetector()
				d.Append(text)
				lang, err := d.Detect()
				assert.NoError(t, err)
				assert.Equal(t, want, lang)
			}()
		}
	}
	wg.Wait()
}

func TestDetectorLanguages(t *testing.T) {
	d := newTestTable(t).NewDetector()
	assert.Equal(t, []string{"en", "fr", "ja"}, d.Languages())
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "en:0.5", Result{Language: "en", Probability: 0.5}.String())
}
