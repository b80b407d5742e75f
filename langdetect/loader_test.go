package langdetect

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfiles(t *testing.T) {
	profiles, err := LoadProfiles(context.Background(), os.DirFS("testdata/profiles"), nil)
	require.NoError(t, err)
	require.Len(t, profiles, 3)

	assert.Equal(t, "en", profiles[0].Name)
	assert.Equal(t, "fr", profiles[1].Name)
	assert.Equal(t, "ja", profiles[2].Name)
	assert.Equal(t, uint64(3), profiles[2].Freq["あ"])
	assert.Equal(t, [MaxNGramLength]uint64{9, 0, 0}, profiles[0].NWords)
}

func TestLoadProfilesSubset(t *testing.T) {
	fsys := os.DirFS("testdata/profiles")

	profiles, err := LoadProfiles(context.Background(), fsys, []string{"ja", "en"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "en", profiles[0].Name)
	assert.Equal(t, "ja", profiles[1].Name)

	_, err = LoadProfiles(context.Background(), fsys, []string{"en", "de"})
	assert.ErrorContains(t, err, "de")
}

func TestLoadProfilesInvalid(t *testing.T) {
	cases := map[string]string{
		"syntax":         `{"name":`,
		"negative count": `{"name":"en","n_words":[1,0,0],"freq":{"a":-1}}`,
		"negative total": `{"name":"en","n_words":[-1,0,0],"freq":{"a":1}}`,
		"short n_words":  `{"name":"en","n_words":[1],"freq":{"a":1}}`,
		"no name":        `{"n_words":[1,0,0],"freq":{"a":1}}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			fsys := fstest.MapFS{"en.json": {Data: []byte(doc)}}
			_, err := LoadProfiles(context.Background(), fsys, nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadProfilesSkipsOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json":     {Data: []byte(`{"name":"en","n_words":[1,0,0],"freq":{"a":1}}`)},
		"notes.txt":   {Data: []byte("not a profile")},
		".hidden":     {Data: []byte("not a profile")},
		"sub/fr.json": {Data: []byte(`{"name":"fr","n_words":[1,0,0],"freq":{"b":1}}`)},
	}
	profiles, err := LoadProfiles(context.Background(), fsys, nil)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "en", profiles[0].Name)
}

func TestLoadProfilesCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadProfiles(ctx, os.DirFS("testdata/profiles"), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadTable(t *testing.T) {
	table, err := LoadTable(context.Background(), os.DirFS("testdata/profiles"), nil)
	require.NoError(t, err)

	expected := newTestTable(t)
	assert.Equal(t, expected.Languages(), table.Languages())
	assert.Equal(t, expected.probs, table.probs)
}

func TestLoadTableDuplicateLanguage(t *testing.T) {
	doc := `{"name":"en","n_words":[1,0,0],"freq":{"a":1}}`
	fsys := fstest.MapFS{
		"en.json": {Data: []byte(doc)},
		"en":      {Data: []byte(doc)},
	}
	_, err := LoadTable(context.Background(), fsys, nil)
	assert.ErrorIs(t, err, ErrDuplicateLanguage)
}

func TestWriteProfile(t *testing.T) {
	p := NewProfile("ja")
	p.AddText(DefaultNormalizer(), "あい")

	var buf bytes.Buffer
	require.NoError(t, WriteProfile(&buf, p))
	assert.True(t, strings.HasPrefix(buf.String(), `{"name":"ja"`))

	read, err := ReadProfile(&buf)
	require.NoError(t, err)
	assert.Equal(t, p, read)
}
