package langdetect

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestTableSnapshot(t *testing.T) {
	table := newTestTable(t)

	var buf bytes.Buffer
	require.NoError(t, table.WriteSnapshot(&buf))

	restored, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Languages(), restored.Languages())
	assert.Equal(t, table.probs, restored.probs)

	d := restored.NewDetector(WithSeed(testSeed))
	d.Append("a")
	lang, err := d.Detect()
	require.NoError(t, err)
	assert.Equal(t, "en", lang)
}

func TestReadSnapshotRejectsInvalid(t *testing.T) {
	cases := map[string]tableSnapshot{
		"schema": {
			Schema:    snapshotSchemaVersion + 1,
			Languages: []string{"en"},
		},
		"no languages": {
			Schema: snapshotSchemaVersion,
		},
		"unsorted": {
			Schema:    snapshotSchemaVersion,
			Languages: []string{"fr", "en"},
		},
		"vector length": {
			Schema:    snapshotSchemaVersion,
			Languages: []string{"en", "fr"},
			NGrams:    map[string][]float64{"a": {0.5}},
		},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			data, err := msgpack.Marshal(&s)
			require.NoError(t, err)

			_, err = ReadSnapshot(bytes.NewReader(data))
			assert.Error(t, err)
		})
	}

	_, err := ReadSnapshot(bytes.NewReader([]byte("not msgpack")))
	assert.Error(t, err)
}
