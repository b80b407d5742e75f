package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4O4-Not-F0und/gura-langid/langdetect"
)

func runCmd(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestDetectCmd(t *testing.T) {
	out, err := runCmd(t, "", "detect", "--profiles", testProfilesDir, "--seed", "1", "b", "d")
	require.NoError(t, err)
	assert.Equal(t, "fr\n", out)

	out, err = runCmd(t, "ああああa", "detect", "--profiles", testProfilesDir, "--seed", "1")
	require.NoError(t, err)
	assert.Equal(t, "ja\n", out)
}

func TestDetectCmdAll(t *testing.T) {
	out, err := runCmd(t, "", "detect", "--profiles", testProfilesDir, "--seed", "1", "--all", "a")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "en"))
}

func TestDetectCmdErrors(t *testing.T) {
	_, err := runCmd(t, "", "detect", "--profiles", testProfilesDir, "123")
	assert.ErrorIs(t, err, langdetect.ErrNoText)

	_, err = runCmd(t, "", "detect", "--profiles", t.TempDir(), "a")
	assert.ErrorIs(t, err, langdetect.ErrNoProfilesLoaded)
}

func TestCompileCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.msgpack")
	_, err := runCmd(t, "", "compile", "--profiles", testProfilesDir, "--langs", "en,fr", "--out", path)
	require.NoError(t, err)

	out, err := runCmd(t, "", "detect", "--table", path, "--seed", "1", "--all", "b d")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "fr"))
}

func TestProfileCmd(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.txt")
	require.NoError(t, os.WriteFile(corpus, []byte("the cat\nthe hat\n"), 0o600))

	out := filepath.Join(dir, "en.json")
	_, err := runCmd(t, "", "profile", "--lang", "en", "--keep-rare", "--out", out, corpus)
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	p, err := langdetect.ReadProfile(f)
	require.NoError(t, err)

	assert.Equal(t, "en", p.Name)
	assert.Equal(t, uint64(2), p.Freq["the"])
	assert.Equal(t, uint64(4), p.Freq["t"])
	assert.Equal(t, uint64(12), p.NWords[0])

	_, err = runCmd(t, "", "profile", corpus)
	assert.Error(t, err)
}

func TestProfileCmdStdout(t *testing.T) {
	out, err := runCmd(t, "aaa aaa", "profile", "--lang", "xx")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `{"name":"xx"`))
}
