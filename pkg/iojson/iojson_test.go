package iojson

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteLine(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLine(&buf, map[string]any{"id": "1", "done": true}))
	require.NoError(t, WriteLine(&buf, []string{"a"}))

	assert.Equal(t, "{\"done\":true,\"id\":\"1\"}\n[\"a\"]\n", buf.String())

	err := WriteLine(&buf, map[string]any{"bad": make(chan int)})
	require.Error(t, err)
}

func TestFileReader_AcceptsComments(t *testing.T) {
	fr := &FileReader[[]string]{Stdin: strings.NewReader(`[
		// people
		"Alice",
		"Bob", /* trailing comma next */
	]`)}

	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, got)
}

func TestFileReader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1}`), 0o644))

	fr := &FileReader[map[string]int]{fileFlagValue: path}
	got, err := fr.Read()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"a": 1}, got)

	fr = &FileReader[map[string]int]{fileFlagValue: filepath.Join(t.TempDir(), "missing.json")}
	_, err = fr.Read()
	require.ErrorContains(t, err, "open file")
}

func TestFileReader_Invalid(t *testing.T) {
	fr := &FileReader[[]string]{Stdin: strings.NewReader(`[1,`)}
	_, err := fr.ReadBytes()
	require.ErrorContains(t, err, "decode JSON")
}
