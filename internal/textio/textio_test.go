package textio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAll(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{name: "plain utf-8", input: []byte(`{"a": "é"}`), want: `{"a": "é"}`},
		{name: "utf-8 bom", input: append([]byte{0xEF, 0xBB, 0xBF}, `{"a":1}`...), want: `{"a":1}`},
		{name: "utf-16le bom", input: []byte{0xFF, 0xFE, '[', 0, '1', 0, ']', 0}, want: `[1]`},
		{name: "utf-16be bom", input: []byte{0xFE, 0xFF, 0, '[', 0, '2', 0, ']'}, want: `[2]`},
		{name: "invalid utf-8", input: []byte{'"', 0xFF, '"'}, want: "\"�\""},
		{name: "empty", input: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadAll(strings.NewReader(string(tt.input)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	require.NoError(t, os.WriteFile(path, []byte("\xEF\xBB\xBF{'a': 1}"), 0o600))

	got, err := ReadFile(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "{'a': 1}", got)

	got, err = ReadFile(StdinName, strings.NewReader("[1]"))
	require.NoError(t, err)
	assert.Equal(t, "[1]", got)

	got, err = ReadFile("", strings.NewReader("[2]"))
	require.NoError(t, err)
	assert.Equal(t, "[2]", got)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.json"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
