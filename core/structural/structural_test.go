package structural

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_ValidDocuments(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Value
	}{
		{
			name:  "object",
			input: `{"a": 1, "b": [true, null, "x"]}`,
			want:  map[string]any{"a": json.Number("1"), "b": []any{true, nil, "x"}},
		},
		{
			name:  "array with surrounding whitespace",
			input: "\n  [1, 2]  \n",
			want:  []any{json.Number("1"), json.Number("2")},
		},
		{
			name:  "bare scalar",
			input: `"hello"`,
			want:  "hello",
		},
		{
			name:  "large integer keeps precision",
			input: `{"n": 12345678901234567890}`,
			want:  map[string]any{"n": json.Number("12345678901234567890")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Failures(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantKind   ErrorKind
		wantOffset int
		wantLine   int
		wantColumn int
	}{
		{name: "empty", input: "", wantKind: KindEmpty, wantOffset: 0, wantLine: 1, wantColumn: 1},
		{name: "whitespace only", input: "  \n\t", wantKind: KindEmpty, wantOffset: 0, wantLine: 1, wantColumn: 1},
		{name: "trailing comma", input: `{"a":1,}`, wantKind: KindUnexpectedToken, wantOffset: 7, wantLine: 1, wantColumn: 8},
		{name: "truncated", input: `{"a": 1`, wantKind: KindTruncated, wantOffset: 7, wantLine: 1, wantColumn: 8},
		{name: "trailing data", input: `{"a":1} x`, wantKind: KindUnexpectedToken, wantOffset: 8, wantLine: 1, wantColumn: 9},
		{name: "single quotes", input: `{'a': 1}`, wantKind: KindUnexpectedToken, wantOffset: 1, wantLine: 1, wantColumn: 2},
		{name: "multi-line position", input: "{\n  \"a\": 1,\n}", wantKind: KindUnexpectedToken, wantOffset: 12, wantLine: 3, wantColumn: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)

			var parseErr *ParseError
			require.True(t, errors.As(err, &parseErr), "error should be a *ParseError, got %T", err)
			assert.Equal(t, tt.wantKind, parseErr.Kind)
			assert.Equal(t, tt.wantOffset, parseErr.Offset)
			assert.Equal(t, tt.wantLine, parseErr.Line)
			assert.Equal(t, tt.wantColumn, parseErr.Column)
			assert.NotEmpty(t, parseErr.Message)
		})
	}
}

func TestParseError_ErrorIncludesPosition(t *testing.T) {
	_, err := Parse(`{"a":1,}`)
	require.Error(t, err)
	assert.Equal(t,
		`unexpected-token at line 1, column 8 (offset 7): invalid character '}' looking for beginning of object key string`,
		err.Error())
}

func TestParseError_CloneIsIndependent(t *testing.T) {
	original := &ParseError{Kind: KindSyntax, Offset: 3, Line: 1, Column: 4, Message: "boom"}
	clone := original.Clone()
	clone.Message = "changed"

	assert.Equal(t, "boom", original.Message)
	assert.Nil(t, (*ParseError)(nil).Clone())
}

func TestPosition_CountsRunes(t *testing.T) {
	text := "{\"é\": ,}"
	// 'é' is two bytes; the comma sits at byte 7 but rune column 7.
	line, column := Position(text, 7)
	assert.Equal(t, 1, line)
	assert.Equal(t, 7, column)

	line, column = Position(text, 1000)
	assert.Equal(t, 1, line)
	assert.Equal(t, 9, column)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(`{"a":1}`))
	assert.False(t, Valid(`{"a":1,}`))
	assert.False(t, Valid("   "))
}
