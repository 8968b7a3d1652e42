package structural

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
)

// Value is a parsed JSON document: map[string]any, []any, string, json.Number,
// bool or nil.
type Value = any

// ErrorKind classifies a structural parse failure.
type ErrorKind string

const (
	// KindSyntax is any strict-grammar violation not covered by a narrower kind.
	KindSyntax ErrorKind = "syntax"
	// KindUnexpectedToken is reported when the scanner meets a byte that cannot
	// appear at that position.
	KindUnexpectedToken ErrorKind = "unexpected-token"
	// KindTruncated is reported when the input ends before the top-level value
	// is complete.
	KindTruncated ErrorKind = "truncated-input"
	// KindEmpty is reported for empty or whitespace-only input.
	KindEmpty ErrorKind = "empty-input"
)

// ParseError describes why a candidate failed strict parsing.
// Offset is the 0-based byte index of the offending byte (the input length for
// truncated input). Line and Column are 1-based; Column counts runes.
type ParseError struct {
	Kind    ErrorKind `json:"kind"`
	Offset  int       `json:"offset"`
	Line    int       `json:"line"`
	Column  int       `json:"column"`
	Message string    `json:"message"`
}

// Error formats the failure as "<kind> at line L, column C (offset O): message".
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s at line %d, column %d (offset %d): %s", e.Kind, e.Line, e.Column, e.Offset, e.Message)
}

// Clone returns an independent copy of e, or nil when e is nil.
func (e *ParseError) Clone() *ParseError {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

// Parse strictly parses text as a single JSON value. Numbers are decoded as
// json.Number so integers beyond float64 precision survive. On failure the
// returned error is always a *ParseError.
func Parse(text string) (Value, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &ParseError{Kind: KindEmpty, Offset: 0, Line: 1, Column: 1, Message: "input is empty"}
	}

	data := []byte(text)

	// Unmarshal into RawMessage runs the full-document scanner first, which
	// yields byte offsets for every syntax error including trailing data.
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, newParseError(text, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var value Value
	if err := decoder.Decode(&value); err != nil {
		return nil, newParseError(text, err)
	}

	return value, nil
}

// Valid reports whether text parses strictly.
func Valid(text string) bool {
	return strings.TrimSpace(text) != "" && json.Valid([]byte(text))
}

// newParseError converts an encoding/json error into a positioned ParseError.
func newParseError(text string, err error) *ParseError {
	var syntaxErr *json.SyntaxError
	if !errors.As(err, &syntaxErr) {
		line, column := Position(text, len(text))
		return &ParseError{Kind: KindSyntax, Offset: len(text), Line: line, Column: column, Message: err.Error()}
	}

	offset, convErr := safecast.Conv[int](syntaxErr.Offset)
	if convErr != nil {
		offset = len(text)
	}

	kind := KindSyntax
	message := syntaxErr.Error()
	switch {
	case message == "unexpected end of JSON input":
		kind = KindTruncated
		offset = len(text)
	case strings.HasPrefix(message, "invalid character"):
		kind = KindUnexpectedToken
		// The scanner counts the offending byte before reporting it.
		offset--
	}

	offset = max(0, min(offset, len(text)))
	line, column := Position(text, offset)

	return &ParseError{Kind: kind, Offset: offset, Line: line, Column: column, Message: message}
}

// Position converts a byte offset into a 1-based line and rune column.
// Offsets past the end of text are clamped.
func Position(text string, offset int) (line, column int) {
	offset = max(0, min(offset, len(text)))
	prefix := text[:offset]

	line = strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	column = utf8.RuneCountInString(prefix[lineStart:]) + 1

	return line, column
}
