package rules

import (
	"fmt"
	"strings"
)

// RemoveTrailingCommas drops commas whose next non-space byte is '}' or ']'.
// Runs of commas before a closer (",,]") are dropped together so a second pass
// finds nothing left to do. Commas inside strings are content.
func RemoveTrailingCommas(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s))

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			builder.WriteByte(c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '"' {
			inString = true
		} else if c == ',' && precedesCloser(s, i+1) {
			continue
		}
		builder.WriteByte(c)
	}

	return builder.String()
}

// precedesCloser skips whitespace and commas from s[from:] and reports whether
// a closing brace or bracket follows.
func precedesCloser(s string, from int) bool {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case ' ', '\t', '\r', '\n', ',':
			continue
		case '}', ']':
			return true
		default:
			return false
		}
	}
	return false
}

// EscapeControlChars escapes literal control characters (bytes below 0x20)
// that appear inside double-quoted strings: newline, carriage return, tab,
// backspace and form feed get their short escapes, everything else \u00XX.
// A backslash directly followed by a raw control character is treated as the
// start of that escape.
func EscapeControlChars(s string) string {
	if strings.IndexFunc(s, func(r rune) bool { return r < 0x20 }) < 0 {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s) + 16)

	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if !inString {
			if c == '"' {
				inString = true
			}
			builder.WriteByte(c)
			continue
		}

		switch {
		case escaped:
			escaped = false
			if c < 0x20 {
				builder.WriteString(controlEscape(c))
			} else {
				builder.WriteByte(c)
			}
		case c == '\\':
			escaped = true
			builder.WriteByte(c)
		case c == '"':
			inString = false
			builder.WriteByte(c)
		case c < 0x20:
			builder.WriteByte('\\')
			builder.WriteString(controlEscape(c))
		default:
			builder.WriteByte(c)
		}
	}

	return builder.String()
}

// controlEscape returns the escape body (without the leading backslash) for c.
func controlEscape(c byte) string {
	switch c {
	case '\n':
		return "n"
	case '\r':
		return "r"
	case '\t':
		return "t"
	case '\b':
		return "b"
	case '\f':
		return "f"
	}
	return fmt.Sprintf("u%04x", c)
}

// JoinConcatenated wraps two or more complete top-level objects or arrays that
// follow each other (separated only by whitespace or commas) into one array.
// Anything else, including a single value or an incomplete trailing value, is
// returned unchanged.
func JoinConcatenated(s string) string {
	values := splitTopLevel(strings.TrimSpace(s))
	if len(values) < 2 {
		return s
	}
	return "[" + strings.Join(values, ",") + "]"
}

// splitTopLevel returns the top-level values of s, or nil when s holds
// anything besides complete objects/arrays and separators.
func splitTopLevel(s string) []string {
	var values []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth == 0 {
				return nil
			}
			inString = true
		case '{', '[':
			if depth == 0 {
				start = i
			}
			depth++
		case '}', ']':
			if depth == 0 {
				return nil
			}
			depth--
			if depth == 0 {
				values = append(values, s[start:i+1])
			}
		case ' ', '\t', '\r', '\n', ',':
			// separators at depth 0, content otherwise
		default:
			if depth == 0 {
				return nil
			}
		}
	}

	if depth != 0 || inString {
		return nil
	}
	return values
}
