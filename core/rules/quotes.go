package rules

import (
	"strings"
)

// quoteState tracks which kind of string literal a scanner is inside.
type quoteState int

const (
	outsideString quoteState = iota
	inDoubleQuoted
	inSingleQuoted
	inSmartQuoted
)

func isSmartDouble(r rune) bool {
	switch r {
	case '“', '”', '„', '‟', '″':
		return true
	}
	return false
}

func isSmartSingle(r rune) bool {
	switch r {
	case '‘', '’', '‚', '‛', '′':
		return true
	}
	return false
}

func containsSmartQuote(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return isSmartDouble(r) || isSmartSingle(r) }) >= 0
}

// NormalizeSmartQuotes replaces typographic quotation marks with ASCII ones.
// Quotes inside an ASCII double-quoted string are content and stay as they
// are. A string opened by a typographic double quote closes on the next
// typographic or ASCII double quote.
func NormalizeSmartQuotes(s string) string {
	if !containsSmartQuote(s) {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s))

	state := outsideString
	escaped := false

	for _, r := range s {
		switch state {
		case outsideString:
			switch {
			case r == '"':
				state = inDoubleQuoted
				builder.WriteRune(r)
			case isSmartDouble(r):
				state = inSmartQuoted
				builder.WriteByte('"')
			case isSmartSingle(r):
				builder.WriteByte('\'')
			default:
				builder.WriteRune(r)
			}

		case inDoubleQuoted:
			builder.WriteRune(r)
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				state = outsideString
			}

		case inSmartQuoted:
			switch {
			case escaped:
				escaped = false
				builder.WriteRune(r)
			case r == '\\':
				escaped = true
				builder.WriteRune(r)
			case r == '"' || isSmartDouble(r):
				state = outsideString
				builder.WriteByte('"')
			default:
				builder.WriteRune(r)
			}
		}
	}

	return builder.String()
}

// ConvertSingleQuotes rewrites single-quoted keys and values as double-quoted
// strings. Double-quoted strings are copied verbatim, so apostrophes inside
// them are never touched. Inside a single-quoted string, \' becomes a plain
// apostrophe, a bare " is escaped, and a ' only closes the string when the next
// non-space byte is one of : , } ] or the end of input; any other ' is kept
// as an embedded apostrophe.
func ConvertSingleQuotes(s string) string {
	if !strings.Contains(s, "'") {
		return s
	}

	var builder strings.Builder
	builder.Grow(len(s) + 8)

	state := outsideString

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch state {
		case outsideString:
			switch c {
			case '"':
				state = inDoubleQuoted
				builder.WriteByte(c)
			case '\'':
				state = inSingleQuoted
				builder.WriteByte('"')
			default:
				builder.WriteByte(c)
			}

		case inDoubleQuoted:
			builder.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				builder.WriteByte(s[i])
			} else if c == '"' {
				state = outsideString
			}

		case inSingleQuoted:
			switch {
			case c == '\\' && i+1 < len(s):
				i++
				if s[i] == '\'' {
					builder.WriteByte('\'')
				} else {
					builder.WriteByte('\\')
					builder.WriteByte(s[i])
				}
			case c == '"':
				builder.WriteString(`\"`)
			case c == '\'':
				if closesSingleQuoted(s, i+1) {
					state = outsideString
					builder.WriteByte('"')
				} else {
					builder.WriteByte('\'')
				}
			default:
				builder.WriteByte(c)
			}
		}
	}

	return builder.String()
}

// closesSingleQuoted reports whether a quote followed by s[from:] ends a string.
func closesSingleQuoted(s string, from int) bool {
	for j := from; j < len(s); j++ {
		switch s[j] {
		case ' ', '\t', '\r', '\n':
			continue
		case ':', ',', '}', ']':
			return true
		default:
			return false
		}
	}
	return true
}
