package preprocess

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/leofalp/jsonmend/core/structural"
)

// markdownParser is safe for concurrent use once constructed.
var markdownParser = goldmark.DefaultParser()

// Extract returns the most plausible JSON substring of text.
//
// It first strips a fenced code block (see [StripFence]). Text that is then
// strictly valid JSON, scalars included, is returned as is. Otherwise it looks
// for a balanced {...} or [...] span (see [BalancedSpan]). When no balanced
// span exists the trimmed, fence-stripped text is returned unchanged so that
// the structural parser can fail explicitly on it.
//
// Extract is pure and safe for concurrent use.
func Extract(input string) string {
	candidate := StripFence(input)
	if structural.Valid(candidate) {
		return candidate
	}
	if span, ok := BalancedSpan(candidate); ok {
		return span
	}
	return strings.TrimSpace(candidate)
}

// StripFence returns the body of the first fenced markdown code block in input
// whose body contains an opening brace or bracket. Input that already starts
// with '{' or '[' is returned trimmed and untouched, so backticks inside JSON
// string values never trigger stripping. An unterminated fence runs to the end
// of input, which keeps truncated model output recoverable.
func StripFence(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" || trimmed[0] == '{' || trimmed[0] == '[' || !strings.Contains(trimmed, "```") {
		return trimmed
	}

	source := []byte(trimmed)
	document := markdownParser.Parse(text.NewReader(source))

	body, found := "", false
	_ = ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		block, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var builder strings.Builder
		lines := block.Lines()
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			builder.Write(segment.Value(source))
		}

		content := builder.String()
		if !HasJSONStart(content) {
			return ast.WalkContinue, nil
		}

		body, found = content, true
		return ast.WalkStop, nil
	})

	if !found {
		return trimmed
	}
	return strings.TrimSpace(body)
}

// BalancedSpan returns the span from the first '{' or '[' in input to its
// matching closer. Closers are matched with a stack, ignoring anything inside
// double- or single-quoted string literals (backslash escapes honoured).
//
// The span is returned whether or not it is valid JSON; later spans are never
// considered, so a broken payload is repaired rather than replaced by prose
// such as "(see [1])". An opener that never closes, or closes with the wrong
// bracket, yields ok == false.
func BalancedSpan(input string) (string, bool) {
	start := strings.IndexAny(input, "{[")
	if start < 0 {
		return "", false
	}
	return scanBalanced(input, start)
}

// scanBalanced returns input[start:end] where end closes the opener at start.
func scanBalanced(input string, start int) (string, bool) {
	stack := make([]byte, 0, 8)
	var quote byte
	escaped := false

	for i := start; i < len(input); i++ {
		c := input[i]

		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == quote:
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			quote = c
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) == 0 {
				return "", false
			}
			top := stack[len(stack)-1]
			if (top == '{' && c != '}') || (top == '[' && c != ']') {
				return "", false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return input[start : i+1], true
			}
		}
	}

	return "", false
}

// HasJSONStart reports whether s contains an opening brace or bracket.
func HasJSONStart(s string) bool {
	return strings.ContainsAny(s, "{[")
}

// LooksLikeHTML reports whether input appears to be an HTML document or
// fragment rather than JSON or markdown.
func LooksLikeHTML(input string) bool {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "<") {
		return false
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range []string{"<!doctype", "<html", "<body", "<pre", "<code", "<div", "<p>"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// HTMLToMarkdown converts an HTML payload to markdown so that <pre><code>
// blocks become fenced code blocks and character entities are decoded.
func HTMLToMarkdown(input string) (string, error) {
	return htmltomarkdown.ConvertString(input)
}
