package preprocess

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain object",
			input: `{"a":1}`,
			want:  `{"a":1}`,
		},
		{
			name:  "json fence",
			input: "```json\n{\"a\":1}\n```",
			want:  `{"a":1}`,
		},
		{
			name:  "bare fence",
			input: "```\n[1, 2, 3]\n```",
			want:  `[1, 2, 3]`,
		},
		{
			name:  "prose around fence",
			input: "Here is the data you asked for:\n\n```json\n{\"name\": \"Ada\"}\n```\n\nLet me know if you need more.",
			want:  `{"name": "Ada"}`,
		},
		{
			name:  "prose without fence",
			input: `Sure! The result is {"ok": true} as requested.`,
			want:  `{"ok": true}`,
		},
		{
			name:  "braces inside strings do not confuse matching",
			input: `Result: {"text": "a } tricky { value", "n": [1]} done`,
			want:  `{"text": "a } tricky { value", "n": [1]}`,
		},
		{
			name:  "escaped quote inside string",
			input: `x {"q": "say \"}\" now"} y`,
			want:  `{"q": "say \"}\" now"}`,
		},
		{
			name:  "single-quoted strings are respected",
			input: `out: {'a': '}'} end`,
			want:  `{'a': '}'}`,
		},
		{
			name:  "unterminated fence keeps truncated body",
			input: "```json\n{\"a\": [1, 2",
			want:  `{"a": [1, 2`,
		},
		{
			name:  "truncated payload is returned whole, not an inner fragment",
			input: `{"outer": {"inner": 1}, "tail": `,
			want:  `{"outer": {"inner": 1}, "tail":`,
		},
		{
			name:  "no JSON at all returns trimmed text",
			input: "   nothing to see here  ",
			want:  "nothing to see here",
		},
		{
			name:  "backticks inside a JSON value are left alone",
			input: "{\"code\": \"```go\\nfmt.Println()\\n```\"}",
			want:  "{\"code\": \"```go\\nfmt.Println()\\n```\"}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Extract(tt.input))
		})
	}
}

func TestExtract_IsIdempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"a\":1}\n```",
		`prefix {"a": [1, {"b": 2}]} suffix`,
		`{"a": 1`,
	}
	for _, input := range inputs {
		once := Extract(input)
		assert.Equal(t, once, Extract(once), "input %q", input)
	}
}

func TestBalancedSpan_KeepsFirstSpan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "broken payload before prose aside", input: `Here you go: {'a': 1, 'b': 2,} (see [1])`, want: `{'a': 1, 'b': 2,}`},
		{name: "invalid draft before valid span", input: `draft {a: 1} final {"a": 1}`, want: `{a: 1}`},
		{name: "single span", input: `only {a: 1} here`, want: `{a: 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := BalancedSpan(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, span)
		})
	}
}

func TestExtract_ValidScalarsPassThrough(t *testing.T) {
	for _, input := range []string{`"a {b} c"`, `"[not an array]"`, `42`, `true`, `null`} {
		assert.Equal(t, input, Extract("  "+input+"\n"), "input %q", input)
	}
}

func TestBalancedSpan_Mismatched(t *testing.T) {
	_, ok := BalancedSpan(`{"a": [1, 2}`)
	assert.False(t, ok)

	_, ok = BalancedSpan(`no json`)
	assert.False(t, ok)
}

func TestStripFence_SkipsFencesWithoutJSON(t *testing.T) {
	input := "```sh\necho hi\n```\n\n```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, StripFence(input))
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML(`<html><body><pre>{"a":1}</pre></body></html>`))
	assert.True(t, LooksLikeHTML(`  <pre><code>{}</code></pre>`))
	assert.False(t, LooksLikeHTML(`{"html": "<p>"}`))
	assert.False(t, LooksLikeHTML(`<not really html`))
}

func TestHTMLToMarkdown_ThenExtract(t *testing.T) {
	html := `<html><body><p>Result:</p><pre><code class="language-json">{&quot;a&quot;: 1}</code></pre></body></html>`

	markdown, err := HTMLToMarkdown(html)
	require.NoError(t, err)
	assert.True(t, strings.Contains(markdown, "```"), "expected a fenced block, got %q", markdown)
	assert.Equal(t, `{"a": 1}`, Extract(markdown))
}
