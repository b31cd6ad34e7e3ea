package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		score int
		body  string
	}{
		{
			name:  "plain object",
			raw:   `{"score": 8, "report_markdown": "## Summary\nSolid."}`,
			score: 8,
			body:  "## Summary\nSolid.",
		},
		{
			name:  "fenced",
			raw:   "```json\n{\"score\": 6, \"report_markdown\": \"ok\"}\n```",
			score: 6,
			body:  "ok",
		},
		{
			name:  "prose around object",
			raw:   "Here is the evaluation:\n{\"score\": 7, \"report_markdown\": \"fine\"}\nLet me know if you need more.",
			score: 7,
			body:  "fine",
		},
		{
			name:  "braces inside strings",
			raw:   `Result: {"score": 5, "report_markdown": "used map{string} and \"}\" quotes"} trailing {`,
			score: 5,
			body:  `used map{string} and "}" quotes`,
		},
		{
			name:  "trailing comma and comment",
			raw:   "{\n  // evaluation\n  \"score\": 9,\n  \"report_markdown\": \"great\",\n}",
			score: 9,
			body:  "great",
		},
		{
			name:  "escaped single quote",
			raw:   `{"score": 4, "report_markdown": "candidate\'s answers were vague"}`,
			score: 4,
			body:  "candidate's answers were vague",
		},
		{
			name:  "fenced after prose",
			raw:   "Sure! ```json\n{\"score\":7,\"report_markdown\":\"ok\"}\n```",
			score: 7,
			body:  "ok",
		},
		{
			name:  "nested object before score",
			raw:   `{"a":{"b":1},"score":5}`,
			score: 5,
		},
		{
			name:  "escaped backslash before quote",
			raw:   `{"score": 2, "report_markdown": "path C:\\'x and it\'s fine"}`,
			score: 2,
			body:  `path C:\'x and it's fine`,
		},
		{
			name:  "string score",
			raw:   `{"score": " 7 ", "report": "legacy key"}`,
			score: 7,
			body:  "legacy key",
		},
		{
			name:  "fractional score rounds",
			raw:   `{"score": 6.6, "reportBody": "camel key"}`,
			score: 7,
			body:  "camel key",
		},
		{
			name:  "score without body",
			raw:   `{"score": 3}`,
			score: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Extract(tt.raw)
			require.NotNil(t, r)
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.body, r.Body)
		})
	}
}

func TestExtractNil(t *testing.T) {
	for name, raw := range map[string]string{
		"empty":          "",
		"prose only":     "The candidate did well overall.",
		"no score":       `{"report_markdown": "missing score"}`,
		"bad score":      `{"score": "high", "report_markdown": "x"}`,
		"unterminated":   `{"score": 8, "report_markdown": "cut off`,
		"truncated":      `{"score":7`,
		"array":          `[1, 2, 3]`,
		"only fences":    "```json\n```",
		"unbalanced end": "}}}",
	} {
		t.Run(name, func(t *testing.T) {
			assert.Nil(t, Extract(raw))
		})
	}
}

func TestExtractLargeInput(t *testing.T) {
	raw := strings.Repeat("{", 100000)
	assert.NotPanics(t, func() {
		assert.Nil(t, Extract(raw))
	})
}

func TestUnescapeQuotes(t *testing.T) {
	assert.Equal(t, `{"a": "it's"}`, unescapeQuotes(`{"a": "it\'s"}`))
	assert.Equal(t, `{"a": "C:\\'"}`, unescapeQuotes(`{"a": "C:\\'"}`), "escaped backslash kept")
	assert.Equal(t, `{"a": "\"q'"}`, unescapeQuotes(`{"a": "\"q\'"}`), "escaped double quote does not close the string")
	assert.Equal(t, `don\'t {"a": 1}`, unescapeQuotes(`don\'t {"a": 1}`), "outside strings untouched")
}

func TestBalancedObject(t *testing.T) {
	obj, ok := balancedObject(`noise {"a": {"b": "}"}} {"c": 1}`)
	require.True(t, ok)
	assert.Equal(t, `{"a": {"b": "}"}}`, obj)

	_, ok = balancedObject(`no braces`)
	assert.False(t, ok)
}
