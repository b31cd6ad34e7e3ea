// Package report turns a saved interview transcript into a scored report.
package report

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
)

// Result is the structured part of a model-written report.
type Result struct {
	Score int
	Body  string
}

var bodyKeys = []string{"report_markdown", "reportBody", "report"}

// Extract recovers the report object from free-form model output. It accepts
// fenced output, prose around the object, trailing commas, comments and
// escaped single quotes. It returns nil when no object with a score is found.
func Extract(raw string) *Result {
	text := unescapeQuotes(stripFences(raw))
	if text == "" {
		return nil
	}
	if r := decode(text); r != nil {
		return r
	}
	obj, ok := balancedObject(text)
	if !ok {
		return nil
	}
	return decode(obj)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// unescapeQuotes drops the backslash from \' inside string literals, which
// JSON rejects but models emit. Escaped backslashes are left alone.
func unescapeQuotes(s string) string {
	if !strings.Contains(s, `\'`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !inString {
			if c == '"' {
				inString = true
			}
			b.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inString = false
		case '\\':
			if i+1 < len(s) {
				i++
				if s[i] != '\'' {
					b.WriteByte(c)
				}
				c = s[i]
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// balancedObject returns the first complete {...} in s, tracking string
// literals so braces inside them do not count.
func balancedObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
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
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

func decode(text string) *Result {
	v, err := hujson.Parse([]byte(text))
	if err != nil {
		return nil
	}
	v.Standardize()

	var fields map[string]any
	if err := json.Unmarshal(v.Pack(), &fields); err != nil {
		return nil
	}

	score, ok := scoreOf(fields["score"])
	if !ok {
		return nil
	}
	r := &Result{Score: score}
	for _, k := range bodyKeys {
		if body, ok := fields[k].(string); ok && body != "" {
			r.Body = body
			break
		}
	}
	return r
}

func scoreOf(v any) (int, bool) {
	switch s := v.(type) {
	case float64:
		return int(math.Round(s)), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return int(math.Round(f)), true
	}
	return 0, false
}
