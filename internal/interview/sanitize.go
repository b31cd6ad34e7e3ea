package interview

import (
	"regexp"
	"strings"
)

// EndToken is the marker the model emits to close the interview.
const EndToken = "[END_INTERVIEW]"

var (
	spanPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\([^)]*\)`),
		regexp.MustCompile(`\[[^\]]*\]`),
		regexp.MustCompile(`\{[^}]*\}`),
		regexp.MustCompile(`<[^>]*>`),
		regexp.MustCompile(`\*[^*]*\*`),
	}
	strayMarks = regexp.MustCompile(`[\[\]\(\)\{\}\*<>]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Sanitize strips stage directions from model output so only speakable text
// remains: (asides), [directions], {notes}, <tags> and *actions* are removed
// with their content, stray marks are dropped and whitespace is collapsed.
// EndToken always survives, even when it sits inside a removed span.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	parts := strings.Split(text, EndToken)
	for i, p := range parts {
		for _, re := range spanPatterns {
			p = re.ReplaceAllString(p, "")
		}
		parts[i] = strayMarks.ReplaceAllString(p, "")
	}

	out := strings.Join(parts, EndToken)
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// OpenSpan reports whether text ends inside a stage direction: an opening
// mark with no close after it, or an odd number of asterisks. Sentence marks
// inside such a span must not end a spoken segment.
func OpenSpan(text string) bool {
	text = strings.ReplaceAll(text, EndToken, "")
	for _, p := range [...]string{"()", "[]", "{}", "<>"} {
		i := strings.LastIndexByte(text, p[0])
		if i >= 0 && strings.IndexByte(text[i+1:], p[1]) < 0 {
			return true
		}
	}
	return strings.Count(text, "*")%2 == 1
}

// HasEndToken reports whether text carries the end-of-interview marker.
func HasEndToken(text string) bool {
	return strings.Contains(text, EndToken)
}

// Speakable returns the sanitized text with the end marker removed, the form
// handed to speech synthesis.
func Speakable(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(strings.ReplaceAll(Sanitize(text), EndToken, ""), " "))
}
