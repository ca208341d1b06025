package summarizer

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Extractive keeps the leading sentences of the text
type Extractive struct {
	maxSentences int
	maxRunes     int
}

// NewExtractive keeps at most maxSentences sentences and maxRunes runes
func NewExtractive(maxSentences, maxRunes int) *Extractive {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	if maxRunes <= 0 {
		maxRunes = 600
	}
	return &Extractive{maxSentences: maxSentences, maxRunes: maxRunes}
}

// Summarize never fails; empty input gives an empty summary
func (e *Extractive) Summarize(_ context.Context, text string) (string, error) {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return "", nil
	}

	sentences := splitSentences(text)
	if len(sentences) > e.maxSentences {
		sentences = sentences[:e.maxSentences]
	}
	summary := strings.Join(sentences, " ")

	if utf8.RuneCountInString(summary) > e.maxRunes {
		runes := []rune(summary)[:e.maxRunes]
		cut := strings.LastIndexFunc(string(runes), unicode.IsSpace)
		if cut > 0 {
			runes = []rune(string(runes)[:cut])
		}
		summary = strings.TrimRightFunc(string(runes), func(r rune) bool {
			return unicode.IsSpace(r) || unicode.IsPunct(r)
		}) + "…"
	}
	return summary, nil
}

// splitSentences splits after . ! ? when followed by a space
func splitSentences(text string) []string {
	var out []string
	start := 0
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + utf8.RuneLen(r)
		if next < len(text) && text[next] != ' ' {
			continue
		}
		if s := strings.TrimSpace(text[start:next]); s != "" {
			out = append(out, s)
		}
		start = next
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}
