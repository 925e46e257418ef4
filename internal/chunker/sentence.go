package chunker

import (
	"strings"
	"unicode"
)

// SentenceSplitter turns a block of text into an ordered sequence of
// sentence-like units. The default is a heuristic split, not a linguistic
// parser; a real tokenizer can be substituted through the chunker options.
type SentenceSplitter func(text string) []string

// SplitSentences splits on whitespace that immediately follows a
// sentence-terminal mark, keeping the terminal attached to the preceding
// sentence. It under-splits abbreviations and over-splits some decimals,
// which is acceptable for short catalog-style documents.
func SplitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var out []string
	start := 0
	i := 0
	for i < len(runes) {
		if isTerminal(runes[i]) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			out = append(out, string(runes[start:i+1]))
			i += 2
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	return out
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
