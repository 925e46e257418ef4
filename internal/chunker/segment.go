package chunker

import "strings"

// segments divides document text into heading-delimited regions. A heading
// line closes the current buffer (when it holds content) and opens the next
// one, so a heading at the very start never produces an empty segment. With
// respectHeadings disabled the whole text is a single segment.
func segments(text string, respectHeadings bool, isHeading HeadingClassifier) []string {
	if !respectHeadings {
		return []string{text}
	}
	lines := strings.Split(text, "\n")
	var segs []string
	var buf []string
	for _, line := range lines {
		if isHeading(line) && len(buf) > 0 {
			segs = append(segs, strings.TrimSpace(strings.Join(buf, "\n")))
			buf = []string{line}
			continue
		}
		buf = append(buf, line)
	}
	if len(buf) > 0 {
		segs = append(segs, strings.TrimSpace(strings.Join(buf, "\n")))
	}
	return segs
}
