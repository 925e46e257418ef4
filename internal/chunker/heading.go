package chunker

import (
	"regexp"
	"strings"
)

// HeadingClassifier reports whether a single line of text is a structural
// heading. Implementations must be pure; the default is heuristic and can
// be swapped out without touching the window packer.
type HeadingClassifier func(line string) bool

// Markdown headings, loud uppercase lines, or numbered headings.
var headingRe = regexp.MustCompile(`^(#{1,6}\s+.+|[A-Z][A-Z0-9 \-_/]{4,}|[0-9]+\.[\s\S]{0,80})$`)

// IsHeading is the default HeadingClassifier.
func IsHeading(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len([]rune(trimmed)) < 3 {
		return false
	}
	return headingRe.MatchString(trimmed)
}
