package chunker

import (
	"strings"
	"unicode/utf8"
)

// packWindows greedily packs sentences into chunks of at most chunkSize
// characters (counting one separator per sentence), carrying roughly
// overlap characters of trailing sentences into the next chunk.
//
// The pending sentences live in an explicit work queue: a forced cut of an
// oversized sentence pushes the remainder back onto the front, and the
// overlap step returns the given-back tail sentences the same way. The
// cursor always consumes at least one sentence per round, so the loop
// terminates for any finite input.
func packWindows(sentences []string, chunkSize, overlap, minChunkSize int) []string {
	if len(sentences) == 0 {
		return nil
	}
	queue := make([]string, len(sentences))
	copy(queue, sentences)

	var chunks []string
	for len(queue) > 0 {
		var cur []string
		total := 0
		for len(queue) > 0 && total+utf8.RuneCountInString(queue[0]) <= chunkSize {
			cur = append(cur, queue[0])
			total += utf8.RuneCountInString(queue[0]) + 1
			queue = queue[1:]
		}

		if len(cur) == 0 {
			// Single sentence longer than chunkSize: force-cut at the
			// size boundary and requeue the remainder.
			runes := []rune(queue[0])
			queue = queue[1:]
			cur = []string{string(runes[:chunkSize])}
			if rest := string(runes[chunkSize:]); rest != "" {
				queue = append([]string{rest}, queue...)
			}
		}

		text := strings.TrimSpace(strings.Join(cur, " "))
		if utf8.RuneCountInString(text) >= minChunkSize || len(chunks) == 0 {
			chunks = append(chunks, text)
		}

		if len(queue) == 0 {
			break
		}

		// Walk backward over the group until the overlap budget is met;
		// the walked sentences seed the next chunk. At least one sentence
		// of the group stays consumed.
		backChars, backCnt := 0, 0
		for k := len(cur) - 1; k >= 0; k-- {
			if backChars >= overlap {
				break
			}
			backChars += utf8.RuneCountInString(cur[k]) + 1
			backCnt++
		}
		if backCnt > len(cur)-1 {
			backCnt = len(cur) - 1
		}
		if backCnt > 0 {
			queue = append(append([]string{}, cur[len(cur)-backCnt:]...), queue...)
		}
	}

	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out
}
