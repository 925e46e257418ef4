package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

// sentenceOfLen builds a sentence of exactly n characters ending in a period.
func sentenceOfLen(n int) string {
	return strings.Repeat("a", n-1) + "."
}

func TestPackWindowsEmptyInput(t *testing.T) {
	require.Empty(t, packWindows(nil, 800, 150, 200))
	require.Empty(t, packWindows([]string{}, 800, 150, 200))
}

func TestPackWindowsTenSentences(t *testing.T) {
	// Ten ~100-char sentences with the default settings pack into two
	// chunks of seven and five sentences (two carried over as overlap).
	sentences := make([]string, 10)
	for i := range sentences {
		sentences[i] = sentenceOfLen(100)
	}
	chunks := packWindows(sentences, 800, 150, 200)
	require.Len(t, chunks, 2)
	require.Equal(t, 7*100+6, utf8.RuneCountInString(chunks[0]))
	require.Equal(t, 5*100+4, utf8.RuneCountInString(chunks[1]))
	// The two trailing sentences of the first chunk lead the second.
	require.True(t, strings.HasPrefix(chunks[1], sentences[5]+" "+sentences[6]))
}

func TestPackWindowsForcedCut(t *testing.T) {
	long := strings.Repeat("x", 2000)
	chunks := packWindows([]string{long}, 800, 150, 200)
	require.Len(t, chunks, 3)
	require.Equal(t, 800, utf8.RuneCountInString(chunks[0]))
	require.Equal(t, 800, utf8.RuneCountInString(chunks[1]))
	require.Equal(t, 400, utf8.RuneCountInString(chunks[2]))
	require.Equal(t, long, strings.Join(chunks, ""))
}

func TestPackWindowsForcedCutMultibyte(t *testing.T) {
	// Cut positions count characters, not bytes.
	long := strings.Repeat("é", 1000)
	chunks := packWindows([]string{long}, 800, 0, 0)
	require.Len(t, chunks, 2)
	require.Equal(t, 800, utf8.RuneCountInString(chunks[0]))
	require.Equal(t, 200, utf8.RuneCountInString(chunks[1]))
}

func TestPackWindowsFirstChunkAlwaysKept(t *testing.T) {
	chunks := packWindows([]string{"Hi."}, 800, 150, 200)
	require.Equal(t, []string{"Hi."}, chunks)
}

func TestPackWindowsMinSizeDropsTail(t *testing.T) {
	sentences := []string{sentenceOfLen(300), "bb."}
	chunks := packWindows(sentences, 300, 0, 100)
	require.Len(t, chunks, 1)
	require.Equal(t, sentences[0], chunks[0])
}

func TestPackWindowsCoverageInOrder(t *testing.T) {
	// Every input sentence appears at least once, in original order.
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}
	sentences := make([]string, len(words))
	for i, w := range words {
		sentences[i] = "Sentence about " + w + " number " + strings.Repeat(w+" ", 3) + "ends."
	}
	chunks := packWindows(sentences, 120, 40, 10)
	joined := strings.Join(chunks, " ")
	pos := 0
	for _, s := range sentences {
		idx := strings.Index(joined[pos:], s)
		require.GreaterOrEqual(t, idx, 0, "sentence %q missing after offset %d", s, pos)
		pos += idx
	}
}

func TestPackWindowsTerminatesOnPathologicalInput(t *testing.T) {
	// ceil(len/chunkSize) forced cuts, no more.
	long := strings.Repeat("y", 10*50+7)
	chunks := packWindows([]string{long}, 50, 25, 0)
	require.Len(t, chunks, 11)
	require.Equal(t, long, strings.Join(chunks, ""))
}
