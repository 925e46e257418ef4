package chunker

import (
	"math"
	"unicode/utf8"

	"github.com/kevinktg/chatbot/internal/model"
)

// Stats summarizes a chunk sequence for comparing chunker configurations:
// length distribution plus the approximate overlap recovered from
// consecutive start/end offsets.
type Stats struct {
	Chunks        int     `json:"chunks"`
	MeanLen       float64 `json:"mean_len"`
	StdevLen      float64 `json:"stdev_len"`
	MinLen        int     `json:"min_len"`
	MaxLen        int     `json:"max_len"`
	ApproxOverlap float64 `json:"approx_overlap"`
}

func ComputeStats(chunks []*model.Chunk) Stats {
	if len(chunks) == 0 {
		return Stats{}
	}
	lens := make([]int, len(chunks))
	sum := 0
	minLen, maxLen := math.MaxInt, 0
	for i, c := range chunks {
		n := utf8.RuneCountInString(c.Text)
		lens[i] = n
		sum += n
		if n < minLen {
			minLen = n
		}
		if n > maxLen {
			maxLen = n
		}
	}
	mean := float64(sum) / float64(len(lens))

	stdev := 0.0
	if len(lens) > 1 {
		var ss float64
		for _, n := range lens {
			d := float64(n) - mean
			ss += d * d
		}
		stdev = math.Sqrt(ss / float64(len(lens)-1))
	}

	overlap := 0.0
	if len(chunks) > 1 {
		total := 0
		for i := 1; i < len(chunks); i++ {
			d := chunks[i-1].End - chunks[i].Start
			if d > 0 {
				total += d
			}
		}
		overlap = float64(total) / float64(len(chunks)-1)
	}

	return Stats{
		Chunks:        len(chunks),
		MeanLen:       mean,
		StdevLen:      stdev,
		MinLen:        minLen,
		MaxLen:        maxLen,
		ApproxOverlap: overlap,
	}
}
