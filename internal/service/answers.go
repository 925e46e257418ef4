package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kevinktg/chatbot/internal/model"
)

var priceRe = regexp.MustCompile(`\$?\s*(\d{1,3}(?:[.,]\d{2})?)`)

var dietaryMetaKeys = []string{"primary_dietary_flag", "all_dietary_flags", "dietary", "tags"}

// HeuristicAnswers are structured signals pulled out of retrieval hits
// without any generation: candidate prices, dietary flags from chunk
// metadata, and the top passages as recommendations.
type HeuristicAnswers struct {
	Prices          []string `json:"prices"`
	DietaryFlags    []string `json:"dietary_flags"`
	Recommendations []string `json:"recommendations"`
}

// ExtractAnswers scans hits in rank order. Price candidates outside 0.50 to
// 1000 are dropped, they are usually years or quantities.
func ExtractAnswers(hits []*model.SearchHit, meta func(id string) map[string]interface{}) *HeuristicAnswers {
	out := &HeuristicAnswers{}
	for _, hit := range hits {
		text := strings.TrimSpace(hit.Text)
		for _, m := range priceRe.FindAllStringSubmatch(text, -1) {
			val := strings.ReplaceAll(m[1], ",", ".")
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				continue
			}
			if f >= 0.5 && f <= 1000 {
				out.Prices = append(out.Prices, fmt.Sprintf("$%.2f", f))
			}
		}
		if meta != nil {
			if fields := meta(hit.ID); fields != nil {
				out.DietaryFlags = append(out.DietaryFlags, dietaryFlags(fields)...)
			}
		}
		if text != "" {
			out.Recommendations = append(out.Recommendations, text)
		}
	}
	out.Prices = dedup(out.Prices)
	out.DietaryFlags = dedup(out.DietaryFlags)
	out.Recommendations = dedup(out.Recommendations)
	return out
}

func dietaryFlags(meta map[string]interface{}) []string {
	var flags []string
	for _, key := range dietaryMetaKeys {
		switch v := meta[key].(type) {
		case string:
			if v != "" {
				flags = append(flags, v)
			}
		case []interface{}:
			for _, item := range v {
				flags = append(flags, fmt.Sprint(item))
			}
		}
	}
	return flags
}

func dedup(seq []string) []string {
	seen := make(map[string]struct{}, len(seq))
	out := make([]string, 0, len(seq))
	for _, x := range seq {
		if _, ok := seen[x]; ok {
			continue
		}
		seen[x] = struct{}{}
		out = append(out, x)
	}
	return out
}

// ChunkMeta exposes a chunk's metadata for answer extraction.
func (s *RetrievalService) ChunkMeta(id string) map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chunks == nil {
		return nil
	}
	if chunk, ok := s.chunks[id]; ok {
		return chunk.Meta
	}
	return nil
}
