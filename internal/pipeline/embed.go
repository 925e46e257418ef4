package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/kevinktg/chatbot/internal/ai"
	"github.com/kevinktg/chatbot/internal/model"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const maxRecordSize = 16 * 1024 * 1024

// EmbedOptions controls the chunk embedding pass.
type EmbedOptions struct {
	TaskType  string
	Normalize bool
}

// EmbedStats summarizes one embedding pass.
type EmbedStats struct {
	Embedded int
	Skipped  int
}

// EmbedChunks reads chunk records from r as JSONL, embeds each chunk's text
// and writes vector records to w in the same order. Records that fail to
// parse or carry no text are counted and skipped rather than aborting the
// whole pass.
func EmbedChunks(ctx context.Context, r io.Reader, w io.Writer, emb ai.IEmbedder, opts EmbedOptions) (*EmbedStats, error) {
	if emb == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	logger := logutil.GetLogger(ctx)
	stats := &EmbedStats{}
	enc := json.NewEncoder(w)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxRecordSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk model.Chunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			stats.Skipped++
			logger.Warn("skip malformed chunk record", zap.Error(err))
			continue
		}
		if chunk.ID == "" || strings.TrimSpace(chunk.Text) == "" {
			stats.Skipped++
			continue
		}
		vec, err := emb.Embed(ctx, chunk.Text, opts.TaskType)
		if err != nil {
			return stats, fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
		}
		if opts.Normalize {
			vec = normalizeL2(vec)
		}
		if err := enc.Encode(model.ChunkVector{ID: chunk.ID, Embedding: vec}); err != nil {
			return stats, err
		}
		stats.Embedded++
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	logger.Info("embedding pass done",
		zap.Int("embedded", stats.Embedded), zap.Int("skipped", stats.Skipped))
	return stats, nil
}

func normalizeL2(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
