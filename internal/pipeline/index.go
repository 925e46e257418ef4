package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/kevinktg/chatbot/internal/model"
	"github.com/kevinktg/chatbot/internal/vectorstore"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const indexBatchSize = 256

// IndexStats summarizes one index build.
type IndexStats struct {
	Indexed int
	Skipped int
}

// BuildIndex reads vector records from r as JSONL and loads them into the
// store in batches, flushing at the end.
func BuildIndex(ctx context.Context, r io.Reader, store vectorstore.IStore) (*IndexStats, error) {
	logger := logutil.GetLogger(ctx)
	stats := &IndexStats{}
	batch := make([]model.ChunkVector, 0, indexBatchSize)
	flushBatch := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := store.Add(ctx, batch); err != nil {
			return err
		}
		stats.Indexed += len(batch)
		batch = batch[:0]
		return nil
	}

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
		var rec model.ChunkVector
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			stats.Skipped++
			logger.Warn("skip malformed vector record", zap.Error(err))
			continue
		}
		if rec.ID == "" || len(rec.Embedding) == 0 {
			stats.Skipped++
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= indexBatchSize {
			if err := flushBatch(); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	if err := flushBatch(); err != nil {
		return stats, err
	}
	if err := store.Flush(ctx); err != nil {
		return stats, err
	}
	logger.Info("index build done",
		zap.Int("indexed", stats.Indexed), zap.Int("skipped", stats.Skipped))
	return stats, nil
}
