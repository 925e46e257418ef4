// Package embedcache memoizes embedding calls. Identical chunk text is
// common across re-ingests, so a warm cache keeps index rebuilds from
// hammering the embedding backend.
package embedcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/kevinktg/chatbot/internal/ai"
)

type cachedEmbedder struct {
	inner ai.IEmbedder
	lru   *expirable.LRU[string, []float32]
}

// Wrap puts an expiring LRU in front of an embedder, keyed by model, task
// type and content hash. A zero size or ttl disables caching and returns
// the embedder unchanged.
func Wrap(inner ai.IEmbedder, size int, ttl time.Duration) ai.IEmbedder {
	if inner == nil || size <= 0 || ttl <= 0 {
		return inner
	}
	return &cachedEmbedder{
		inner: inner,
		lru:   expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

func (e *cachedEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	key := e.cacheKey(taskType, text)
	if hit, ok := e.lru.Get(key); ok {
		logutil.GetLogger(ctx).Debug("embedding cache hit", zap.String("task_type", taskType))
		return cloneVector(hit), nil
	}
	vec, err := e.inner.Embed(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	e.lru.Add(key, cloneVector(vec))
	return vec, nil
}

func (e *cachedEmbedder) ModelName() string {
	return e.inner.ModelName()
}

func (e *cachedEmbedder) cacheKey(taskType, text string) string {
	model := strings.TrimSpace(e.inner.ModelName())
	if model == "" {
		model = "unknown"
	}
	sum := sha256.Sum256([]byte(text))
	return strings.Join([]string{"embed", model, taskType, hex.EncodeToString(sum[:])}, ":")
}

// cloneVector keeps cached entries isolated from caller mutation.
func cloneVector(values []float32) []float32 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float32, len(values))
	copy(out, values)
	return out
}
