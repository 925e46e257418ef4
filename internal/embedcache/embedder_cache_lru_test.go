package embedcache

import (
	"context"
	"testing"
	"time"

	"github.com/kevinktg/chatbot/internal/ai"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
	vec   []float32
}

func (c *countingEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	c.calls++
	return c.vec, nil
}

func (c *countingEmbedder) ModelName() string { return "count-model" }

var _ ai.IEmbedder = (*countingEmbedder)(nil)

func TestLruCacheHit(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2}}
	cached := Wrap(inner, 8, time.Minute)

	ctx := context.Background()
	v1, err := cached.Embed(ctx, "same text", "retrieval_document")
	require.NoError(t, err)
	v2, err := cached.Embed(ctx, "same text", "retrieval_document")
	require.NoError(t, err)
	require.Equal(t, v1, v2)
	require.Equal(t, 1, inner.calls)

	// different task type misses
	_, err = cached.Embed(ctx, "same text", "retrieval_query")
	require.NoError(t, err)
	require.Equal(t, 2, inner.calls)
}

func TestLruCacheReturnsCopy(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1, 2}}
	cached := Wrap(inner, 8, time.Minute)

	ctx := context.Background()
	v1, _ := cached.Embed(ctx, "t", "")
	v1[0] = 99
	v2, _ := cached.Embed(ctx, "t", "")
	require.Equal(t, float32(1), v2[0])
}

func TestWrapDisabled(t *testing.T) {
	inner := &countingEmbedder{vec: []float32{1}}
	require.Equal(t, ai.IEmbedder(inner), Wrap(inner, 0, time.Minute))
	require.Equal(t, ai.IEmbedder(inner), Wrap(inner, 8, 0))
}
