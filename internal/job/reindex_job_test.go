package job

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kevinktg/chatbot/internal/chunker"
	"github.com/kevinktg/chatbot/internal/model"
	"github.com/kevinktg/chatbot/internal/service"
	"github.com/kevinktg/chatbot/internal/vectorstore"
	"github.com/stretchr/testify/require"
)

type hashEmbedder struct{}

// a deterministic two-dimensional embedding, enough to rank results
func (hashEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	var sum float32
	for _, r := range text {
		sum += float32(r % 17)
	}
	return []float32{sum, float32(len(text))}, nil
}

func (hashEmbedder) ModelName() string { return "hash" }

func TestReindexJobEndToEnd(t *testing.T) {
	dir := t.TempDir()
	docsPath := filepath.Join(dir, "documents.jsonl")
	chunksPath := filepath.Join(dir, "chunks.jsonl")
	vectorsPath := filepath.Join(dir, "vectors.jsonl")

	docs, err := os.Create(docsPath)
	require.NoError(t, err)
	enc := json.NewEncoder(docs)
	require.NoError(t, enc.Encode(model.Document{ID: "d1", Source: "faq.md", Content: "Our kitchen handles nuts. Ask staff about allergens before ordering."}))
	require.NoError(t, enc.Encode(model.Document{ID: "d2", Source: "menu.md", Content: "Lemon myrtle chicken is served daily."}))
	require.NoError(t, docs.Close())

	store, err := vectorstore.NewStore("flat", map[string]interface{}{"dir": filepath.Join(dir, "index")})
	require.NoError(t, err)
	retrieval := service.NewRetrievalService(store, hashEmbedder{}, chunksPath, 3)

	ch := chunker.New(chunker.Options{ChunkSize: 200, ChunkOverlap: 20, MinChunkSize: 10})
	j := NewReindexJob(docsPath, chunksPath, vectorsPath, ch, hashEmbedder{}, store, retrieval, true)
	require.Equal(t, "reindex", j.Name())
	require.NoError(t, j.Run(context.Background()))

	// files produced
	for _, p := range []string{chunksPath, vectorsPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		require.Greater(t, info.Size(), int64(0))
	}

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	hits, err := retrieval.Query(context.Background(), "Lemon myrtle chicken is served daily.", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "menu.md", hits[0].Source)
}
