package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kevinktg/chatbot/internal/model"
	"github.com/kevinktg/chatbot/internal/vectorstore"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vec []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.vec, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake" }

func writeChunkFile(t *testing.T, chunks []model.Chunk) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	for _, c := range chunks {
		require.NoError(t, writeJSONLine(f, c))
	}
	return path
}

func newTestStore(t *testing.T, vecs []model.ChunkVector) vectorstore.IStore {
	t.Helper()
	st, err := vectorstore.NewStore("flat", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, st.Add(context.Background(), vecs))
	return st
}

func TestRetrievalQuery(t *testing.T) {
	chunkPath := writeChunkFile(t, []model.Chunk{
		{ID: "d1:0", DocID: "d1", Source: "menu.json", Text: "Kangaroo skewers with native pepper."},
		{ID: "d1:1", DocID: "d1", Source: "menu.json", Text: "Lemon myrtle chicken wrap."},
	})
	store := newTestStore(t, []model.ChunkVector{
		{ID: "d1:0", Embedding: []float32{1, 0}},
		{ID: "d1:1", Embedding: []float32{0, 1}},
	})

	svc := NewRetrievalService(store, &fakeEmbedder{vec: []float32{1, 0}}, chunkPath, 0)
	hits, err := svc.Query(context.Background(), "skewers", 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, 1, hits[0].Rank)
	require.Equal(t, "d1:0", hits[0].ID)
	require.Equal(t, "Kangaroo skewers with native pepper.", hits[0].Text)
	require.Equal(t, "menu.json", hits[0].Source)
	require.Greater(t, hits[0].Score, hits[1].Score)
}

func TestRetrievalQueryValidation(t *testing.T) {
	store := newTestStore(t, nil)
	svc := NewRetrievalService(store, &fakeEmbedder{vec: []float32{1}}, "missing.jsonl", 3)

	_, err := svc.Query(context.Background(), "  ", 1)
	require.Error(t, err)

	// missing chunk file surfaces, not panics
	_, err = svc.Query(context.Background(), "q", 1)
	require.Error(t, err)
}

func TestRetrievalContextFor(t *testing.T) {
	chunkPath := writeChunkFile(t, []model.Chunk{
		{ID: "a", Text: "first fact"},
		{ID: "b", Text: "second fact"},
	})
	store := newTestStore(t, []model.ChunkVector{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0.9, 0.1}},
	})
	svc := NewRetrievalService(store, &fakeEmbedder{vec: []float32{1, 0}}, chunkPath, 3)

	out := svc.ContextFor(context.Background(), "q", 2)
	require.Equal(t, "Context: first fact\n\nContext: second fact", out)
}

func TestRetrievalReload(t *testing.T) {
	chunkPath := writeChunkFile(t, []model.Chunk{{ID: "a", Text: "one"}})
	store := newTestStore(t, []model.ChunkVector{{ID: "a", Embedding: []float32{1}}})
	svc := NewRetrievalService(store, &fakeEmbedder{vec: []float32{1}}, chunkPath, 3)

	require.Equal(t, 1, svc.ChunkCount(context.Background()))

	// rewrite the file with one more chunk, reload picks it up
	f, err := os.OpenFile(chunkPath, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	require.NoError(t, writeJSONLine(f, model.Chunk{ID: "b", Text: "two"}))
	require.NoError(t, f.Close())

	require.Equal(t, 1, svc.ChunkCount(context.Background()))
	svc.Reload()
	require.Equal(t, 2, svc.ChunkCount(context.Background()))
}
