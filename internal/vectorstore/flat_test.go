package vectorstore

import (
	"context"
	"testing"

	"github.com/kevinktg/chatbot/internal/model"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-6)
	require.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-6)
	require.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	require.Equal(t, float32(0), cosineSimilarity([]float32{1, 0}, []float32{1}))
	require.Equal(t, float32(0), cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestFlatStoreSearch(t *testing.T) {
	st, err := NewStore("flat", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	err = st.Add(ctx, []model.ChunkVector{
		{ID: "a", Embedding: []float32{1, 0, 0}},
		{ID: "b", Embedding: []float32{0, 1, 0}},
		{ID: "c", Embedding: []float32{0.9, 0.1, 0}},
	})
	require.NoError(t, err)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	matches, err := st.Search(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "a", matches[0].ID)
	require.Equal(t, "c", matches[1].ID)
	require.Greater(t, matches[0].Score, matches[1].Score)
}

func TestFlatStoreUpsert(t *testing.T) {
	st, err := NewStore("flat", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Add(ctx, []model.ChunkVector{{ID: "a", Embedding: []float32{1, 0}}}))
	require.NoError(t, st.Add(ctx, []model.ChunkVector{{ID: "a", Embedding: []float32{0, 1}}}))

	n, err := st.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	matches, err := st.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.InDelta(t, 1.0, float64(matches[0].Score), 1e-6)
}

func TestFlatStoreDimMismatch(t *testing.T) {
	st, err := NewStore("flat", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, st.Add(ctx, []model.ChunkVector{{ID: "a", Embedding: []float32{1, 0}}}))
	err = st.Add(ctx, []model.ChunkVector{{ID: "b", Embedding: []float32{1, 0, 0}}})
	require.Error(t, err)
}

func TestFlatStorePersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st, err := NewStore("flat", map[string]interface{}{"dir": dir, "metric": "l2"})
	require.NoError(t, err)
	require.NoError(t, st.Add(ctx, []model.ChunkVector{
		{ID: "a", Embedding: []float32{1, 2, 3}},
		{ID: "b", Embedding: []float32{4, 5, 6}},
	}))
	require.NoError(t, st.Flush(ctx))
	require.NoError(t, st.Close())

	reopened, err := NewStore("flat", map[string]interface{}{"dir": dir})
	require.NoError(t, err)
	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	matches, err := reopened.Search(ctx, []float32{1, 2, 3}, 1)
	require.NoError(t, err)
	require.Equal(t, "a", matches[0].ID)
	// metric restored from the meta file, l2 self-distance is zero
	require.InDelta(t, 0.0, float64(matches[0].Score), 1e-6)
}

func TestUnknownBackend(t *testing.T) {
	_, err := NewStore("faiss", nil)
	require.Error(t, err)
	_, err = NewStore("", nil)
	require.Error(t, err)
}
