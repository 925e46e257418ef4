package vectorstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/kevinktg/chatbot/internal/model"
	"github.com/stretchr/testify/require"
)

func TestSqliteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	st, err := NewStore("sqlite", map[string]interface{}{"path": path})
	require.NoError(t, err)
	defer st.Close()
	ctx := context.Background()

	err = st.Add(ctx, []model.ChunkVector{
		{ID: "a", Embedding: []float32{1, 0}},
		{ID: "b", Embedding: []float32{0, 1}},
	})
	require.NoError(t, err)

	// upsert replaces
	require.NoError(t, st.Add(ctx, []model.ChunkVector{{ID: "a", Embedding: []float32{1, 0}}}))

	n, err := st.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	matches, err := st.Search(ctx, []float32{1, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "a", matches[0].ID)
}

func TestSqliteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vectors.db")
	ctx := context.Background()

	st, err := NewStore("sqlite", map[string]interface{}{"path": path})
	require.NoError(t, err)
	require.NoError(t, st.Add(ctx, []model.ChunkVector{{ID: "a", Embedding: []float32{1, 2, 3}}}))
	require.NoError(t, st.Close())

	reopened, err := NewStore("sqlite", map[string]interface{}{"path": path})
	require.NoError(t, err)
	defer reopened.Close()
	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}
