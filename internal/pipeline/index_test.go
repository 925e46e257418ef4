package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/kevinktg/chatbot/internal/vectorstore"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	store, err := vectorstore.NewStore("flat", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)

	in := strings.Join([]string{
		`{"id":"a","embedding":[1,0]}`,
		`{"id":"b","embedding":[0,1]}`,
		`broken`,
		`{"id":"","embedding":[1,1]}`,
	}, "\n")
	stats, err := BuildIndex(context.Background(), strings.NewReader(in), store)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Indexed)
	require.Equal(t, 2, stats.Skipped)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)

	matches, err := store.Search(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Equal(t, "a", matches[0].ID)
}
