package service

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kevinktg/chatbot/internal/ai"
	"github.com/kevinktg/chatbot/internal/model"
	"github.com/kevinktg/chatbot/internal/vectorstore"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const DefaultTopK = 3

// RetrievalService answers similarity queries against the chunk index. The
// chunk lookup is loaded lazily on first use and guarded by the service's
// own lock, so one instance can serve concurrent requests.
type RetrievalService struct {
	store     vectorstore.IStore
	embedder  ai.IEmbedder
	chunkPath string
	topK      int

	mu     sync.Mutex
	chunks map[string]*model.Chunk
}

func NewRetrievalService(store vectorstore.IStore, embedder ai.IEmbedder, chunkPath string, topK int) *RetrievalService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &RetrievalService{
		store:     store,
		embedder:  embedder,
		chunkPath: chunkPath,
		topK:      topK,
	}
}

// Query embeds the text, searches the index and joins matches back to their
// chunk text and source. k <= 0 falls back to the configured top-k.
func (s *RetrievalService) Query(ctx context.Context, text string, k int) ([]*model.SearchHit, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if s.store == nil || s.embedder == nil {
		return nil, fmt.Errorf("retrieval is not configured")
	}
	if k <= 0 {
		k = s.topK
	}
	lookup, err := s.ensureChunks(ctx)
	if err != nil {
		return nil, err
	}
	vec, err := s.embedder.Embed(ctx, text, "retrieval_query")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := s.store.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	hits := make([]*model.SearchHit, 0, len(matches))
	for i, m := range matches {
		hit := &model.SearchHit{
			Rank:  i + 1,
			ID:    m.ID,
			Score: m.Score,
		}
		if chunk, ok := lookup[m.ID]; ok {
			hit.Text = chunk.Text
			hit.Source = chunk.Source
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// ContextFor renders the top matching chunk texts for prompt injection.
// Misses and empty chunks are dropped silently.
func (s *RetrievalService) ContextFor(ctx context.Context, query string, topK int) string {
	hits, err := s.Query(ctx, query, topK)
	if err != nil {
		logutil.GetLogger(ctx).Warn("context retrieval failed", zap.Error(err))
		return ""
	}
	parts := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.Text == "" {
			continue
		}
		parts = append(parts, "Context: "+hit.Text)
	}
	return strings.Join(parts, "\n\n")
}

// ChunkCount reports how many chunks the lookup currently holds.
func (s *RetrievalService) ChunkCount(ctx context.Context) int {
	lookup, err := s.ensureChunks(ctx)
	if err != nil {
		return 0
	}
	return len(lookup)
}

// Reload drops the cached chunk lookup so the next query rereads it.
func (s *RetrievalService) Reload() {
	s.mu.Lock()
	s.chunks = nil
	s.mu.Unlock()
}

func (s *RetrievalService) ensureChunks(ctx context.Context) (map[string]*model.Chunk, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chunks != nil {
		return s.chunks, nil
	}
	f, err := os.Open(s.chunkPath)
	if err != nil {
		return nil, fmt.Errorf("open chunk file: %w", err)
	}
	defer f.Close()
	lookup := make(map[string]*model.Chunk)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var chunk model.Chunk
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			logutil.GetLogger(ctx).Warn("skip malformed chunk record", zap.Error(err))
			continue
		}
		lookup[chunk.ID] = &chunk
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	s.chunks = lookup
	logutil.GetLogger(ctx).Info("chunk lookup loaded",
		zap.String("path", s.chunkPath), zap.Int("chunks", len(lookup)))
	return lookup, nil
}
