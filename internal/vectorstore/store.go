package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/kevinktg/chatbot/internal/model"
)

// Match is one nearest-neighbor result, scored higher-is-better.
type Match struct {
	ID    string
	Score float32
}

// IStore is a persistent collection of chunk vectors with nearest-neighbor
// search. Add replaces any vector that already carries the same id.
type IStore interface {
	Name() string
	Add(ctx context.Context, vecs []model.ChunkVector) error
	Search(ctx context.Context, query []float32, topK int) ([]Match, error)
	Count(ctx context.Context) (int, error)
	Flush(ctx context.Context) error
	Close() error
}

type StoreFactory func(args interface{}) (IStore, error)

var storeFactories = make(map[string]StoreFactory)

func Register(name string, factory StoreFactory) {
	storeFactories[name] = factory
}

// NewStore builds a store backend by registry name with backend-specific args.
func NewStore(name string, args interface{}) (IStore, error) {
	if name == "" {
		return nil, fmt.Errorf("index.backend is required")
	}
	factory, ok := storeFactories[name]
	if !ok {
		return nil, fmt.Errorf("unknown index backend: %s", name)
	}
	return factory(args)
}

func decodeConfig(args interface{}, dst interface{}) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

func l2Distance(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}
