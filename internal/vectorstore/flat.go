package vectorstore

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kevinktg/chatbot/internal/model"
)

const (
	MetricCosine = "cosine"
	MetricL2     = "l2"

	flatMetaFile    = "meta.json"
	flatIDsFile     = "ids.jsonl"
	flatVectorsFile = "vectors.bin"
)

type flatConfig struct {
	Dir    string `json:"dir"`
	Metric string `json:"metric"`
}

type flatMeta struct {
	Dim    int    `json:"dim"`
	Metric string `json:"metric"`
	Count  int    `json:"count"`
}

// flatStore keeps every vector in memory and scans them all on search.
// Exact and simple, fine up to a few hundred thousand chunks. State is
// persisted to a directory as a meta file, an id list and a packed
// little-endian float32 matrix.
type flatStore struct {
	mu     sync.RWMutex
	dir    string
	metric string
	dim    int
	ids    []string
	vecs   [][]float32
	byID   map[string]int
}

func createFlatStore(args interface{}) (IStore, error) {
	cfg := &flatConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("flat store requires a dir")
	}
	metric := cfg.Metric
	if metric == "" {
		metric = MetricCosine
	}
	if metric != MetricCosine && metric != MetricL2 {
		return nil, fmt.Errorf("unsupported metric: %s", metric)
	}
	st := &flatStore{
		dir:    cfg.Dir,
		metric: metric,
		byID:   make(map[string]int),
	}
	if err := st.load(); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *flatStore) Name() string {
	return "flat"
}

func (s *flatStore) Add(ctx context.Context, vecs []model.ChunkVector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vecs {
		if v.ID == "" || len(v.Embedding) == 0 {
			continue
		}
		if s.dim == 0 {
			s.dim = len(v.Embedding)
		}
		if len(v.Embedding) != s.dim {
			return fmt.Errorf("vector %s has dim %d, store has dim %d", v.ID, len(v.Embedding), s.dim)
		}
		if idx, ok := s.byID[v.ID]; ok {
			s.vecs[idx] = v.Embedding
			continue
		}
		s.byID[v.ID] = len(s.ids)
		s.ids = append(s.ids, v.ID)
		s.vecs = append(s.vecs, v.Embedding)
	}
	return nil
}

func (s *flatStore) Search(ctx context.Context, query []float32, topK int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if topK <= 0 || len(s.ids) == 0 {
		return nil, nil
	}
	matches := make([]Match, 0, len(s.ids))
	for i, vec := range s.vecs {
		var score float32
		switch s.metric {
		case MetricL2:
			score = -l2Distance(query, vec)
		default:
			score = cosineSimilarity(query, vec)
		}
		matches = append(matches, Match{ID: s.ids[i], Score: score})
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > len(matches) {
		topK = len(matches)
	}
	return matches[:topK], nil
}

func (s *flatStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids), nil
}

func (s *flatStore) Flush(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	meta := flatMeta{Dim: s.dim, Metric: s.metric, Count: len(s.ids)}
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(s.dir, flatMetaFile), raw, 0o644); err != nil {
		return err
	}

	idsFile, err := os.Create(filepath.Join(s.dir, flatIDsFile))
	if err != nil {
		return err
	}
	defer idsFile.Close()
	enc := json.NewEncoder(idsFile)
	for _, id := range s.ids {
		if err := enc.Encode(map[string]string{"id": id}); err != nil {
			return err
		}
	}

	vecFile, err := os.Create(filepath.Join(s.dir, flatVectorsFile))
	if err != nil {
		return err
	}
	defer vecFile.Close()
	w := bufio.NewWriter(vecFile)
	for _, vec := range s.vecs {
		if err := binary.Write(w, binary.LittleEndian, vec); err != nil {
			return err
		}
	}
	return w.Flush()
}

func (s *flatStore) Close() error {
	return nil
}

func (s *flatStore) load() error {
	raw, err := os.ReadFile(filepath.Join(s.dir, flatMetaFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var meta flatMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return err
	}
	if meta.Metric != "" {
		s.metric = meta.Metric
	}
	s.dim = meta.Dim

	idsFile, err := os.Open(filepath.Join(s.dir, flatIDsFile))
	if err != nil {
		return err
	}
	defer idsFile.Close()
	scanner := bufio.NewScanner(idsFile)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return err
		}
		s.byID[rec.ID] = len(s.ids)
		s.ids = append(s.ids, rec.ID)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if s.dim == 0 || len(s.ids) == 0 {
		return nil
	}
	blob, err := os.ReadFile(filepath.Join(s.dir, flatVectorsFile))
	if err != nil {
		return err
	}
	want := len(s.ids) * s.dim * 4
	if len(blob) != want {
		return fmt.Errorf("vector file size %d does not match %d ids of dim %d", len(blob), len(s.ids), s.dim)
	}
	for i := 0; i < len(s.ids); i++ {
		vec := make([]float32, s.dim)
		for j := 0; j < s.dim; j++ {
			off := (i*s.dim + j) * 4
			bits := binary.LittleEndian.Uint32(blob[off : off+4])
			vec[j] = math.Float32frombits(bits)
		}
		s.vecs = append(s.vecs, vec)
	}
	return nil
}

func init() {
	Register("flat", createFlatStore)
}
