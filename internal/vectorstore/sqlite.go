package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/didi/gendry/builder"
	"github.com/kevinktg/chatbot/internal/model"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS chunk_vectors (
	id TEXT PRIMARY KEY,
	embedding BLOB NOT NULL,
	dim INTEGER NOT NULL
);
`

type sqliteConfig struct {
	Path   string `json:"path"`
	Metric string `json:"metric"`
}

// sqliteStore keeps vectors as JSON blobs in a single-file database. Search
// loads the whole table and scans it; the win over the flat store is durable
// incremental writes without an explicit flush step.
type sqliteStore struct {
	db     *sql.DB
	metric string
}

func createSqliteStore(args interface{}) (IStore, error) {
	cfg := &sqliteConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("sqlite store requires a path")
	}
	metric := cfg.Metric
	if metric == "" {
		metric = MetricCosine
	}
	if metric != MetricCosine && metric != MetricL2 {
		return nil, fmt.Errorf("unsupported metric: %s", metric)
	}
	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, err
	}
	return &sqliteStore{db: db, metric: metric}, nil
}

func (s *sqliteStore) Name() string {
	return "sqlite"
}

func (s *sqliteStore) Add(ctx context.Context, vecs []model.ChunkVector) error {
	for _, v := range vecs {
		if v.ID == "" || len(v.Embedding) == 0 {
			continue
		}
		blob, err := json.Marshal(v.Embedding)
		if err != nil {
			return err
		}
		data := map[string]interface{}{
			"id":        v.ID,
			"embedding": blob,
			"dim":       len(v.Embedding),
		}
		sqlStr, sqlArgs, err := builder.BuildInsert("chunk_vectors", []map[string]interface{}{data})
		if err != nil {
			return err
		}
		sqlStr = strings.Replace(sqlStr, "INSERT INTO", "INSERT OR REPLACE INTO", 1)
		if _, err := s.db.ExecContext(ctx, sqlStr, sqlArgs...); err != nil {
			return err
		}
	}
	return nil
}

func (s *sqliteStore) Search(ctx context.Context, query []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	sqlStr, sqlArgs, err := builder.BuildSelect("chunk_vectors", nil, []string{"id", "embedding"})
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, sqlStr, sqlArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var matches []Match
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, err
		}
		var vec []float32
		if err := json.Unmarshal(blob, &vec); err != nil {
			return nil, err
		}
		var score float32
		switch s.metric {
		case MetricL2:
			score = -l2Distance(query, vec)
		default:
			score = cosineSimilarity(query, vec)
		}
		matches = append(matches, Match{ID: id, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > len(matches) {
		topK = len(matches)
	}
	return matches[:topK], nil
}

func (s *sqliteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunk_vectors").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *sqliteStore) Flush(ctx context.Context) error {
	return nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func init() {
	Register("sqlite", createSqliteStore)
}
