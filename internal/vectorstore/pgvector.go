package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/kevinktg/chatbot/internal/model"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

type pgvectorConfig struct {
	DSN    string `json:"dsn"`
	Table  string `json:"table"`
	Metric string `json:"metric"`
	Dim    int    `json:"dim"`
}

// pgvectorStore pushes nearest-neighbor search down to Postgres. The table
// is created on first use, which needs the vector extension installed and
// the embedding dimension declared up front.
type pgvectorStore struct {
	db     *sqlx.DB
	table  string
	metric string
}

func createPgvectorStore(args interface{}) (IStore, error) {
	cfg := &pgvectorConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("pgvector store requires a dsn")
	}
	if cfg.Dim <= 0 {
		return nil, fmt.Errorf("pgvector store requires a positive dim")
	}
	table := cfg.Table
	if table == "" {
		table = "chunk_vectors"
	}
	metric := cfg.Metric
	if metric == "" {
		metric = MetricCosine
	}
	if metric != MetricCosine && metric != MetricL2 {
		return nil, fmt.Errorf("unsupported metric: %s", metric)
	}
	db, err := sqlx.Connect("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return nil, err
	}
	schema := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (id text PRIMARY KEY, embedding vector(%d) NOT NULL)",
		table, cfg.Dim)
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return &pgvectorStore{db: db, table: table, metric: metric}, nil
}

func (s *pgvectorStore) Name() string {
	return "pgvector"
}

func (s *pgvectorStore) Add(ctx context.Context, vecs []model.ChunkVector) error {
	stmt := fmt.Sprintf(
		"INSERT INTO %s (id, embedding) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET embedding = EXCLUDED.embedding",
		s.table)
	for _, v := range vecs {
		if v.ID == "" || len(v.Embedding) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt, v.ID, pgvector.NewVector(v.Embedding)); err != nil {
			return err
		}
	}
	return nil
}

func (s *pgvectorStore) Search(ctx context.Context, query []float32, topK int) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	var stmt string
	switch s.metric {
	case MetricL2:
		stmt = fmt.Sprintf(
			"SELECT id, -(embedding <-> $1) AS score FROM %s ORDER BY embedding <-> $1 LIMIT $2",
			s.table)
	default:
		stmt = fmt.Sprintf(
			"SELECT id, 1 - (embedding <=> $1) AS score FROM %s ORDER BY embedding <=> $1 LIMIT $2",
			s.table)
	}
	rows, err := s.db.QueryxContext(ctx, stmt, pgvector.NewVector(query), topK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var matches []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Score); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *pgvectorStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *pgvectorStore) Flush(ctx context.Context) error {
	return nil
}

func (s *pgvectorStore) Close() error {
	return s.db.Close()
}

func init() {
	Register("pgvector", createPgvectorStore)
}
