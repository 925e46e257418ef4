package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/kevinktg/chatbot/internal/ai"
	"github.com/kevinktg/chatbot/internal/artifact"
	"github.com/kevinktg/chatbot/internal/chunker"
	"github.com/kevinktg/chatbot/internal/config"
	"github.com/kevinktg/chatbot/internal/embedcache"
	"github.com/kevinktg/chatbot/internal/handler"
	"github.com/kevinktg/chatbot/internal/ingest"
	"github.com/kevinktg/chatbot/internal/job"
	"github.com/kevinktg/chatbot/internal/middleware"
	"github.com/kevinktg/chatbot/internal/model"
	"github.com/kevinktg/chatbot/internal/pipeline"
	"github.com/kevinktg/chatbot/internal/schedule"
	"github.com/kevinktg/chatbot/internal/service"
	"github.com/kevinktg/chatbot/internal/vectorstore"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "chatbot",
		Short: "retrieval-augmented chatbot pipeline and server",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "path to config.json")

	rootCmd.AddCommand(
		newRunCmd(&configPath),
		newIngestCmd(&configPath),
		newCleanCmd(),
		newChunkCmd(&configPath),
		newEmbedCmd(&configPath),
		newIndexCmd(&configPath),
		newSearchCmd(&configPath),
		newQueryCmd(&configPath),
		newParityCmd(&configPath),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	return cfg, nil
}

func buildEmbedder(cfg *config.Config) (ai.IEmbedder, error) {
	provider, err := ai.NewProvider(cfg.Embedding.Provider.Type, cfg.Embedding.Provider.Data)
	if err != nil {
		return nil, fmt.Errorf("init embedding provider: %w", err)
	}
	emb := ai.NewEmbedder(provider, cfg.Embedding.Model)
	return embedcache.Wrap(emb, cfg.Embedding.CacheSize,
		time.Duration(cfg.Embedding.CacheTTLMins)*time.Minute), nil
}

func buildGenerator(cfg *config.Config) (ai.IGenerator, error) {
	if cfg.Generate.Provider.Type == "" {
		return nil, nil
	}
	provider, err := ai.NewProvider(cfg.Generate.Provider.Type, cfg.Generate.Provider.Data)
	if err != nil {
		return nil, fmt.Errorf("init generation provider: %w", err)
	}
	return ai.NewGenerator(provider, cfg.Generate.Model), nil
}

func buildStore(cfg *config.Config) (vectorstore.IStore, error) {
	store, err := vectorstore.NewStore(cfg.Index.Backend, cfg.Index.Data)
	if err != nil {
		return nil, fmt.Errorf("init index backend: %w", err)
	}
	return store, nil
}

func buildChunker(cfg *config.Config) *chunker.Chunker {
	return chunker.New(chunker.Options{
		ChunkSize:       cfg.Chunking.ChunkSize,
		ChunkOverlap:    cfg.Chunking.ChunkOverlap,
		MinChunkSize:    cfg.Chunking.MinChunkSize,
		RespectHeadings: cfg.Chunking.HeadingsEnabled(),
	})
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "run the chatbot server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func runServer(cfg *config.Config) error {
	rootLogger := logutil.GetLogger(context.Background())
	rootLogger.Info("starting server",
		zap.Int("port", cfg.Port),
		zap.String("index_backend", cfg.Index.Backend),
		zap.String("vertical", cfg.Vertical),
	)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}
	generator, err := buildGenerator(cfg)
	if err != nil {
		return err
	}
	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	retrieval := service.NewRetrievalService(store, embedder, cfg.ChunksPath(), service.DefaultTopK)
	chat := service.NewChatService(retrieval, generator, cfg.Vertical)

	deps := handler.RouterDeps{
		Chat:       handler.NewChatHandler(chat),
		Query:      handler.NewQueryHandler(retrieval),
		Health:     handler.NewHealthHandler(chat, true, generator != nil),
		ChatWindow: time.Duration(cfg.Jobs.ChatWindowSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORS),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if cfg.Jobs.ReindexSpec != "" {
		reindex := job.NewReindexJob(
			cfg.DocumentsPath(), cfg.ChunksPath(), cfg.VectorsPath(),
			buildChunker(cfg), embedder, store, retrieval, cfg.Embedding.Normalize,
		)
		if err := scheduler.AddJob(reindex, cfg.Jobs.ReindexSpec); err != nil {
			return err
		}
	}
	if cfg.Jobs.SnapshotSpec != "" && cfg.Artifacts.Type != "" {
		artifacts, err := artifact.New(cfg.Artifacts.Type, cfg.Artifacts.Data)
		if err != nil {
			return fmt.Errorf("init artifact store: %w", err)
		}
		snapshot := job.NewSnapshotJob(artifacts, []string{
			cfg.DocumentsPath(), cfg.ChunksPath(), cfg.VectorsPath(),
		})
		if err := scheduler.AddJob(snapshot, cfg.Jobs.SnapshotSpec); err != nil {
			return err
		}
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			rootLogger.Error("server error", zap.Error(err))
		}
	}()
	rootLogger.Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	<-ctx.Done()
	rootLogger.Info("server stopping...")
	return nil
}

func newIngestCmd(configPath *string) *cobra.Command {
	var pdfPath, jsonPath, mdPath, outPath string
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "ingest pdf/json/markdown sources into the unified document file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = cfg.DocumentsPath()
			}
			ctx := cmd.Context()
			var docs []*model.Document

			if pdfPath != "" {
				paths, err := expandSources(pdfPath, "*.pdf")
				if err != nil {
					return err
				}
				for _, p := range paths {
					pages, err := ingest.ExtractPDF(ctx, p)
					if err != nil {
						return fmt.Errorf("extract %s: %w", p, err)
					}
					docs = append(docs, ingest.NormalizeStrings(p, "pdf", pages)...)
				}
			}
			if jsonPath != "" {
				items, err := ingest.LoadJSON(jsonPath)
				if err != nil {
					return err
				}
				docs = append(docs, ingest.NormalizeObjects(jsonPath, "json", items)...)
			}
			if mdPath != "" {
				paths, err := expandSources(mdPath, "*.md")
				if err != nil {
					return err
				}
				for _, p := range paths {
					text, err := ingest.ExtractMarkdown(p)
					if err != nil {
						return fmt.Errorf("extract %s: %w", p, err)
					}
					docs = append(docs, ingest.NormalizeStrings(p, "markdown", []string{text})...)
				}
			}
			if len(docs) == 0 {
				return fmt.Errorf("no input provided, use --pdf, --json or --md")
			}

			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			if err := ingest.SaveDocuments(out, docs); err != nil {
				return err
			}
			logutil.GetLogger(ctx).Info("documents saved",
				zap.Int("documents", len(docs)), zap.String("path", outPath))
			return nil
		},
	}
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "pdf file or directory")
	cmd.Flags().StringVar(&jsonPath, "json", "", "json or jsonl file")
	cmd.Flags().StringVar(&mdPath, "md", "", "markdown file or directory")
	cmd.Flags().StringVar(&outPath, "out", "", "output documents jsonl")
	return cmd
}

// expandSources accepts either a file or a directory of matching files.
func expandSources(path, pattern string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no %s files in %s", pattern, path)
	}
	return matches, nil
}

func newCleanCmd() *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "clean a raw menu export into normalized items",
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := ingest.CleanMenuJSON(inPath, outPath)
			if err != nil {
				return err
			}
			fmt.Printf("cleaned %d items into %s\n", n, outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "raw menu json")
	cmd.Flags().StringVar(&outPath, "out", "", "cleaned menu json")
	cmd.MarkFlagRequired("in")
	cmd.MarkFlagRequired("out")
	return cmd
}

func newChunkCmd(configPath *string) *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "chunk unified documents into overlapping passages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if inPath == "" {
				inPath = cfg.DocumentsPath()
			}
			if outPath == "" {
				outPath = cfg.ChunksPath()
			}
			in, err := os.Open(inPath)
			if err != nil {
				return err
			}
			defer in.Close()
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			stats, err := buildChunker(cfg).ChunkStream(cmd.Context(), in, out)
			if err != nil {
				return err
			}
			fmt.Printf("chunked %d documents into %d chunks (%d skipped)\n",
				stats.Documents, stats.Chunks, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input documents jsonl")
	cmd.Flags().StringVar(&outPath, "out", "", "output chunks jsonl")
	return cmd
}

func newEmbedCmd(configPath *string) *cobra.Command {
	var inPath, outPath string
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "embed chunks into vector records",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if inPath == "" {
				inPath = cfg.ChunksPath()
			}
			if outPath == "" {
				outPath = cfg.VectorsPath()
			}
			embedder, err := buildEmbedder(cfg)
			if err != nil {
				return err
			}
			in, err := os.Open(inPath)
			if err != nil {
				return err
			}
			defer in.Close()
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return err
			}
			out, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer out.Close()
			stats, err := pipeline.EmbedChunks(cmd.Context(), in, out, embedder, pipeline.EmbedOptions{
				TaskType:  "retrieval_document",
				Normalize: cfg.Embedding.Normalize,
			})
			if err != nil {
				return err
			}
			fmt.Printf("embedded %d chunks (%d skipped)\n", stats.Embedded, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input chunks jsonl")
	cmd.Flags().StringVar(&outPath, "out", "", "output vectors jsonl")
	return cmd
}

func newIndexCmd(configPath *string) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "load vector records into the index backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if inPath == "" {
				inPath = cfg.VectorsPath()
			}
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			in, err := os.Open(inPath)
			if err != nil {
				return err
			}
			defer in.Close()
			stats, err := pipeline.BuildIndex(cmd.Context(), in, store)
			if err != nil {
				return err
			}
			fmt.Printf("indexed %d vectors (%d skipped)\n", stats.Indexed, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input vectors jsonl")
	return cmd
}

func newSearchCmd(configPath *string) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "ad-hoc nearest-neighbor search against the index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			embedder, err := buildEmbedder(cfg)
			if err != nil {
				return err
			}
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			retrieval := service.NewRetrievalService(store, embedder, cfg.ChunksPath(), service.DefaultTopK)
			hits, err := retrieval.Query(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}
			return printJSONLines(hits)
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "number of results")
	return cmd
}

func newQueryCmd(configPath *string) *cobra.Command {
	var k int
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "retrieval-only q&a with heuristic answer extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			embedder, err := buildEmbedder(cfg)
			if err != nil {
				return err
			}
			store, err := buildStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()
			retrieval := service.NewRetrievalService(store, embedder, cfg.ChunksPath(), service.DefaultTopK)
			hits, err := retrieval.Query(cmd.Context(), args[0], k)
			if err != nil {
				return err
			}
			if err := printJSONLines(hits); err != nil {
				return err
			}
			answers := service.ExtractAnswers(hits, retrieval.ChunkMeta)
			raw, err := json.MarshalIndent(answers, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
			return nil
		},
	}
	cmd.Flags().IntVar(&k, "k", 0, "number of passages to retrieve")
	return cmd
}

func newParityCmd(configPath *string) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "parity",
		Short: "report chunk size and overlap statistics for a chunk file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if inPath == "" {
				inPath = cfg.ChunksPath()
			}
			chunks, err := readChunks(inPath)
			if err != nil {
				return err
			}
			stats := chunker.ComputeStats(chunks)
			raw, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(raw))
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input chunks jsonl")
	return cmd
}

func readChunks(path string) ([]*model.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var chunks []*model.Chunk
	dec := json.NewDecoder(f)
	for dec.More() {
		var chunk model.Chunk
		if err := dec.Decode(&chunk); err != nil {
			return nil, err
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, nil
}

func printJSONLines(hits []*model.SearchHit) error {
	for _, hit := range hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			return err
		}
		fmt.Println(string(raw))
	}
	return nil
}
