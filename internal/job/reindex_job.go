package job

import (
	"context"
	"fmt"
	"os"

	"github.com/kevinktg/chatbot/internal/ai"
	"github.com/kevinktg/chatbot/internal/chunker"
	"github.com/kevinktg/chatbot/internal/pipeline"
	"github.com/kevinktg/chatbot/internal/service"
	"github.com/kevinktg/chatbot/internal/vectorstore"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// ReindexJob rebuilds the whole retrieval path from the document file:
// rechunk, re-embed, reload the index, then drop the serving cache so the
// next query sees the fresh data. Embedding misses go through the embedder's
// cache, so unchanged chunks cost nothing.
type ReindexJob struct {
	docsPath    string
	chunksPath  string
	vectorsPath string
	chunks      *chunker.Chunker
	embedder    ai.IEmbedder
	store       vectorstore.IStore
	retrieval   *service.RetrievalService
	normalize   bool
}

func NewReindexJob(docsPath, chunksPath, vectorsPath string, chunks *chunker.Chunker,
	embedder ai.IEmbedder, store vectorstore.IStore, retrieval *service.RetrievalService, normalize bool) *ReindexJob {
	return &ReindexJob{
		docsPath:    docsPath,
		chunksPath:  chunksPath,
		vectorsPath: vectorsPath,
		chunks:      chunks,
		embedder:    embedder,
		store:       store,
		retrieval:   retrieval,
		normalize:   normalize,
	}
}

func (j *ReindexJob) Name() string {
	return "reindex"
}

func (j *ReindexJob) Run(ctx context.Context) error {
	if j.chunks == nil || j.embedder == nil || j.store == nil {
		return nil
	}
	logger := logutil.GetLogger(ctx)

	docs, err := os.Open(j.docsPath)
	if err != nil {
		return fmt.Errorf("open documents: %w", err)
	}
	defer docs.Close()
	chunkOut, err := os.Create(j.chunksPath)
	if err != nil {
		return err
	}
	chunkStats, err := j.chunks.ChunkStream(ctx, docs, chunkOut)
	if cerr := chunkOut.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("chunk documents: %w", err)
	}

	chunkIn, err := os.Open(j.chunksPath)
	if err != nil {
		return err
	}
	defer chunkIn.Close()
	vecOut, err := os.Create(j.vectorsPath)
	if err != nil {
		return err
	}
	embedStats, err := pipeline.EmbedChunks(ctx, chunkIn, vecOut, j.embedder, pipeline.EmbedOptions{
		TaskType:  "retrieval_document",
		Normalize: j.normalize,
	})
	if cerr := vecOut.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	vecIn, err := os.Open(j.vectorsPath)
	if err != nil {
		return err
	}
	defer vecIn.Close()
	indexStats, err := pipeline.BuildIndex(ctx, vecIn, j.store)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	if j.retrieval != nil {
		j.retrieval.Reload()
	}
	logger.Info("reindex complete",
		zap.Int("documents", chunkStats.Documents),
		zap.Int("chunks", chunkStats.Chunks),
		zap.Int("embedded", embedStats.Embedded),
		zap.Int("indexed", indexStats.Indexed),
	)
	return nil
}
