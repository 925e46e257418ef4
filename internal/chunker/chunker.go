package chunker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/kevinktg/chatbot/internal/model"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 150
	DefaultMinChunkSize = 200
)

// Options control segmentation and window packing.
type Options struct {
	ChunkSize       int
	ChunkOverlap    int
	MinChunkSize    int
	RespectHeadings bool
}

type Option func(*Chunker)

// WithHeadingClassifier replaces the default heading heuristic.
func WithHeadingClassifier(fn HeadingClassifier) Option {
	return func(c *Chunker) {
		if fn != nil {
			c.isHeading = fn
		}
	}
}

// WithSentenceSplitter replaces the default sentence heuristic.
func WithSentenceSplitter(fn SentenceSplitter) Option {
	return func(c *Chunker) {
		if fn != nil {
			c.split = fn
		}
	}
}

// Chunker splits documents into overlapping, heading-aware passages of
// bounded size. It is pure over its inputs and safe to share across
// documents.
type Chunker struct {
	opts      Options
	isHeading HeadingClassifier
	split     SentenceSplitter
}

func New(opts Options, extra ...Option) *Chunker {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = 0
	}
	if opts.MinChunkSize < 0 {
		opts.MinChunkSize = 0
	}
	c := &Chunker{
		opts:      opts,
		isHeading: IsHeading,
		split:     SplitSentences,
	}
	for _, fn := range extra {
		fn(c)
	}
	return c
}

// ChunkText produces the ordered chunk texts for a document body:
// heading-delimited segments first, then sentence splitting and window
// packing per segment, outputs concatenated in segment order.
func (c *Chunker) ChunkText(text string) []string {
	var out []string
	for _, seg := range segments(text, c.opts.RespectHeadings, c.isHeading) {
		out = append(out, packWindows(c.split(seg), c.opts.ChunkSize, c.opts.ChunkOverlap, c.opts.MinChunkSize)...)
	}
	return out
}

// ChunkDocument runs ChunkText over a document and emits the final chunk
// records: ids "{doc_id}:{index}" with the index preserved across segments,
// and start/end offsets over the reconstructed stream of chunk texts
// advancing by max(0, end-overlap).
func (c *Chunker) ChunkDocument(doc *model.Document) []*model.Chunk {
	pieces := c.ChunkText(doc.Content)
	chunks := make([]*model.Chunk, 0, len(pieces))
	start := 0
	for idx, text := range pieces {
		end := start + utf8.RuneCountInString(text)
		chunks = append(chunks, &model.Chunk{
			ID:     fmt.Sprintf("%s:%d", doc.ID, idx),
			DocID:  doc.ID,
			Source: doc.Source,
			Start:  start,
			End:    end,
			Text:   text,
			Meta:   doc.Meta,
		})
		start = end - c.opts.ChunkOverlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

// StreamStats summarizes one ChunkStream run.
type StreamStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
	Skipped   int `json:"skipped"`
}

// ChunkStream reads document records from a JSONL stream, chunks each
// document end-to-end, and writes chunk records to the output stream.
// Malformed lines are skipped and counted rather than failing the run;
// documents with empty content simply produce no chunks.
func (c *Chunker) ChunkStream(ctx context.Context, r io.Reader, w io.Writer) (StreamStats, error) {
	var stats StreamStats
	logger := logutil.GetLogger(ctx)
	enc := json.NewEncoder(w)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var doc model.Document
		if err := json.Unmarshal([]byte(line), &doc); err != nil || doc.ID == "" {
			stats.Skipped++
			continue
		}
		stats.Documents++
		for _, chunk := range c.ChunkDocument(&doc) {
			if err := enc.Encode(chunk); err != nil {
				return stats, fmt.Errorf("write chunk record: %w", err)
			}
			stats.Chunks++
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read document stream: %w", err)
	}
	if stats.Skipped > 0 {
		logger.Warn("skipped malformed document records", zap.Int("count", stats.Skipped))
	}
	logger.Info("chunking completed",
		zap.Int("documents", stats.Documents),
		zap.Int("chunks", stats.Chunks),
	)
	return stats, nil
}
