package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/kevinktg/chatbot/internal/model"
)

// NormalizeStrings turns page-level strings into document records.
func NormalizeStrings(source, docType string, items []string) []*model.Document {
	docs := make([]*model.Document, 0, len(items))
	for _, content := range items {
		if strings.TrimSpace(content) == "" {
			continue
		}
		meta := map[string]interface{}{
			"content_type": "text",
			"len":          len([]rune(content)),
		}
		docs = append(docs, model.NewDocument(source, docType, content, meta))
	}
	return docs
}

// NormalizeObjects turns loaded JSON objects into document records. The
// body prefers a string "text" or "body" field and falls back to a compact
// JSON flatten; the full object rides along in the chunk metadata.
func NormalizeObjects(source, docType string, items []map[string]interface{}) []*model.Document {
	docs := make([]*model.Document, 0, len(items))
	for _, item := range items {
		content := objectContent(item)
		if strings.TrimSpace(content) == "" {
			continue
		}
		meta := map[string]interface{}{
			"json": item,
			"len":  len([]rune(content)),
		}
		docs = append(docs, model.NewDocument(source, docType, content, meta))
	}
	return docs
}

func objectContent(item map[string]interface{}) string {
	if s, ok := item["text"].(string); ok {
		return s
	}
	if s, ok := item["body"].(string); ok {
		return s
	}
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprint(item)
	}
	return string(data)
}

// SaveDocuments writes document records as a JSONL stream.
func SaveDocuments(w io.Writer, docs []*model.Document) error {
	enc := json.NewEncoder(w)
	for _, d := range docs {
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("write document record: %w", err)
		}
	}
	return nil
}
