package model

import (
	"time"

	"github.com/google/uuid"
)

// Document is a unit of ingested content. It is created once by the
// ingest stage and never mutated afterwards.
type Document struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	DocType   string                 `json:"doc_type"`
	Content   string                 `json:"content"`
	Meta      map[string]interface{} `json:"meta"`
	CreatedAt string                 `json:"created_at"`
}

func NewDocument(source, docType, content string, meta map[string]interface{}) *Document {
	if meta == nil {
		meta = map[string]interface{}{}
	}
	return &Document{
		ID:        uuid.NewString(),
		Source:    source,
		DocType:   docType,
		Content:   content,
		Meta:      meta,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
}
