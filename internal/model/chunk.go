package model

// Chunk is a bounded passage of a document prepared for embedding and
// retrieval. Start/End are offsets into the reconstructed stream of
// produced chunk texts, not into the original source; consecutive chunks
// satisfy start[i+1] = max(0, end[i] - overlap).
type Chunk struct {
	ID     string                 `json:"id"`
	DocID  string                 `json:"doc_id"`
	Source string                 `json:"source"`
	Start  int                    `json:"start"`
	End    int                    `json:"end"`
	Text   string                 `json:"text"`
	Meta   map[string]interface{} `json:"meta"`
}

// ChunkVector pairs a chunk id with its embedding, preserving chunk order
// between the embed and index stages.
type ChunkVector struct {
	ID        string    `json:"id"`
	Embedding []float32 `json:"embedding"`
}
