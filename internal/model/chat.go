package model

// ChatMessage is one turn of a chat session transcript. Timestamp is
// RFC3339 UTC, kept as a string because that is its wire shape.
type ChatMessage struct {
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Timestamp string                 `json:"timestamp"`
	Meta      map[string]interface{} `json:"meta,omitempty"`
}

// SearchHit is one ranked retrieval result. Text and Source are joined in
// from the chunk lookup and may be empty when the chunk record is missing.
type SearchHit struct {
	Rank   int     `json:"rank"`
	ID     string  `json:"id"`
	Score  float32 `json:"score"`
	Text   string  `json:"text,omitempty"`
	Source string  `json:"source,omitempty"`
}
