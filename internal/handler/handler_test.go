package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/kevinktg/chatbot/internal/handler"
	"github.com/kevinktg/chatbot/internal/model"
	"github.com/kevinktg/chatbot/internal/pkg/errcode"
	"github.com/kevinktg/chatbot/internal/service"
	"github.com/kevinktg/chatbot/internal/vectorstore"
)

type fixedEmbedder struct {
	vec []float32
}

func (f *fixedEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.vec, nil
}

func (f *fixedEmbedder) ModelName() string { return "fixed" }

type fixedGenerator struct {
	reply string
}

func (f *fixedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return f.reply, nil
}

type envelope struct {
	Code int                    `json:"code"`
	Msg  string                 `json:"msg"`
	Data map[string]interface{} `json:"data"`
}

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	chunkPath := filepath.Join(dir, "chunks.jsonl")
	f, err := os.Create(chunkPath)
	require.NoError(t, err)
	enc := json.NewEncoder(f)
	require.NoError(t, enc.Encode(model.Chunk{
		ID:     "d1:0",
		DocID:  "d1",
		Source: "menu.json",
		Text:   "Kangaroo skewers with native pepper.",
	}))
	require.NoError(t, f.Close())

	store, err := vectorstore.NewStore("flat", map[string]interface{}{"dir": filepath.Join(dir, "index")})
	require.NoError(t, err)
	require.NoError(t, store.Add(context.Background(), []model.ChunkVector{
		{ID: "d1:0", Embedding: []float32{1, 0}},
	}))

	retrieval := service.NewRetrievalService(store, &fixedEmbedder{vec: []float32{1, 0}}, chunkPath, 3)
	chat := service.NewChatService(retrieval, &fixedGenerator{reply: "We serve kangaroo skewers."}, "food")

	deps := handler.RouterDeps{
		Chat:   handler.NewChatHandler(chat),
		Query:  handler.NewQueryHandler(retrieval),
		Health: handler.NewHealthHandler(chat, true, true),
	}
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"), deps)
	return router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestChatEndpoint(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]string{
		"message":    "What do you serve?",
		"session_id": "s1",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var result envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "We serve kangaroo skewers.", result.Data["response"])
	require.Equal(t, "s1", result.Data["session_id"])
	require.Equal(t, true, result.Data["context_used"])

	ts, ok := result.Data["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	require.NoError(t, err)
}

func TestChatEndpointValidation(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]string{"session_id": "s1"})
	require.Equal(t, http.StatusOK, resp.Code)
	var result envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, int(errcode.ErrInvalid), result.Code)
}

func TestChatHistoryEndpoint(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/chat", map[string]string{
		"message":    "hi",
		"session_id": "s1",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, http.MethodGet, "/api/v1/chat/s1/history", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var result envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	messages, ok := result.Data["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 2)
	for _, raw := range messages {
		msg, ok := raw.(map[string]interface{})
		require.True(t, ok)
		ts, ok := msg["timestamp"].(string)
		require.True(t, ok)
		_, err := time.Parse(time.RFC3339, ts)
		require.NoError(t, err)
	}

	resp = doJSON(t, router, http.MethodGet, "/api/v1/chat/missing/history", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, int(errcode.ErrNotFound), result.Code)
}

func TestQueryEndpoint(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/query", map[string]interface{}{
		"query": "skewers",
		"k":     1,
	})
	require.Equal(t, http.StatusOK, resp.Code)
	var result envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	hits, ok := result.Data["hits"].([]interface{})
	require.True(t, ok)
	require.Len(t, hits, 1)
	hit, ok := hits[0].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, float64(1), hit["rank"])
	require.Equal(t, "d1:0", hit["id"])
	require.Equal(t, "Kangaroo skewers with native pepper.", hit["text"])
	require.Equal(t, "menu.json", hit["source"])
}

func TestQueryEndpointValidation(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodPost, "/api/v1/query", map[string]interface{}{"k": 1})
	require.Equal(t, http.StatusOK, resp.Code)
	var result envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, int(errcode.ErrInvalid), result.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := setupRouter(t)

	resp := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var result envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "healthy", result.Data["status"])
	require.Equal(t, true, result.Data["rag_available"])
	require.Equal(t, true, result.Data["llm_available"])
	require.Equal(t, float64(0), result.Data["active_sessions"])
}
