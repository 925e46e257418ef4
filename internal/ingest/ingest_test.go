package ingest

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kevinktg/chatbot/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadJSONObject(t *testing.T) {
	path := writeTemp(t, "one.json", `{"text":"hello","price":9.5}`)
	items, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "hello", items[0]["text"])
}

func TestLoadJSONArray(t *testing.T) {
	path := writeTemp(t, "list.json", `[{"text":"a"}, "bare string", 42]`)
	items, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "a", items[0]["text"])
	require.Equal(t, "bare string", items[1]["value"])
	require.Equal(t, float64(42), items[2]["value"])
}

func TestLoadJSONL(t *testing.T) {
	path := writeTemp(t, "rows.jsonl", "{\"text\":\"a\"}\n\n\"plain\"\n")
	items, err := LoadJSON(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "a", items[0]["text"])
	require.Equal(t, "plain", items[1]["value"])
}

func TestLoadJSONMissingFile(t *testing.T) {
	_, err := LoadJSON(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestNormalizeStrings(t *testing.T) {
	docs := NormalizeStrings("menu.pdf", "pdf", []string{"[PAGE 1] text", "   ", "[PAGE 2] more"})
	require.Len(t, docs, 2)
	for _, d := range docs {
		require.NotEmpty(t, d.ID)
		require.Equal(t, "menu.pdf", d.Source)
		require.Equal(t, "pdf", d.DocType)
		require.Equal(t, "text", d.Meta["content_type"])
	}
	require.NotEqual(t, docs[0].ID, docs[1].ID)
}

func TestNormalizeObjects(t *testing.T) {
	items := []map[string]interface{}{
		{"text": "from text field"},
		{"body": "from body field"},
		{"item_name": "Wrap", "price": 9.5},
		{"text": "   "},
	}
	docs := NormalizeObjects("items.json", "json", items)
	require.Len(t, docs, 3)
	require.Equal(t, "from text field", docs[0].Content)
	require.Equal(t, "from body field", docs[1].Content)
	// No text/body: compact JSON flatten.
	require.Contains(t, docs[2].Content, `"item_name":"Wrap"`)
	require.Equal(t, items[2], docs[2].Meta["json"])
}

func TestSaveDocuments(t *testing.T) {
	docs := NormalizeStrings("s", "pdf", []string{"page one"})
	var buf bytes.Buffer
	require.NoError(t, SaveDocuments(&buf, docs))
	var got model.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, docs[0].ID, got.ID)
	require.Equal(t, "page one", got.Content)
}

func TestExtractMarkdown(t *testing.T) {
	md := "# Title\n\nFirst paragraph with *emphasis*.\n\n## Sub\n\n- item one\n- item two\n\n```\ncode line\n```\n"
	path := writeTemp(t, "doc.md", md)
	text, err := ExtractMarkdown(path)
	require.NoError(t, err)
	lines := strings.Split(text, "\n")
	require.Equal(t, "# Title", lines[0])
	require.Contains(t, text, "First paragraph with emphasis")
	require.Contains(t, text, "## Sub")
	require.Contains(t, text, "code line")
}

func TestCleanMenuJSON(t *testing.T) {
	in := `[
		{"item_code":"A1","item_name":"  veggie wrap ","primary_dietary_flag":"gluten free","all_dietary_flags":"vegan-friendly"},
		{"item_code":"A1","item_name":"  veggie wrap "},
		{"item_name":"no code"},
		{"item_code":"B2","item_name":"soup"}
	]`
	inPath := writeTemp(t, "menu.json", in)
	outPath := filepath.Join(t.TempDir(), "clean.json")

	n, err := CleanMenuJSON(inPath, outPath)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &items))
	require.Equal(t, "Veggie Wrap", items[0]["item_name"])
	require.Equal(t, "GLUTENFREE", items[0]["primary_dietary_flag"])
	require.Equal(t, "Vegan Friendly", items[0]["all_dietary_flags"])
}
