package llm

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logagent/internal/store"
)

func chunk(name, parent string, score float64) store.SearchResult {
	return store.SearchResult{
		Score: score,
		Meta: store.ChunkMeta{
			FilePath:      "app/" + name + ".py",
			ChunkType:     "function",
			Name:          name,
			StartLine:     1,
			EndLine:       3,
			ParentContext: parent,
			Content:       "def " + name + "():\n    pass",
		},
	}
}

func TestAnalyzeWithContextSendsPrompt(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(chatResponse{
			Message: Message{Role: "assistant", Content: "Root cause: missing key."},
		})
	}))
	t.Cleanup(srv.Close)

	a := NewOllamaAdvisor(srv.URL, "test-model")
	out, err := a.AnalyzeWithContext("KeyError: 'x'", []store.SearchResult{chunk("load", "", 0.9)}, 3)
	require.NoError(t, err)
	assert.Equal(t, "Root cause: missing key.", out)

	assert.Equal(t, "test-model", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Contains(t, got.Messages[0].Content, "KeyError: 'x'")
	assert.Contains(t, got.Messages[0].Content, "app/load.py")
}

func TestAnalyzeWithContextServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	a := NewOllamaAdvisor(srv.URL, "test-model")
	_, err := a.AnalyzeWithContext("ERROR", []store.SearchResult{chunk("f", "", 0.5)}, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFormatContextCapsChunks(t *testing.T) {
	results := []store.SearchResult{
		chunk("a", "", 0.9),
		chunk("b", "Widget", 0.8),
		chunk("c", "", 0.7),
		chunk("d", "", 0.6),
	}

	out := formatContext(results, 3)
	assert.Contains(t, out, "Relevant Code Chunk 3")
	assert.NotContains(t, out, "Relevant Code Chunk 4")
	assert.NotContains(t, out, "app/d.py")
}

func TestFormatContextParentFallback(t *testing.T) {
	out := formatContext([]store.SearchResult{chunk("free", "", 0.9)}, 1)
	assert.Contains(t, out, "**Parent:** N/A")

	out = formatContext([]store.SearchResult{chunk("method", "Widget", 0.9)}, 1)
	assert.Contains(t, out, "**Parent:** Widget")
}
