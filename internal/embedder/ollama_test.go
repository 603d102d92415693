package embedder

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama serves /api/embed, recording every input string it receives and
// answering with a fixed-dimension vector per input.
type fakeOllama struct {
	t      *testing.T
	dim    int
	inputs [][]string
	calls  atomic.Int32
}

func (f *fakeOllama) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(f.t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&req))
		f.inputs = append(f.inputs, req.Input)
		f.calls.Add(1)

		resp := embedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range req.Input {
			vec := make([]float32, f.dim)
			vec[0] = 1
			resp.Embeddings[i] = vec
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func newFake(t *testing.T, dim int) (*fakeOllama, *OllamaEmbedder) {
	f := &fakeOllama{t: t, dim: dim}
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return f, NewOllama(srv.URL, "test-embed")
}

func TestEmbedDocumentsUsesPassagePrefix(t *testing.T) {
	f, e := newFake(t, 8)

	vecs, err := e.EmbedDocuments([]string{"def f(): pass", "class C: pass"})
	require.NoError(t, err)
	require.Len(t, vecs, 2)
	assert.Len(t, vecs[0], 8)

	require.Len(t, f.inputs, 1)
	require.Len(t, f.inputs[0], 2)
	assert.Equal(t, "passage: def f(): pass", f.inputs[0][0])
	assert.Equal(t, "passage: class C: pass", f.inputs[0][1])
}

func TestEmbedQueryUsesQueryPrefix(t *testing.T) {
	f, e := newFake(t, 8)

	vec, err := e.EmbedQuery("KeyError in render")
	require.NoError(t, err)
	assert.Len(t, vec, 8)

	require.Len(t, f.inputs, 1)
	assert.Equal(t, "query: KeyError in render", f.inputs[0][0])
}

func TestEmbedDocumentsEmptyInput(t *testing.T) {
	f, e := newFake(t, 8)

	vecs, err := e.EmbedDocuments(nil)
	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Zero(t, f.calls.Load(), "no request should be made for an empty batch")
}

func TestDimensionProbeIsCached(t *testing.T) {
	f, e := newFake(t, 16)

	dim, err := e.Dimension()
	require.NoError(t, err)
	assert.Equal(t, 16, dim)

	dim, err = e.Dimension()
	require.NoError(t, err)
	assert.Equal(t, 16, dim)
	assert.Equal(t, int32(1), f.calls.Load(), "second call must hit the cache")
}

func TestEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	e := NewOllama(srv.URL, "missing-model")
	_, err := e.EmbedDocument("text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{Embeddings: [][]float32{{1, 0}}})
	}))
	t.Cleanup(srv.Close)

	e := NewOllama(srv.URL, "test-embed")
	_, err := e.EmbedDocuments([]string{"a", "b"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expected 2 embeddings"))
}
