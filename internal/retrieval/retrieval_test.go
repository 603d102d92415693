package retrieval

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logagent/internal/store"
)

type fakeEmbedder struct {
	lastQuery string
	err       error
}

func (f *fakeEmbedder) Dimension() (int, error)                 { return 4, nil }
func (f *fakeEmbedder) EmbedDocument(string) ([]float32, error) { return []float32{1, 0, 0, 0}, nil }
func (f *fakeEmbedder) EmbedDocuments(ts []string) ([][]float32, error) {
	out := make([][]float32, len(ts))
	for i := range ts {
		out[i] = []float32{1, 0, 0, 0}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(text string) ([]float32, error) {
	f.lastQuery = text
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0, 1, 0, 0}, nil
}

type fakeStore struct {
	lastVec  []float32
	lastOpts store.SearchOptions
	results  []store.SearchResult
	err      error
}

func (f *fakeStore) CreateCollection(int) error                   { return nil }
func (f *fakeStore) InsertBatch([]store.Record) ([]string, error) { return nil, nil }
func (f *fakeStore) Info() (store.CollectionInfo, error)          { return store.CollectionInfo{}, nil }
func (f *fakeStore) DeleteAll() error                             { return nil }
func (f *fakeStore) Close() error                                 { return nil }

func (f *fakeStore) Search(vec []float32, opts store.SearchOptions) ([]store.SearchResult, error) {
	f.lastVec = vec
	f.lastOpts = opts
	return f.results, f.err
}

func TestSearchPassesOptionsThrough(t *testing.T) {
	emb := &fakeEmbedder{}
	st := &fakeStore{results: []store.SearchResult{
		{ID: "1", Score: 0.9, Meta: store.ChunkMeta{Name: "f"}},
	}}
	eng := New(emb, st)

	filter := map[string]string{"chunk_type": "function"}
	results, err := eng.Search("KeyError in handler", 7, 0.4, filter)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f", results[0].Meta.Name)

	assert.Equal(t, "KeyError in handler", emb.lastQuery)
	assert.Equal(t, []float32{0, 1, 0, 0}, st.lastVec)
	assert.Equal(t, 7, st.lastOpts.Limit)
	assert.Equal(t, 0.4, st.lastOpts.ScoreThreshold)
	assert.Equal(t, filter, st.lastOpts.Filter)
}

func TestSearchEmptyResultIsNotError(t *testing.T) {
	eng := New(&fakeEmbedder{}, &fakeStore{})
	results, err := eng.Search("nothing matches", 5, 0.3, nil)
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchEmbedFailure(t *testing.T) {
	eng := New(&fakeEmbedder{err: errors.New("ollama down")}, &fakeStore{})
	_, err := eng.Search("q", 5, 0.3, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed query")
}

func TestSearchStoreFailure(t *testing.T) {
	eng := New(&fakeEmbedder{}, &fakeStore{err: errors.New("db locked")})
	_, err := eng.Search("q", 5, 0.3, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vector search")
}
