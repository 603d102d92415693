package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, dim int) *SQLiteStore {
	t.Helper()
	st, err := Open(":memory:", "code_chunks")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	if dim > 0 {
		require.NoError(t, st.CreateCollection(dim))
	}
	return st
}

func record(name, chunkType, filePath string, vec []float32) Record {
	content := "def " + name + "(): pass"
	return Record{
		Vector: vec,
		Meta: ChunkMeta{
			FilePath:  filePath,
			ChunkType: chunkType,
			Name:      name,
			StartLine: 1,
			EndLine:   1,
			Size:      len(content),
			Content:   content,
		},
	}
}

func TestCreateCollectionIdempotent(t *testing.T) {
	st := openStore(t, 4)
	assert.NoError(t, st.CreateCollection(4))
}

func TestCreateCollectionDimensionMismatch(t *testing.T) {
	st := openStore(t, 4)
	err := st.CreateCollection(8)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestCreateCollectionRejectsInvalidDimension(t *testing.T) {
	st := openStore(t, 0)
	assert.Error(t, st.CreateCollection(0))
	assert.Error(t, st.CreateCollection(-3))
}

func TestInsertBatchReturnsDistinctIDs(t *testing.T) {
	st := openStore(t, 4)
	ids, err := st.InsertBatch([]Record{
		record("alpha", "function", "a.py", []float32{1, 0, 0, 0}),
		record("beta", "function", "b.py", []float32{0, 1, 0, 0}),
	})
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.NotEqual(t, ids[0], ids[1])
	assert.NotEmpty(t, ids[0])
}

func TestInsertBatchEmptyIsNoOp(t *testing.T) {
	st := openStore(t, 4)
	ids, err := st.InsertBatch(nil)
	assert.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSearchRoundTripsMetadata(t *testing.T) {
	st := openStore(t, 4)
	meta := ChunkMeta{
		FilePath:      "pkg/widget.py",
		ChunkType:     "method",
		Name:          "render",
		StartLine:     10,
		EndLine:       14,
		ParentContext: "Widget",
		Size:          42,
		Content:       "def render(self):\n    return \"w\"",
	}
	ids, err := st.InsertBatch([]Record{{Vector: []float32{0.5, 0.5, 0.5, 0.5}, Meta: meta}})
	require.NoError(t, err)

	results, err := st.Search([]float32{0.5, 0.5, 0.5, 0.5}, SearchOptions{Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, ids[0], r.ID)
	assert.Equal(t, meta, r.Meta)
	assert.InDelta(t, 1.0, r.Score, 1e-5)
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	st := openStore(t, 4)
	_, err := st.InsertBatch([]Record{
		record("far", "function", "far.py", []float32{0, 0, 1, 0}),
		record("near", "function", "near.py", []float32{0.9, 0.1, 0, 0}),
		record("exact", "function", "exact.py", []float32{1, 0, 0, 0}),
	})
	require.NoError(t, err)

	results, err := st.Search([]float32{1, 0, 0, 0}, SearchOptions{Limit: 3})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "exact", results[0].Meta.Name)
	assert.Equal(t, "near", results[1].Meta.Name)
	assert.Equal(t, "far", results[2].Meta.Name)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.GreaterOrEqual(t, results[1].Score, results[2].Score)
}

func TestSearchHonorsLimit(t *testing.T) {
	st := openStore(t, 4)
	_, err := st.InsertBatch([]Record{
		record("a", "function", "a.py", []float32{1, 0, 0, 0}),
		record("b", "function", "b.py", []float32{0.9, 0.1, 0, 0}),
		record("c", "function", "c.py", []float32{0.8, 0.2, 0, 0}),
	})
	require.NoError(t, err)

	results, err := st.Search([]float32{1, 0, 0, 0}, SearchOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Meta.Name)
}

func TestSearchScoreThresholdExcludesAll(t *testing.T) {
	st := openStore(t, 4)
	_, err := st.InsertBatch([]Record{
		record("a", "function", "a.py", []float32{1, 0, 0, 0}),
	})
	require.NoError(t, err)

	// Similarity can never exceed 1.0, so this threshold excludes everything.
	results, err := st.Search([]float32{1, 0, 0, 0}, SearchOptions{Limit: 5, ScoreThreshold: 1.01})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFilterByChunkType(t *testing.T) {
	st := openStore(t, 4)
	_, err := st.InsertBatch([]Record{
		record("f", "function", "a.py", []float32{1, 0, 0, 0}),
		record("C", "class", "a.py", []float32{0.99, 0.01, 0, 0}),
	})
	require.NoError(t, err)

	results, err := st.Search([]float32{1, 0, 0, 0}, SearchOptions{
		Limit:  5,
		Filter: map[string]string{"chunk_type": "class"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "C", results[0].Meta.Name)
}

func TestSearchRejectsUnknownFilterField(t *testing.T) {
	st := openStore(t, 4)
	_, err := st.Search([]float32{1, 0, 0, 0}, SearchOptions{
		Limit:  5,
		Filter: map[string]string{"content": "x"},
	})
	assert.Error(t, err)
}

func TestInfoReflectsLifecycle(t *testing.T) {
	st := openStore(t, 0)

	info, err := st.Info()
	require.NoError(t, err)
	assert.Equal(t, "code_chunks", info.Name)
	assert.Equal(t, "uninitialized", info.Status)

	require.NoError(t, st.CreateCollection(4))
	_, err = st.InsertBatch([]Record{
		record("a", "function", "a.py", []float32{1, 0, 0, 0}),
		record("b", "function", "b.py", []float32{0, 1, 0, 0}),
	})
	require.NoError(t, err)

	info, err = st.Info()
	require.NoError(t, err)
	assert.Equal(t, "ready", info.Status)
	assert.Equal(t, int64(2), info.RecordCount)
}

func TestDeleteAllKeepsCollection(t *testing.T) {
	st := openStore(t, 4)
	_, err := st.InsertBatch([]Record{
		record("a", "function", "a.py", []float32{1, 0, 0, 0}),
	})
	require.NoError(t, err)

	require.NoError(t, st.DeleteAll())

	info, err := st.Info()
	require.NoError(t, err)
	assert.Equal(t, "ready", info.Status)
	assert.Equal(t, int64(0), info.RecordCount)

	// Re-insert still works against the surviving vector table.
	_, err = st.InsertBatch([]Record{
		record("b", "function", "b.py", []float32{0, 1, 0, 0}),
	})
	assert.NoError(t, err)
}

func TestDeleteAllBeforeCollectionExists(t *testing.T) {
	st := openStore(t, 0)
	assert.NoError(t, st.DeleteAll())
}
