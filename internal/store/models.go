package store

// ChunkMeta is the persisted metadata schema for an indexed chunk. It must
// round-trip losslessly: a retrieved record reproduces the original chunk's
// fields exactly.
type ChunkMeta struct {
	FilePath      string
	ChunkType     string
	Name          string
	StartLine     int
	EndLine       int
	ParentContext string
	Size          int
	Content       string
}

// Record pairs an embedding vector with its chunk metadata for insertion.
type Record struct {
	Vector []float32
	Meta   ChunkMeta
}

// SearchResult is one index hit. Score is a similarity in [0,1], higher is
// more similar.
type SearchResult struct {
	ID    string
	Score float64
	Meta  ChunkMeta
}

// SearchOptions bound a nearest-neighbor search.
type SearchOptions struct {
	// Limit is the maximum number of results returned.
	Limit int
	// ScoreThreshold excludes results scoring below it.
	ScoreThreshold float64
	// Filter restricts results to records whose metadata fields equal the
	// given values. Supported fields: file_path, chunk_type, name,
	// parent_context.
	Filter map[string]string
}

// CollectionInfo summarizes the state of the collection.
type CollectionInfo struct {
	Name        string
	RecordCount int64
	Status      string
}
