// Package index drives the indexing pipeline: files are split into chunks,
// the chunks embedded in batches, and the results written to the vector
// store with their metadata. Files are processed one at a time; a file is
// indexed completely or not at all.
package index

import (
	"fmt"

	"go.uber.org/zap"

	"logagent/internal/embedder"
	"logagent/internal/splitter"
	"logagent/internal/store"
	"logagent/internal/walker"
)

// embedBatchSize bounds the number of chunks per embedding request.
const embedBatchSize = 32

// Stats reports directory indexing results.
type Stats struct {
	FilesTotal   int
	FilesIndexed int
	FilesFailed  int
	ChunksTotal  int
}

// ProgressFunc receives progress updates during directory indexing.
type ProgressFunc func(phase string, processed, total int)

// Indexer converts source files into indexed records.
type Indexer struct {
	splitter   *splitter.Splitter
	emb        embedder.Embedder
	st         store.Store
	log        *zap.Logger
	onProgress ProgressFunc
}

// New creates an Indexer over the given collaborators. A nil logger
// disables logging.
func New(sp *splitter.Splitter, emb embedder.Embedder, st store.Store, log *zap.Logger) *Indexer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Indexer{splitter: sp, emb: emb, st: st, log: log}
}

// OnProgress registers a callback invoked after each file during directory
// indexing.
func (idx *Indexer) OnProgress(fn ProgressFunc) { idx.onProgress = fn }

// InitializeCollection creates the vector collection sized to the
// embedder's output dimension. It must be called once before any insert;
// a dimension conflict with an existing collection is surfaced immediately.
func (idx *Indexer) InitializeCollection() error {
	dim, err := idx.emb.Dimension()
	if err != nil {
		return fmt.Errorf("embedding dimension: %w", err)
	}
	if err := idx.st.CreateCollection(dim); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	idx.log.Info("collection initialized", zap.Int("dimension", dim))
	return nil
}

// IndexFile splits one file, embeds its chunks in a single batched pass,
// and inserts the records atomically. It returns the number of chunks
// indexed; a file yielding no chunks returns 0 without error. Re-indexing
// the same file produces new records, not updates.
func (idx *Indexer) IndexFile(path string) (int, error) {
	chunks, err := idx.splitter.Split(path)
	if err != nil {
		return 0, err
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	// One embedding pass per file, sub-batched to bound request size.
	vectors := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += embedBatchSize {
		end := min(i+embedBatchSize, len(texts))
		vecs, err := idx.emb.EmbedDocuments(texts[i:end])
		if err != nil {
			return 0, fmt.Errorf("embed chunks of %s: %w", path, err)
		}
		vectors = append(vectors, vecs...)
	}

	records := make([]store.Record, len(chunks))
	for i, c := range chunks {
		records[i] = store.Record{
			Vector: vectors[i],
			Meta: store.ChunkMeta{
				FilePath:      c.FilePath,
				ChunkType:     string(c.Kind),
				Name:          c.Name,
				StartLine:     c.StartLine,
				EndLine:       c.EndLine,
				ParentContext: c.ParentContext,
				Size:          c.Size(),
				Content:       c.Content,
			},
		}
	}

	if _, err := idx.st.InsertBatch(records); err != nil {
		return 0, fmt.Errorf("insert chunks of %s: %w", path, err)
	}

	idx.log.Info("indexed file", zap.String("path", path), zap.Int("chunks", len(chunks)))
	return len(chunks), nil
}

// IndexDirectory indexes every file under root matching pattern, one file
// at a time in enumeration order. Per-file failures are logged and skipped;
// the returned stats reflect only successfully indexed files.
func (idx *Indexer) IndexDirectory(root, pattern string) (*Stats, error) {
	files, err := walker.Walk(root, pattern)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	stats := &Stats{FilesTotal: len(files)}
	for _, f := range files {
		n, err := idx.IndexFile(f.Path)
		if err != nil {
			stats.FilesFailed++
			idx.log.Warn("skipping file", zap.String("path", f.Path), zap.Error(err))
		} else {
			stats.FilesIndexed++
			stats.ChunksTotal += n
		}
		if idx.onProgress != nil {
			idx.onProgress("Indexing files...", stats.FilesIndexed+stats.FilesFailed, stats.FilesTotal)
		}
	}

	idx.log.Info("directory indexed",
		zap.String("root", root),
		zap.Int("files", stats.FilesIndexed),
		zap.Int("failed", stats.FilesFailed),
		zap.Int("chunks", stats.ChunksTotal),
	)
	return stats, nil
}
