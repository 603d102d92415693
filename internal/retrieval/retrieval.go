// Package retrieval matches query text against the vector index.
package retrieval

import (
	"fmt"

	"logagent/internal/embedder"
	"logagent/internal/store"
)

// Engine embeds queries and runs filtered nearest-neighbor searches.
type Engine struct {
	emb embedder.Embedder
	st  store.Store
}

// New creates a retrieval engine over the given collaborators.
func New(emb embedder.Embedder, st store.Store) *Engine {
	return &Engine{emb: emb, st: st}
}

// Search embeds query with the asymmetric query encoding and returns up to
// limit results in descending similarity order, all scoring at least
// threshold. filter optionally restricts results by metadata equality and
// is applied by the index itself, not in-process. An empty result is a
// valid, non-error outcome.
func (e *Engine) Search(query string, limit int, threshold float64, filter map[string]string) ([]store.SearchResult, error) {
	vec, err := e.emb.EmbedQuery(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := e.st.Search(vec, store.SearchOptions{
		Limit:          limit,
		ScoreThreshold: threshold,
		Filter:         filter,
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return results, nil
}
