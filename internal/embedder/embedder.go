// Package embedder converts text into fixed-dimension vectors.
//
// Documents and queries are encoded asymmetrically: document text carries a
// "passage: " prefix and query text a "query: " prefix, following the E5
// family convention. Both encodings share one dimensionality and metric
// space.
package embedder

// Embedder is the embedding collaborator contract. Batch results preserve
// input order.
type Embedder interface {
	// Dimension returns the model's output vector dimensionality.
	Dimension() (int, error)
	// EmbedDocument embeds a single document (passage encoding).
	EmbedDocument(text string) ([]float32, error)
	// EmbedDocuments embeds a batch of documents, preserving order.
	EmbedDocuments(texts []string) ([][]float32, error)
	// EmbedQuery embeds a search query (query encoding).
	EmbedQuery(text string) ([]float32, error)
}

const (
	passagePrefix = "passage: "
	queryPrefix   = "query: "
)
