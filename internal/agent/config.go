package agent

// Config carries every tunable the pipeline needs. It is threaded
// explicitly into each component at construction; nothing reads ambient
// state, so the same code paths are deterministic under test.
type Config struct {
	// DBPath is the SQLite database location; ":memory:" for ephemeral use.
	DBPath string
	// Collection names the vector collection.
	Collection string

	// OllamaURL is the base URL of the Ollama instance.
	OllamaURL string
	// EmbedModel is the embedding model name.
	EmbedModel string
	// AdvisorModel is the generative model used for advice.
	AdvisorModel string
	// UseLLM enables the LLM advice path. Rule-based advice remains the
	// fallback either way.
	UseLLM bool

	// SmallFileThreshold is the character count below which files are
	// indexed whole.
	SmallFileThreshold int
	// NumResults is the default search result count.
	NumResults int
	// MinScore is the default similarity threshold.
	MinScore float64
	// Pattern is the default glob for directory indexing.
	Pattern string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		DBPath:             ".logagent/index.db",
		Collection:         "code_chunks",
		OllamaURL:          "http://localhost:11434",
		EmbedModel:         "nomic-embed-text",
		AdvisorModel:       "qwen3:8b",
		UseLLM:             true,
		SmallFileThreshold: 1000,
		NumResults:         5,
		MinScore:           0.3,
		Pattern:            "**/*.py",
	}
}

// DevelopmentConfig returns defaults suited to local experimentation: an
// in-memory database and no LLM dependency.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.DBPath = ":memory:"
	cfg.UseLLM = false
	return cfg
}
