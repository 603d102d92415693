// Package agent wires the pipeline together behind a single facade:
// splitting, embedding, storage, retrieval, and analysis, configured once
// and injected into each component.
package agent

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"logagent/internal/analyzer"
	"logagent/internal/embedder"
	"logagent/internal/index"
	"logagent/internal/llm"
	"logagent/internal/retrieval"
	"logagent/internal/splitter"
	"logagent/internal/splitter/languages"
	"logagent/internal/store"
)

// LogAgent is the top-level entry point for indexing codebases and
// analyzing error logs against them.
type LogAgent struct {
	cfg      Config
	st       *store.SQLiteStore
	indexer  *index.Indexer
	engine   *retrieval.Engine
	analyzer *analyzer.Analyzer
	log      *zap.Logger
}

// New builds an agent from the given configuration. A nil logger disables
// logging.
func New(cfg Config, log *zap.Logger) (*LogAgent, error) {
	if log == nil {
		log = zap.NewNop()
	}

	st, err := store.Open(cfg.DBPath, cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	reg := splitter.NewRegistry()
	languages.RegisterPython(reg)
	languages.RegisterGo(reg)
	languages.RegisterJavaScript(reg)

	emb := embedder.NewOllama(cfg.OllamaURL, cfg.EmbedModel)
	sp := splitter.New(reg, cfg.SmallFileThreshold, log)
	engine := retrieval.New(emb, st)

	var advisor llm.Advisor
	if cfg.UseLLM {
		advisor = llm.NewOllamaAdvisor(cfg.OllamaURL, cfg.AdvisorModel)
	}

	return &LogAgent{
		cfg:      cfg,
		st:       st,
		indexer:  index.New(sp, emb, st, log),
		engine:   engine,
		analyzer: analyzer.New(engine, advisor, log),
		log:      log,
	}, nil
}

// Setup initializes the vector collection. Must run once before indexing.
func (a *LogAgent) Setup() error {
	return a.indexer.InitializeCollection()
}

// Indexer exposes the underlying indexer, e.g. for progress callbacks.
func (a *LogAgent) Indexer() *index.Indexer { return a.indexer }

// IndexPath indexes a file or directory. For directories, pattern selects
// the files ("" uses the configured default). Returns the number of chunks
// indexed. A missing path is an error.
func (a *LogAgent) IndexPath(path, pattern string) (int, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("codebase path: %w", err)
	}

	if !fi.IsDir() {
		return a.indexer.IndexFile(path)
	}

	if pattern == "" {
		pattern = a.cfg.Pattern
	}
	stats, err := a.indexer.IndexDirectory(path, pattern)
	if err != nil {
		return 0, err
	}
	return stats.ChunksTotal, nil
}

// AnalyzeLog analyzes an error log. Zero numResults and minScore fall back
// to the configured defaults.
func (a *LogAgent) AnalyzeLog(errorLog string, numResults int, minScore float64) (*analyzer.AnalysisResult, error) {
	if numResults <= 0 {
		numResults = a.cfg.NumResults
	}
	if minScore <= 0 {
		minScore = a.cfg.MinScore
	}
	return a.analyzer.AnalyzeError(errorLog, numResults, minScore)
}

// AnalyzeLogFile reads an error log from disk and analyzes it. A missing
// log file is an error.
func (a *LogAgent) AnalyzeLogFile(path string, numResults int, minScore float64) (*analyzer.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read log file: %w", err)
	}
	return a.AnalyzeLog(string(data), numResults, minScore)
}

// AnalyzeMultiple analyzes a batch of error logs sequentially, with the
// same default handling as AnalyzeLog.
func (a *LogAgent) AnalyzeMultiple(errorLogs []string, numResults int, minScore float64) ([]*analyzer.AnalysisResult, error) {
	if numResults <= 0 {
		numResults = a.cfg.NumResults
	}
	if minScore <= 0 {
		minScore = a.cfg.MinScore
	}
	return a.analyzer.AnalyzeMultiple(errorLogs, numResults, minScore)
}

// SearchCode searches the index for code relevant to an arbitrary query.
// filter optionally restricts results by metadata equality (e.g.
// chunk_type = function) and may be nil.
func (a *LogAgent) SearchCode(query string, limit int, minScore float64, filter map[string]string) ([]store.SearchResult, error) {
	if limit <= 0 {
		limit = a.cfg.NumResults
	}
	return a.engine.Search(query, limit, minScore, filter)
}

// Stats reports the state of the vector collection.
func (a *LogAgent) Stats() (store.CollectionInfo, error) {
	return a.st.Info()
}

// Reset removes all indexed records. Re-indexing after Reset is how callers
// get fresh state; indexing never deduplicates.
func (a *LogAgent) Reset() error {
	return a.st.DeleteAll()
}

// Close releases the underlying store.
func (a *LogAgent) Close() error {
	return a.st.Close()
}
