// Package analyzer turns an error log into a diagnostic report: it extracts
// an error summary, retrieves the most relevant indexed code, generates
// advice, and scores its own confidence in the result.
package analyzer

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"logagent/internal/llm"
	"logagent/internal/retrieval"
	"logagent/internal/store"
)

// errorIndicators mark log lines worth surfacing in the summary.
var errorIndicators = []string{"Error:", "Exception:", "Traceback", "ERROR", "FATAL"}

const (
	// maxSummaryLines caps the indicator lines collected into the summary.
	maxSummaryLines = 5
	// fallbackSummaryLines is used when no indicator line is found.
	fallbackSummaryLines = 3
	// contextChunks is how many candidates the advisor sees.
	contextChunks = 3
	// corroborationThreshold and corroborationCap shape the confidence
	// boost: each candidate scoring above the threshold adds 0.1, capped.
	corroborationThreshold = 0.5
	corroborationCap       = 0.3
)

const noRelevantCodeAdvice = `No relevant code found in the indexed codebase. Suggestions:
1. Ensure the codebase has been properly indexed
2. Check if the error is related to external dependencies
3. Try lowering the similarity threshold`

// AnalysisResult is the output of one error-log analysis. It is constructed
// once and never mutated.
type AnalysisResult struct {
	ErrorSummary string
	RelevantCode []store.SearchResult
	Advice       string
	Confidence   float64
	UsedLLM      bool
}

// Analyzer orchestrates retrieval and advice generation for error logs.
type Analyzer struct {
	engine  *retrieval.Engine
	advisor llm.Advisor // optional; nil selects the rule-based path only
	log     *zap.Logger
}

// New creates an analyzer. advisor may be nil, in which case advice is
// always rule-based. A nil logger disables logging.
func New(engine *retrieval.Engine, advisor llm.Advisor, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{engine: engine, advisor: advisor, log: log}
}

// AnalyzeError analyzes an error log against the indexed codebase. The full
// raw log is used as the retrieval query; the extracted summary is for
// display. The result always carries non-empty advice and a defined
// confidence, even when nothing was retrieved.
func (a *Analyzer) AnalyzeError(errorLog string, numResults int, minScore float64) (*AnalysisResult, error) {
	summary := extractSummary(errorLog)

	results, err := a.engine.Search(errorLog, numResults, minScore, nil)
	if err != nil {
		return nil, fmt.Errorf("retrieve relevant code: %w", err)
	}

	advice, usedLLM := a.generateAdvice(errorLog, results)

	return &AnalysisResult{
		ErrorSummary: summary,
		RelevantCode: results,
		Advice:       advice,
		Confidence:   confidence(results),
		UsedLLM:      usedLLM,
	}, nil
}

// AnalyzeMultiple analyzes a batch of error logs sequentially.
func (a *Analyzer) AnalyzeMultiple(errorLogs []string, numResults int, minScore float64) ([]*AnalysisResult, error) {
	results := make([]*AnalysisResult, 0, len(errorLogs))
	for _, log := range errorLogs {
		r, err := a.AnalyzeError(log, numResults, minScore)
		if err != nil {
			return results, err
		}
		results = append(results, r)
	}
	return results, nil
}

// extractSummary collects indicator lines from the log in original order,
// capped at maxSummaryLines. When no line matches, the first few lines of
// the log stand in, so every log yields a non-empty summary.
func extractSummary(errorLog string) string {
	lines := strings.Split(strings.TrimSpace(errorLog), "\n")

	var summary []string
	for _, line := range lines {
		for _, indicator := range errorIndicators {
			if strings.Contains(line, indicator) {
				summary = append(summary, strings.TrimSpace(line))
				break
			}
		}
	}

	if len(summary) > 0 {
		if len(summary) > maxSummaryLines {
			summary = summary[:maxSummaryLines]
		}
		return strings.Join(summary, "\n")
	}

	n := min(fallbackSummaryLines, len(lines))
	return strings.Join(lines[:n], "\n")
}

// generateAdvice selects the advice strategy: the LLM advisor when
// configured, with the rule-based path as the guaranteed fallback. The
// returned flag reports whether the advice came from the LLM.
func (a *Analyzer) generateAdvice(errorLog string, results []store.SearchResult) (string, bool) {
	if a.advisor == nil || len(results) == 0 {
		return ruleBasedAdvice(errorLog, results), false
	}

	analysis, err := a.advisor.AnalyzeWithContext(errorLog, results, contextChunks)
	if err != nil {
		a.log.Warn("llm analysis failed, falling back to rule-based advice", zap.Error(err))
		return ruleBasedAdvice(errorLog, results), false
	}

	var b strings.Builder
	b.WriteString(analysis)
	b.WriteString("\n\n" + strings.Repeat("=", 80) + "\n")
	b.WriteString("RELEVANT CODE LOCATIONS\n")
	b.WriteString(strings.Repeat("=", 80))
	for i, r := range results {
		m := r.Meta
		fmt.Fprintf(&b, "\n%d. %s:%d\n", i+1, m.FilePath, m.StartLine)
		fmt.Fprintf(&b, "   Type: %s\n", m.ChunkType)
		fmt.Fprintf(&b, "   Name: %s\n", m.Name)
		fmt.Fprintf(&b, "   Similarity: %.2f%%", r.Score*100)
	}
	return b.String(), true
}

// ruleBasedAdvice reports the top candidate's location and appends generic
// recommendations keyed on well-known exception names in the raw log. It
// never fails on well-formed input.
func ruleBasedAdvice(errorLog string, results []store.SearchResult) string {
	if len(results) == 0 {
		return noRelevantCodeAdvice
	}

	var b strings.Builder
	b.WriteString("Based on the error log and relevant code analysis:\n")

	top := results[0]
	b.WriteString("\n1. Most relevant code location:\n")
	fmt.Fprintf(&b, "   File: %s\n", top.Meta.FilePath)
	fmt.Fprintf(&b, "   Type: %s\n", top.Meta.ChunkType)
	fmt.Fprintf(&b, "   Name: %s\n", top.Meta.Name)
	fmt.Fprintf(&b, "   Lines: %d-%d\n", top.Meta.StartLine, top.Meta.EndLine)
	fmt.Fprintf(&b, "   Relevance: %.2f%%\n", top.Score*100)

	b.WriteString("\n2. Recommended actions:\n")
	for _, rec := range recommendations(errorLog) {
		b.WriteString("   - " + rec + "\n")
	}

	if len(results) > 1 {
		b.WriteString("\n3. Other potentially relevant code:\n")
		secondary := results[1:]
		if len(secondary) > 3 {
			secondary = secondary[:3]
		}
		for i, r := range secondary {
			fmt.Fprintf(&b, "   %d. %s:%d (%.2f%% match)\n", i+1, r.Meta.FilePath, r.Meta.StartLine, r.Score*100)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// recommendations maps well-known exception names in the log to generic
// debugging guidance.
func recommendations(errorLog string) []string {
	switch {
	case strings.Contains(errorLog, "AttributeError"):
		return []string{
			"Check for None values or missing attributes",
			"Verify object initialization",
		}
	case strings.Contains(errorLog, "KeyError"):
		return []string{
			"Validate dictionary keys before access",
			"Use .get() method with defaults",
		}
	case strings.Contains(errorLog, "TypeError"):
		return []string{
			"Check function argument types",
			"Verify data type conversions",
		}
	case strings.Contains(errorLog, "ImportError"), strings.Contains(errorLog, "ModuleNotFoundError"):
		return []string{
			"Verify package installation",
			"Check import paths",
		}
	default:
		return []string{
			"Review the relevant code sections",
			"Check for edge cases and error handling",
		}
	}
}

// confidence derives a [0,1] score from the candidate set: the top match's
// similarity, boosted by 0.1 per candidate above the corroboration
// threshold, capped so a flood of mediocre matches cannot manufacture high
// confidence on its own. The corroboration threshold is fixed at 0.5
// independent of the caller's minScore.
func confidence(results []store.SearchResult) float64 {
	if len(results) == 0 {
		return 0
	}

	topScore := results[0].Score

	var corroborating int
	for _, r := range results {
		if r.Score > corroborationThreshold {
			corroborating++
		}
	}

	boost := min(0.1*float64(corroborating), corroborationCap)
	return min(topScore+boost, 1.0)
}
