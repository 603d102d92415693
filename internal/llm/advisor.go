// Package llm generates debugging advice from an error log and retrieved
// code context. The advisor is an optional capability: callers must treat
// any failure here as recoverable and fall back to rule-based advice.
package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"logagent/internal/store"
)

// Advisor is the narrative collaborator contract.
type Advisor interface {
	// AnalyzeWithContext returns a free-text analysis of the error log,
	// grounded in at most maxChunks of the retrieved candidates.
	AnalyzeWithContext(errorLog string, results []store.SearchResult, maxChunks int) (string, error)
}

const analysisPrompt = `You are an expert software engineer analyzing error logs and providing actionable debugging advice.

# Error Log

` + "```\n%s\n```" + `

# Relevant Code Context

The following code chunks were identified as most relevant to this error (using semantic search):

%s

# Your Task

Analyze this error log in the context of the relevant code and provide:

1. **Root Cause Analysis**: What is causing this error?
2. **Specific Location**: Which file, function, and line numbers are involved?
3. **Explanation**: Why is this happening? What's the underlying issue?
4. **Recommended Fix**: Provide specific, actionable steps to fix the issue
5. **Prevention**: How to prevent similar errors in the future

Be specific, practical, and reference the actual file paths and code chunks provided above.`

// OllamaAdvisor generates advice through the Ollama /api/chat endpoint.
type OllamaAdvisor struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ Advisor = (*OllamaAdvisor)(nil)

// NewOllamaAdvisor creates an advisor targeting the given Ollama instance and model.
func NewOllamaAdvisor(baseURL, model string) *OllamaAdvisor {
	return &OllamaAdvisor{
		baseURL: baseURL,
		model:   model,
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatResponse struct {
	Message Message `json:"message"`
}

// AnalyzeWithContext builds a debugging prompt from the log and the top
// maxChunks candidates, then asks the model for an analysis.
func (a *OllamaAdvisor) AnalyzeWithContext(errorLog string, results []store.SearchResult, maxChunks int) (string, error) {
	prompt := fmt.Sprintf(analysisPrompt, errorLog, formatContext(results, maxChunks))
	return a.generate([]Message{{Role: "user", Content: prompt}})
}

// formatContext renders up to maxChunks retrieved candidates as prompt context.
func formatContext(results []store.SearchResult, maxChunks int) string {
	if maxChunks > len(results) {
		maxChunks = len(results)
	}

	var b strings.Builder
	for i, r := range results[:maxChunks] {
		m := r.Meta
		parent := m.ParentContext
		if parent == "" {
			parent = "N/A"
		}
		fmt.Fprintf(&b, "\n## Relevant Code Chunk %d (Similarity: %.1f%%)\n", i+1, r.Score*100)
		fmt.Fprintf(&b, "**File:** %s\n", m.FilePath)
		fmt.Fprintf(&b, "**Type:** %s\n", m.ChunkType)
		fmt.Fprintf(&b, "**Name:** %s\n", m.Name)
		fmt.Fprintf(&b, "**Lines:** %d-%d\n", m.StartLine, m.EndLine)
		fmt.Fprintf(&b, "**Parent:** %s\n\n", parent)
		fmt.Fprintf(&b, "```\n%s\n```\n", m.Content)
	}
	return b.String()
}

func (a *OllamaAdvisor) generate(messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:    a.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	resp, err := a.client.Post(a.baseURL+"/api/chat", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("ollama chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama chat returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}

	return result.Message.Content, nil
}
