package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"logagent/internal/agent"
	"logagent/internal/analyzer"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing log analysis tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := buildConfig()
	log := newLogger()
	defer log.Sync()

	ag, err := agent.New(cfg, log)
	if err != nil {
		return err
	}
	defer ag.Close()

	s := mcpserver.NewMCPServer("logagent", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(analyzeErrorLogTool(), makeAnalyzeHandler(ag))
	s.AddTool(searchCodeTool(), makeSearchHandler(ag))
	s.AddTool(indexStatsTool(), makeStatsHandler(ag))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func analyzeErrorLogTool() mcp.Tool {
	return mcp.NewTool("analyze_error_log",
		mcp.WithDescription("Analyze an error log against the indexed codebase. Returns the most relevant code locations, advice, and a confidence score."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("log",
			mcp.Required(),
			mcp.Description("The raw error log text to analyze"),
		),
		mcp.WithNumber("num_results",
			mcp.Description("Relevant code chunks to retrieve (default 5)"),
		),
		mcp.WithNumber("min_score",
			mcp.Description("Minimum similarity score in [0,1] (default 0.3)"),
		),
	)
}

func searchCodeTool() mcp.Tool {
	return mcp.NewTool("search_code",
		mcp.WithDescription("Semantically search the indexed codebase. Returns relevant code chunks with file paths and line numbers."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language or keyword query"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of chunks to return (default 5)"),
		),
		mcp.WithString("chunk_type",
			mcp.Description("Optional restriction to one chunk type: function, method, class, or whole_file"),
		),
	)
}

func indexStatsTool() mcp.Tool {
	return mcp.NewTool("index_stats",
		mcp.WithDescription("Report the vector collection's name, record count, and status."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

// --- Handler factories ---

func makeAnalyzeHandler(ag *agent.LogAgent) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logText := req.GetString("log", "")
		if logText == "" {
			return mcp.NewToolResultError("log is required"), nil
		}

		result, err := ag.AnalyzeLog(logText, req.GetInt("num_results", 0), req.GetFloat("min_score", 0))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
		}

		return mcp.NewToolResultText(analyzer.FormatResult(result)), nil
	}
}

func makeSearchHandler(ag *agent.LogAgent) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}

		var filter map[string]string
		if ct := req.GetString("chunk_type", ""); ct != "" {
			filter = map[string]string{"chunk_type": ct}
		}

		results, err := ag.SearchCode(query, req.GetInt("k", 0), req.GetFloat("min_score", 0.5), filter)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		if len(results) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("No results found for query: %q", query)), nil
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "## Search results for %q (%d chunks)\n\n", query, len(results))
		for i, r := range results {
			m := r.Meta
			fmt.Fprintf(&sb, "### Result %d: `%s`\n\n", i+1, m.FilePath)
			fmt.Fprintf(&sb, "**Type:** %s  \n**Name:** %s  \n**Lines:** %d–%d  \n**Score:** %.2f\n\n",
				m.ChunkType, m.Name, m.StartLine, m.EndLine, r.Score)
			fmt.Fprintf(&sb, "```\n%s\n```\n\n", m.Content)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeStatsHandler(ag *agent.LogAgent) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info, err := ag.Stats()
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("stats failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Collection: %s\nRecords: %d\nStatus: %s",
			info.Name, info.RecordCount, info.Status)), nil
	}
}
