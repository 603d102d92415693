package analyzer

import (
	"fmt"
	"strings"
)

// FormatResult renders an analysis result as a structured textual report.
// Purely presentational; the retrieval logic is done by the time this runs.
func FormatResult(r *AnalysisResult) string {
	divider := strings.Repeat("=", 80)
	rule := strings.Repeat("-", 80)

	var b strings.Builder
	b.WriteString(divider + "\n")
	if r.UsedLLM {
		b.WriteString("ERROR ANALYSIS REPORT (AI-POWERED)\n")
	} else {
		b.WriteString("ERROR ANALYSIS REPORT (RULE-BASED)\n")
	}
	b.WriteString(divider + "\n")

	b.WriteString("\nERROR SUMMARY:\n")
	b.WriteString(rule + "\n")
	b.WriteString(r.ErrorSummary + "\n")

	fmt.Fprintf(&b, "\nANALYSIS CONFIDENCE: %.1f%%\n", r.Confidence*100)

	b.WriteString("\nRECOMMENDATIONS:\n")
	b.WriteString(rule + "\n")
	b.WriteString(r.Advice + "\n")

	if len(r.RelevantCode) > 0 {
		b.WriteString("\nRELEVANT CODE DETAILS:\n")
		b.WriteString(rule + "\n")
		top := r.RelevantCode
		if len(top) > 3 {
			top = top[:3]
		}
		for i, c := range top {
			m := c.Meta
			fmt.Fprintf(&b, "\n[%d] %s\n", i+1, m.Name)
			fmt.Fprintf(&b, "    File: %s\n", m.FilePath)
			fmt.Fprintf(&b, "    Type: %s\n", m.ChunkType)
			fmt.Fprintf(&b, "    Lines: %d-%d\n", m.StartLine, m.EndLine)
			fmt.Fprintf(&b, "    Match: %.2f%%\n", c.Score*100)
		}
	}

	b.WriteString("\n" + divider)
	return b.String()
}
