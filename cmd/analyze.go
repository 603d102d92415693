package cmd

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"logagent/internal/agent"
	"logagent/internal/analyzer"
)

var (
	flagNumResults int
	flagMinScore   float64
	flagRaw        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <logfile>",
	Short: "Analyze an error log against the indexed codebase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		log := newLogger()
		defer log.Sync()

		ag, err := agent.New(cfg, log)
		if err != nil {
			return err
		}
		defer ag.Close()

		result, err := ag.AnalyzeLogFile(args[0], flagNumResults, flagMinScore)
		if err != nil {
			return err
		}

		// LLM advice is markdown; render it for the terminal unless the
		// caller wants the raw report.
		if result.UsedLLM && !flagRaw {
			if rendered, err := glamour.Render(result.Advice, "dark"); err == nil {
				styled := *result
				styled.Advice = rendered
				result = &styled
			}
		}

		fmt.Println(analyzer.FormatResult(result))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().IntVarP(&flagNumResults, "num-results", "n", 0, "relevant code chunks to retrieve (default 5)")
	analyzeCmd.Flags().Float64Var(&flagMinScore, "min-score", 0, "minimum similarity score (default 0.3)")
	analyzeCmd.Flags().BoolVar(&flagRaw, "raw", false, "skip markdown rendering of LLM advice")
	rootCmd.AddCommand(analyzeCmd)
}
