package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"logagent/internal/agent"
)

var (
	flagK         int
	flagSearchMin float64
	flagChunkType string
)

var (
	matchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	fileStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the indexed codebase",
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

		var filter map[string]string
		if flagChunkType != "" {
			filter = map[string]string{"chunk_type": flagChunkType}
		}

		results, err := ag.SearchCode(args[0], flagK, flagSearchMin, filter)
		if err != nil {
			return err
		}

		fmt.Printf("\nFound %d relevant code chunks:\n\n", len(results))
		for i, r := range results {
			m := r.Meta
			name := m.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("%d. %s (%.2f%% match)\n", i+1, matchStyle.Render(name), r.Score*100)
			fmt.Printf("   %s\n", fileStyle.Render(fmt.Sprintf("File: %s", m.FilePath)))
			fmt.Printf("   Type: %s\n", m.ChunkType)
			fmt.Printf("   Lines: %d-%d\n\n", m.StartLine, m.EndLine)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&flagK, "k", 5, "maximum number of results")
	searchCmd.Flags().Float64Var(&flagSearchMin, "min-score", 0.5, "minimum similarity score")
	searchCmd.Flags().StringVar(&flagChunkType, "type", "", "restrict to a chunk type (function, method, class, whole_file)")
	rootCmd.AddCommand(searchCmd)
}
