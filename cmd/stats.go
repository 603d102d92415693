package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"logagent/internal/agent"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics about the indexed codebase",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := buildConfig()
		log := newLogger()
		defer log.Sync()

		ag, err := agent.New(cfg, log)
		if err != nil {
			return err
		}
		defer ag.Close()

		info, err := ag.Stats()
		if err != nil {
			return err
		}

		rule := strings.Repeat("-", 40)
		fmt.Println("\nCodebase Statistics:")
		fmt.Println(rule)
		fmt.Printf("Collection: %s\n", info.Name)
		fmt.Printf("Total chunks: %d\n", info.RecordCount)
		fmt.Printf("Status: %s\n", info.Status)
		fmt.Println(rule)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
