package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"logagent/internal/agent"
	"logagent/internal/tui"
)

var (
	flagPattern string
	flagPlain   bool
	flagFresh   bool
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index a codebase for error log analysis",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		cfg := buildConfig()
		if flagDB == "" {
			cfg.DBPath = filepath.Join(root, ".logagent", "index.db")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}

		log := newLogger()
		defer log.Sync()

		ag, err := agent.New(cfg, log)
		if err != nil {
			return err
		}
		defer ag.Close()

		if err := ag.Setup(); err != nil {
			return err
		}
		if flagFresh {
			if err := ag.Reset(); err != nil {
				return fmt.Errorf("clear collection: %w", err)
			}
		}

		start := time.Now()

		var chunks int
		if flagPlain {
			fmt.Printf("Indexing %s...\n", root)
			chunks, err = ag.IndexPath(root, flagPattern)
		} else {
			chunks, err = tui.RunIndexing(ag, root, flagPattern)
		}
		if err != nil {
			return err
		}

		fmt.Printf("\nDone in %s\n", time.Since(start).Round(time.Millisecond))
		fmt.Printf("  Chunks indexed: %d\n", chunks)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&flagPattern, "pattern", "", `file glob (default "**/*.py")`)
	indexCmd.Flags().BoolVar(&flagPlain, "plain", false, "plain output, no progress display")
	indexCmd.Flags().BoolVar(&flagFresh, "fresh", false, "clear existing records before indexing")
	rootCmd.AddCommand(indexCmd)
}
