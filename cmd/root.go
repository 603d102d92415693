package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"logagent/internal/agent"
)

var (
	flagDB           string
	flagCollection   string
	flagOllama       string
	flagModel        string
	flagAdvisorModel string
	flagNoLLM        bool
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "logagent",
	Short: "Find the code behind your error logs",
	Long: `logagent indexes a codebase into a vector store and matches error logs
against it, reporting the most likely code locations with advice.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := agent.DefaultConfig()
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default <project>/.logagent/index.db)")
	rootCmd.PersistentFlags().StringVar(&flagCollection, "collection", defaults.Collection, "vector collection name")
	rootCmd.PersistentFlags().StringVar(&flagOllama, "ollama", defaults.OllamaURL, "ollama base URL")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", defaults.EmbedModel, "embedding model")
	rootCmd.PersistentFlags().StringVar(&flagAdvisorModel, "advisor-model", defaults.AdvisorModel, "generative model for advice")
	rootCmd.PersistentFlags().BoolVar(&flagNoLLM, "no-llm", false, "disable LLM advice, use rule-based analysis only")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")
}

// buildConfig assembles the agent configuration from flags.
func buildConfig() agent.Config {
	cfg := agent.DefaultConfig()
	if flagDB != "" {
		cfg.DBPath = flagDB
	}
	cfg.Collection = flagCollection
	cfg.OllamaURL = flagOllama
	cfg.EmbedModel = flagModel
	cfg.AdvisorModel = flagAdvisorModel
	cfg.UseLLM = !flagNoLLM
	return cfg
}

// newLogger builds a console logger. Warnings and errors only, unless
// --verbose is set.
func newLogger() *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if !flagVerbose {
		zcfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	log, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
