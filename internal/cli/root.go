package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logPath    string
)

// ErrReported marks failures that were already rendered for the user.
// main exits nonzero on it without printing a second message.
var ErrReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "insightstream",
	Short: "InsightStream - ask analytical questions about CSV datasets",
	Long: `InsightStream answers free-text analytical questions about tabular CSV
data. Questions are screened for prompt injection, turned into analysis
code by a language model, and the code runs in a constrained sandbox
after a human look. When the model is unavailable or its reply cannot
be used, a deterministic offline analysis answers instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML file")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Path to audit log file (default: insightstream_audit.jsonl)")
}

func Execute() error {
	return rootCmd.Execute()
}
