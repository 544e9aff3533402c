package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightlabs/insightstream/internal/dataframe"
	"github.com/insightlabs/insightstream/internal/offline"
	"github.com/insightlabs/insightstream/internal/render"
)

var offlineCmd = &cobra.Command{
	Use:   "offline <dataset.csv>",
	Short: "Run the deterministic offline analysis on a CSV dataset",
	Long: `Compute the offline analysis directly: pairwise correlations between
numeric columns and monthly trends when a date column is present. No
question, no model, no code execution.

  insightstream offline sales.csv`,
	Args: cobra.ExactArgs(1),
	RunE: offlineCommand,
}

func init() {
	rootCmd.AddCommand(offlineCmd)
}

func offlineCommand(cmd *cobra.Command, args []string) error {
	frame, err := dataframe.LoadCSV(args[0])
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	r := render.New(cmd.OutOrStdout())
	for _, a := range offline.Analyze(frame) {
		r.Artifact(a)
	}
	return nil
}
