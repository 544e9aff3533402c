package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/insightlabs/insightstream/internal/approval"
	"github.com/insightlabs/insightstream/internal/audit"
	"github.com/insightlabs/insightstream/internal/config"
	"github.com/insightlabs/insightstream/internal/dataframe"
	"github.com/insightlabs/insightstream/internal/guard"
	"github.com/insightlabs/insightstream/internal/model"
	"github.com/insightlabs/insightstream/internal/pipeline"
	"github.com/insightlabs/insightstream/internal/render"
)

var (
	modeFlag    string
	packPath    string
	autoApprove bool
	verbose     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dataset.csv> <question>",
	Short: "Answer an analytical question about a CSV dataset",
	Long: `Load a CSV dataset and answer a free-text question about it.

The question is screened for prompt injection before anything else runs.
In ONLINE mode the model generates analysis code, which is shown for
approval and then executed in a sandbox. In OFFLINE mode, or when the
model is unavailable, a deterministic correlation and trend analysis
answers instead.

Example:
  insightstream analyze sales.csv "average revenue per region"
  insightstream analyze --mode OFFLINE sales.csv "what moves together?"`,
	Args: cobra.ExactArgs(2),
	RunE: analyzeCommand,
}

func init() {
	analyzeCmd.Flags().StringVar(&modeFlag, "mode", "", "Override mode: ONLINE or OFFLINE")
	analyzeCmd.Flags().StringVar(&packPath, "pack", "", "Path to an extra screening rule pack (YAML)")
	analyzeCmd.Flags().BoolVarP(&autoApprove, "yes", "y", false, "Run generated code without asking for approval")
	analyzeCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose diagnostics on stderr")
	rootCmd.AddCommand(analyzeCmd)
}

func buildLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if modeFlag != "" {
		cfg.Mode = modeFlag
	}
	if packPath != "" {
		cfg.Guard.PackPath = packPath
	}
	if logPath != "" {
		cfg.LogPath = logPath
	}
	return cfg, nil
}

func analyzeCommand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := buildLogger()
	defer log.Sync()

	frame, err := dataframe.LoadCSV(args[0])
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	pack, err := guard.LoadPack(cfg.Guard.PackPath)
	if err != nil {
		return fmt.Errorf("load rule pack: %w", err)
	}

	auditLog, err := audit.New(cfg.LogPath)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer auditLog.Close()

	client := model.NewGemini(model.GeminiConfig{
		APIKey:  cfg.APIKey(),
		Model:   cfg.Model.Name,
		BaseURL: cfg.Model.BaseURL,
		Timeout: cfg.Model.Timeout,
	}, log)

	p := pipeline.New(pipeline.Options{
		Config: cfg,
		Guard:  guard.New(pack),
		Client: client,
		Audit:  auditLog,
		Approve: func(pr approval.Prompt) approval.Result {
			return approval.Ask(pr, approval.Options{AutoApprove: autoApprove})
		},
		Log: log,
	})

	r := render.New(cmd.OutOrStdout())

	out, err := p.Run(cmd.Context(), frame, args[1])
	if err != nil {
		return reportRunError(r, err)
	}

	if out.Fallback {
		r.Notice(fmt.Sprintf("Model could not answer (%s); showing offline analysis.", out.FallbackReason))
	}
	if out.Code != "" {
		r.Code(out.Code)
	}
	for _, a := range out.Artifacts {
		r.Artifact(a)
	}
	r.Insights(out.Insights)
	return nil
}

// reportRunError turns pipeline errors into user-facing output. Rejections
// and denials are expected outcomes, but still exit nonzero so scripts can
// tell them from an answered question. Returning ErrReported instead of
// exiting here lets the command's deferred cleanup (audit log, logger
// flush) run before main picks the exit code.
func reportRunError(r *render.Renderer, err error) error {
	var injErr *pipeline.InjectionError
	var valErr *pipeline.ValidationError
	var denied *pipeline.DeniedError
	var execErr *pipeline.ExecutionError

	switch {
	case errors.Is(err, pipeline.ErrEmptyQuery):
		r.Rejection("the question is empty")
	case errors.As(err, &injErr):
		r.Rejection(injErr.Explanation)
	case errors.As(err, &valErr):
		r.Rejection(valErr.Reason)
	case errors.As(err, &denied):
		r.Notice("Execution denied; nothing was run.")
	case errors.As(err, &execErr):
		r.Notice("Generated code failed: " + execErr.Err.Error())
	default:
		return err
	}
	return ErrReported
}
