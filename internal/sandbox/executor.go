package sandbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/insightlabs/insightstream/internal/artifact"
	"github.com/insightlabs/insightstream/internal/dataframe"
)

var (
	// ErrNoOutput means the script assigned neither fig nor result_df.
	ErrNoOutput = errors.New("script produced no output")

	// ErrAmbiguousOutput means the script assigned both fig and result_df.
	ErrAmbiguousOutput = errors.New("script assigned both fig and result_df")
)

// Limits bounds one script run. Steps cap interpreter work; Timeout is the
// wall-clock ceiling, which also covers time spent inside builtins where
// steps do not advance.
type Limits struct {
	MaxSteps uint64
	Timeout  time.Duration
}

// DefaultLimits are generous for table analysis and far too small for abuse.
var DefaultLimits = Limits{
	MaxSteps: 500000,
	Timeout:  5 * time.Second,
}

// Executor runs analysis scripts. Zero-valued fields fall back to
// DefaultLimits.
type Executor struct {
	limits Limits
}

func NewExecutor(limits Limits) *Executor {
	if limits.MaxSteps == 0 {
		limits.MaxSteps = DefaultLimits.MaxSteps
	}
	if limits.Timeout <= 0 {
		limits.Timeout = DefaultLimits.Timeout
	}
	return &Executor{limits: limits}
}

// Execute runs one script against a copy of the dataset and returns its
// single output artifact. The caller's frame is never mutated.
func (e *Executor) Execute(ctx context.Context, code string, frame *dataframe.Frame) (*artifact.Artifact, error) {
	ctx, cancel := context.WithTimeout(ctx, e.limits.Timeout)
	defer cancel()

	df := NewFrameValue(frame.Copy())

	thread := &starlark.Thread{
		Name:  "analysis",
		Print: func(_ *starlark.Thread, _ string) {},
	}
	thread.SetMaxExecutionSteps(e.limits.MaxSteps)

	// Cancel the interpreter when the deadline passes or the caller's
	// context is cancelled. The watcher must be reaped before we read the
	// globals; Cancel on a finished thread is a no-op.
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		<-ctx.Done()
		if ctx.Err() == context.DeadlineExceeded {
			thread.Cancel("time limit exceeded")
		} else {
			thread.Cancel("cancelled")
		}
	}()

	opts := &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}
	globals, err := starlark.ExecFileOptions(opts, thread, "analysis.star", code, Predeclared(df))
	cancel()
	<-watcherDone

	if err != nil {
		var evalErr *starlark.EvalError
		if errors.As(err, &evalErr) {
			return nil, fmt.Errorf("script error: %s", evalErr.Msg)
		}
		return nil, fmt.Errorf("script error: %w", err)
	}

	return extractOutput(globals)
}

// extractOutput applies the output contract: exactly one of fig or
// result_df, checked in that order.
func extractOutput(globals starlark.StringDict) (*artifact.Artifact, error) {
	figV, hasFig := globals["fig"]
	resV, hasRes := globals["result_df"]

	if hasFig && hasRes {
		return nil, ErrAmbiguousOutput
	}

	if hasFig {
		chart, ok := figV.(*ChartValue)
		if !ok {
			return nil, fmt.Errorf("fig must be a chart, got %s", figV.Type())
		}
		a := artifact.NewChart(chart.chart.Title, chart.chart)
		return &a, nil
	}

	if hasRes {
		fv, ok := resV.(*FrameValue)
		if !ok {
			return nil, fmt.Errorf("result_df must be a dataframe, got %s", resV.Type())
		}
		a := artifact.NewTable("Result", &artifact.Table{
			Columns: fv.frame.Columns(),
			Rows:    fv.frame.Records(),
		})
		return &a, nil
	}

	return nil, ErrNoOutput
}
