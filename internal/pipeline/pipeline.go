// Package pipeline wires the full analysis flow: normalize, screen, compose,
// complete, parse, sanitize, approve, execute, with deterministic offline
// analysis standing in whenever the model cannot be used.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/insightlabs/insightstream/internal/approval"
	"github.com/insightlabs/insightstream/internal/artifact"
	"github.com/insightlabs/insightstream/internal/audit"
	"github.com/insightlabs/insightstream/internal/compose"
	"github.com/insightlabs/insightstream/internal/config"
	"github.com/insightlabs/insightstream/internal/dataframe"
	"github.com/insightlabs/insightstream/internal/envelope"
	"github.com/insightlabs/insightstream/internal/guard"
	"github.com/insightlabs/insightstream/internal/model"
	"github.com/insightlabs/insightstream/internal/normalize"
	"github.com/insightlabs/insightstream/internal/offline"
	"github.com/insightlabs/insightstream/internal/sandbox"
	"github.com/insightlabs/insightstream/internal/sanitize"
)

// Outcome is a successful run's result. Fallback marks runs answered by the
// offline analyzer while ONLINE mode was requested.
type Outcome struct {
	Mode           string
	Code           string
	Insights       []string
	Artifacts      []artifact.Artifact
	Fallback       bool
	FallbackReason string
}

// Approver shows generated code to a human. Injectable for tests and for
// the --yes flag.
type Approver func(approval.Prompt) approval.Result

// Options assembles a Pipeline. Guard, Executor, and Log may be nil for
// defaults; Client may be nil only in OFFLINE mode.
type Options struct {
	Config   *config.Config
	Guard    *guard.Guard
	Client   model.Client
	Executor *sandbox.Executor
	Audit    *audit.Logger
	Approve  Approver
	Log      *zap.Logger
}

type Pipeline struct {
	cfg     *config.Config
	guard   *guard.Guard
	client  model.Client
	exec    *sandbox.Executor
	audit   *audit.Logger
	approve Approver
	log     *zap.Logger
}

func New(opts Options) *Pipeline {
	g := opts.Guard
	if g == nil {
		g = guard.New(nil)
	}
	ex := opts.Executor
	if ex == nil {
		ex = sandbox.NewExecutor(sandbox.Limits{
			MaxSteps: opts.Config.Sandbox.MaxSteps,
			Timeout:  opts.Config.Sandbox.Timeout,
		})
	}
	ap := opts.Approve
	if ap == nil {
		ap = func(p approval.Prompt) approval.Result {
			return approval.Ask(p, approval.Options{})
		}
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cfg:     opts.Config,
		guard:   g,
		client:  opts.Client,
		exec:    ex,
		audit:   opts.Audit,
		approve: ap,
		log:     log,
	}
}

// Run answers one question about the dataset.
func (p *Pipeline) Run(ctx context.Context, frame *dataframe.Frame, rawQuery string) (*Outcome, error) {
	nq := normalize.Query(rawQuery)
	if nq.Empty {
		p.record(audit.Event{Query: rawQuery, Decision: "rejected", Mode: p.cfg.Mode, Error: ErrEmptyQuery.Error()})
		return nil, ErrEmptyQuery
	}
	query := nq.Text

	verdict := p.guard.Check(query)
	if verdict.Rejected {
		p.log.Info("query rejected by guard",
			zap.Strings("rules", verdict.SignalIDs()))
		p.record(audit.Event{
			Query:          query,
			Decision:       "rejected",
			TriggeredRules: verdict.SignalIDs(),
			Mode:           p.cfg.Mode,
		})
		return nil, &InjectionError{Explanation: verdict.Explanation, Rules: verdict.SignalIDs()}
	}

	if p.cfg.Mode == config.ModeOffline {
		return p.runOffline(frame, query, "")
	}
	return p.runOnline(ctx, frame, query)
}

func (p *Pipeline) runOnline(ctx context.Context, frame *dataframe.Frame, query string) (*Outcome, error) {
	req := compose.Build(frame.Columns(), query)

	raw, err := p.client.Complete(ctx, req.Prompt)
	if err != nil {
		if errors.Is(err, model.ErrUnavailable) {
			p.log.Warn("model unavailable, falling back to offline analysis", zap.Error(err))
			return p.runOffline(frame, query, "model unavailable")
		}
		p.record(audit.Event{Query: query, Decision: "error", Mode: p.cfg.Mode, Model: p.client.Name(), Error: err.Error()})
		return nil, err
	}

	env, err := envelope.Parse(raw)
	if err != nil {
		p.log.Warn("model reply unparsable, falling back to offline analysis", zap.Error(err))
		return p.runOffline(frame, query, "response unparsable")
	}

	if env.Status == envelope.StatusOffline {
		p.log.Info("model requested offline analysis", zap.String("reason", env.Reason))
		return p.runOffline(frame, query, "model requested offline analysis")
	}

	if env.Status == envelope.StatusInvalid {
		p.record(audit.Event{
			Query:    query,
			Decision: "invalid",
			Mode:     p.cfg.Mode,
			Model:    p.client.Name(),
			Error:    env.Reason,
		})
		return nil, &ValidationError{Reason: env.Reason}
	}

	code := sanitize.Sanitize(env.Code, frame.Columns())

	res := p.approve(approval.Prompt{Query: query, Code: code, Model: p.client.Name()})
	if !res.Approved {
		p.record(audit.Event{
			Query:    query,
			Decision: "denied",
			Mode:     p.cfg.Mode,
			Model:    p.client.Name(),
			Code:     code,
		})
		return nil, &DeniedError{UserAction: res.UserAction}
	}

	art, err := p.exec.Execute(ctx, code, frame)
	if err != nil {
		p.record(audit.Event{
			Query:    query,
			Decision: "error",
			Mode:     p.cfg.Mode,
			Model:    p.client.Name(),
			Code:     code,
			Error:    err.Error(),
		})
		return nil, &ExecutionError{Code: code, Err: err}
	}

	p.record(audit.Event{
		Query:    query,
		Decision: "executed",
		Mode:     p.cfg.Mode,
		Model:    p.client.Name(),
		Code:     code,
	})
	return &Outcome{
		Mode:      config.ModeOnline,
		Code:      code,
		Insights:  env.Insights,
		Artifacts: []artifact.Artifact{*art},
	}, nil
}

func (p *Pipeline) runOffline(frame *dataframe.Frame, query, fallbackReason string) (*Outcome, error) {
	arts := offline.Analyze(frame)
	p.record(audit.Event{
		Query:    query,
		Decision: "offline",
		Mode:     p.cfg.Mode,
		Error:    fallbackReason,
	})
	return &Outcome{
		Mode:           config.ModeOffline,
		Artifacts:      arts,
		Fallback:       fallbackReason != "",
		FallbackReason: fallbackReason,
	}, nil
}

func (p *Pipeline) record(event audit.Event) {
	if p.audit == nil {
		return
	}
	if err := p.audit.Log(event); err != nil {
		p.log.Warn("audit write failed", zap.Error(err))
	}
}
