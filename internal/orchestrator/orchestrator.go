// Package orchestrator runs the analysis pipelines: the regular flow's
// permitting, settle-all bulk stage and single follow-up calls, and the
// sales flow's strict chain.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/analyst"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

// ErrSuperseded is returned when the sink rejected a write because a newer
// run replaced this one.
var ErrSuperseded = errors.New("pipeline superseded by a newer run")

// PermittingFailed is the message reported when the permitting call fails.
const PermittingFailed = "Could not generate the permitting and incentives guide."

// Sink receives the writes of one pipeline run. Every method returns false
// once the run has been superseded; the pipeline then stops.
type Sink interface {
	// Apply runs fn against the latest board under the owner's lock.
	Apply(fn func(b *analysis.Board)) bool
	// Advance moves the wizard to step.
	Advance(step int) bool
	// Fail records a pipeline-level error message.
	Fail(msg string) bool
}

// ProgressFunc is called after each bulk-stage call settles.
type ProgressFunc func(done, total int, key analysis.Key)

// Orchestrator dispatches analysis calls through a Querier.
type Orchestrator struct {
	q           analyst.Querier
	logger      *slog.Logger
	concurrency int
	onProgress  ProgressFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithConcurrency bounds the number of bulk-stage calls in flight.
func WithConcurrency(n int) Option {
	return func(o *Orchestrator) { o.concurrency = n }
}

// WithProgress reports bulk-stage progress.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// New creates an orchestrator.
func New(q analyst.Querier, logger *slog.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{q: q, logger: logger, concurrency: 5}
	for _, opt := range opts {
		opt(o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return o
}

// single runs one call with its loading flag set for the duration. The
// result is written on success; on failure the previous content stays and
// failMsg (or the error text when failMsg is empty) is reported.
func (o *Orchestrator) single(ctx context.Context, sink Sink, key analysis.Key, q analyst.Query, failMsg string) error {
	if !sink.Apply(func(b *analysis.Board) { b.Begin(key) }) {
		return ErrSuperseded
	}
	v, err := o.q.Run(ctx, q)
	task := analysis.NewTask(key).Settle(v, err)

	ok := sink.Apply(func(b *analysis.Board) {
		b.Settle(task, analysis.KeepPrevious)
		b.Release(key)
	})
	if !ok {
		return ErrSuperseded
	}
	if err != nil {
		o.logger.Error("analysis failed", "key", key, "error", err)
		msg := failMsg
		if msg == "" {
			msg = err.Error()
		}
		if !sink.Fail(msg) {
			return ErrSuperseded
		}
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Permitting runs the permitting and incentives guide. It depends only on
// the form.
func (o *Orchestrator) Permitting(ctx context.Context, f *form.Form, sink Sink) error {
	return o.single(ctx, sink, analysis.Permitting, analyst.Permitting(f), PermittingFailed)
}

// Financing runs the financing guide.
func (o *Orchestrator) Financing(ctx context.Context, f *form.Form, results analysis.Results, sink Sink) error {
	actx := analyst.AnalysisContext(f, results.Text(analysis.Permitting))
	return o.single(ctx, sink, analysis.Financing, analyst.FinancingQuery(actx, f), "")
}

// Summary runs the executive summary over every non-meta result.
func (o *Orchestrator) Summary(ctx context.Context, f *form.Form, results analysis.Results, sink Sink) error {
	actx := analyst.AnalysisContext(f, results.Text(analysis.Permitting))
	return o.single(ctx, sink, analysis.Summary, analyst.Summary(actx, results.NonMetaText("\n---\n")), "")
}

// FinalReport runs the financial and environmental impact report.
func (o *Orchestrator) FinalReport(ctx context.Context, f *form.Form, results analysis.Results, sink Sink) error {
	actx := analyst.AnalysisContext(f, results.Text(analysis.Permitting))
	return o.single(ctx, sink, analysis.FinalReport, analyst.FinalReport(actx, results.NonMetaText("\n---\n")), "")
}
