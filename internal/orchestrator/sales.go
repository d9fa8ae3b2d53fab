package orchestrator

import (
	"context"
	"errors"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/analyst"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

// salesStage is one link of the sales chain. next is the step entered after
// the stage completes, or 0 for the last stage.
type salesStage struct {
	key   analysis.Key
	next  int
	query func(f *form.Form, prior []string) analyst.Query
}

var salesChain = []salesStage{
	{analysis.SalesTargetMarket, 4, func(f *form.Form, _ []string) analyst.Query {
		return analyst.SalesTargetMarket(f)
	}},
	{analysis.SalesSellingPoints, 5, func(f *form.Form, prior []string) analyst.Query {
		return analyst.SalesSellingPoints(f, prior[0])
	}},
	{analysis.SalesOutreach, 6, func(f *form.Form, prior []string) analyst.Query {
		return analyst.SalesOutreach(f, prior[0]+"\n"+prior[1])
	}},
	{analysis.SalesSummary, 0, func(_ *form.Form, prior []string) analyst.Query {
		return analyst.SalesSummary(prior[0] + "\n\n" + prior[1] + "\n\n" + prior[2])
	}},
}

// Sales runs the sales chain. Each stage needs the text of the ones before
// it, so the first failure aborts the chain, reports its message and
// clears every loading flag.
func (o *Orchestrator) Sales(ctx context.Context, f *form.Form, sink Sink) error {
	var prior []string
	for _, st := range salesChain {
		if !sink.Apply(func(b *analysis.Board) { b.Begin(st.key) }) {
			return ErrSuperseded
		}

		v, err := o.q.Run(ctx, st.query(f, prior))
		if err != nil {
			o.logger.Error("sales analysis flow failed", "key", st.key, "error", err)
			if !sink.Fail(err.Error()) || !sink.Apply(func(b *analysis.Board) { b.ResetLoading() }) {
				return errors.Join(ErrSuperseded, err)
			}
			return err
		}

		task := analysis.NewTask(st.key).Settle(v, nil)
		if !sink.Apply(func(b *analysis.Board) { b.Settle(task, analysis.KeepPrevious) }) {
			return ErrSuperseded
		}
		prior = append(prior, v.Text)

		if st.next != 0 && !sink.Advance(st.next) {
			return ErrSuperseded
		}
	}
	return nil
}
