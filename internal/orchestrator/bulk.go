package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/analyst"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

// BulkPlan returns the keys the bulk stage dispatches for f, in dispatch
// order.
func BulkPlan(f *form.Form) []analysis.Key {
	keys := []analysis.Key{analysis.EnergyAudit, analysis.Solar, analysis.Wind, analysis.BuildingMaterials}
	if f.PropertyAge != "" {
		keys = append(keys, analysis.Weatherization)
	}
	if f.SquareFootage != "" {
		keys = append(keys, analysis.MiniSplit)
	}
	if (f.Role == form.RolePolicymaker || f.Role == form.RoleCommunity) && f.FoodWaste != "" {
		keys = append(keys, analysis.WasteToEnergy)
	}
	if f.HydroSourceType != "" {
		keys = append(keys, analysis.Hydro)
	}
	return append(keys, analysis.Geothermal)
}

// Bulk runs the concurrent analysis stage followed by battery and
// portfolio. Individual failures are written as placeholders and never
// abort the stage.
func (o *Orchestrator) Bulk(ctx context.Context, f *form.Form, permitting string, sink Sink) error {
	actx := analyst.AnalysisContext(f, permitting)
	plan := BulkPlan(f)

	queries := make([]analyst.Query, len(plan))
	for i, k := range plan {
		q, ok := analyst.Bulk(k, actx, f)
		if !ok {
			return fmt.Errorf("no prompt for %s", k)
		}
		queries[i] = q
	}

	if !sink.Apply(func(b *analysis.Board) {
		b.Begin(plan...)
		b.Begin(analysis.Battery, analysis.Portfolio)
	}) {
		return ErrSuperseded
	}

	tasks := o.settleAll(ctx, plan, queries, sink)
	if tasks == nil {
		return ErrSuperseded
	}

	succeeded := make(map[analysis.Key]string, len(tasks))
	var texts []string
	for _, t := range tasks {
		if t.Status == analysis.Succeeded {
			succeeded[t.Key] = t.Value.Text
			texts = append(texts, t.Value.Text)
		}
	}

	generation := strings.Join([]string{succeeded[analysis.Solar], succeeded[analysis.Wind], succeeded[analysis.Hydro]}, "\n")
	if strings.TrimSpace(generation) != "" {
		if err := o.followUp(ctx, sink, analysis.Battery, analyst.Battery(actx, f, generation)); err != nil {
			return err
		}
	} else if !sink.Apply(func(b *analysis.Board) { b.Release(analysis.Battery) }) {
		return ErrSuperseded
	}

	return o.followUp(ctx, sink, analysis.Portfolio, analyst.Portfolio(actx, f, strings.Join(texts, "\n---\n")))
}

// settleAll dispatches every query and folds each outcome into the board as
// it lands. It returns the settled tasks in dispatch order, or nil if the
// run was superseded.
func (o *Orchestrator) settleAll(ctx context.Context, keys []analysis.Key, queries []analyst.Query, sink Sink) []analysis.Task {
	total := len(keys)
	tasks := make([]analysis.Task, total)

	sem := make(chan struct{}, o.concurrency)
	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		done       int
		superseded bool
	)

	for i := range keys {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task := analysis.NewTask(keys[i])

			select {
			case sem <- struct{}{}:
				v, err := o.q.Run(ctx, queries[i])
				<-sem
				task = task.Settle(v, err)
			case <-ctx.Done():
				task = task.Settle(analysis.Content{}, ctx.Err())
			}
			if task.Status == analysis.Failed {
				o.logger.Warn("analysis failed", "key", task.Key, "error", task.Err)
			}

			ok := sink.Apply(func(b *analysis.Board) { b.Settle(task, analysis.Placeholder) })

			mu.Lock()
			tasks[i] = task
			done++
			n := done
			if !ok {
				superseded = true
			}
			mu.Unlock()

			if o.onProgress != nil {
				o.onProgress(n, total, task.Key)
			}
		}(i)
	}
	wg.Wait()

	if superseded {
		return nil
	}
	return tasks
}

// followUp runs a dependent call whose failure keeps the previous content
// and is only logged. The loading flag is cleared on every path.
func (o *Orchestrator) followUp(ctx context.Context, sink Sink, key analysis.Key, q analyst.Query) error {
	v, err := o.q.Run(ctx, q)
	task := analysis.NewTask(key).Settle(v, err)
	if err != nil {
		o.logger.Error("analysis failed", "key", key, "error", err)
	}
	if !sink.Apply(func(b *analysis.Board) {
		b.Settle(task, analysis.KeepPrevious)
		b.Release(key)
	}) {
		return ErrSuperseded
	}
	return nil
}
