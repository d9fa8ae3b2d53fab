package wizard

import (
	"context"
	"errors"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/orchestrator"
	"github.com/ziadkadry99/green-analyzer/internal/projects"
)

// supersedeLocked invalidates every outstanding ticket and cancels its
// context. Late results from those runs are dropped.
func (c *Controller) supersedeLocked() {
	c.epoch++
	for p, cancel := range c.cancels {
		cancel()
		delete(c.cancels, p)
	}
}

func (c *Controller) currentLocked(t ticket) bool {
	return t.epoch == c.epoch && c.gens[t.pipe] == t.gen
}

// dispatchLocked starts p in the background with a fresh ticket. A previous
// run of p is cancelled. Inputs are copied before the goroutine starts.
func (c *Controller) dispatchLocked(p pipeline) {
	if cancel, ok := c.cancels[p]; ok {
		cancel()
	}
	c.gens[p]++
	t := ticket{epoch: c.epoch, pipe: p, gen: c.gens[p]}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancels[p] = cancel
	c.errMsg = ""

	f := c.form.Clone()
	results := c.board.Results.Clone()
	sink := &ticketSink{c: c, t: t}

	var run func() error
	switch p {
	case pipePermitting:
		run = func() error { return c.orch.Permitting(ctx, f, sink) }
	case pipeBulk:
		run = func() error { return c.orch.Bulk(ctx, f, results.Text(analysis.Permitting), sink) }
	case pipeFinancing:
		run = func() error { return c.orch.Financing(ctx, f, results, sink) }
	case pipeSummary:
		run = func() error { return c.orch.Summary(ctx, f, results, sink) }
	case pipeFinalReport:
		run = func() error { return c.orch.FinalReport(ctx, f, results, sink) }
	case pipeSales:
		run = func() error { return c.orch.Sales(ctx, f, sink) }
	}

	c.logger.Info("analysis started", "pipeline", p, "generation", t.gen)
	c.running.Add(1)
	go func() {
		defer c.running.Done()
		err := run()
		c.finish(ctx, t, err)
		cancel()
	}()
}

// finish records the outcome of a run. Completed bulk and sales runs are
// appended to the active project.
func (c *Controller) finish(ctx context.Context, t ticket, err error) {
	c.mu.Lock()
	if !c.currentLocked(t) {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded run", "pipeline", t.pipe, "generation", t.gen)
		return
	}
	delete(c.cancels, t.pipe)

	var (
		id  string
		run projects.Run
	)
	appendRun := err == nil && (t.pipe == pipeBulk || t.pipe == pipeSales) && c.activeProject != ""
	if appendRun {
		id = c.activeProject
		run = projects.NewRun(c.form, c.board.Results, c.now())
	}
	c.mu.Unlock()

	switch {
	case errors.Is(err, orchestrator.ErrSuperseded):
		return
	case err != nil:
		c.logger.Warn("analysis finished with errors", "pipeline", t.pipe, "error", err)
	default:
		c.logger.Info("analysis finished", "pipeline", t.pipe)
	}

	if appendRun {
		if err := c.projects.AppendRun(context.WithoutCancel(ctx), id, run); err != nil {
			c.logger.Error("saving run to project failed", "project", id, "error", err)
		}
	}
}

// ticketSink applies a run's writes while its ticket is current.
type ticketSink struct {
	c *Controller
	t ticket
}

func (s *ticketSink) Apply(fn func(*analysis.Board)) bool {
	return s.mutate(func(c *Controller) { fn(c.board) })
}

func (s *ticketSink) Advance(step int) bool {
	return s.mutate(func(c *Controller) {
		c.step = step
		c.guardLocked()
	})
}

func (s *ticketSink) Fail(msg string) bool {
	return s.mutate(func(c *Controller) { c.errMsg = msg })
}

func (s *ticketSink) mutate(fn func(*Controller)) bool {
	c := s.c
	c.mu.Lock()
	if !c.currentLocked(s.t) {
		c.mu.Unlock()
		return false
	}
	fn(c)
	c.mu.Unlock()
	c.changed()
	return true
}
