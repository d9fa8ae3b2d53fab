package wizard

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
	"github.com/ziadkadry99/green-analyzer/internal/projects"
	"github.com/ziadkadry99/green-analyzer/internal/share"
)

// SaveProject stores the working session as a new project with one run and
// makes it active.
func (c *Controller) SaveProject(ctx context.Context, name string) (*projects.Project, error) {
	c.mu.Lock()
	run := projects.NewRun(c.form, c.board.Results, c.now())
	c.mu.Unlock()

	p, err := c.projects.Create(ctx, name, run)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.activeProject = p.ID
	c.mu.Unlock()
	c.changed()

	c.logger.Info("project saved", "id", p.ID, "name", p.Name)
	return p, nil
}

// LoadProject replaces the working session with the latest run of id and
// returns to step 1. Running analyses are abandoned.
func (c *Controller) LoadProject(id string) error {
	p, err := c.projects.Get(id)
	if err != nil {
		return err
	}
	latest := p.Latest()

	c.mu.Lock()
	c.supersedeLocked()
	c.form = latest.FormData.Clone()
	c.board = &analysis.Board{Results: latest.AnalysisResults.Clone(), Loading: analysis.NewLoading()}
	c.activeProject = p.ID
	c.step = 1
	c.errors = form.Errors{}
	c.errMsg = ""
	c.mu.Unlock()

	c.changed()
	c.logger.Info("project loaded", "id", p.ID, "runs", len(p.Runs))
	return nil
}

// DeleteProject removes id. Deleting the active project also starts over.
func (c *Controller) DeleteProject(ctx context.Context, id string) error {
	if err := c.projects.Delete(ctx, id); err != nil {
		return err
	}
	c.mu.Lock()
	active := c.activeProject == id
	c.mu.Unlock()
	if active {
		return c.StartOver(ctx)
	}
	return nil
}

// ShareLink returns a link to a read-only copy of the current form and
// results.
func (c *Controller) ShareLink(base string) (string, error) {
	c.mu.Lock()
	p := share.Payload{FormData: c.form.Clone(), AnalysisResults: c.board.Results.Clone()}
	c.mu.Unlock()

	link, err := share.Link(base, p)
	if err != nil {
		return "", fmt.Errorf("building share link: %w", err)
	}
	return link, nil
}
