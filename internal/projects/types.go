package projects

import (
	"time"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

// Run is one saved snapshot of the questionnaire and every analysis result.
// Timestamp is in Unix milliseconds.
type Run struct {
	FormData        *form.Form       `json:"formData"`
	AnalysisResults analysis.Results `json:"analysisResults"`
	Timestamp       int64            `json:"timestamp"`
}

// NewRun captures f and results at t. Both are copied.
func NewRun(f *form.Form, results analysis.Results, t time.Time) Run {
	return Run{
		FormData:        f.Clone(),
		AnalysisResults: results.Clone(),
		Timestamp:       t.UnixMilli(),
	}
}

func (r Run) clone() Run {
	return Run{FormData: r.FormData.Clone(), AnalysisResults: r.AnalysisResults.Clone(), Timestamp: r.Timestamp}
}

// Time returns the run timestamp.
func (r Run) Time() time.Time { return time.UnixMilli(r.Timestamp) }

// Project is a named history of runs. Runs is never empty once persisted.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	Runs      []Run  `json:"runs"`
}

// Latest returns the most recent run.
func (p *Project) Latest() Run {
	return p.Runs[len(p.Runs)-1]
}

func (p Project) clone() Project {
	runs := make([]Run, len(p.Runs))
	for i, r := range p.Runs {
		runs[i] = r.clone()
	}
	p.Runs = runs
	return p
}

// Summary is the list view of a project.
type Summary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
	RunCount  int    `json:"runCount"`
	Location  string `json:"location"`
}
