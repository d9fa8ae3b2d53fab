// Package progress reports bulk-analysis progress on the command line.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
)

// Reporter provides progress feedback while analyses settle.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive terminal,
// or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{w: os.Stderr}
	}
	return &TerminalReporter{}
}

// Func adapts r to the orchestrator's progress callback. The bar is started
// on the first call of each stage and finished when done reaches total.
// The returned function is safe for concurrent use.
func Func(r Reporter) func(done, total int, key analysis.Key) {
	var (
		mu      sync.Mutex
		started bool
	)
	return func(done, total int, key analysis.Key) {
		mu.Lock()
		defer mu.Unlock()
		if !started {
			r.Start(total)
			started = true
		}
		r.Update(done, string(key))
		if done >= total {
			r.Finish()
			started = false
		}
	}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Analyzing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar != nil {
		r.bar.Describe(message)
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	w     io.Writer
	total int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(r.out(), "Starting %d analyses\n", total)
}

func (r *CIReporter) Update(current int, message string) {
	fmt.Fprintf(r.out(), "[%d/%d] %s\n", current, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(r.out(), "Analyses complete")
}

func (r *CIReporter) out() io.Writer {
	if r.w == nil {
		return os.Stderr
	}
	return r.w
}
