// Package wizard owns the working session: the questionnaire, analysis
// results, loading flags, step position and active project. Every mutation
// goes through the Controller, which also dispatches the analysis
// pipelines and schedules autosaves.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
	"github.com/ziadkadry99/green-analyzer/internal/geocode"
	"github.com/ziadkadry99/green-analyzer/internal/orchestrator"
	"github.com/ziadkadry99/green-analyzer/internal/projects"
	"github.com/ziadkadry99/green-analyzer/internal/session"
)

var (
	// ErrBusy is returned by Next while an analysis is in flight.
	ErrBusy = errors.New("an analysis is still running")
	// ErrNoRestore is returned when no restore offer is open.
	ErrNoRestore = errors.New("no session to restore")
)

// ValidationError carries the field messages that blocked Next.
type ValidationError struct {
	Errors form.Errors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for %d field(s)", len(e.Errors))
}

// ErrValidation matches any *ValidationError with errors.Is.
var ErrValidation = errors.New("validation failed")

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// State is a copy of the controller's state.
type State struct {
	Step            int              `json:"step"`
	Steps           []string         `json:"steps"`
	Form            *form.Form       `json:"formData"`
	Results         analysis.Results `json:"analysisResults"`
	Loading         analysis.Loading `json:"loading"`
	Errors          form.Errors      `json:"errors"`
	Error           string           `json:"error,omitempty"`
	ActiveProjectID string           `json:"activeProjectId,omitempty"`
	SaveStatus      session.Status   `json:"saveStatus"`
	RestoreOffered  bool             `json:"restoreOffered"`
}

// ticket identifies one dispatch of a pipeline. A ticket stays current
// until the same pipeline is dispatched again or the session is replaced.
type ticket struct {
	epoch uint64
	pipe  pipeline
	gen   uint64
}

// Controller is the single owner of the working session.
type Controller struct {
	orch     *orchestrator.Orchestrator
	sessions *session.Manager
	autosave *session.Autosaver
	projects *projects.Store
	locator  *geocode.Locator
	logger   *slog.Logger
	now      func() time.Time

	mu            sync.Mutex
	form          *form.Form
	board         *analysis.Board
	errors        form.Errors
	errMsg        string
	step          int
	activeProject string
	offer         *session.Snapshot
	booted        bool

	epoch   uint64
	gens    map[pipeline]uint64
	cancels map[pipeline]context.CancelFunc
	running sync.WaitGroup

	subMu  sync.Mutex
	subs   map[int]chan State
	nextID int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLocator enables location lookups.
func WithLocator(l *geocode.Locator) Option {
	return func(c *Controller) { c.locator = l }
}

// WithAutosaveOptions passes options to the session autosaver.
func WithAutosaveOptions(opts ...session.AutosaverOption) Option {
	return func(c *Controller) {
		c.autosave = session.NewAutosaver(c.sessions, c.Snapshot, c.logger,
			append(opts, session.WithStatusHook(func(session.Status) { c.broadcast() }))...)
	}
}

// New returns a controller at the initial state.
func New(orch *orchestrator.Orchestrator, sessions *session.Manager, store *projects.Store, logger *slog.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Controller{
		orch:     orch,
		sessions: sessions,
		projects: store,
		logger:   logger,
		now:      time.Now,
		form:     form.New(),
		board:    analysis.NewBoard(),
		errors:   form.Errors{},
		step:     1,
		gens:     make(map[pipeline]uint64),
		cancels:  make(map[pipeline]context.CancelFunc),
		subs:     make(map[int]chan State),
	}
	for _, o := range opts {
		o(c)
	}
	if c.autosave == nil {
		c.autosave = session.NewAutosaver(sessions, c.Snapshot, logger,
			session.WithStatusHook(func(session.Status) { c.broadcast() }))
	}
	return c
}

// Boot loads the project list and looks for a previous session to offer.
// Only the first call does any work.
func (c *Controller) Boot(ctx context.Context) error {
	c.mu.Lock()
	if c.booted {
		c.mu.Unlock()
		return nil
	}
	c.booted = true
	c.mu.Unlock()

	if err := c.projects.Load(ctx); err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}
	snap, err := c.sessions.Pending(ctx)
	if err != nil {
		return err
	}
	if snap != nil {
		c.mu.Lock()
		c.offer = snap
		c.mu.Unlock()
		c.logger.Info("previous session found", "step", snap.CurrentStep)
	}
	return nil
}

// Restore answers the restore offer. Accepting replaces the working session
// with the stored one; declining deletes it.
func (c *Controller) Restore(ctx context.Context, accept bool) error {
	c.mu.Lock()
	snap := c.offer
	if snap == nil {
		c.mu.Unlock()
		return ErrNoRestore
	}
	c.offer = nil
	if !accept {
		c.mu.Unlock()
		c.broadcast()
		return c.sessions.Discard(ctx)
	}
	c.supersedeLocked()
	c.form = snap.FormData.Clone()
	c.board = &analysis.Board{Results: snap.AnalysisResults.Clone(), Loading: analysis.NewLoading()}
	c.step = snap.CurrentStep
	c.activeProject = snap.ActiveProjectID
	c.errors = form.Errors{}
	c.errMsg = ""
	c.guardLocked()
	c.mu.Unlock()

	c.changed()
	return nil
}

// Snapshot returns the persisted view of the session.
func (c *Controller) Snapshot() session.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return session.Snapshot{
		FormData:        c.form.Clone(),
		AnalysisResults: c.board.Results.Clone(),
		CurrentStep:     c.step,
		ActiveProjectID: c.activeProject,
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	errs := make(form.Errors, len(c.errors))
	for k, v := range c.errors {
		errs[k] = v
	}
	return State{
		Step:            c.step,
		Steps:           Flow(c.form.Role),
		Form:            c.form.Clone(),
		Results:         c.board.Results.Clone(),
		Loading:         c.board.Loading.Clone(),
		Errors:          errs,
		Error:           c.errMsg,
		ActiveProjectID: c.activeProject,
		SaveStatus:      c.autosave.Status(),
		RestoreOffered:  c.offer != nil,
	}
}

// SetField updates one field. Multi-select fields toggle value. Any error
// recorded for the field is cleared.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	if err := c.form.Set(name, value); err != nil {
		c.mu.Unlock()
		return err
	}
	c.errors.Clear(name)
	c.guardLocked()
	c.mu.Unlock()

	c.changed()
	return nil
}

// Merge applies a bulk update and records autoFilled as auto-filled.
func (c *Controller) Merge(patch form.Patch, autoFilled []string) error {
	c.mu.Lock()
	if err := c.form.Merge(patch, autoFilled); err != nil {
		c.mu.Unlock()
		return err
	}
	c.guardLocked()
	c.mu.Unlock()

	c.changed()
	return nil
}

// ClearError removes the message for field, if any.
func (c *Controller) ClearError(field string) {
	c.mu.Lock()
	had := c.errors.Has(field)
	c.errors.Clear(field)
	c.mu.Unlock()
	if had {
		c.broadcast()
	}
}

// Next validates the current step, moves forward and starts the analysis
// tied to the entered step.
func (c *Controller) Next() error {
	c.mu.Lock()
	if c.board.Loading.Any() {
		c.mu.Unlock()
		return ErrBusy
	}
	errs := Validate(c.step, c.form)
	c.errors = errs
	if len(errs) > 0 {
		c.mu.Unlock()
		c.broadcast()
		return &ValidationError{Errors: errs}
	}

	next := c.step + 1
	if p, ok := trigger(c.form.Role, next); ok {
		c.dispatchLocked(p)
	}
	if c.step < len(Flow(c.form.Role)) {
		c.step = next
	}
	c.mu.Unlock()

	c.changed()
	return nil
}

// Back moves to the previous step and clears field errors.
func (c *Controller) Back() {
	c.mu.Lock()
	if c.step <= 1 {
		c.mu.Unlock()
		return
	}
	c.step--
	c.errors = form.Errors{}
	c.mu.Unlock()

	c.changed()
}

// StartOver resets the session to defaults, detaches the active project
// and deletes the stored session.
func (c *Controller) StartOver(ctx context.Context) error {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()

	c.autosave.Cancel()
	c.broadcast()
	return c.sessions.Discard(ctx)
}

func (c *Controller) resetLocked() {
	c.supersedeLocked()
	c.step = 1
	c.form = form.New()
	c.board = analysis.NewBoard()
	c.errMsg = ""
	c.errors = form.Errors{}
	c.activeProject = ""
}

// guardLocked keeps the step inside the current flow and keeps the sales
// flow from sitting past step 2 without a technology. Both can happen after
// a restore or a role change.
func (c *Controller) guardLocked() {
	if n := len(Flow(c.form.Role)); c.step > n {
		c.step = n
		c.errors = form.Errors{}
	}
	for c.form.IsSales() && c.step > 2 && c.form.SellingTechnology == "" {
		c.step--
		c.errors = form.Errors{}
	}
}

// Wait blocks until every dispatched pipeline has returned.
func (c *Controller) Wait() {
	c.running.Wait()
}

// Close cancels running pipelines and writes any pending autosave.
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	for p, cancel := range c.cancels {
		cancel()
		delete(c.cancels, p)
	}
	c.mu.Unlock()
	c.running.Wait()
	return c.autosave.Flush(ctx)
}

// Subscribe returns a channel that receives the latest state after every
// change. Slow readers only see the most recent state.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	c.subMu.Unlock()

	return ch, func() {
		c.subMu.Lock()
		if _, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(ch)
		}
		c.subMu.Unlock()
	}
}

// broadcast reads the state under subMu so concurrent broadcasts deliver
// in the order their snapshots were taken. Lock order is subMu, then c.mu.
func (c *Controller) broadcast() {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	st := c.State()
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

// changed schedules an autosave and notifies subscribers. It must be called
// without c.mu held.
func (c *Controller) changed() {
	c.autosave.Touch()
	c.broadcast()
}
