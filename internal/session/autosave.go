package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a change is written.
const DefaultDelay = 1500 * time.Millisecond

// Status is the save indicator shown to the user.
type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
)

// Timer is the part of *time.Timer the autosaver uses.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. time.AfterFunc satisfies it.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Autosaver debounces session writes: every Touch restarts a single timer
// and only the last one fires.
type Autosaver struct {
	manager  *Manager
	snapshot func() Snapshot
	delay    time.Duration
	after    AfterFunc
	logger   *slog.Logger

	// saveMu is held across the generation check and the write, so Cancel
	// returns only after any in-flight write has finished.
	saveMu sync.Mutex

	mu       sync.Mutex
	timer    Timer
	gen      uint64
	status   Status
	disabled bool
	onStatus func(Status)
}

// AutosaverOption configures an Autosaver.
type AutosaverOption func(*Autosaver)

// WithDelay overrides DefaultDelay.
func WithDelay(d time.Duration) AutosaverOption {
	return func(a *Autosaver) { a.delay = d }
}

// WithAfterFunc replaces the timer source, for tests.
func WithAfterFunc(f AfterFunc) AutosaverOption {
	return func(a *Autosaver) { a.after = f }
}

// WithStatusHook is called after every status change, outside the lock.
func WithStatusHook(f func(Status)) AutosaverOption {
	return func(a *Autosaver) { a.onStatus = f }
}

// NewAutosaver returns an autosaver that writes snapshot() through m.
func NewAutosaver(m *Manager, snapshot func() Snapshot, logger *slog.Logger, opts ...AutosaverOption) *Autosaver {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Autosaver{
		manager:  m,
		snapshot: snapshot,
		delay:    DefaultDelay,
		after:    realAfterFunc,
		logger:   logger,
		status:   StatusIdle,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Touch records a change and restarts the quiet period.
func (a *Autosaver) Touch() {
	a.mu.Lock()
	if a.disabled {
		a.mu.Unlock()
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.status = StatusSaving
	a.timer = a.after(a.delay, func() { a.fire(gen) })
	hook := a.onStatus
	a.mu.Unlock()

	if hook != nil {
		hook(StatusSaving)
	}
}

func (a *Autosaver) fire(gen uint64) {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	if a.disabled || gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	// snapshot takes the owner's lock, so it must run outside ours.
	snap := a.snapshot()
	if err := a.manager.Save(context.Background(), snap); err != nil {
		a.logger.Error("autosave failed", "error", err)
		return
	}

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.status = StatusSaved
	a.timer = nil
	hook := a.onStatus
	a.mu.Unlock()

	a.logger.Debug("session autosaved", "step", snap.CurrentStep)
	if hook != nil {
		hook(StatusSaved)
	}
}

// Flush writes immediately if a save is pending.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	if a.disabled || a.timer == nil {
		a.mu.Unlock()
		return nil
	}
	a.timer.Stop()
	a.timer = nil
	a.gen++
	gen := a.gen
	a.mu.Unlock()

	if err := a.manager.Save(ctx, a.snapshot()); err != nil {
		return err
	}

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return nil
	}
	a.status = StatusSaved
	hook := a.onStatus
	a.mu.Unlock()

	if hook != nil {
		hook(StatusSaved)
	}
	return nil
}

// Cancel drops a pending save without writing it. A write already in
// progress completes before Cancel returns.
func (a *Autosaver) Cancel() {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.gen++
	a.status = StatusIdle
}

// Disable cancels any pending save and ignores further changes.
func (a *Autosaver) Disable() {
	a.Cancel()
	a.mu.Lock()
	a.disabled = true
	a.mu.Unlock()
}

// Status returns the current indicator value.
func (a *Autosaver) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}
