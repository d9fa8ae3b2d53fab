// Package session persists the single-slot working session: a snapshot of
// the form, the results, the current step and the active project.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
	"github.com/ziadkadry99/green-analyzer/internal/storage"
)

// MaxStep is the length of the longest step flow.
const MaxStep = 7

// ErrCorrupt is returned when a stored snapshot cannot be used.
var ErrCorrupt = errors.New("session: stored snapshot is corrupt")

// Snapshot is the unit of autosave and restore.
type Snapshot struct {
	FormData        *form.Form       `json:"formData"`
	AnalysisResults analysis.Results `json:"analysisResults"`
	CurrentStep     int              `json:"currentStep"`
	ActiveProjectID string           `json:"activeProjectId"`
}

// Validate checks the invariants a restored snapshot must hold.
func (s *Snapshot) Validate() error {
	if s.FormData == nil {
		return fmt.Errorf("%w: missing formData", ErrCorrupt)
	}
	if s.AnalysisResults == nil {
		return fmt.Errorf("%w: missing analysisResults", ErrCorrupt)
	}
	if s.CurrentStep < 1 || s.CurrentStep > MaxStep {
		return fmt.Errorf("%w: step %d out of range", ErrCorrupt, s.CurrentStep)
	}
	if !s.FormData.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", ErrCorrupt, s.FormData.Role)
	}
	return nil
}

// Manager reads and writes the session slot.
type Manager struct {
	store  storage.Store
	logger *slog.Logger
}

// NewManager returns a manager over store.
func NewManager(store storage.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger}
}

// Pending returns the stored snapshot, or nil when there is none. A corrupt
// snapshot is logged, deleted and reported as absent.
func (m *Manager) Pending(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	err := storage.LoadJSON(ctx, m.store, storage.SessionKey, &snap)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil && !errors.Is(err, storage.ErrDecode) {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if err == nil {
		err = snap.Validate()
	}
	if err != nil {
		m.logger.Warn("discarding unreadable session", "error", err)
		if derr := m.store.Delete(ctx, storage.SessionKey); derr != nil {
			return nil, fmt.Errorf("deleting corrupt session: %w", derr)
		}
		return nil, nil
	}
	return &snap, nil
}

// Save overwrites the session slot.
func (m *Manager) Save(ctx context.Context, snap Snapshot) error {
	if err := storage.SaveJSON(ctx, m.store, storage.SessionKey, snap); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Discard deletes the session slot.
func (m *Manager) Discard(ctx context.Context) error {
	if err := m.store.Delete(ctx, storage.SessionKey); err != nil {
		return fmt.Errorf("discarding session: %w", err)
	}
	return nil
}
