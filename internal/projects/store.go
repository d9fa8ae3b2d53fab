// Package projects keeps the user's named projects and their run history.
// The whole list is stored as one JSON array and rewritten on every change.
package projects

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/green-analyzer/internal/storage"
)

// ErrNotFound is returned for an unknown project id.
var ErrNotFound = errors.New("project not found")

// IDPrefix starts every project id.
const IDPrefix = "proj_"

// Store manages persistence of projects.
type Store struct {
	kv     storage.Store
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	projects []Project
}

// NewStore creates a project store over kv. Call Load before use.
func NewStore(kv storage.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger, now: time.Now}
}

// Load reads the project list. A missing list is empty; an unreadable one
// is logged and replaced by an empty list. Projects without runs are dropped.
func (s *Store) Load(ctx context.Context) error {
	var list []Project
	err := storage.LoadJSON(ctx, s.kv, storage.ProjectsKey, &list)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		list = nil
	case errors.Is(err, storage.ErrDecode):
		s.logger.Warn("project list is unreadable, starting empty", "error", err)
		list = nil
	case err != nil:
		return fmt.Errorf("loading projects: %w", err)
	}

	kept := make([]Project, 0, len(list))
	for _, p := range list {
		if p.ID == "" || len(p.Runs) == 0 {
			s.logger.Warn("dropping invalid project", "id", p.ID, "name", p.Name)
			continue
		}
		if p.Runs[len(p.Runs)-1].FormData == nil {
			s.logger.Warn("dropping project with empty run", "id", p.ID)
			continue
		}
		kept = append(kept, p)
	}

	s.mu.Lock()
	s.projects = kept
	s.mu.Unlock()
	return nil
}

// List returns a copy of every project in creation order.
func (s *Store) List() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.clone()
	}
	return out
}

// Summaries returns the list view of every project.
func (s *Store) Summaries() []Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Summary, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, Summary{
			ID:        p.ID,
			Name:      p.Name,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
			RunCount:  len(p.Runs),
			Location:  p.Latest().FormData.Location,
		})
	}
	return out
}

// Get returns a copy of the project with id.
func (s *Store) Get(id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.index(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	p := s.projects[i].clone()
	return &p, nil
}

// Create saves a new project holding run.
func (s *Store) Create(ctx context.Context, name string, run Run) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project name is required")
	}
	now := s.now().UnixMilli()
	p := Project{
		ID:        IDPrefix + uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
		Runs:      []Run{run.clone()},
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(append([]Project{}, s.projects...), p)
	if err := s.write(ctx, next); err != nil {
		return nil, err
	}
	s.projects = next
	out := p.clone()
	return &out, nil
}

// Rename changes the name of a project.
func (s *Store) Rename(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("project name is required")
	}
	return s.update(ctx, id, func(p *Project) {
		p.Name = name
		p.UpdatedAt = s.now().UnixMilli()
	})
}

// AppendRun adds run to the history of a project.
func (s *Store) AppendRun(ctx context.Context, id string, run Run) error {
	return s.update(ctx, id, func(p *Project) {
		p.Runs = append(p.Runs, run.clone())
		p.UpdatedAt = s.now().UnixMilli()
	})
}

// Delete removes a project.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := make([]Project, 0, len(s.projects)-1)
	next = append(next, s.projects[:i]...)
	next = append(next, s.projects[i+1:]...)
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.projects = next
	return nil
}

func (s *Store) update(ctx context.Context, id string, fn func(*Project)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := append([]Project{}, s.projects...)
	p := next[i]
	p.Runs = append([]Run{}, p.Runs...)
	fn(&p)
	next[i] = p
	if err := s.write(ctx, next); err != nil {
		return err
	}
	s.projects = next
	return nil
}

// write stores the entire list. Callers hold mu.
func (s *Store) write(ctx context.Context, list []Project) error {
	if err := storage.SaveJSON(ctx, s.kv, storage.ProjectsKey, list); err != nil {
		return fmt.Errorf("saving projects: %w", err)
	}
	return nil
}

func (s *Store) index(id string) int {
	for i, p := range s.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
