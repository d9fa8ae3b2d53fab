// Package usage records every analysis call with its token counts and
// estimated cost.
package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ziadkadry99/green-analyzer/internal/db"
)

// Status of a recorded call.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Entry is one recorded analysis call.
type Entry struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	AnalysisKey  string    `json:"analysis_key"`
	Tier         string    `json:"tier"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	CostUSD      float64   `json:"cost_usd"`
	Status       string    `json:"status"`
}

// Totals aggregates entries.
type Totals struct {
	Calls        int     `json:"calls"`
	Failed       int     `json:"failed"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// KeyTotals is the aggregate for one analysis key.
type KeyTotals struct {
	AnalysisKey string `json:"analysis_key"`
	Totals
}

// Store manages persistence of usage entries.
type Store struct {
	db *db.DB
}

// NewStore creates a new usage store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record inserts e, filling its id, timestamp and status when unset.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	if e.Status == "" {
		e.Status = StatusOK
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO usage_entries (id, timestamp, analysis_key, tier, model, input_tokens, output_tokens, cost_usd, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp, e.AnalysisKey, e.Tier, e.Model, e.InputTokens, e.OutputTokens, e.CostUSD, e.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting usage entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, analysis_key, tier, model, input_tokens, output_tokens, cost_usd, status
		 FROM usage_entries ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying usage: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.AnalysisKey, &e.Tier, &e.Model,
			&e.InputTokens, &e.OutputTokens, &e.CostUSD, &e.Status); err != nil {
			return nil, fmt.Errorf("scanning usage entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Total aggregates every entry recorded at or after since. A zero since
// covers the whole ledger.
func (s *Store) Total(ctx context.Context, since time.Time) (Totals, error) {
	var t Totals
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(input_tokens), 0),
		        COALESCE(SUM(output_tokens), 0),
		        COALESCE(SUM(cost_usd), 0)
		 FROM usage_entries WHERE timestamp >= ?`, since.UTC()).
		Scan(&t.Calls, &t.Failed, &t.InputTokens, &t.OutputTokens, &t.CostUSD)
	if err != nil {
		return Totals{}, fmt.Errorf("summing usage: %w", err)
	}
	return t, nil
}

// ByKey aggregates the whole ledger per analysis key, costliest first.
func (s *Store) ByKey(ctx context.Context) ([]KeyTotals, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT analysis_key, COUNT(*),
		        SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END),
		        SUM(input_tokens), SUM(output_tokens), SUM(cost_usd)
		 FROM usage_entries GROUP BY analysis_key ORDER BY SUM(cost_usd) DESC, analysis_key`)
	if err != nil {
		return nil, fmt.Errorf("grouping usage: %w", err)
	}
	defer rows.Close()

	var out []KeyTotals
	for rows.Next() {
		var k KeyTotals
		if err := rows.Scan(&k.AnalysisKey, &k.Calls, &k.Failed, &k.InputTokens, &k.OutputTokens, &k.CostUSD); err != nil {
			return nil, fmt.Errorf("scanning usage totals: %w", err)
		}
		out = append(out, k)
	}
	return out, rows.Err()
}
