package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/analyst"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

// fakeQuerier answers by query name. Names listed in fail return an error.
type fakeQuerier struct {
	mu      sync.Mutex
	fail    map[string]bool
	calls   []string
	prompts map[string]string
}

func newFakeQuerier(fail ...string) *fakeQuerier {
	q := &fakeQuerier{fail: map[string]bool{}, prompts: map[string]string{}}
	for _, f := range fail {
		q.fail[f] = true
	}
	return q
}

func (q *fakeQuerier) Run(_ context.Context, query analyst.Query) (analysis.Content, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.calls = append(q.calls, query.Name)
	q.prompts[query.Name] = query.Prompt
	if q.fail[query.Name] {
		return analysis.Content{}, errors.New(query.Name + " unavailable")
	}
	return analysis.Content{Text: query.Name + " text"}, nil
}

func (q *fakeQuerier) called() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.calls...)
}

type recordingSink struct {
	mu       sync.Mutex
	board    *analysis.Board
	steps    []int
	errs     []string
	rejectAt int
	applies  int
}

func newSink() *recordingSink {
	return &recordingSink{board: analysis.NewBoard()}
}

func (s *recordingSink) Apply(fn func(*analysis.Board)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applies++
	if s.rejectAt > 0 && s.applies >= s.rejectAt {
		return false
	}
	fn(s.board)
	return true
}

func (s *recordingSink) Advance(step int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step)
	return true
}

func (s *recordingSink) Fail(msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, msg)
	return true
}

func TestBulkPlan(t *testing.T) {
	f := form.New()
	f.Role = form.RoleHomeowner
	f.PropertyAge = "30"
	assert.Equal(t, []analysis.Key{
		analysis.EnergyAudit, analysis.Solar, analysis.Wind, analysis.BuildingMaterials,
		analysis.Weatherization, analysis.Geothermal,
	}, BulkPlan(f))

	f.SquareFootage = "2000"
	f.FoodWaste = "15"
	f.HydroSourceType = form.HydroIrrigationCanal
	assert.NotContains(t, BulkPlan(f), analysis.WasteToEnergy)

	f.Role = form.RoleCommunity
	assert.Equal(t, []analysis.Key{
		analysis.EnergyAudit, analysis.Solar, analysis.Wind, analysis.BuildingMaterials,
		analysis.Weatherization, analysis.MiniSplit, analysis.WasteToEnergy, analysis.Hydro,
		analysis.Geothermal,
	}, BulkPlan(f))
}

func TestBulkSettlesAll(t *testing.T) {
	q := newFakeQuerier("wind", "geothermal")
	sink := newSink()
	o := New(q, nil, WithConcurrency(2))

	f := form.New()
	f.Role = form.RoleHomeowner
	f.PropertyAge = "30"

	var progress []int
	var pmu sync.Mutex
	o.onProgress = func(done, total int, _ analysis.Key) {
		pmu.Lock()
		progress = append(progress, done)
		pmu.Unlock()
		assert.Equal(t, 6, total)
	}

	require.NoError(t, o.Bulk(context.Background(), f, "permits", sink))

	r := sink.board.Results
	assert.Equal(t, analysis.FailedText, r.Text(analysis.Wind))
	assert.Equal(t, analysis.FailedText, r.Text(analysis.Geothermal))
	for _, k := range []analysis.Key{analysis.EnergyAudit, analysis.Solar, analysis.BuildingMaterials, analysis.Weatherization} {
		assert.Equal(t, string(k)+" text", r.Text(k))
	}
	assert.Empty(t, r.Text(analysis.MiniSplit))
	assert.Equal(t, "battery text", r.Text(analysis.Battery))
	assert.Equal(t, "portfolio text", r.Text(analysis.Portfolio))
	assert.False(t, sink.board.Loading.Any())
	assert.Len(t, progress, 6)

	calls := q.called()
	require.Len(t, calls, 8)
	assert.Equal(t, []string{"battery", "portfolio"}, calls[6:])

	// Only succeeded texts feed the follow-ups.
	assert.Contains(t, q.prompts["battery"], "solar text\n\n")
	assert.NotContains(t, q.prompts["portfolio"], "wind text")
	assert.Contains(t, q.prompts["portfolio"], "energyAudit text\n---\nsolar text")
	assert.Contains(t, q.prompts["solar"], "permits")
}

func TestBulkSkipsBatteryWithoutGeneration(t *testing.T) {
	q := newFakeQuerier("solar", "wind", "portfolio")
	sink := newSink()
	sink.board.Results[analysis.Portfolio] = analysis.Content{Text: "old", Sources: []analysis.Citation{}}

	require.NoError(t, New(q, nil).Bulk(context.Background(), form.New(), "", sink))
	assert.NotContains(t, q.called(), "battery")
	assert.Equal(t, "old", sink.board.Results.Text(analysis.Portfolio))
	assert.False(t, sink.board.Loading.Any())
	assert.Empty(t, sink.errs)
}

func TestBulkStopsWhenSuperseded(t *testing.T) {
	q := newFakeQuerier()
	sink := newSink()
	sink.rejectAt = 3
	err := New(q, nil).Bulk(context.Background(), form.New(), "", sink)
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.NotContains(t, q.called(), "battery")
	assert.NotContains(t, q.called(), "portfolio")
}

func TestPermittingFailure(t *testing.T) {
	q := newFakeQuerier("permitting")
	sink := newSink()
	err := New(q, nil).Permitting(context.Background(), form.New(), sink)
	require.Error(t, err)
	assert.Equal(t, []string{PermittingFailed}, sink.errs)
	assert.False(t, sink.board.Loading[analysis.Permitting])
	assert.Empty(t, sink.board.Results.Text(analysis.Permitting))
}

func TestSummaryUsesNonMetaText(t *testing.T) {
	q := newFakeQuerier()
	sink := newSink()
	results := analysis.NewResults()
	results[analysis.Solar] = analysis.Content{Text: "SOLAR"}
	results[analysis.Financing] = analysis.Content{Text: "FINANCING"}
	results[analysis.Permitting] = analysis.Content{Text: "PERMITS"}

	require.NoError(t, New(q, nil).Summary(context.Background(), form.New(), results, sink))
	assert.Equal(t, "summary text", sink.board.Results.Text(analysis.Summary))
	p := q.prompts["summary"]
	assert.Contains(t, p, "SOLAR")
	assert.Contains(t, p, "PERMITS")
	assert.NotContains(t, p, "FINANCING")
}

func TestFinancingFailureReportsMessage(t *testing.T) {
	q := newFakeQuerier("financing")
	sink := newSink()
	err := New(q, nil).Financing(context.Background(), form.New(), analysis.NewResults(), sink)
	require.Error(t, err)
	require.Len(t, sink.errs, 1)
	assert.Contains(t, sink.errs[0], "financing unavailable")
	assert.False(t, sink.board.Loading.Any())
}

func TestSalesChainAdvances(t *testing.T) {
	q := newFakeQuerier()
	sink := newSink()
	f := form.New()
	f.Role = form.RoleSales
	f.SellingTechnology = form.SourceSolar

	require.NoError(t, New(q, nil).Sales(context.Background(), f, sink))
	assert.Equal(t, []int{4, 5, 6}, sink.steps)
	assert.Equal(t, []string{"salesTargetMarket", "salesSellingPoints", "salesOutreach", "salesSummary"}, q.called())
	assert.Contains(t, q.prompts["salesOutreach"], "salesTargetMarket text\nsalesSellingPoints text")
	assert.True(t, strings.Contains(q.prompts["salesSummary"], "salesTargetMarket text\n\nsalesSellingPoints text\n\nsalesOutreach text"))
	assert.Equal(t, "salesSummary text", sink.board.Results.Text(analysis.SalesSummary))
	assert.False(t, sink.board.Loading.Any())
}

func TestSalesChainStopsOnFailure(t *testing.T) {
	q := newFakeQuerier("salesSellingPoints")
	sink := newSink()
	sink.board.Begin(analysis.Solar)

	err := New(q, nil).Sales(context.Background(), form.New(), sink)
	require.Error(t, err)
	assert.Equal(t, []int{4}, sink.steps)
	assert.Equal(t, []string{"salesTargetMarket", "salesSellingPoints"}, q.called())
	assert.Equal(t, []string{"salesSellingPoints unavailable"}, sink.errs)
	assert.Equal(t, "salesTargetMarket text", sink.board.Results.Text(analysis.SalesTargetMarket))
	assert.False(t, sink.board.Loading.Any())
}
