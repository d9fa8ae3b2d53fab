package analyst

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
	"github.com/ziadkadry99/green-analyzer/internal/llm"
	"github.com/ziadkadry99/green-analyzer/internal/usage"
)

type mockProvider struct {
	mu       sync.Mutex
	requests []llm.CompletionRequest
	resp     *llm.CompletionResponse
	err      error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

type memRecorder struct {
	entries []usage.Entry
}

func (r *memRecorder) Record(_ context.Context, e usage.Entry) error {
	r.entries = append(r.entries, e)
	return nil
}

var testModels = Models{Flash: "gemini-2.5-flash", Pro: "gemini-2.5-pro"}

func TestClientRunMapsTierAndTools(t *testing.T) {
	p := &mockProvider{resp: &llm.CompletionResponse{
		Content:      "  guide  \n",
		InputTokens:  1000,
		OutputTokens: 500,
		Citations: []llm.Citation{
			{Kind: llm.CitationWeb, URI: "https://a.example", Title: "A"},
			{Kind: llm.CitationMaps, URI: "https://maps.example/p", Title: "P"},
		},
	}}
	rec := &memRecorder{}
	c := NewClient(p, testModels, nil, WithRecorder(rec))

	got, err := c.Run(context.Background(), Query{Name: "permitting", Prompt: "hi", Tier: TierPro, Search: true, Maps: true})
	require.NoError(t, err)
	assert.Equal(t, "guide", got.Text)
	require.Len(t, got.Sources, 2)
	assert.Equal(t, analysis.CitationWeb, got.Sources[0].Kind)
	assert.Equal(t, analysis.CitationMap, got.Sources[1].Kind)

	require.Len(t, p.requests, 1)
	req := p.requests[0]
	assert.Equal(t, "gemini-2.5-pro", req.Model)
	assert.True(t, req.HasTool(llm.ToolWebSearch))
	assert.True(t, req.HasTool(llm.ToolMaps))
	assert.Equal(t, "hi", req.Messages[0].Content)

	require.Len(t, rec.entries, 1)
	assert.Equal(t, "permitting", rec.entries[0].AnalysisKey)
	assert.Equal(t, "pro", rec.entries[0].Tier)
	assert.Equal(t, usage.StatusOK, rec.entries[0].Status)
	assert.Greater(t, c.Spent(), 0.0)
}

func TestClientDefaultsToFlash(t *testing.T) {
	p := &mockProvider{resp: &llm.CompletionResponse{Content: "x"}}
	c := NewClient(p, testModels, nil)
	got, err := c.Run(context.Background(), Query{Prompt: "p"})
	require.NoError(t, err)
	assert.NotNil(t, got.Sources)
	assert.Equal(t, "gemini-2.5-flash", p.requests[0].Model)
	assert.Empty(t, p.requests[0].Tools)
}

func TestClientWrapsErrors(t *testing.T) {
	cause := errors.New("quota")
	rec := &memRecorder{}
	c := NewClient(&mockProvider{err: cause}, testModels, nil, WithRecorder(rec))

	_, err := c.Run(context.Background(), Query{Name: "solar", Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.True(t, strings.HasPrefix(err.Error(), "failed to get response from analysis backend: "))
	require.Len(t, rec.entries, 1)
	assert.Equal(t, usage.StatusError, rec.entries[0].Status)
}

func TestClientBudget(t *testing.T) {
	p := &mockProvider{resp: &llm.CompletionResponse{Content: "x", InputTokens: 1_000_000, OutputTokens: 1_000_000}}
	c := NewClient(p, testModels, nil, WithBudget(0.01))

	_, err := c.Run(context.Background(), Query{Prompt: "p"})
	require.NoError(t, err)

	_, err = c.Run(context.Background(), Query{Prompt: "p"})
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Len(t, p.requests, 1)
}

func TestKnowledgeLoads(t *testing.T) {
	kb := Knowledge()
	assert.Equal(t, 0.17, kb.Financial.AvgElectricityCost)
	assert.Equal(t, 3.0, kb.Financial.CostPerWatt["solar"])
	assert.Equal(t, 0.85, kb.Environmental.GridCO2Factor)
	assert.Contains(t, kb.CalculatorJSON("solar"), `"panelWattage":400`)
	assert.Equal(t, "{}", kb.CalculatorJSON("fusion"))
	assert.Contains(t, kb.WindProducts, "ridgeblade")
}

func TestFinancingFiltersByRole(t *testing.T) {
	all := Financing(form.RoleSales)
	require.NotEmpty(t, all)

	count := func(secs []FinancingSection) int {
		n := 0
		for _, s := range secs {
			n += len(s.Items)
		}
		return n
	}
	home := Financing(form.RoleHomeowner)
	assert.LessOrEqual(t, count(home), count(all))
	for _, s := range home {
		assert.NotEmpty(t, s.Items, s.ID)
		for _, it := range s.Items {
			if len(it.Tags) == 0 {
				continue
			}
			assert.True(t, contains(it.Tags, "Homeowner") || contains(it.Tags, "Low-income"), it.Title)
		}
	}
	assert.True(t, strings.HasPrefix(FinancingJSON(form.RolePolicymaker), "["))
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

func sampleForm() *form.Form {
	f := form.New()
	f.Role = form.RoleHomeowner
	f.Location = "Boulder, CO"
	f.PropertyAge = "40"
	f.SquareFootage = "1800"
	f.ElectricityUsage = "650"
	f.HydroSourceType = form.HydroRiverStream
	f.SunroofData = &form.SunroofData{RawText: "6.2 kW fits"}
	return f
}

func TestBasePromptFallbacks(t *testing.T) {
	f := form.New()
	out := BasePrompt(f)
	assert.Contains(t, out, "Role: Not specified")
	assert.Contains(t, out, "Square Footage: Not specified")
	assert.NotContains(t, out, "ADDITIONAL DETAILS")

	f = sampleForm()
	out = BasePrompt(f)
	assert.Contains(t, out, "Property Age: 40 years")
	assert.Contains(t, out, "Monthly Electricity Usage: 650 kWh")
	assert.Contains(t, out, "Hydro Source: River/Stream")
}

func TestAnalysisContextIncludesPermitting(t *testing.T) {
	out := AnalysisContext(sampleForm(), "permit guide")
	assert.True(t, strings.HasPrefix(out, "Here is the complete context"))
	assert.Contains(t, out, "Sunroof/Solar Estimate Summary: 6.2 kW fits")
	assert.Contains(t, out, "--- PERMITTING & INCENTIVES CONTEXT ---\npermit guide")
}

func TestQueryTiers(t *testing.T) {
	f := sampleForm()
	p := Permitting(f)
	assert.Equal(t, TierPro, p.Tier)
	assert.True(t, p.Search)
	assert.Contains(t, p.Prompt, `"Boulder, CO"`)

	fin := FinancingQuery("ctx", f)
	assert.True(t, fin.Search)
	assert.Equal(t, string(analysis.Financing), fin.Name)

	assert.Equal(t, TierPro, FinalReport("ctx", "all").Tier)
	assert.Contains(t, FinalReport("ctx", "all").Prompt, "$0.17/kWh")
	assert.Equal(t, TierFlash, Summary("ctx", "all").Tier)

	f.SellingTechnology = form.SourceSolar
	tm := SalesTargetMarket(f)
	assert.True(t, tm.Search)
	assert.Equal(t, TierPro, tm.Tier)
	assert.False(t, SalesSellingPoints(f, "tm").Search)
	assert.True(t, SalesOutreach(f, "tm\nsp").Search)
	assert.Contains(t, SalesSummary("a\n\nb").Prompt, "a\n\nb")
}

func TestBulkCoversConcurrentKeys(t *testing.T) {
	f := sampleForm()
	for _, k := range []analysis.Key{
		analysis.EnergyAudit, analysis.Solar, analysis.Wind, analysis.BuildingMaterials,
		analysis.Weatherization, analysis.MiniSplit, analysis.WasteToEnergy,
		analysis.Hydro, analysis.Geothermal,
	} {
		q, ok := Bulk(k, "CTX", f)
		require.True(t, ok, k)
		assert.Equal(t, string(k), q.Name)
		assert.Contains(t, q.Prompt, "CTX", k)
	}
	_, ok := Bulk(analysis.Summary, "CTX", f)
	assert.False(t, ok)
}

func TestHydroPromptPicksCalculator(t *testing.T) {
	f := sampleForm()
	q, _ := Bulk(analysis.Hydro, "", f)
	assert.Contains(t, q.Prompt, "Efficiency_Factor")

	f.HydroSourceType = form.HydroDrinkingWater
	f.HydroPressureDrop = "30"
	q, _ = Bulk(analysis.Hydro, "", f)
	assert.Contains(t, q.Prompt, "Pressure Drop (PSI)")
	assert.Contains(t, q.Prompt, "Available pressure drop: 30")
}
