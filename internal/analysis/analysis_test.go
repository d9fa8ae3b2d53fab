package analysis

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResultsHasEveryKey(t *testing.T) {
	r := NewResults()
	require.Len(t, r, len(AllKeys))
	for _, k := range AllKeys {
		v, ok := r[k]
		require.True(t, ok, k)
		assert.Empty(t, v.Text)
		assert.NotNil(t, v.Sources)
	}
	assert.Len(t, AllKeys, 21)
}

func TestIsMeta(t *testing.T) {
	meta := []Key{Summary, FinalReport, Financing, SalesTargetMarket, SalesSellingPoints, SalesOutreach, SalesSummary}
	for _, k := range meta {
		assert.True(t, k.IsMeta(), k)
	}
	for _, k := range []Key{Solar, Permitting, Portfolio, MarketAnalysis} {
		assert.False(t, k.IsMeta(), k)
	}
}

func TestResultsUnmarshalNormalizesKeys(t *testing.T) {
	raw := []byte(`{"solar":{"text":"sunny","sources":null},"bogus":{"text":"x","sources":[]}}`)
	var r Results
	require.NoError(t, json.Unmarshal(raw, &r))
	assert.Len(t, r, len(AllKeys))
	assert.Equal(t, "sunny", r.Text(Solar))
	assert.NotNil(t, r[Solar].Sources)
	_, ok := r["bogus"]
	assert.False(t, ok)
}

func TestCitationJSONLayout(t *testing.T) {
	c := Content{Text: "t", Sources: []Citation{
		{Kind: CitationWeb, URI: "https://a.example", Title: "A"},
		{Kind: CitationMap, URI: "https://maps.example/b", Title: "B"},
	}}
	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"t","sources":[{"web":{"uri":"https://a.example","title":"A"}},{"maps":{"uri":"https://maps.example/b","title":"B"}}]}`, string(b))

	var back Content
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)
}

func TestNonMetaTextSkipsMetaKeys(t *testing.T) {
	r := NewResults()
	r[Solar] = Content{Text: "solar"}
	r[Summary] = Content{Text: "summary"}
	r[SalesOutreach] = Content{Text: "outreach"}
	r[Permitting] = Content{Text: "permits"}

	got := r.NonMetaText("|")
	assert.Contains(t, got, "solar")
	assert.Contains(t, got, "permits")
	assert.NotContains(t, got, "summary")
	assert.NotContains(t, got, "outreach")
}

func TestBoardSettlePolicies(t *testing.T) {
	b := NewBoard()
	b.Results[Battery] = Content{Text: "previous", Sources: []Citation{}}
	b.Begin(Solar, Wind, Battery)
	assert.True(t, b.Loading.Any())

	b.Settle(NewTask(Solar).Settle(Content{Text: "ok"}, nil), Placeholder)
	b.Settle(NewTask(Wind).Settle(Content{}, errors.New("boom")), Placeholder)
	b.Settle(NewTask(Battery).Settle(Content{}, errors.New("boom")), KeepPrevious)

	assert.Equal(t, "ok", b.Results.Text(Solar))
	assert.NotNil(t, b.Results[Solar].Sources)
	assert.Equal(t, FailedText, b.Results.Text(Wind))
	assert.Equal(t, "previous", b.Results.Text(Battery))
	assert.False(t, b.Loading.Any())
}

func TestBoardSettleIgnoresPending(t *testing.T) {
	b := NewBoard()
	b.Begin(Solar)
	b.Settle(NewTask(Solar), Placeholder)
	assert.True(t, b.Loading[Solar])
}

func TestBoardCloneIsIndependent(t *testing.T) {
	b := NewBoard()
	c := b.Clone()
	c.Begin(Hydro)
	c.Results[Hydro] = Content{Text: "changed"}
	assert.False(t, b.Loading[Hydro])
	assert.Empty(t, b.Results.Text(Hydro))
}

func TestTaskSettle(t *testing.T) {
	task := NewTask(Wind)
	assert.Equal(t, Pending, task.Status)

	ok := task.Settle(Content{Text: "w"}, nil)
	assert.Equal(t, Succeeded, ok.Status)
	assert.Equal(t, "w", ok.Value.Text)

	bad := task.Settle(Content{}, errors.New("x"))
	assert.Equal(t, Failed, bad.Status)
	assert.EqualError(t, bad.Err, "x")
	assert.Equal(t, Pending, task.Status)
}
