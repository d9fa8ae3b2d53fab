package geocode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/analyst"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

type stubQuerier struct {
	text    string
	err     error
	queries []analyst.Query
}

func (s *stubQuerier) Run(_ context.Context, q analyst.Query) (analysis.Content, error) {
	s.queries = append(s.queries, q)
	if s.err != nil {
		return analysis.Content{}, s.err
	}
	return analysis.Content{Text: s.text, Sources: []analysis.Citation{}}, nil
}

func TestExtractJSON(t *testing.T) {
	type pt struct {
		Lat float64 `json:"lat"`
	}
	tests := []struct {
		name string
		in   string
		want float64
		err  bool
	}{
		{"fenced", "here:\n```json\n{\"lat\": 1.5}\n```\nbye {x}", 1.5, false},
		{"bare braces", "The answer is {\"lat\": 2} as requested.", 2, false},
		{"no object", "nothing here", 0, true},
		{"broken", "{lat: nope}", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON[pt](tt.in)
			if tt.err {
				assert.ErrorIs(t, err, ErrNoJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Lat)
		})
	}
}

func TestGeocode(t *testing.T) {
	q := &stubQuerier{text: "```json\n{\"lat\": 40.01, \"lon\": -105.27}\n```"}
	l := NewLocator(q, nil)
	c, err := l.Geocode(context.Background(), "Boulder, CO")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, Coordinates{Lat: 40.01, Lon: -105.27}, *c)
	assert.True(t, q.queries[0].Maps)
	assert.Equal(t, analyst.TierPro, q.queries[0].Tier)

	q.text = `{"lat": null, "lon": null}`
	c, err = l.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, c)

	q.err = errors.New("down")
	_, err = l.Geocode(context.Background(), "x")
	assert.Error(t, err)
}

func TestReverse(t *testing.T) {
	q := &stubQuerier{text: `{"address": "1 Pearl St, Boulder, CO 80302"}`}
	l := NewLocator(q, nil)
	addr, err := l.Reverse(context.Background(), Coordinates{Lat: 40, Lon: -105})
	require.NoError(t, err)
	assert.Equal(t, "1 Pearl St, Boulder, CO 80302", addr)
	require.NotNil(t, q.queries[0].Near)
	assert.Equal(t, 40.0, q.queries[0].Near.Latitude)

	q.text = `{"address": null}`
	addr, err = l.Reverse(context.Background(), Coordinates{})
	require.NoError(t, err)
	assert.Empty(t, addr)
}

const reportJSON = "```json" + `
{
  "location": "1 Pearl St",
  "sunroofData": {"usableSunlightHours": "1,600 hours", "usableRoofArea": "850 sq ft", "potentialSystemSizeKw": 6.5, "potentialYearlySavings": "$1,200", "roofPitch": null, "rawText": "estimate"},
  "eieData": {"buildingEmissions": "1.2 Mt", "transportationEmissions": "0.9 Mt", "renewablePotential": "high", "rawText": "eie"},
  "hydroPreAnalysisData": {"potentialSourceType": "Drinking-Water Pipeline", "nearestWaterBody": "Boulder Creek", "distance": "0.5 mi", "estimatedPipeDiameterInches": 12, "estimatedPressurePSI": 65.5, "estimatedFlowGPM": null, "summaryText": "pipe"},
  "coordinates": {"lat": 40, "lon": -105}
}
` + "```"

func TestAnalyzeAndPatch(t *testing.T) {
	q := &stubQuerier{text: reportJSON}
	l := NewLocator(q, nil)
	r, err := l.Analyze(context.Background(), Coordinates{Lat: 40, Lon: -105}, "1 Pearl St", "Sunroof says 6.5 kW")
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.True(t, q.queries[0].Search)
	assert.True(t, q.queries[0].Maps)
	assert.Contains(t, q.queries[0].Prompt, "Sunroof says 6.5 kW")

	patch, auto, err := r.Patch()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"usableRoofArea", "solarSystemSizeKw", "estimatedYearlySavings",
		"hydroSourceType", "hydroPipeDiameter", "hydroPressureDrop",
	}, auto)

	f := form.New()
	require.NoError(t, f.Merge(patch, auto))
	assert.Equal(t, "1 Pearl St", f.Location)
	assert.Equal(t, "850", f.UsableRoofArea)
	assert.Equal(t, "6.5", f.SolarSystemSizeKw)
	assert.Equal(t, "1200", f.EstimatedYearlySavings)
	assert.Empty(t, f.RoofPitch)
	assert.Equal(t, form.HydroDrinkingWater, f.HydroSourceType)
	assert.Equal(t, "12", f.HydroPipeDiameter)
	assert.Equal(t, "65.5", f.HydroPressureDrop)
	assert.Empty(t, f.HydroPipeFlow)
	require.NotNil(t, f.EIEData)
	assert.Equal(t, "eie", f.EIEData.RawText)
	assert.True(t, f.AutoFilled("hydroPipeDiameter"))
}

func TestPatchSkipsUnknownSourceType(t *testing.T) {
	r := &LocationReport{HydroPreAnalysisData: &form.HydroPreAnalysisData{PotentialSourceType: "Ocean"}}
	patch, auto, err := r.Patch()
	require.NoError(t, err)
	assert.Empty(t, auto)
	_, ok := patch["hydroSourceType"]
	assert.False(t, ok)
}

func TestAnalyzeUnparseable(t *testing.T) {
	l := NewLocator(&stubQuerier{text: "sorry"}, nil)
	r, err := l.Analyze(context.Background(), Coordinates{}, "x", "")
	require.NoError(t, err)
	assert.Nil(t, r)
}
