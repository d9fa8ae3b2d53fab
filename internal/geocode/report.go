package geocode

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/ziadkadry99/green-analyzer/internal/analyst"
	"github.com/ziadkadry99/green-analyzer/internal/form"
	"github.com/ziadkadry99/green-analyzer/internal/llm"
)

var hydroSourceType = reflect.TypeOf(form.HydroSourceType(""))

// LocationReport is the pre-analysis of one address.
type LocationReport struct {
	Location             string                     `json:"location"`
	SunroofData          *form.SunroofData          `json:"sunroofData"`
	EIEData              *form.EIEData              `json:"eieData"`
	HydroPreAnalysisData *form.HydroPreAnalysisData `json:"hydroPreAnalysisData"`
	Coordinates          *Coordinates               `json:"coordinates"`
}

// Analyze gathers solar, emissions and hydropower data for address.
// pastedText is optional supplementary material such as a rooftop solar
// estimate copied by the user. A nil report means the response could not
// be parsed.
func (l *Locator) Analyze(ctx context.Context, c Coordinates, address, pastedText string) (*LocationReport, error) {
	var supplementary string
	if strings.TrimSpace(pastedText) != "" {
		supplementary = fmt.Sprintf("**User-provided Text (from a rooftop solar estimate or similar):**\n---\n%s\n---\n", pastedText)
	}

	prompt := fmt.Sprintf(`You are an expert assistant specializing in green energy analysis. Your task is to analyze a geographic location using a definitive address and its coordinates to gather relevant data.

**Primary Location:**
- Address: %[1]s
- Latitude: %[2]g
- Longitude: %[3]g

%[4]s
**CRITICAL Instructions:**
1.  **Use Definitive Location:** The provided address and coordinates are the definitive location for all analysis. Do not attempt to change or correct them. The 'location' field in your JSON output MUST be exactly %[1]q.
2.  **Use Supplementary Data for Context:** Use the optional text to enrich your analysis. Extract solar metrics.
3.  **Perform Comprehensive Analysis:** Using the definitive address, perform searches to gather rooftop solar potential, regional building and transportation emissions, and a hydropower pre-analysis.
4.  **Hydropower Analysis:** Investigate potential for in-pipe hydropower from the municipal water supply. If exact data is not found, provide a reasonable estimate for typical pipe diameter (inches), pressure (PSI), and flow (GPM) based on US municipal infrastructure, and clearly state it's an estimate.
5.  **Roof Pitch Analysis:** Estimate the pitch in degrees based on typical architectural styles for the given address/region.
6.  **Format Output:** Return a single, valid JSON object with the structure below. Do not include conversational text or markdown outside the JSON object.

**Required JSON Output Structure:**
`+"```json"+`
{
  "location": %[1]q,
  "sunroofData": {"usableSunlightHours": "...", "usableRoofArea": "...", "potentialSystemSizeKw": "...", "potentialYearlySavings": "...", "roofPitch": "...", "rawText": "..."},
  "eieData": {"buildingEmissions": "...", "transportationEmissions": "...", "renewablePotential": "...", "rawText": "..."},
  "hydroPreAnalysisData": {"potentialSourceType": "...", "nearestWaterBody": "...", "distance": "...", "estimatedPipeDiameterInches": 0, "estimatedPressurePSI": 0, "estimatedFlowGPM": 0, "summaryText": "..."},
  "coordinates": {"lat": %[2]g, "lon": %[3]g}
}
`+"```"+`
**Rules:**
- 'location' MUST be the full address provided to you.
- All numeric values should be strings within sunroofData, but numbers in hydroPreAnalysisData.
- potentialSourceType must be one of: %[5]s.
- If a value cannot be found, return null.
- The rawText fields should briefly describe the data's origin.`,
		address, c.Lat, c.Lon, supplementary, strings.Join(form.Options(hydroSourceType), ", "))

	res, err := l.q.Run(ctx, analyst.Query{
		Name: "location_analysis", Prompt: prompt, Tier: analyst.TierPro, Search: true, Maps: true,
		Near: &llm.LatLng{Latitude: c.Lat, Longitude: c.Lon},
	})
	if err != nil {
		return nil, fmt.Errorf("analyzing location %q: %w", address, err)
	}
	report, err := ExtractJSON[LocationReport](res.Text)
	if err != nil {
		l.logger.Warn("location analysis was not parseable", "address", address, "error", err)
		return nil, nil
	}
	return &report, nil
}

// Patch returns the bulk update derived from r and the names of the fields
// it fills automatically.
func (r *LocationReport) Patch() (form.Patch, []string, error) {
	p := form.Patch{}
	var auto []string
	put := func(name string, v any, autoFilled bool) error {
		if err := p.Put(name, v); err != nil {
			return err
		}
		if autoFilled {
			auto = append(auto, name)
		}
		return nil
	}

	if r.Location != "" {
		if err := put("location", r.Location, false); err != nil {
			return nil, nil, err
		}
	}
	if err := put("sunroofData", r.SunroofData, false); err != nil {
		return nil, nil, err
	}
	if err := put("eieData", r.EIEData, false); err != nil {
		return nil, nil, err
	}
	if err := put("hydroPreAnalysisData", r.HydroPreAnalysisData, false); err != nil {
		return nil, nil, err
	}

	if s := r.SunroofData; s != nil {
		for _, m := range []struct {
			field string
			value form.Measure
		}{
			{"usableRoofArea", s.UsableRoofArea},
			{"solarSystemSizeKw", s.PotentialSystemSizeKw},
			{"estimatedYearlySavings", s.PotentialYearlySavings},
			{"roofPitch", s.RoofPitch},
		} {
			if m.value == "" {
				continue
			}
			if err := put(m.field, m.value.Digits(), true); err != nil {
				return nil, nil, err
			}
		}
	}

	if h := r.HydroPreAnalysisData; h != nil && h.PotentialSourceType != "" && h.PotentialSourceType.Valid() {
		if err := put("hydroSourceType", h.PotentialSourceType, true); err != nil {
			return nil, nil, err
		}
		if h.PotentialSourceType == form.HydroDrinkingWater {
			for _, m := range []struct {
				field string
				value *float64
			}{
				{"hydroPipeDiameter", h.EstimatedPipeDiameterInches},
				{"hydroPressureDrop", h.EstimatedPressurePSI},
				{"hydroPipeFlow", h.EstimatedFlowGPM},
			} {
				if v := form.FormatFloat(m.value); v != "" {
					if err := put(m.field, v, true); err != nil {
						return nil, nil, err
					}
				}
			}
		}
	}
	return p, auto, nil
}
