package form

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Measure is a free-form figure reported by a location lookup. It accepts
// JSON strings, numbers and null.
type Measure string

func (m *Measure) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = Measure(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = Measure(n.String())
	return nil
}

// Digits strips everything but digits and decimal points.
func (m Measure) Digits() string {
	var out []byte
	for i := 0; i < len(m); i++ {
		c := m[i]
		if (c >= '0' && c <= '9') || c == '.' {
			out = append(out, c)
		}
	}
	return string(out)
}

// SunroofData is the rooftop solar estimate for the address.
type SunroofData struct {
	UsableSunlightHours    Measure `json:"usableSunlightHours"`
	UsableRoofArea         Measure `json:"usableRoofArea"`
	PotentialSystemSizeKw  Measure `json:"potentialSystemSizeKw"`
	PotentialYearlySavings Measure `json:"potentialYearlySavings"`
	RoofPitch              Measure `json:"roofPitch,omitempty"`
	RawText                string  `json:"rawText"`
}

// EIEData summarises regional emissions and renewable potential.
type EIEData struct {
	BuildingEmissions       string `json:"buildingEmissions"`
	TransportationEmissions string `json:"transportationEmissions"`
	RenewablePotential      string `json:"renewablePotential"`
	RawText                 string `json:"rawText"`
}

// HydroPreAnalysisData is the hydropower screening for the address.
type HydroPreAnalysisData struct {
	PotentialSourceType         HydroSourceType `json:"potentialSourceType"`
	NearestWaterBody            string          `json:"nearestWaterBody"`
	Distance                    string          `json:"distance"`
	SummaryText                 string          `json:"summaryText"`
	EstimatedPipeDiameterInches *float64        `json:"estimatedPipeDiameterInches,omitempty"`
	EstimatedPressurePSI        *float64        `json:"estimatedPressurePSI,omitempty"`
	EstimatedFlowGPM            *float64        `json:"estimatedFlowGPM,omitempty"`
}

// FormatFloat renders an optional estimate the way it is stored on the form.
func FormatFloat(v *float64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
