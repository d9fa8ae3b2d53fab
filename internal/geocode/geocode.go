// Package geocode resolves addresses and coordinates through the grounded
// analysis backend and turns a location pre-analysis into a form patch.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ziadkadry99/green-analyzer/internal/analyst"
	"github.com/ziadkadry99/green-analyzer/internal/llm"
)

// ErrNoJSON is returned when a response carries no parseable JSON object.
var ErrNoJSON = errors.New("no JSON object in response")

// Coordinates is a point on the map.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Locator performs lookups with map grounding.
type Locator struct {
	q      analyst.Querier
	logger *slog.Logger
}

// NewLocator returns a Locator backed by q.
func NewLocator(q analyst.Querier, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{q: q, logger: logger}
}

var fencedJSON = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")

// ExtractJSON decodes the first fenced json block in text, or failing that
// the span from the first '{' to the last '}'.
func ExtractJSON[T any](text string) (T, error) {
	var out T
	var raw string
	if m := fencedJSON.FindStringSubmatch(text); m != nil && m[1] != "" {
		raw = m[1]
	} else {
		first := strings.Index(text, "{")
		last := strings.LastIndex(text, "}")
		if first == -1 || last <= first {
			return out, ErrNoJSON
		}
		raw = text[first : last+1]
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &out); err != nil {
		return out, fmt.Errorf("%w: %w", ErrNoJSON, err)
	}
	return out, nil
}

// Geocode returns the coordinates of address, or nil when it cannot be found.
func (l *Locator) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	prompt := fmt.Sprintf(`You are a high-precision geocoding service. Your single task is to find the geographic coordinates for the given address and return them in a specific JSON format.

Address to geocode: %q

**CRITICAL Instructions:**
1. Use your map knowledge to find the most accurate latitude and longitude.
2. Return ONLY a single, valid JSON object. Do not add any conversational text, markdown, or anything else.
3. The JSON object must have "lat" and "lon" keys with numeric values.

**Required JSON Output:**
`+"```json\n{\n  \"lat\": <latitude>,\n  \"lon\": <longitude>\n}\n```"+`

If you cannot find the address, return null values for lat and lon.`, address)

	res, err := l.q.Run(ctx, analyst.Query{Name: "geocode", Prompt: prompt, Tier: analyst.TierPro, Maps: true})
	if err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", address, err)
	}
	data, err := ExtractJSON[struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	}](res.Text)
	if err != nil || data.Lat == nil || data.Lon == nil {
		l.logger.Warn("geocode returned no coordinates", "address", address)
		return nil, nil
	}
	return &Coordinates{Lat: *data.Lat, Lon: *data.Lon}, nil
}

// Reverse returns the street address at c, or "" when none is found.
func (l *Locator) Reverse(ctx context.Context, c Coordinates) (string, error) {
	prompt := fmt.Sprintf(`You are an expert-level geocoding system. Your SOLE purpose is to perform a high-precision reverse geocode lookup for the given coordinates.

Coordinates to reverse geocode:
- Latitude: %g
- Longitude: %g

**CRITICAL INSTRUCTIONS:**
1.  **Exact Address ONLY:** You MUST return the most precise street address available (e.g., "123 Main St, Anytown, USA 12345"). DO NOT return just a city, county, or general area.
2.  **JSON Format:** The output MUST be ONLY a single, valid JSON object. No other text, conversation, or markdown is permitted.
3.  **Required Schema:** {"address": "<The full, precise street address>"}
4.  **Failure Case:** If you cannot find a precise street-level address for the given coordinates, the value for "address" MUST be null.`, c.Lat, c.Lon)

	res, err := l.q.Run(ctx, analyst.Query{
		Name: "reverse_geocode", Prompt: prompt, Tier: analyst.TierPro, Maps: true,
		Near: &llm.LatLng{Latitude: c.Lat, Longitude: c.Lon},
	})
	if err != nil {
		return "", fmt.Errorf("reverse geocoding (%g, %g): %w", c.Lat, c.Lon, err)
	}
	data, err := ExtractJSON[struct {
		Address *string `json:"address"`
	}](res.Text)
	if err != nil || data.Address == nil || strings.TrimSpace(*data.Address) == "" {
		l.logger.Warn("reverse geocode returned no address", "lat", c.Lat, "lon", c.Lon)
		return "", nil
	}
	return *data.Address, nil
}
