// Package analysis defines the closed set of analysis sections, their
// results and loading flags, and the reducers that fold task outcomes into
// them.
package analysis

import (
	"encoding/json"
	"strings"
)

// Key names one analysis section.
type Key string

const (
	EnergyAudit        Key = "energyAudit"
	Weatherization     Key = "weatherization"
	Solar              Key = "solar"
	Wind               Key = "wind"
	Battery            Key = "battery"
	WasteToEnergy      Key = "wasteToEnergy"
	Hydro              Key = "hydro"
	InPipeHydro        Key = "inPipeHydro"
	Geothermal         Key = "geothermal"
	MiniSplit          Key = "miniSplit"
	BuildingMaterials  Key = "buildingMaterials"
	Portfolio          Key = "portfolio"
	Permitting         Key = "permitting"
	Financing          Key = "financing"
	Summary            Key = "summary"
	FinalReport        Key = "finalReport"
	MarketAnalysis     Key = "marketAnalysis"
	SalesTargetMarket  Key = "salesTargetMarket"
	SalesSellingPoints Key = "salesSellingPoints"
	SalesOutreach      Key = "salesOutreach"
	SalesSummary       Key = "salesSummary"
)

// AllKeys lists every section in canonical order.
var AllKeys = []Key{
	EnergyAudit, Weatherization, Solar, Wind, Battery, WasteToEnergy, Hydro,
	InPipeHydro, Geothermal, MiniSplit, BuildingMaterials, Portfolio,
	Permitting, Financing, Summary, FinalReport, MarketAnalysis,
	SalesTargetMarket, SalesSellingPoints, SalesOutreach, SalesSummary,
}

var known = func() map[Key]bool {
	m := make(map[Key]bool, len(AllKeys))
	for _, k := range AllKeys {
		m[k] = true
	}
	return m
}()

// Valid reports whether k is one of AllKeys.
func (k Key) Valid() bool { return known[k] }

// IsMeta reports whether k is excluded from the combined analysis text fed
// to summary-style prompts.
func (k Key) IsMeta() bool {
	switch k {
	case Summary, FinalReport, Financing:
		return true
	}
	return strings.Contains(string(k), "sales")
}

// CitationKind distinguishes web pages from map places.
type CitationKind string

const (
	CitationWeb CitationKind = "web"
	CitationMap CitationKind = "maps"
)

// Citation is one grounding source returned with an analysis.
type Citation struct {
	Kind  CitationKind
	URI   string
	Title string
}

type citationRef struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type citationJSON struct {
	Web  *citationRef `json:"web,omitempty"`
	Maps *citationRef `json:"maps,omitempty"`
}

// MarshalJSON writes the grounding-chunk layout {"web":{...}} or
// {"maps":{...}}.
func (c Citation) MarshalJSON() ([]byte, error) {
	ref := &citationRef{URI: c.URI, Title: c.Title}
	if c.Kind == CitationMap {
		return json.Marshal(citationJSON{Maps: ref})
	}
	return json.Marshal(citationJSON{Web: ref})
}

func (c *Citation) UnmarshalJSON(b []byte) error {
	var raw citationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	switch {
	case raw.Web != nil:
		*c = Citation{Kind: CitationWeb, URI: raw.Web.URI, Title: raw.Web.Title}
	case raw.Maps != nil:
		*c = Citation{Kind: CitationMap, URI: raw.Maps.URI, Title: raw.Maps.Title}
	default:
		*c = Citation{Kind: CitationWeb}
	}
	return nil
}

// Content is the outcome of one analysis call.
type Content struct {
	Text    string     `json:"text"`
	Sources []Citation `json:"sources"`
}

// Empty returns the default content.
func Empty() Content {
	return Content{Sources: []Citation{}}
}

// FailedText is written into a section whose settle-all call failed.
const FailedText = "Error: Analysis failed."

// FailedContent returns the placeholder written when a settle-all call fails.
func FailedContent() Content {
	return Content{Text: FailedText, Sources: []Citation{}}
}

// Results holds one Content per key. Every key is always present.
type Results map[Key]Content

// NewResults returns results with every key at its empty default.
func NewResults() Results {
	r := make(Results, len(AllKeys))
	for _, k := range AllKeys {
		r[k] = Empty()
	}
	return r
}

// Clone returns a copy of r whose source slices are not shared.
func (r Results) Clone() Results {
	out := make(Results, len(r))
	for k, v := range r {
		v.Sources = append([]Citation{}, v.Sources...)
		out[k] = v
	}
	return out
}

// UnmarshalJSON fills keys missing from the payload with defaults and drops
// unknown keys.
func (r *Results) UnmarshalJSON(b []byte) error {
	var raw map[Key]Content
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := NewResults()
	for k, v := range raw {
		if !k.Valid() {
			continue
		}
		if v.Sources == nil {
			v.Sources = []Citation{}
		}
		out[k] = v
	}
	*r = out
	return nil
}

// Text returns the text of k.
func (r Results) Text(k Key) string {
	return r[k].Text
}

// Join concatenates the texts of keys with sep.
func (r Results) Join(keys []Key, sep string) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = r[k].Text
	}
	return strings.Join(parts, sep)
}

// NonMetaText joins the text of every non-meta key in canonical order.
func (r Results) NonMetaText(sep string) string {
	var keys []Key
	for _, k := range AllKeys {
		if !k.IsMeta() {
			keys = append(keys, k)
		}
	}
	return r.Join(keys, sep)
}

// Loading holds one in-flight flag per key.
type Loading map[Key]bool

// NewLoading returns loading flags with every key false.
func NewLoading() Loading {
	l := make(Loading, len(AllKeys))
	for _, k := range AllKeys {
		l[k] = false
	}
	return l
}

// Any reports whether any key is in flight.
func (l Loading) Any() bool {
	for _, v := range l {
		if v {
			return true
		}
	}
	return false
}

// Clone returns a copy of l.
func (l Loading) Clone() Loading {
	out := make(Loading, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}
