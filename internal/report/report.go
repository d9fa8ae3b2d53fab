// Package report renders the analysis results as a printable HTML page.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

var titles = map[analysis.Key]string{
	analysis.Permitting:         "Permitting & Incentives",
	analysis.EnergyAudit:        "Energy Audit",
	analysis.Solar:              "Solar",
	analysis.Wind:               "Wind",
	analysis.Battery:            "Battery Storage",
	analysis.Hydro:              "Hydropower",
	analysis.InPipeHydro:        "In-Pipe Hydropower",
	analysis.Geothermal:         "Geothermal",
	analysis.MiniSplit:          "Mini-Split Heat Pumps",
	analysis.Weatherization:     "Weatherization",
	analysis.BuildingMaterials:  "Building Materials",
	analysis.WasteToEnergy:      "Waste-to-Energy",
	analysis.Portfolio:          "Recommended Portfolio",
	analysis.MarketAnalysis:     "Market Analysis",
	analysis.Financing:          "Financing Options",
	analysis.Summary:            "Summary",
	analysis.FinalReport:        "Final Report",
	analysis.SalesTargetMarket:  "Target Market",
	analysis.SalesSellingPoints: "Selling Points",
	analysis.SalesOutreach:      "Outreach Plan",
	analysis.SalesSummary:       "Sales Playbook",
}

var (
	regularOrder = []analysis.Key{
		analysis.FinalReport, analysis.Summary, analysis.Permitting,
		analysis.EnergyAudit, analysis.Solar, analysis.Wind, analysis.Battery,
		analysis.Hydro, analysis.InPipeHydro, analysis.Geothermal,
		analysis.MiniSplit, analysis.Weatherization, analysis.BuildingMaterials,
		analysis.WasteToEnergy, analysis.MarketAnalysis, analysis.Portfolio,
		analysis.Financing,
	}
	salesOrder = []analysis.Key{
		analysis.SalesSummary, analysis.SalesTargetMarket,
		analysis.SalesSellingPoints, analysis.SalesOutreach,
	}
)

// Section is one rendered analysis.
type Section struct {
	Key     analysis.Key
	Title   string
	Body    template.HTML
	Sources []analysis.Citation
}

// Answer is one answered questionnaire field.
type Answer struct {
	Label string
	Value string
}

// View is the input to Render.
type View struct {
	Form    *form.Form
	Results analysis.Results
	// Shared marks a read-only copy opened from a share link.
	Shared bool
}

type page struct {
	Title    string
	Shared   bool
	Answers  []Answer
	Sections []Section
}

// Renderer converts model-authored markdown to sanitized HTML.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	tmpl   *template.Template
}

// New creates a renderer.
func New() (*Renderer, error) {
	tmpl, err := template.New("report").Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// Raw HTML from the model is passed through and then sanitized.
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: bluemonday.UGCPolicy(),
		tmpl:   tmpl,
	}, nil
}

// Markdown converts text to sanitized HTML.
func (r *Renderer) Markdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Keys returns the sections shown for the form's role in reading order.
func Keys(f *form.Form) []analysis.Key {
	if f.IsSales() {
		return salesOrder
	}
	return regularOrder
}

// Title returns the heading of k.
func Title(k analysis.Key) string {
	return titles[k]
}

// Sections returns the non-empty analyses for the form's role in reading
// order.
func (r *Renderer) Sections(f *form.Form, results analysis.Results) ([]Section, error) {
	var out []Section
	for _, k := range Keys(f) {
		c := results[k]
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		body, err := r.Markdown(c.Text)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", k, err)
		}
		out = append(out, Section{Key: k, Title: titles[k], Body: body, Sources: c.Sources})
	}
	return out, nil
}

// Render writes the report page for v.
func (r *Renderer) Render(w io.Writer, v View) error {
	sections, err := r.Sections(v.Form, v.Results)
	if err != nil {
		return err
	}
	title := "Green Energy Analysis"
	if v.Form.Location != "" {
		title += ": " + v.Form.Location
	}
	return r.tmpl.Execute(w, page{
		Title:    title,
		Shared:   v.Shared,
		Answers:  Answers(v.Form),
		Sections: sections,
	})
}

// Answers lists the answered text, option and multi-select fields in
// declaration order.
func Answers(f *form.Form) []Answer {
	var out []Answer
	for _, fd := range form.Fields() {
		var v string
		switch fd.Kind {
		case form.KindText, form.KindEnum:
			v = strings.TrimSpace(f.Text(fd.Name))
		case form.KindMulti:
			v = strings.Join(f.Values(fd.Name), ", ")
		}
		if v != "" {
			out = append(out, Answer{Label: Label(fd.Name), Value: v})
		}
	}
	return out
}

// Label turns a camelCase field name into title words: "squareFootage"
// becomes "Square Footage".
func Label(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
