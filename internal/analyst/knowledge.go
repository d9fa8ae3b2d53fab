package analyst

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/green-analyzer/internal/form"
)

//go:embed knowledge.yaml
var knowledgeYAML []byte

//go:embed financing.yaml
var financingYAML []byte

// Calculator holds the constants a prompt passes to the model for one
// estimate.
type Calculator struct {
	Logic        string  `yaml:"logic" json:"logic"`
	PanelWattage float64 `yaml:"panelWattage" json:"panelWattage,omitempty"`
	DerateFactor float64 `yaml:"derateFactor" json:"derateFactor,omitempty"`
	AvgSunHours  float64 `yaml:"avgSunHours" json:"avgSunHours,omitempty"`
}

// WindProduct describes a rooftop wind product.
type WindProduct struct {
	HowItWorks  string   `yaml:"howItWorks" json:"howItWorks"`
	Output      string   `yaml:"output" json:"output"`
	RidgeLength string   `yaml:"ridgeLength" json:"ridgeLength"`
	Checklist   []string `yaml:"checklist" json:"checklist"`
}

// KnowledgeBase is the static reference data injected into prompts.
type KnowledgeBase struct {
	Calculators  map[string]Calculator  `yaml:"calculators"`
	WindProducts map[string]WindProduct `yaml:"windProducts"`
	Financial    struct {
		CostPerWatt        map[string]float64 `yaml:"costPerWatt"`
		AvgElectricityCost float64            `yaml:"avgElectricityCost"`
	} `yaml:"financial"`
	Environmental struct {
		GridCO2Factor  float64           `yaml:"gridCo2Factor"`
		EPAEquivalents map[string]string `yaml:"epaEquivalents"`
	} `yaml:"environmental"`
	Providers map[string][]string `yaml:"providers"`
	Materials map[string]string   `yaml:"materials"`
}

// CalculatorJSON renders the named calculator as compact JSON, or "{}".
func (kb *KnowledgeBase) CalculatorJSON(name string) string {
	c, ok := kb.Calculators[name]
	if !ok {
		return "{}"
	}
	b, _ := json.Marshal(c)
	return string(b)
}

// FinancingItem is one program in the financing catalog.
type FinancingItem struct {
	Title       string   `yaml:"title" json:"title"`
	Summary     string   `yaml:"summary" json:"summary"`
	LinkText    string   `yaml:"linkText" json:"linkText"`
	URL         string   `yaml:"url" json:"url"`
	Tags        []string `yaml:"tags" json:"tags,omitempty"`
	StateScoped bool     `yaml:"stateScoped" json:"stateScoped,omitempty"`
}

// FinancingSection groups catalog items.
type FinancingSection struct {
	ID    string          `yaml:"id" json:"id"`
	Title string          `yaml:"title" json:"title"`
	Items []FinancingItem `yaml:"items" json:"items"`
}

var loadReference = sync.OnceValues(func() (*KnowledgeBase, []FinancingSection) {
	var kb KnowledgeBase
	if err := yaml.Unmarshal(knowledgeYAML, &kb); err != nil {
		panic(fmt.Sprintf("analyst: embedded knowledge base: %v", err))
	}
	var catalog []FinancingSection
	if err := yaml.Unmarshal(financingYAML, &catalog); err != nil {
		panic(fmt.Sprintf("analyst: embedded financing catalog: %v", err))
	}
	return &kb, catalog
})

// Knowledge returns the embedded knowledge base.
func Knowledge() *KnowledgeBase {
	kb, _ := loadReference()
	return kb
}

// roleTags maps a role to the catalog tags that apply to it.
var roleTags = map[form.Role][]string{
	form.RoleHomeowner:   {"Homeowner", "Low-income"},
	form.RoleCommunity:   {"Community"},
	form.RolePolicymaker: {"Policymaker"},
	form.RoleDeveloper:   {"Developer", "Business"},
}

// Financing returns the catalog entries relevant to role. Roles without a
// tag mapping get the whole catalog. Sections left empty are dropped.
func Financing(role form.Role) []FinancingSection {
	_, catalog := loadReference()
	tags, ok := roleTags[role]
	if !ok {
		return catalog
	}
	var out []FinancingSection
	for _, sec := range catalog {
		var items []FinancingItem
		for _, it := range sec.Items {
			if len(it.Tags) == 0 || slices.ContainsFunc(it.Tags, func(t string) bool { return slices.Contains(tags, t) }) {
				items = append(items, it)
			}
		}
		if len(items) > 0 {
			sec.Items = items
			out = append(out, sec)
		}
	}
	return out
}

// FinancingJSON renders Financing(role) as compact JSON for a prompt.
func FinancingJSON(role form.Role) string {
	b, _ := json.Marshal(Financing(role))
	return string(b)
}
