package analyst

import (
	"fmt"
	"strings"

	"github.com/ziadkadry99/green-analyzer/internal/analysis"
	"github.com/ziadkadry99/green-analyzer/internal/form"
)

const notSpecified = "Not specified"

func orNotSpecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return notSpecified
	}
	return s
}

func withUnit(v, format string) string {
	if v == "" {
		return notSpecified
	}
	return fmt.Sprintf(format, v)
}

func joinValues[T ~string](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// BasePrompt renders the user profile, property basics and energy baseline.
func BasePrompt(f *form.Form) string {
	var b strings.Builder
	b.WriteString("--- USER PROFILE & GOALS ---\n")
	fmt.Fprintf(&b, "Role: %s\n", orNotSpecified(string(f.Role)))
	fmt.Fprintf(&b, "Location: %s\n", orNotSpecified(f.Location))
	fmt.Fprintf(&b, "Primary Goals: %s\n", orNotSpecified(joinValues(f.PrimaryGoals)))
	fmt.Fprintf(&b, "Budget Range: %s\n\n", orNotSpecified(string(f.BudgetRange)))

	b.WriteString("--- PROPERTY BASICS ---\n")
	fmt.Fprintf(&b, "Property Type: %s\n", orNotSpecified(string(f.PropertyType)))
	fmt.Fprintf(&b, "Property Age: %s\n", withUnit(f.PropertyAge, "%s years"))
	fmt.Fprintf(&b, "Square Footage: %s\n\n", withUnit(f.SquareFootage, "%s sq ft"))

	b.WriteString("--- ENERGY BASELINE ---\n")
	fmt.Fprintf(&b, "Monthly Electricity Usage: %s\n", withUnit(f.ElectricityUsage, "%s kWh"))
	fmt.Fprintf(&b, "Monthly Electricity Bill: %s\n", withUnit(f.ElectricityBill, "$%s"))
	fmt.Fprintf(&b, "Utility Provider: %s\n\n", orNotSpecified(f.UtilityProvider))

	var details []string
	if f.RoofType != "" {
		details = append(details, "Roof Type: "+string(f.RoofType))
	}
	if f.HeatingSystem != "" {
		details = append(details, "Heating System: "+string(f.HeatingSystem))
	}
	if f.Shading != "" {
		details = append(details, "Shading: "+f.Shading+"%")
	}
	if f.HydroSourceType != "" {
		details = append(details, "Hydro Source: "+string(f.HydroSourceType))
	}
	if len(details) > 0 {
		b.WriteString("--- ADDITIONAL DETAILS ---\n")
		b.WriteString(strings.Join(details, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// AnalysisContext is the shared context given to every analysis after the
// permitting step.
func AnalysisContext(f *form.Form, permitting string) string {
	var b strings.Builder
	b.WriteString("Here is the complete context for the Green Energy Analysis. Use all of this information to inform your response.\n\n")
	b.WriteString(BasePrompt(f))

	b.WriteString("\n--- PRELIMINARY LOCATION ANALYSIS ---\n")
	if f.SunroofData != nil && f.SunroofData.RawText != "" {
		fmt.Fprintf(&b, "Sunroof/Solar Estimate Summary: %s\n", f.SunroofData.RawText)
	}
	if f.EIEData != nil && f.EIEData.RawText != "" {
		fmt.Fprintf(&b, "Environmental Insights Summary: %s\n", f.EIEData.RawText)
	}
	if f.HydroPreAnalysisData != nil && f.HydroPreAnalysisData.SummaryText != "" {
		fmt.Fprintf(&b, "Hydropower Pre-analysis Summary: %s\n", f.HydroPreAnalysisData.SummaryText)
	}

	fmt.Fprintf(&b, "\n--- PERMITTING & INCENTIVES CONTEXT ---\n%s\n\n", permitting)
	return b.String()
}

// Permitting asks for the local permitting and incentives guide.
func Permitting(f *form.Form) Query {
	utility := f.UtilityProvider
	if utility == "" {
		utility = "local utility"
	}
	prompt := fmt.Sprintf(`Generate a permitting and incentives guide for a green energy project in %q. My role is %q. The project involves technologies like solar, wind, and battery storage. Focus on:
1.  **Key Local Authorities:** Identify the city/county/state agencies responsible for building permits, electrical permits, and environmental reviews.
2.  **Major Permits Required:** List the likely permits (e.g., building, electrical, zoning variance).
3.  **Local/State Incentives:** Find specific rebates, tax credits, or grants available in this area for my role. Use search for the most current information.
4.  **Utility Interconnection:** Briefly describe the process and key contact for the local utility provider (%s).
Format the response clearly with markdown headings.`, f.Location, string(f.Role), utility)
	return Query{Name: string(analysis.Permitting), Prompt: prompt, Tier: TierPro, Search: true}
}

type bulkPrompt func(analysisContext string, f *form.Form) string

var bulkPrompts = map[analysis.Key]bulkPrompt{
	analysis.EnergyAudit:       energyAuditPrompt,
	analysis.Solar:             solarPrompt,
	analysis.Wind:              windPrompt,
	analysis.BuildingMaterials: buildingMaterialsPrompt,
	analysis.Weatherization:    weatherizationPrompt,
	analysis.MiniSplit:         miniSplitPrompt,
	analysis.WasteToEnergy:     wasteToEnergyPrompt,
	analysis.Hydro:             hydroPrompt,
	analysis.Geothermal:        geothermalPrompt,
}

// Bulk returns the query for one concurrent analysis. ok is false for keys
// that are not part of the concurrent stage.
func Bulk(key analysis.Key, analysisContext string, f *form.Form) (q Query, ok bool) {
	p, ok := bulkPrompts[key]
	if !ok {
		return Query{}, false
	}
	return Query{Name: string(key), Prompt: p(analysisContext, f), Tier: TierFlash}, true
}

func energyAuditPrompt(ctx string, f *form.Form) string {
	return fmt.Sprintf("As an energy auditor, perform a basic energy audit based on the full context provided below. Identify the top 3-5 areas for energy efficiency improvements (e.g., insulation, air sealing, appliance upgrades). Be specific, actionable, and tailor your recommendations to the user's role of %q.\n\n%s", string(f.Role), ctx)
}

func solarPrompt(ctx string, f *form.Form) string {
	return fmt.Sprintf(`As a solar analyst, analyze the solar potential using the full context provided.
Your analysis MUST be tailored to the user's role: **%s**.
- If 'Homeowner': Focus on system size (kW), cost, annual savings ($), and payback for a single rooftop.
- If 'Community Organizer': Focus on aggregate potential, community solar models, and local job creation.
- If 'Policymaker': Focus on regional capacity (MW), land use, grid impact, and policy recommendations.
- If 'Developer': Focus on new construction/retrofit integration, ROI for multi-unit buildings.

**Task:** Calculate the estimated system size, annual energy production in kWh, and estimated cost. Summarize pros and cons for this user.
Use these constants for calculation: %s

**Full Context:**
%s`, f.Role, Knowledge().CalculatorJSON("solar"), ctx)
}

func windPrompt(ctx string, f *form.Form) string {
	return fmt.Sprintf(`As a wind energy analyst, analyze the small-scale wind potential. Tailor your response to the user's role: **%s**.
- If 'Homeowner': Assess feasibility for a single property based on yard size. Discuss noise and permitting.
- If 'Community/Policymaker': Discuss distributed wind potential for the region and zoning considerations.
If the roof has a long ridge, also assess a ridge-mounted micro-turbine using this product reference: %s

**Task:** Assess feasibility, estimate annual power output for a small residential turbine, and discuss key considerations.
Use these constants for calculation: %s

**Full Context:**
%s`, f.Role, ridgeBladeSummary(), Knowledge().CalculatorJSON("wind"), ctx)
}

func ridgeBladeSummary() string {
	p, ok := Knowledge().WindProducts["ridgeblade"]
	if !ok {
		return "none"
	}
	return fmt.Sprintf("%s Output: %s Ridge length: %s Checklist: %s", p.HowItWorks, p.Output, p.RidgeLength, strings.Join(p.Checklist, " "))
}

func buildingMaterialsPrompt(ctx string, f *form.Form) string {
	kb := Knowledge()
	var mats []string
	for _, name := range []string{"hempcrete", "aac", "highPerformanceWindows"} {
		if d, ok := kb.Materials[name]; ok {
			mats = append(mats, fmt.Sprintf("- %s: %s", name, d))
		}
	}
	return fmt.Sprintf(`As a sustainable building materials specialist, recommend low-carbon materials for this property. Tailor the advice to a **%s**.
**Task:** Consider the property age, type and stated goals. For 2-3 candidate materials or assemblies, explain where they apply (new build, addition, retrofit), the expected insulation and carbon benefit, and the relative cost. Say plainly when a material is not a fit.

**Reference Materials:**
%s

**Full Context:**
%s`, f.Role, strings.Join(mats, "\n"), ctx)
}

func weatherizationPrompt(ctx string, f *form.Form) string {
	envelope := []string{
		"Attic Insulation: " + orNotSpecified(string(f.AtticInsulation)),
		"Wall Insulation: " + orNotSpecified(string(f.WallInsulation)),
		"Windows: " + orNotSpecified(string(f.WindowType)),
		"Air Sealing: " + orNotSpecified(string(f.AirSealing)),
	}
	return fmt.Sprintf(`As a weatherization specialist, assess the building envelope of a %s-year-old property for a **%s**.
**Envelope Details:**
%s

**Task:** Rank the top weatherization measures (air sealing, attic and wall insulation, windows, duct sealing) by cost-effectiveness. For each, give a typical installed cost range, expected heating/cooling savings (%%), and whether it qualifies for weatherization assistance or tax credits.

**Full Context:**
%s`, f.PropertyAge, f.Role, strings.Join(envelope, "\n"), ctx)
}

func miniSplitPrompt(ctx string, f *form.Form) string {
	return fmt.Sprintf(`As an HVAC electrification specialist, evaluate ductless mini-split heat pumps for a %s sq ft property. Tailor the analysis to a **%s**.
Current heating: %s. Current cooling: %s. Ductwork: %s.
**Task:** Recommend the number of zones and total capacity (BTU/h and tons), estimate installed cost, and compare annual operating cost against the current system. Note cold-climate performance and any panel capacity concerns.
Use these constants for calculation: %s

**Full Context:**
%s`, f.SquareFootage, f.Role, orNotSpecified(string(f.HeatingSystem)), orNotSpecified(string(f.CoolingSystem)),
		orNotSpecified(string(f.DuctworkCondition)), Knowledge().CalculatorJSON("miniSplit"), ctx)
}

func wasteToEnergyPrompt(ctx string, f *form.Form) string {
	return fmt.Sprintf(`As a waste-to-energy analyst, evaluate anaerobic digestion of food waste for a **%s**. Reported food waste: %s lbs per week.
**Task:** Estimate weekly biogas production, the electricity it could generate (kWh/year), the cooking hours it could replace, and the CO2 avoided. Recommend a digester scale (household, community, municipal) and outline siting, odor and permitting considerations.
Use these constants for calculation: %s

**Full Context:**
%s`, f.Role, f.FoodWaste, Knowledge().CalculatorJSON("wasteToEnergy"), ctx)
}

func hydroPrompt(ctx string, f *form.Form) string {
	calc := "hydro"
	details := fmt.Sprintf("Source: %s. Design flow: %s %s. Gross head: %s %s. Hours per year: %s.",
		f.HydroSourceType, orNotSpecified(f.HydroDesignFlow), f.HydroDesignFlowUnit,
		orNotSpecified(f.HydroGrossHead), f.HydroGrossHeadUnit, orNotSpecified(f.HydroHoursPerYear))
	if f.HydroSourceType == form.HydroDrinkingWater || f.HydroSourceType == form.HydroWastewaterPipeline {
		calc = "inPipeHydro"
		details = fmt.Sprintf("Source: %s. Pipe diameter: %s %s. Flow: %s %s. Available pressure drop: %s %s. Minimum service pressure: %s.",
			f.HydroSourceType, orNotSpecified(f.HydroPipeDiameter), f.HydroPipeDiameterUnit,
			orNotSpecified(f.HydroPipeFlow), f.HydroPipeFlowUnit,
			orNotSpecified(f.HydroPressureDrop), f.HydroPressureDropUnit, orNotSpecified(f.HydroMinServicePressure))
	}
	return fmt.Sprintf(`As a hydropower analyst, analyze the micro-hydropower potential based on the provided context. Tailor the analysis for a **%s**.
**Hydro Details:** %s
**Task:** Based on the hydro details, calculate the potential power in Watts and annual energy in kWh. Discuss feasibility, environmental impact, and maintenance.
Use these constants for calculation: %s

**Full Context:**
%s`, f.Role, details, Knowledge().CalculatorJSON(calc), ctx)
}

func geothermalPrompt(ctx string, f *form.Form) string {
	return fmt.Sprintf(`As a geothermal heat pump analyst, assess ground-source heating and cooling for a **%s**.
**Task:** Estimate the required system size in tons, loop type (vertical, horizontal, pond) suited to the yard and soil, installed cost before and after the federal credit, and annual savings against the current heating system. Mention equipment makers such as %s where relevant.
Use these constants for calculation: %s

**Full Context:**
%s`, f.Role, strings.Join(Knowledge().Providers["geothermal"], ", "), Knowledge().CalculatorJSON("geothermal"), ctx)
}

// Battery asks for a storage recommendation given the generation analyses.
func Battery(analysisContext string, f *form.Form, generation string) Query {
	prompt := fmt.Sprintf(`As a battery storage expert, analyze the energy storage needs. Your recommendation should be tailored to the user's role of **%s** and their stated goals.
**Renewable Generation Analysis Summary:**
%s

**Task:** Recommend a battery capacity in kWh based on monthly usage and the renewable generation potential. Explain the benefits (backup power, load shifting, grid services) most relevant to the user.

**Full Context:**
%s`, f.Role, generation, analysisContext)
	return Query{Name: string(analysis.Battery), Prompt: prompt, Tier: TierFlash}
}

// Portfolio asks for a combined technology portfolio.
func Portfolio(analysisContext string, f *form.Form, fullAnalysis string) Query {
	selected := "none"
	if len(f.SelectedPortfolioProducts) > 0 {
		selected = strings.Join(f.SelectedPortfolioProducts, ", ")
	}
	prompt := fmt.Sprintf(`As a clean energy portfolio strategist, combine the individual analyses below into a recommended technology portfolio for a **%s**.
Products the user has already short-listed: %s.
**Task:**
1.  **Recommended Portfolio:** Pick the mix of technologies that best meets the user's goals and budget, with the size of each.
2.  **Sequencing:** Order the investments (efficiency first, then generation, then storage) with rough timing.
3.  **Combined Impact:** Estimate total cost, annual savings and payback for the whole portfolio.

**Individual Analyses:**
%s

**Full Context:**
%s`, f.Role, selected, fullAnalysis, analysisContext)
	return Query{Name: string(analysis.Portfolio), Prompt: prompt, Tier: TierPro}
}

// FinancingQuery asks for financing options drawn from the catalog.
func FinancingQuery(analysisContext string, f *form.Form) Query {
	prompt := fmt.Sprintf(`As a green energy finance expert, create a financing guide for a %q.
**Task:** Based on the full project context, suggest the top 3-4 most relevant financing options from the provided knowledge base. For each, explain WHY it's a good fit for this user. Use search to find any specific local programs that apply.

**Knowledge Base:**
%s

**Full Context:**
%s`, string(f.Role), FinancingJSON(f.Role), analysisContext)
	return Query{Name: string(analysis.Financing), Prompt: prompt, Tier: TierFlash, Search: true}
}

// Summary asks for the executive summary and action plan.
func Summary(analysisContext, fullAnalysis string) Query {
	prompt := fmt.Sprintf(`Synthesize the following detailed analyses into a concise executive summary and actionable plan.
**Task:** The summary should be written for the user whose profile is in the context below and must have:
1.  **Overall Recommendation:** A clear "what you should do" statement.
2.  **Key Findings:** 3-4 bullet points summarizing the most impactful results.
3.  **Action Plan:** A numbered list of the next 3 steps to take.
Keep it clear, direct, and encouraging.

**Full Analysis Text:**
%s

**User and Project Context:**
%s`, fullAnalysis, analysisContext)
	return Query{Name: string(analysis.Summary), Prompt: prompt, Tier: TierFlash}
}

// FinalReport asks for the financial and environmental impact report.
func FinalReport(analysisContext, fullAnalysis string) Query {
	kb := Knowledge()
	prompt := fmt.Sprintf(`Generate a final report synthesizing the financial and environmental impact of the recommended green energy project.
**Analysis Summary:**
%s

**Knowledge Base:**
- Avg. Electricity Cost: $%g/kWh
- Solar Cost: $%g/W
- Grid CO2 Factor: %g lbs CO2/kWh
- EPA Equivalents: %s %s

**TASK:**
Format the output with the following markdown structure. Use brackets for numeric values you calculate, like $[1234.56]. Your calculations should be informed by the complete project context provided below.

### Financial Analysis
**Estimated System Cost:** Calculate the total cost based on system sizes from the analysis (e.g., solar kW * cost/watt). Provide a single dollar value, like $[25000].
**Estimated Annual Electricity Savings/Revenue:** Calculate this based on generated kWh and average electricity cost. Provide a single dollar value, like $[1800].
**Simple Payback Period:** Calculate System Cost / Annual Savings. Provide a single number in years, like [13.9].
**20-Year Net Financial Impact:** Summarize the total savings over 20 years minus the initial cost.

### Environmental Impact
**Annual CO2 Reduction:** Calculate based on generated kWh * Grid CO2 factor. Provide a value in metric tons, like [7.5].
**Equivalent to:** Use the EPA equivalents from the knowledge base to translate the CO2 reduction into "miles driven by a car" and "tree seedlings grown for 10 years".
- Miles Driven: [18400]
- Tree Seedlings Grown: [125]

**Complete Project Context:**
%s`, fullAnalysis,
		kb.Financial.AvgElectricityCost, kb.Financial.CostPerWatt["solar"], kb.Environmental.GridCO2Factor,
		kb.Environmental.EPAEquivalents["milesDriven"], kb.Environmental.EPAEquivalents["seedlingsGrown"],
		analysisContext)
	return Query{Name: string(analysis.FinalReport), Prompt: prompt, Tier: TierPro}
}

// SalesTargetMarket starts the sales chain.
func SalesTargetMarket(f *form.Form) Query {
	prompt := fmt.Sprintf(`I am a sales professional for %q in %q. Generate a market analysis. Use search to get current local data.
1.  **Market Potential:** Briefly describe the market size and growth potential for this technology here.
2.  **Ideal Customer Profile (ICP):** Define the primary target customer. Include demographics (e.g., income, homeownership), psychographics (e.g., values like environmentalism, tech adoption), and needs (e.g., high bills, desire for energy independence).
3.  **Key Local Drivers:** Identify 2-3 local factors (e.g., high electricity rates, specific incentives, weather patterns, pro-solar policies) that make this a compelling market.`,
		string(f.SellingTechnology), f.Location)
	return Query{Name: string(analysis.SalesTargetMarket), Prompt: prompt, Tier: TierPro, Search: true}
}

// SalesSellingPoints builds on the target market.
func SalesSellingPoints(f *form.Form, targetMarket string) Query {
	prompt := fmt.Sprintf(`Based on the target market for %q in %q, create key selling points.
Target Market Context:
%s

Generate:
1.  **Top 3 Value Propositions:** Create three concise statements that directly address the ICP's needs (e.g., "Take control of your rising electricity bills...").
2.  **Objection Handling:** List two common objections (e.g., "It's too expensive," "Is it reliable?") and provide brief, effective responses.
3.  **Local "Hook":** Create a compelling, location-specific opening line that references a local driver (e.g., "With [Utility Company]'s recent rate hikes...").`,
		string(f.SellingTechnology), f.Location, targetMarket)
	return Query{Name: string(analysis.SalesSellingPoints), Prompt: prompt, Tier: TierPro}
}

// SalesOutreach builds on the target market and selling points.
func SalesOutreach(f *form.Form, salesContext string) Query {
	prompt := fmt.Sprintf(`Given the target market and selling points for %q in %q, devise an outreach strategy.
Sales Context:
%s

Generate:
1.  **Recommended Channels (Top 3):** Suggest the three most effective channels to reach the ICP (e.g., Local Community Events, Facebook Groups for [Town Name] Homeowners, Partnering with local roofers/builders). Justify each choice briefly.
2.  **Competitor Snapshot:** Use search to identify 1-2 major local competitors. Briefly state their main offering and one potential differentiator for my product.
3.  **Sample Social Media Post:** Write a short, engaging post for Facebook or LinkedIn tailored to the ICP.`,
		string(f.SellingTechnology), f.Location, salesContext)
	return Query{Name: string(analysis.SalesOutreach), Prompt: prompt, Tier: TierPro, Search: true}
}

// SalesSummary compiles the playbook.
func SalesSummary(fullSales string) Query {
	prompt := fmt.Sprintf(`Compile the following sales analysis sections into a cohesive, actionable "Sales & Marketing Playbook". Structure it with clear headings for each section (Target Market, Selling Points, Outreach Strategy). Add a brief introductory and concluding paragraph.
Full Analysis:
%s`, fullSales)
	return Query{Name: string(analysis.SalesSummary), Prompt: prompt, Tier: TierPro}
}
