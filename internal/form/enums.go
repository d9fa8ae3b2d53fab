package form

import "reflect"

// Role is the user persona that selects the step flow and analysis subset.
type Role string

const (
	RoleHomeowner   Role = "Homeowner"
	RoleCommunity   Role = "Community Organizer"
	RolePolicymaker Role = "Policymaker"
	RoleSales       Role = "Sales Professional / Consultant"
	RoleDeveloper   Role = "Developer"
)

type PropertyType string

const (
	PropertySingleFamily  PropertyType = "Single-family"
	PropertyMultiFamily   PropertyType = "Multi-family"
	PropertySmallBusiness PropertyType = "Small business"
	PropertySchool        PropertyType = "School"
	PropertyFarm          PropertyType = "Farm"
	PropertyNonprofit     PropertyType = "Nonprofit"
)

type Ownership string

const (
	OwnershipOwnerOccupied Ownership = "Owner-occupied"
	OwnershipLandlord      Ownership = "Landlord"
	OwnershipTenant        Ownership = "Tenant"
	OwnershipHOABoard      Ownership = "HOA/Board"
)

type OtherFuel string

const (
	FuelNaturalGas OtherFuel = "Natural gas"
	FuelPropane    OtherFuel = "Propane"
	FuelOil        OtherFuel = "Oil"
	FuelNone       OtherFuel = "None"
)

type RoofType string

const (
	RoofAsphaltShingle RoofType = "Asphalt Shingle"
	RoofMetal          RoofType = "Metal"
	RoofTile           RoofType = "Tile (Clay/Concrete)"
	RoofSlate          RoofType = "Slate"
	RoofWoodShake      RoofType = "Wood Shake"
	RoofFlatMembrane   RoofType = "Flat (Membrane/TPO/EPDM)"
)

type RoofShape string

const (
	ShapeGable   RoofShape = "Gable (A-frame / Triangle)"
	ShapeHip     RoofShape = "Hip (Multi-surface)"
	ShapeFlat    RoofShape = "Flat / Low-slope"
	ShapeShed    RoofShape = "Shed (Single slope)"
	ShapeComplex RoofShape = "Complex (Multiple shapes)"
)

type RoofCondition string

const (
	RoofNewGood         RoofCondition = "New/Good"
	RoofFair            RoofCondition = "Fair"
	RoofNearReplacement RoofCondition = "Near replacement"
)

type HeatingSystem string

const (
	HeatingGasFurnace         HeatingSystem = "Gas furnace"
	HeatingElectricResistance HeatingSystem = "Electric resistance"
	HeatingHeatPump           HeatingSystem = "Heat pump"
	HeatingBoiler             HeatingSystem = "Boiler"
	HeatingSpaceHeater        HeatingSystem = "Space heater"
	HeatingOther              HeatingSystem = "Other"
)

type CoolingSystem string

const (
	CoolingCentralAC   CoolingSystem = "Central AC"
	CoolingMiniSplit   CoolingSystem = "Mini-split"
	CoolingWindowUnits CoolingSystem = "Window units"
	CoolingNone        CoolingSystem = "None"
)

type WaterHeater string

const (
	WaterHeaterGasTank          WaterHeater = "Gas tank"
	WaterHeaterElectricTank     WaterHeater = "Electric tank"
	WaterHeaterHeatPump         WaterHeater = "Heat pump water heater"
	WaterHeaterTanklessGas      WaterHeater = "Tankless gas"
	WaterHeaterTanklessElectric WaterHeater = "Tankless electric"
)

type DuctworkCondition string

const (
	DuctworkTight   DuctworkCondition = "Tight"
	DuctworkAverage DuctworkCondition = "Average"
	DuctworkLeaky   DuctworkCondition = "Leaky/needs seal"
)

type ServiceVoltage string

const (
	VoltageResidential    ServiceVoltage = "120/240V 1-phase"
	VoltageCommercialLow  ServiceVoltage = "208/120V 3-phase"
	VoltageCommercialHigh ServiceVoltage = "480/277V 3-phase"
	VoltageOther          ServiceVoltage = "Other"
)

type BatteryGenerator string

const (
	BackupNone      BatteryGenerator = "None"
	BackupBattery   BatteryGenerator = "Battery"
	BackupGenerator BatteryGenerator = "Generator"
	BackupBoth      BatteryGenerator = "Both"
)

type AtticInsulation string

const (
	AtticUnknown AtticInsulation = "Unknown"
	AtticR13     AtticInsulation = "R-13"
	AtticR19     AtticInsulation = "R-19"
	AtticR30     AtticInsulation = "R-30"
	AtticR38Plus AtticInsulation = "R-38+"
)

type WallInsulation string

const (
	WallUnknown     WallInsulation = "Unknown"
	WallUninsulated WallInsulation = "Uninsulated"
	WallPartial     WallInsulation = "Partial"
	WallCodePlus    WallInsulation = "Code+"
)

type WindowType string

const (
	WindowSinglePane WindowType = "Single pane"
	WindowDoublePane WindowType = "Double pane"
	WindowLowE       WindowType = "Low-E"
	WindowTriplePane WindowType = "Triple pane"
)

type AirSealing string

const (
	AirSealingUnknown AirSealing = "Unknown"
	AirSealingDrafty  AirSealing = "Drafty"
	AirSealingAverage AirSealing = "Average"
	AirSealingTight   AirSealing = "Tight"
)

// Level is shared by noise sensitivity and hydro debris level.
type Level string

const (
	LevelLow    Level = "Low"
	LevelMedium Level = "Medium"
	LevelHigh   Level = "High"
)

type InternetConnectivity string

const (
	InternetReliableWiFi InternetConnectivity = "Reliable Wi-Fi"
	InternetCellularOnly InternetConnectivity = "Cellular only"
	InternetNone         InternetConnectivity = "None"
)

type OccupancyPattern string

const (
	OccupancyHomeAllDay       OccupancyPattern = "Home all day"
	OccupancyEveningsWeekends OccupancyPattern = "Evenings/weekends"
	OccupancyMixed            OccupancyPattern = "Mixed"
)

type BudgetRange string

const (
	BudgetUnder5K  BudgetRange = "Under $5k"
	Budget5KTo15K  BudgetRange = "$5k–$15k"
	Budget15KTo30K BudgetRange = "$15k–$30k"
	Budget30KTo60K BudgetRange = "$30k–$60k"
	BudgetOver60K  BudgetRange = "$60k+"
)

type PreferredFinancing string

const (
	FinancingCash          PreferredFinancing = "Cash"
	FinancingLoan          PreferredFinancing = "Loan"
	FinancingMortgageAddOn PreferredFinancing = "Mortgage add-on/EEM"
	FinancingCPACE         PreferredFinancing = "C-PACE"
	FinancingOnBill        PreferredFinancing = "On-bill"
	FinancingGrantsOnly    PreferredFinancing = "Grants only"
)

type PrimaryGoal string

const (
	GoalLowerBills        PrimaryGoal = "Lower bills"
	GoalBackupPower       PrimaryGoal = "Backup power"
	GoalComfort           PrimaryGoal = "Comfort"
	GoalCarbonReduction   PrimaryGoal = "Carbon reduction"
	GoalIncreaseHomeValue PrimaryGoal = "Increase home value"
)

// EnergySource names a technology the sales flow can sell or the portfolio
// can include.
type EnergySource string

const (
	SourceSolar             EnergySource = "Solar"
	SourceWind              EnergySource = "Wind"
	SourceGeothermal        EnergySource = "Geothermal"
	SourceHydro             EnergySource = "Hydropower"
	SourceBattery           EnergySource = "Battery Storage"
	SourceBuildingMaterials EnergySource = "Building Materials"
	SourceMiniSplit         EnergySource = "Mini-Split Heat Pumps"
	SourceWasteToEnergy     EnergySource = "Waste-to-Energy"
)

type HydroSourceType string

const (
	HydroRiverStream        HydroSourceType = "River/Stream"
	HydroIrrigationCanal    HydroSourceType = "Irrigation Canal"
	HydroDrinkingWater      HydroSourceType = "Drinking-Water Pipeline"
	HydroWastewaterPipeline HydroSourceType = "Wastewater/Process Pipeline"
)

type FlowUnit string

const (
	FlowCFS FlowUnit = "cfs"
	FlowLPS FlowUnit = "L/s"
)

// LengthUnit covers head and distance units.
type LengthUnit string

const (
	LengthFeet   LengthUnit = "ft"
	LengthMeters LengthUnit = "m"
)

type LossEstimate string

const (
	Loss10     LossEstimate = "10%"
	Loss15     LossEstimate = "15%"
	Loss20     LossEstimate = "20%"
	LossCustom LossEstimate = "Custom %"
)

type DiameterUnit string

const (
	DiameterInches      DiameterUnit = "in"
	DiameterMillimeters DiameterUnit = "mm"
)

type PipeFlowUnit string

const (
	PipeFlowGPM PipeFlowUnit = "gpm"
	PipeFlowLPS PipeFlowUnit = "L/s"
)

type PressureUnit string

const (
	PressurePSI PressureUnit = "psi"
	PressureKPA PressureUnit = "kPa"
)

type PipeMaterial string

const (
	PipeDuctileIron PipeMaterial = "Ductile Iron"
	PipePVC         PipeMaterial = "PVC"
	PipeSteel       PipeMaterial = "Steel"
	PipeHDPE        PipeMaterial = "HDPE"
	PipeUnknown     PipeMaterial = "Unknown"
)

type YesNoUnknown string

const (
	Yes     YesNoUnknown = "Yes"
	No      YesNoUnknown = "No"
	Unknown YesNoUnknown = "Unknown"
)

type OperationMode string

const (
	OperationGridTied OperationMode = "Grid-Tied (offset/export)"
	OperationOffGrid  OperationMode = "Off-Grid / Local Load Only"
)

type ProjectPhase string

const (
	PhasePlanning        ProjectPhase = "Planning"
	PhaseNewConstruction ProjectPhase = "New Construction"
	PhaseRetrofit        ProjectPhase = "Retrofit"
)

// domains lists the closed value set of every enumerated type. It is a
// package variable initializer so the field registry, which reads it, is
// built after it.
var domains = buildDomains()

func domain[T ~string](d map[reflect.Type][]string, values ...T) {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	var zero T
	d[reflect.TypeOf(zero)] = out
}

func buildDomains() map[reflect.Type][]string {
	d := make(map[reflect.Type][]string)
	domain(d, RoleHomeowner, RoleCommunity, RolePolicymaker, RoleSales, RoleDeveloper)
	domain(d, PropertySingleFamily, PropertyMultiFamily, PropertySmallBusiness, PropertySchool, PropertyFarm, PropertyNonprofit)
	domain(d, OwnershipOwnerOccupied, OwnershipLandlord, OwnershipTenant, OwnershipHOABoard)
	domain(d, FuelNaturalGas, FuelPropane, FuelOil, FuelNone)
	domain(d, RoofAsphaltShingle, RoofMetal, RoofTile, RoofSlate, RoofWoodShake, RoofFlatMembrane)
	domain(d, ShapeGable, ShapeHip, ShapeFlat, ShapeShed, ShapeComplex)
	domain(d, RoofNewGood, RoofFair, RoofNearReplacement)
	domain(d, HeatingGasFurnace, HeatingElectricResistance, HeatingHeatPump, HeatingBoiler, HeatingSpaceHeater, HeatingOther)
	domain(d, CoolingCentralAC, CoolingMiniSplit, CoolingWindowUnits, CoolingNone)
	domain(d, WaterHeaterGasTank, WaterHeaterElectricTank, WaterHeaterHeatPump, WaterHeaterTanklessGas, WaterHeaterTanklessElectric)
	domain(d, DuctworkTight, DuctworkAverage, DuctworkLeaky)
	domain(d, VoltageResidential, VoltageCommercialLow, VoltageCommercialHigh, VoltageOther)
	domain(d, BackupNone, BackupBattery, BackupGenerator, BackupBoth)
	domain(d, AtticUnknown, AtticR13, AtticR19, AtticR30, AtticR38Plus)
	domain(d, WallUnknown, WallUninsulated, WallPartial, WallCodePlus)
	domain(d, WindowSinglePane, WindowDoublePane, WindowLowE, WindowTriplePane)
	domain(d, AirSealingUnknown, AirSealingDrafty, AirSealingAverage, AirSealingTight)
	domain(d, LevelLow, LevelMedium, LevelHigh)
	domain(d, InternetReliableWiFi, InternetCellularOnly, InternetNone)
	domain(d, OccupancyHomeAllDay, OccupancyEveningsWeekends, OccupancyMixed)
	domain(d, BudgetUnder5K, Budget5KTo15K, Budget15KTo30K, Budget30KTo60K, BudgetOver60K)
	domain(d, FinancingCash, FinancingLoan, FinancingMortgageAddOn, FinancingCPACE, FinancingOnBill, FinancingGrantsOnly)
	domain(d, GoalLowerBills, GoalBackupPower, GoalComfort, GoalCarbonReduction, GoalIncreaseHomeValue)
	domain(d, SourceSolar, SourceWind, SourceGeothermal, SourceHydro, SourceBattery, SourceBuildingMaterials, SourceMiniSplit, SourceWasteToEnergy)
	domain(d, HydroRiverStream, HydroIrrigationCanal, HydroDrinkingWater, HydroWastewaterPipeline)
	domain(d, FlowCFS, FlowLPS)
	domain(d, LengthFeet, LengthMeters)
	domain(d, Loss10, Loss15, Loss20, LossCustom)
	domain(d, DiameterInches, DiameterMillimeters)
	domain(d, PipeFlowGPM, PipeFlowLPS)
	domain(d, PressurePSI, PressureKPA)
	domain(d, PipeDuctileIron, PipePVC, PipeSteel, PipeHDPE, PipeUnknown)
	domain(d, Yes, No, Unknown)
	domain(d, OperationGridTied, OperationOffGrid)
	domain(d, PhasePlanning, PhaseNewConstruction, PhaseRetrofit)
	return d
}

// Options returns the allowed values of an enumerated type, or nil when t
// is not enumerated.
func Options(t reflect.Type) []string {
	return domains[t]
}

func validOption(t reflect.Type, v string) bool {
	if v == "" {
		return true
	}
	for _, o := range domains[t] {
		if o == v {
			return true
		}
	}
	return false
}

// Valid reports whether r is a known role or unset.
func (r Role) Valid() bool { return validOption(reflect.TypeOf(r), string(r)) }

// Valid reports whether s is a known technology or unset.
func (s EnergySource) Valid() bool { return validOption(reflect.TypeOf(s), string(s)) }

// Valid reports whether h is a known hydro source or unset.
func (h HydroSourceType) Valid() bool { return validOption(reflect.TypeOf(h), string(h)) }
