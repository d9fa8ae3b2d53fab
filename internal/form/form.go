// Package form holds the intake questionnaire: a typed flat record, its
// field registry and the two update paths (single-field set with toggle
// semantics for multi-selects, and bulk merge with auto-fill provenance).
package form

import (
	"reflect"
	"slices"
)

// Form is the full intake questionnaire. Numeric answers are kept as the
// text the user typed; an empty string means unanswered.
type Form struct {
	// Core
	Role     Role   `json:"role"`
	Location string `json:"location"`

	// Property basics
	PropertyType  PropertyType `json:"propertyType"`
	Ownership     Ownership    `json:"ownership"`
	PropertyAge   string       `json:"propertyAge" form:"numeric"`
	SquareFootage string       `json:"squareFootage" form:"numeric"`
	Stories       string       `json:"stories" form:"numeric"`

	// Energy baseline and rates
	ElectricityUsage       string      `json:"electricityUsage" form:"numeric"`
	ElectricityBill        string      `json:"electricityBill" form:"numeric"`
	UtilityProvider        string      `json:"utilityProvider"`
	OtherFuels             []OtherFuel `json:"otherFuels"`
	OtherFuelsCost         string      `json:"otherFuelsCost" form:"numeric"`
	EstimatedYearlySavings string      `json:"estimatedYearlySavings" form:"numeric"`

	// Roof, sun and site orientation
	RoofType          RoofType      `json:"roofType"`
	RoofShape         RoofShape     `json:"roofShape"`
	RoofCondition     RoofCondition `json:"roofCondition"`
	RoofPitch         string        `json:"roofPitch" form:"numeric"`
	RoofAzimuth       string        `json:"roofAzimuth" form:"numeric"`
	UsableRoofArea    string        `json:"usableRoofArea" form:"numeric"`
	SolarSystemSizeKw string        `json:"solarSystemSizeKw" form:"numeric"`
	Shading           string        `json:"shading" form:"numeric"`
	YardSize          string        `json:"yardSize" form:"numeric"`

	// HVAC and water heating
	HeatingSystem     HeatingSystem     `json:"heatingSystem"`
	HeatingSystemAge  string            `json:"heatingSystemAge" form:"numeric"`
	CoolingSystem     CoolingSystem     `json:"coolingSystem"`
	CoolingSystemAge  string            `json:"coolingSystemAge" form:"numeric"`
	WaterHeater       WaterHeater       `json:"waterHeater"`
	WaterHeaterAge    string            `json:"waterHeaterAge" form:"numeric"`
	DuctworkCondition DuctworkCondition `json:"ductworkCondition"`

	// Electrical and interconnection
	MainServiceSize  string           `json:"mainServiceSize" form:"numeric"`
	PanelSpaces      string           `json:"panelSpaces" form:"numeric"`
	ServiceVoltage   ServiceVoltage   `json:"serviceVoltage"`
	BatteryGenerator BatteryGenerator `json:"batteryGenerator"`

	// Envelope and windows
	AtticInsulation AtticInsulation `json:"atticInsulation"`
	WallInsulation  WallInsulation  `json:"wallInsulation"`
	WindowType      WindowType      `json:"windowType"`
	AirSealing      AirSealing      `json:"airSealing"`

	// Site constraints and risks
	ZoningConstraints    []string             `json:"zoningConstraints"`
	HazardExposure       []string             `json:"hazardExposure"`
	NoiseSensitivity     Level                `json:"noiseSensitivity"`
	InternetConnectivity InternetConnectivity `json:"internetConnectivity"`

	// Occupancy and load shape
	OccupancyPattern  OccupancyPattern `json:"occupancyPattern"`
	ThermostatCooling string           `json:"thermostatCooling" form:"numeric"`
	ThermostatHeating string           `json:"thermostatHeating" form:"numeric"`
	EVCount           string           `json:"evCount" form:"numeric"`

	// Goals and priorities
	PrimaryGoals       []PrimaryGoal        `json:"primaryGoals"`
	BudgetRange        BudgetRange          `json:"budgetRange"`
	PreferredFinancing []PreferredFinancing `json:"preferredFinancing"`

	// Hydropower potential
	HydroSourceType      HydroSourceType `json:"hydroSourceType"`
	HydroHoursPerYear    string          `json:"hydroHoursPerYear" form:"numeric"`
	HydroSiteDescription string          `json:"hydroSiteDescription"`

	// Run-of-river
	HydroDesignFlow            string       `json:"hydroDesignFlow" form:"numeric"`
	HydroDesignFlowUnit        FlowUnit     `json:"hydroDesignFlowUnit"`
	HydroGrossHead             string       `json:"hydroGrossHead" form:"numeric"`
	HydroGrossHeadUnit         LengthUnit   `json:"hydroGrossHeadUnit"`
	HydroEstimatedLosses       LossEstimate `json:"hydroEstimatedLosses"`
	HydroCustomLosses          string       `json:"hydroCustomLosses" form:"numeric"`
	HydroMinInstreamFlow       string       `json:"hydroMinInstreamFlow" form:"numeric"`
	HydroMinInstreamFlowUnit   FlowUnit     `json:"hydroMinInstreamFlowUnit"`
	HydroDebrisLevel           Level        `json:"hydroDebrisLevel"`
	HydroDistanceToService     string       `json:"hydroDistanceToService" form:"numeric"`
	HydroDistanceToServiceUnit LengthUnit   `json:"hydroDistanceToServiceUnit"`

	// In-pipe
	HydroPipeDiameter           string       `json:"hydroPipeDiameter" form:"numeric"`
	HydroPipeDiameterUnit       DiameterUnit `json:"hydroPipeDiameterUnit"`
	HydroPipeFlow               string       `json:"hydroPipeFlow" form:"numeric"`
	HydroPipeFlowUnit           PipeFlowUnit `json:"hydroPipeFlowUnit"`
	HydroPressureDrop           string       `json:"hydroPressureDrop" form:"numeric"`
	HydroPressureDropUnit       PressureUnit `json:"hydroPressureDropUnit"`
	HydroMinServicePressure     string       `json:"hydroMinServicePressure" form:"numeric"`
	HydroMinServicePressureUnit PressureUnit `json:"hydroMinServicePressureUnit"`
	HydroPipeMaterial           PipeMaterial `json:"hydroPipeMaterial"`
	HydroPrvOnSite              YesNoUnknown `json:"hydroPrvOnSite"`
	HydroScadaNeeded            YesNoUnknown `json:"hydroScadaNeeded"`

	// Interconnect
	HydroOperationMode OperationMode `json:"hydroOperationMode"`

	// Community and policymaker
	CommunityNumberOfHomes    string `json:"communityNumberOfHomes" form:"numeric"`
	CommunityTotalEnergyUsage string `json:"communityTotalEnergyUsage" form:"numeric"`
	CommunityRegionSize       string `json:"communityRegionSize" form:"numeric"`
	CommunityPopulation       string `json:"communityPopulation" form:"numeric"`
	CommunityKeyIndustries    string `json:"communityKeyIndustries"`

	// Developer
	DeveloperProjectPhase      ProjectPhase `json:"developerProjectPhase"`
	DeveloperNumberOfBuildings string       `json:"developerNumberOfBuildings" form:"numeric"`

	// Legacy specialised fields, kept for stored sessions.
	FoodWaste        string `json:"foodWaste" form:"numeric"`
	WaterFlow        string `json:"waterFlow"`
	WaterHead        string `json:"waterHead"`
	ProximityToWater string `json:"proximityToWater"`
	PipeSize         string `json:"pipeSize"`
	WaterPressure    string `json:"waterPressure"`

	// Sales flow
	SellingTechnology         EnergySource   `json:"sellingTechnology"`
	SelectedTechnologies      []EnergySource `json:"selectedTechnologies"`
	SelectedPortfolioProducts []string       `json:"selectedPortfolioProducts"`

	// Location pre-analysis, written only by bulk merge.
	SunroofData          *SunroofData          `json:"sunroofData"`
	EIEData              *EIEData              `json:"eieData"`
	HydroPreAnalysisData *HydroPreAnalysisData `json:"hydroPreAnalysisData"`
	AutoFilledFields     []string              `json:"autoFilledFields"`
}

// New returns a form with every field at its static default.
func New() *Form {
	f := &Form{}
	v := reflect.ValueOf(f).Elem()
	for _, fd := range registry.list {
		if fd.Kind == KindMulti {
			v.Field(fd.index).Set(reflect.MakeSlice(fd.typ, 0, 0))
		}
	}
	f.AutoFilledFields = []string{}
	return f
}

// Clone returns a deep copy of f.
func (f *Form) Clone() *Form {
	if f == nil {
		return nil
	}
	c := *f
	src := reflect.ValueOf(f).Elem()
	dst := reflect.ValueOf(&c).Elem()
	for i := 0; i < src.NumField(); i++ {
		sv := src.Field(i)
		switch sv.Kind() {
		case reflect.Slice:
			if sv.IsNil() {
				continue
			}
			cp := reflect.MakeSlice(sv.Type(), sv.Len(), sv.Len())
			reflect.Copy(cp, sv)
			dst.Field(i).Set(cp)
		case reflect.Ptr:
			if sv.IsNil() {
				continue
			}
			cp := reflect.New(sv.Type().Elem())
			cp.Elem().Set(sv.Elem())
			dst.Field(i).Set(cp)
		}
	}
	return &c
}

// IsSales reports whether the form selects the sales flow.
func (f *Form) IsSales() bool {
	return f.Role == RoleSales
}

// AutoFilled reports whether field was populated by a location lookup.
func (f *Form) AutoFilled(field string) bool {
	return slices.Contains(f.AutoFilledFields, field)
}
