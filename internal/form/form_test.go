package form

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	f := New()
	assert.Empty(t, f.Role)
	assert.Empty(t, f.Location)
	assert.NotNil(t, f.OtherFuels)
	assert.Empty(t, f.OtherFuels)
	assert.NotNil(t, f.AutoFilledFields)
	assert.Nil(t, f.SunroofData)
}

func TestRegistryNumericFields(t *testing.T) {
	want := []string{
		"propertyAge", "squareFootage", "stories", "electricityUsage", "electricityBill",
		"otherFuelsCost", "estimatedYearlySavings", "roofPitch", "roofAzimuth", "usableRoofArea",
		"solarSystemSizeKw", "shading", "yardSize", "heatingSystemAge", "coolingSystemAge",
		"waterHeaterAge", "mainServiceSize", "panelSpaces", "thermostatCooling", "thermostatHeating",
		"evCount", "hydroHoursPerYear", "hydroDesignFlow", "hydroGrossHead", "hydroCustomLosses",
		"hydroMinInstreamFlow", "hydroDistanceToService", "hydroPipeDiameter", "hydroPipeFlow",
		"hydroPressureDrop", "hydroMinServicePressure", "communityNumberOfHomes",
		"communityTotalEnergyUsage", "communityRegionSize", "communityPopulation",
		"developerNumberOfBuildings", "foodWaste",
	}
	assert.ElementsMatch(t, want, NumericFields())
}

func TestLookupKinds(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
	}{
		{"location", KindText},
		{"role", KindEnum},
		{"primaryGoals", KindMulti},
		{"zoningConstraints", KindMulti},
		{"sunroofData", KindData},
		{"autoFilledFields", KindProvenance},
	}
	for _, tt := range tests {
		fd, ok := Lookup(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.kind, fd.Kind, tt.name)
	}

	_, ok := Lookup("nope")
	assert.False(t, ok)
}

func TestRegistryCarriesOptions(t *testing.T) {
	role, ok := Lookup("role")
	require.True(t, ok)
	assert.Equal(t, Options(reflect.TypeOf(RoleHomeowner)), role.Options)
	assert.Contains(t, role.Options, string(RoleSales))

	goals, ok := Lookup("primaryGoals")
	require.True(t, ok)
	assert.Contains(t, goals.Options, string(GoalLowerBills))

	for _, fd := range Fields() {
		if fd.Kind == KindEnum {
			assert.NotEmpty(t, fd.Options, fd.Name)
		}
	}
}

func TestInvalidRoleNeverStored(t *testing.T) {
	f := New()
	assert.ErrorIs(t, f.Set("role", "Astronaut"), ErrInvalidOption)
	assert.Empty(t, f.Role)
	p := Patch{}
	require.NoError(t, p.Put("role", "Astronaut"))
	assert.ErrorIs(t, f.Merge(p, nil), ErrInvalidOption)
	assert.Empty(t, f.Role)
	assert.True(t, f.Role.Valid())
}

func TestSetScalar(t *testing.T) {
	f := New()
	require.NoError(t, f.Set("location", "123 Main St"))
	require.NoError(t, f.Set("role", string(RoleHomeowner)))
	assert.Equal(t, "123 Main St", f.Location)
	assert.Equal(t, RoleHomeowner, f.Role)

	require.NoError(t, f.Set("location", "456 Oak Ave"))
	assert.Equal(t, "456 Oak Ave", f.Location)
}

func TestSetRejectsUnknownAndInvalid(t *testing.T) {
	f := New()
	assert.ErrorIs(t, f.Set("favouriteColour", "blue"), ErrUnknownField)
	assert.ErrorIs(t, f.Set("role", "Astronaut"), ErrInvalidOption)
	assert.ErrorIs(t, f.Set("primaryGoals", "World peace"), ErrInvalidOption)
	assert.ErrorIs(t, f.Set("sunroofData", "{}"), ErrNotSettable)
	assert.ErrorIs(t, f.Set("autoFilledFields", "location"), ErrNotSettable)
}

func TestSetMultiSelectToggles(t *testing.T) {
	f := New()
	require.NoError(t, f.Set("primaryGoals", string(GoalLowerBills)))
	require.NoError(t, f.Set("primaryGoals", string(GoalComfort)))
	require.NoError(t, f.Set("primaryGoals", string(GoalCarbonReduction)))
	assert.Equal(t, []PrimaryGoal{GoalLowerBills, GoalComfort, GoalCarbonReduction}, f.PrimaryGoals)

	// Present value is removed, order of the rest preserved.
	require.NoError(t, f.Set("primaryGoals", string(GoalComfort)))
	assert.Equal(t, []PrimaryGoal{GoalLowerBills, GoalCarbonReduction}, f.PrimaryGoals)

	// Absent value is appended.
	require.NoError(t, f.Set("primaryGoals", string(GoalComfort)))
	assert.Equal(t, []PrimaryGoal{GoalLowerBills, GoalCarbonReduction, GoalComfort}, f.PrimaryGoals)
}

func TestSetFreeFormMultiSelect(t *testing.T) {
	f := New()
	require.NoError(t, f.Set("hazardExposure", "Flood zone"))
	require.NoError(t, f.Set("hazardExposure", "Wildfire"))
	require.NoError(t, f.Set("hazardExposure", "Flood zone"))
	assert.Equal(t, []string{"Wildfire"}, f.HazardExposure)
}

func TestMergeOverwritesWithoutToggle(t *testing.T) {
	f := New()
	require.NoError(t, f.Set("primaryGoals", string(GoalLowerBills)))

	p := Patch{}
	require.NoError(t, p.Put("primaryGoals", []PrimaryGoal{GoalLowerBills}))
	require.NoError(t, p.Put("usableRoofArea", "450"))
	require.NoError(t, p.Put("sunroofData", SunroofData{UsableRoofArea: "450 sq ft", RawText: "lookup"}))
	require.NoError(t, f.Merge(p, []string{"usableRoofArea"}))

	assert.Equal(t, []PrimaryGoal{GoalLowerBills}, f.PrimaryGoals)
	assert.Equal(t, "450", f.UsableRoofArea)
	require.NotNil(t, f.SunroofData)
	assert.Equal(t, "lookup", f.SunroofData.RawText)
	assert.Equal(t, []string{"usableRoofArea"}, f.AutoFilledFields)
}

func TestMergeAutoFilledUnion(t *testing.T) {
	f := New()
	require.NoError(t, f.Merge(Patch{}, []string{"roofPitch", "usableRoofArea"}))
	require.NoError(t, f.Merge(Patch{}, []string{"usableRoofArea", "hydroSourceType", "roofPitch"}))
	assert.Equal(t, []string{"roofPitch", "usableRoofArea", "hydroSourceType"}, f.AutoFilledFields)

	g := New()
	require.NoError(t, g.Merge(Patch{}, []string{"usableRoofArea", "hydroSourceType", "roofPitch"}))
	require.NoError(t, g.Merge(Patch{}, []string{"roofPitch", "usableRoofArea"}))
	assert.ElementsMatch(t, f.AutoFilledFields, g.AutoFilledFields)
}

func TestMergeIsAtomic(t *testing.T) {
	f := New()
	f.Location = "before"

	p := Patch{}
	require.NoError(t, p.Put("location", "after"))
	require.NoError(t, p.Put("hydroSourceType", "Ocean"))
	assert.ErrorIs(t, f.Merge(p, []string{"location"}), ErrInvalidOption)

	assert.Equal(t, "before", f.Location)
	assert.Empty(t, f.AutoFilledFields)
}

func TestMergeRejectsUnknownAutoFilled(t *testing.T) {
	f := New()
	assert.ErrorIs(t, f.Merge(Patch{}, []string{"nope"}), ErrUnknownField)
}

func TestCloneIsDeep(t *testing.T) {
	f := New()
	require.NoError(t, f.Set("otherFuels", string(FuelPropane)))
	f.SunroofData = &SunroofData{RawText: "a"}

	c := f.Clone()
	c.OtherFuels[0] = FuelOil
	c.SunroofData.RawText = "b"

	assert.Equal(t, FuelPropane, f.OtherFuels[0])
	assert.Equal(t, "a", f.SunroofData.RawText)
}

func TestJSONLayout(t *testing.T) {
	raw := []byte(`{"role":"Developer","location":"Austin, TX","primaryGoals":["Comfort"],
		"hydroSourceType":null,"sunroofData":{"usableRoofArea":820,"rawText":"x"}}`)
	var f Form
	require.NoError(t, json.Unmarshal(raw, &f))
	assert.Equal(t, RoleDeveloper, f.Role)
	assert.Equal(t, []PrimaryGoal{GoalComfort}, f.PrimaryGoals)
	assert.Empty(t, f.HydroSourceType)
	require.NotNil(t, f.SunroofData)
	assert.Equal(t, Measure("820"), f.SunroofData.UsableRoofArea)
}

func TestMeasureDigits(t *testing.T) {
	assert.Equal(t, "1250.5", Measure("~1,250.5 sq ft").Digits())
	assert.Equal(t, "", Measure("unknown").Digits())
}

func TestErrorsClearIsIdempotent(t *testing.T) {
	errs := Errors{"role": "Please select a role."}
	errs.Clear("location")
	assert.Equal(t, Errors{"role": "Please select a role."}, errs)

	errs.Clear("role")
	errs.Clear("role")
	assert.Empty(t, errs)
	assert.False(t, errs.Has("role"))
}

func TestTextAndValues(t *testing.T) {
	f := New()
	f.HydroSourceType = HydroRiverStream
	f.PropertyAge = "40"
	f.SelectedTechnologies = []EnergySource{SourceSolar, SourceWind}

	assert.Equal(t, "River/Stream", f.Text("hydroSourceType"))
	assert.Equal(t, "40", f.Text("propertyAge"))
	assert.Equal(t, []string{"Solar", "Wind"}, f.Values("selectedTechnologies"))
	assert.Equal(t, "", f.Text("selectedTechnologies"))
}
