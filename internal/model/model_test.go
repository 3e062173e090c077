package model

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const squareGeoJSON = `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1],[0,0]]]}`

func TestLandslideRiskFromCode(t *testing.T) {
	tests := []struct {
		in   any
		want LandslideRisk
	}{
		{float64(1), LandslideLow},
		{float64(2), LandslideModerate},
		{float64(3), LandslideHigh},
		{3, LandslideHigh},
		{json.Number("2"), LandslideModerate},
		{"3", LandslideHigh},
		{float64(0), LandslideNone},
		{float64(4), LandslideNone},
		{2.5, LandslideNone},
		{"high", LandslideNone},
		{nil, LandslideNone},
		{true, LandslideNone},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, LandslideRiskFromCode(tt.in), "code %#v", tt.in)
	}
}

func TestParseOverlayCategory(t *testing.T) {
	assert.Equal(t, OverlayHistoric, ParseOverlayCategory(" Historic "))
	assert.Equal(t, OverlayUrbanDesign, ParseOverlayCategory("urban-design"))
	assert.Equal(t, OverlayUrbanDesign, ParseOverlayCategory("Urban Design"))
	assert.Equal(t, OverlayLandslide, ParseOverlayCategory("landslide_risk"))
	assert.Equal(t, OverlayCategory("flood"), ParseOverlayCategory("Flood"))
}

func TestParseProjectType(t *testing.T) {
	assert.Equal(t, ProjectNewConstruction, ParseProjectType("New Construction"))
	assert.Equal(t, ProjectTenantImprovement, ParseProjectType("tenant-improvement"))
	assert.Equal(t, ProjectNone, ParseProjectType("  "))
}

func TestRequirementBundleMerge(t *testing.T) {
	b := RequirementBundle{Permits: []string{"Building Permit"}, Timeline: "2-4 weeks"}

	b.Merge(RequirementBundle{Permits: []string{"Grading Permit"}, Reviews: []string{"Hillside Development Review"}})
	assert.Equal(t, []string{"Building Permit", "Grading Permit"}, b.Permits)
	assert.Equal(t, "2-4 weeks", b.Timeline, "empty timeline does not overwrite")

	b.Merge(RequirementBundle{Permits: []string{"Building Permit"}, Timeline: "6-10 weeks"})
	assert.Equal(t, []string{"Building Permit", "Grading Permit", "Building Permit"}, b.Permits)
	assert.Equal(t, "6-10 weeks", b.Timeline)
}

func TestRequirementBundleDedup(t *testing.T) {
	b := RequirementBundle{
		Permits:           []string{"A", "B", "A", "C", "B"},
		Reviews:           []string{"R"},
		SpecialConditions: nil,
		Timeline:          "t",
	}

	d := b.Dedup()
	assert.Equal(t, []string{"A", "B", "C"}, d.Permits)
	assert.Equal(t, []string{"R"}, d.Reviews)
	assert.Nil(t, d.SpecialConditions)
	assert.Equal(t, "t", d.Timeline)
	assert.Len(t, b.Permits, 5, "original is untouched")
}

func TestZoningParcelFromPG(t *testing.T) {
	ok, err := ZoningParcelFromPG(&ZoningParcelPG{ID: "p1", ZoneCode: "SF-4", Geometry: squareGeoJSON})
	require.NoError(t, err)
	assert.True(t, ok.Contains(orb.Point{0.5, 0.5}))
	require.NotNil(t, ok.BoundingBox)

	bad, err := ZoningParcelFromPG(&ZoningParcelPG{ID: "p2", ZoneCode: "SF-6", Geometry: `{"type":"Point","coordinates":[0.5,0.5]}`})
	assert.Error(t, err)
	require.NotNil(t, bad, "record survives with no geometry")
	assert.Equal(t, "SF-6", bad.ZoneCode)
	assert.Nil(t, bad.Geometry)
	assert.False(t, bad.Contains(orb.Point{0.5, 0.5}))

	empty, err := ZoningParcelFromPG(&ZoningParcelPG{ID: "p3", ZoneCode: "SF-2"})
	assert.NoError(t, err)
	assert.False(t, empty.Contains(orb.Point{0.5, 0.5}))
}

func TestFromPGKeepsValidMultiPolygonParts(t *testing.T) {
	raw := `{"type":"MultiPolygon","coordinates":[[[[0,0],[10,0],[10,10],[0,10],[0,0]]],[[[20,20],[21,21]]]]}`

	p, err := ZoningParcelFromPG(&ZoningParcelPG{ID: "p1", ZoneCode: "SF-4", Geometry: raw})
	assert.ErrorContains(t, err, "polygon 1: degenerate ring")
	require.NotNil(t, p.Geometry)
	assert.True(t, p.Contains(orb.Point{5, 5}))
	assert.False(t, p.Contains(orb.Point{20.5, 20.5}))

	d, err := OverlayDistrictFromPG(&OverlayDistrictPG{ID: "o1", Category: "hillside", Geometry: raw})
	assert.Error(t, err)
	assert.True(t, d.Contains(orb.Point{5, 5}))
}

func TestOverlayDistrictFromPG(t *testing.T) {
	d, err := OverlayDistrictFromPG(&OverlayDistrictPG{
		ID:         "o1",
		Category:   "historic",
		Name:       "HD 12",
		Geometry:   squareGeoJSON,
		Attributes: `{"HD_NAME":"Over-the-Rhine","POTENTIAL":3}`,
	})
	require.NoError(t, err)
	assert.Equal(t, OverlayHistoric, d.Category)
	name, ok := d.Attr("HD_NAME")
	assert.True(t, ok)
	assert.Equal(t, "Over-the-Rhine", name)
	code, ok := d.Attr("POTENTIAL")
	assert.True(t, ok)
	assert.Equal(t, "3", code)

	broken, err := OverlayDistrictFromPG(&OverlayDistrictPG{
		ID: "o2", Category: "hillside", Geometry: squareGeoJSON, Attributes: `{not json`,
	})
	assert.Error(t, err)
	assert.True(t, broken.Contains(orb.Point{0.5, 0.5}), "bad attributes do not drop the geometry")
	_, ok = broken.Attr("anything")
	assert.False(t, ok)
}

func TestOverlaySetFlags(t *testing.T) {
	var empty OverlaySet
	f := empty.Flags()
	assert.Nil(t, f.HistoricDistrict)
	assert.False(t, f.Hillside)
	assert.Nil(t, f.LandslideRisk)
	assert.Equal(t, LandslideNone, empty.Landslide())

	set := OverlaySet{}.
		With(OverlayMatch{Category: OverlayHistoric, Name: "Over-the-Rhine"}).
		With(OverlayMatch{Category: OverlayHillside, Name: "Hillside"}).
		With(OverlayMatch{Category: OverlayLandslide, Name: "Landslide", Risk: LandslideNone})

	f = set.Flags()
	require.NotNil(t, f.HistoricDistrict)
	assert.Equal(t, "Over-the-Rhine", *f.HistoricDistrict)
	assert.True(t, f.Hillside)
	assert.Nil(t, f.UrbanDesignDistrict)
	assert.Nil(t, f.LandslideRisk, "unrecognised tier renders as null")
}

func TestDevelopmentStandardsIsEmpty(t *testing.T) {
	assert.True(t, DevelopmentStandards{}.IsEmpty())
	assert.False(t, DevelopmentStandards{Setbacks: Setbacks{RearFt: Float(0)}}.IsEmpty())
}
