package model

import "strings"

// ProjectType is the declared kind of work.
type ProjectType string

const (
	ProjectNone              ProjectType = ""
	ProjectNewConstruction   ProjectType = "new_construction"
	ProjectAddition          ProjectType = "addition"
	ProjectRenovation        ProjectType = "renovation"
	ProjectDemolition        ProjectType = "demolition"
	ProjectTenantImprovement ProjectType = "tenant_improvement"
	ProjectDeck              ProjectType = "deck"
)

// ParseProjectType accepts "new-construction", "New Construction" and
// similar spellings. Unknown values are kept as given after normalisation.
func ParseProjectType(s string) ProjectType {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	return ProjectType(norm)
}

// MeasurementSet holds measured or proposed project dimensions. Feet for
// distances, square feet for areas; nil means "not supplied".
type MeasurementSet struct {
	FrontSetbackFt        *float64 `json:"front_setback_ft,omitempty"`
	RearSetbackFt         *float64 `json:"rear_setback_ft,omitempty"`
	LeftSideSetbackFt     *float64 `json:"left_side_setback_ft,omitempty"`
	RightSideSetbackFt    *float64 `json:"right_side_setback_ft,omitempty"`
	BuildingHeightFt      *float64 `json:"building_height_ft,omitempty"`
	LotAreaSqft           *float64 `json:"lot_area_sqft,omitempty"`
	ExistingFootprintSqft *float64 `json:"existing_footprint_sqft,omitempty"`
	ProjectFootprintSqft  *float64 `json:"project_footprint_sqft,omitempty"`
}
