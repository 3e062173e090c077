package model

// Setbacks are minimum distances, in feet, from the property lines.
type Setbacks struct {
	FrontFt *float64 `json:"front_ft" yaml:"front_ft"`
	SideFt  *float64 `json:"side_ft" yaml:"side_ft"`
	RearFt  *float64 `json:"rear_ft" yaml:"rear_ft"`
}

// DevelopmentStandards is the envelope a zone permits. A nil field means the
// zone does not specify it.
type DevelopmentStandards struct {
	MaxHeightFt    *float64 `json:"max_height_ft" yaml:"max_height_ft"`
	MaxStories     *float64 `json:"max_stories" yaml:"max_stories"`
	Setbacks       Setbacks `json:"setbacks" yaml:"setbacks"`
	MaxLotCoverage *float64 `json:"max_lot_coverage" yaml:"max_lot_coverage"` // ratio, 0.40 = 40%
	MaxFAR         *float64 `json:"max_far" yaml:"max_far"`
	MinLotSizeSqft *float64 `json:"min_lot_size_sqft" yaml:"min_lot_size_sqft"`
	ParkingNotes   *string  `json:"parking_notes" yaml:"parking_notes"`
}

// IsEmpty reports whether no field is set, the state returned for an
// unrecognised zone.
func (s DevelopmentStandards) IsEmpty() bool {
	return s.MaxHeightFt == nil &&
		s.MaxStories == nil &&
		s.Setbacks.FrontFt == nil &&
		s.Setbacks.SideFt == nil &&
		s.Setbacks.RearFt == nil &&
		s.MaxLotCoverage == nil &&
		s.MaxFAR == nil &&
		s.MinLotSizeSqft == nil &&
		s.ParkingNotes == nil
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
