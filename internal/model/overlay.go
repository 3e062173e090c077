package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"zonecheck/internal/geometry"

	"github.com/paulmach/orb"
	"gorm.io/gorm"
)

// OverlayCategory names an independent overlay layer. The set is open: the
// resolver keeps one slot per category it sees, the requirement deriver only
// acts on the categories it knows.
type OverlayCategory string

const (
	OverlayHistoric    OverlayCategory = "historic"
	OverlayHillside    OverlayCategory = "hillside"
	OverlayUrbanDesign OverlayCategory = "urban_design"
	OverlayLandslide   OverlayCategory = "landslide"
)

// KnownOverlayCategories lists the categories with requirement rules, in
// derivation order.
var KnownOverlayCategories = []OverlayCategory{
	OverlayHistoric,
	OverlayHillside,
	OverlayUrbanDesign,
	OverlayLandslide,
}

// ParseOverlayCategory normalises the spellings found in municipal data
// ("Urban-Design", "landslide_risk", ...) to a category value.
func ParseOverlayCategory(s string) OverlayCategory {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "historic", "historic_district":
		return OverlayHistoric
	case "hillside", "hillside_district":
		return OverlayHillside
	case "urban_design", "urban_design_district":
		return OverlayUrbanDesign
	case "landslide", "landslide_risk":
		return OverlayLandslide
	default:
		return OverlayCategory(norm)
	}
}

// LandslideRisk is the tier derived from a landslide overlay's numeric code.
type LandslideRisk string

const (
	LandslideNone     LandslideRisk = ""
	LandslideLow      LandslideRisk = "Low"
	LandslideModerate LandslideRisk = "Moderate"
	LandslideHigh     LandslideRisk = "High"
)

// LandslideRiskFromCode maps 1, 2 and 3 to Low, Moderate and High. Numbers
// may arrive as JSON numbers or numeric strings; anything else is
// LandslideNone.
func LandslideRiskFromCode(v any) LandslideRisk {
	var code float64
	switch n := v.(type) {
	case float64:
		code = n
	case float32:
		code = float64(n)
	case int:
		code = float64(n)
	case int64:
		code = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return LandslideNone
		}
		code = f
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return LandslideNone
		}
		code = f
	default:
		return LandslideNone
	}

	switch code {
	case 1:
		return LandslideLow
	case 2:
		return LandslideModerate
	case 3:
		return LandslideHigh
	default:
		return LandslideNone
	}
}

// OverlayDistrictPG model for PostgreSQL storage
type OverlayDistrictPG struct {
	ID             string `gorm:"primaryKey"`
	JurisdictionID string `gorm:"size:64;not null;index:idx_overlay_order,priority:1"`
	Seq            int    `gorm:"not null;index:idx_overlay_order,priority:2"`
	Category       string `gorm:"size:50;not null;index"`
	Name           string `gorm:"size:255"`
	Geometry       string `gorm:"type:text"`
	Attributes     string `gorm:"type:text"` // JSON object

	UpdatedAt time.Time      `gorm:"column:updated_at"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name
func (OverlayDistrictPG) TableName() string {
	return "overlay_districts"
}

// OverlayDistrict in-memory model
type OverlayDistrict struct {
	ID         string
	Category   OverlayCategory
	Name       string
	Geometry   orb.Geometry
	Attributes map[string]any

	BoundingBox *orb.Bound
}

// NewOverlayDistrict builds a district and caches its bounding box.
func NewOverlayDistrict(id string, category OverlayCategory, name string, g orb.Geometry, attrs map[string]any) *OverlayDistrict {
	d := &OverlayDistrict{
		ID:         id,
		Category:   category,
		Name:       name,
		Geometry:   g,
		Attributes: attrs,
	}
	if b, ok := geometry.Bound(g); ok {
		d.BoundingBox = &b
	}
	return d
}

// Bounds returns the cached bounding box, or computes it from Geometry.
func (d *OverlayDistrict) Bounds() (orb.Bound, bool) {
	if d == nil {
		return orb.Bound{}, false
	}
	if d.BoundingBox != nil {
		return *d.BoundingBox, true
	}
	return geometry.Bound(d.Geometry)
}

// Contains reports whether pt lies inside the district.
func (d *OverlayDistrict) Contains(pt orb.Point) bool {
	if d == nil {
		return false
	}
	if d.BoundingBox != nil && !d.BoundingBox.Contains(pt) {
		return false
	}
	return geometry.Contains(pt, d.Geometry)
}

// Attr returns a non-empty string attribute.
func (d *OverlayDistrict) Attr(key string) (string, bool) {
	v, ok := d.Attributes[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// OverlayDistrictFromPG creates an OverlayDistrict from OverlayDistrictPG.
// Like ZoningParcelFromPG it keeps the record when the geometry or the
// attribute bag is unreadable and reports the first problem.
func OverlayDistrictFromPG(pg *OverlayDistrictPG) (*OverlayDistrict, error) {
	g, err := geometry.DecodeValid([]byte(pg.Geometry))

	var attrs map[string]any
	if strings.TrimSpace(pg.Attributes) != "" {
		if jerr := json.Unmarshal([]byte(pg.Attributes), &attrs); jerr != nil {
			attrs = nil
			if err == nil {
				err = fmt.Errorf("decode attributes: %w", jerr)
			}
		}
	}

	return NewOverlayDistrict(pg.ID, ParseOverlayCategory(pg.Category), pg.Name, g, attrs), err
}

// OverlayMatch is the district recorded for one category at one point.
type OverlayMatch struct {
	DistrictID string          `json:"district_id"`
	Category   OverlayCategory `json:"category"`
	Name       string          `json:"name"`
	Risk       LandslideRisk   `json:"risk,omitempty"`
}

// OverlaySet holds at most one match per category. A missing key means no
// overlay of that category contains the point.
type OverlaySet map[OverlayCategory]OverlayMatch

// Get returns the match for a category.
func (s OverlaySet) Get(c OverlayCategory) (OverlayMatch, bool) {
	m, ok := s[c]
	return m, ok
}

// Historic returns the historic district name, if any.
func (s OverlaySet) Historic() (string, bool) {
	m, ok := s[OverlayHistoric]
	return m.Name, ok
}

// Hillside reports whether a hillside overlay applies.
func (s OverlaySet) Hillside() bool {
	_, ok := s[OverlayHillside]
	return ok
}

// UrbanDesign returns the urban design district name, if any.
func (s OverlaySet) UrbanDesign() (string, bool) {
	m, ok := s[OverlayUrbanDesign]
	return m.Name, ok
}

// Landslide returns the landslide tier, LandslideNone when there is no
// landslide overlay or its code was not recognised.
func (s OverlaySet) Landslide() LandslideRisk {
	return s[OverlayLandslide].Risk
}

// With returns a copy of s with m stored in its category slot.
func (s OverlaySet) With(m OverlayMatch) OverlaySet {
	out := make(OverlaySet, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[m.Category] = m
	return out
}

// OverlayFlags is the flattened overlay view used in lookup responses.
type OverlayFlags struct {
	HistoricDistrict    *string `json:"historic_district"`
	Hillside            bool    `json:"hillside"`
	UrbanDesignDistrict *string `json:"urban_design"`
	LandslideRisk       *string `json:"landslide_risk"`
}

// Flags renders the set in the flat response shape.
func (s OverlaySet) Flags() OverlayFlags {
	var f OverlayFlags
	if name, ok := s.Historic(); ok {
		f.HistoricDistrict = &name
	}
	f.Hillside = s.Hillside()
	if name, ok := s.UrbanDesign(); ok {
		f.UrbanDesignDistrict = &name
	}
	if risk := s.Landslide(); risk != LandslideNone {
		r := string(risk)
		f.LandslideRisk = &r
	}
	return f
}
