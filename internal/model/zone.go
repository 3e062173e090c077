package model

import (
	"time"

	"zonecheck/internal/geometry"

	"github.com/paulmach/orb"
	"gorm.io/gorm"
)

// ZoningParcelPG model for PostgreSQL storage
type ZoningParcelPG struct {
	ID              string `gorm:"primaryKey"`
	JurisdictionID  string `gorm:"size:64;not null;index:idx_parcel_order,priority:1"`
	Seq             int    `gorm:"not null;index:idx_parcel_order,priority:2"` // input order, drives first-match
	ZoneCode        string `gorm:"size:64;not null;index"`
	ZoneDescription string `gorm:"size:255"`
	Geometry        string `gorm:"type:text"` // GeoJSON Polygon or MultiPolygon

	UpdatedAt time.Time      `gorm:"column:updated_at"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name
func (ZoningParcelPG) TableName() string {
	return "zoning_parcels"
}

// ZoningParcel in-memory model
type ZoningParcel struct {
	ID              string
	ZoneCode        string
	ZoneDescription string
	Geometry        orb.Geometry // nil means "no geometry" and never matches

	// Cached bounds for quick rejection, nil when Geometry is unusable
	BoundingBox *orb.Bound
}

// NewZoningParcel builds a parcel and caches its bounding box.
func NewZoningParcel(id, zoneCode, description string, g orb.Geometry) *ZoningParcel {
	p := &ZoningParcel{
		ID:              id,
		ZoneCode:        zoneCode,
		ZoneDescription: description,
		Geometry:        g,
	}
	if b, ok := geometry.Bound(g); ok {
		p.BoundingBox = &b
	}
	return p
}

// Bounds returns the cached bounding box, or computes it from Geometry for
// parcels built without NewZoningParcel.
func (p *ZoningParcel) Bounds() (orb.Bound, bool) {
	if p == nil {
		return orb.Bound{}, false
	}
	if p.BoundingBox != nil {
		return *p.BoundingBox, true
	}
	return geometry.Bound(p.Geometry)
}

// Contains reports whether pt lies inside the parcel. The cached bounding
// box only short-circuits misses.
func (p *ZoningParcel) Contains(pt orb.Point) bool {
	if p == nil {
		return false
	}
	if p.BoundingBox != nil && !p.BoundingBox.Contains(pt) {
		return false
	}
	return geometry.Contains(pt, p.Geometry)
}

// ZoningParcelFromPG creates a ZoningParcel from ZoningParcelPG.
// A geometry that fails to decode leaves the parcel in place with no
// geometry, and a MultiPolygon with broken parts keeps the valid ones. The
// error is returned so the loader can report it.
func ZoningParcelFromPG(pg *ZoningParcelPG) (*ZoningParcel, error) {
	g, err := geometry.DecodeValid([]byte(pg.Geometry))
	return NewZoningParcel(pg.ID, pg.ZoneCode, pg.ZoneDescription, g), err
}
