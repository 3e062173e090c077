// Package zone resolves the base zoning district for a point.
package zone

import (
	"fmt"
	"strings"

	"zonecheck/internal/geometry"
	"zonecheck/internal/model"

	"github.com/paulmach/orb"
)

// TieBreak selects the winner when several polygons contain the same point.
type TieBreak int

const (
	// TieBreakFirst keeps the first containing polygon in input order.
	TieBreakFirst TieBreak = iota
	// TieBreakSmallestArea keeps the containing polygon with the smallest
	// outer-ring area. Equal areas fall back to input order.
	TieBreakSmallestArea
)

func (t TieBreak) String() string {
	switch t {
	case TieBreakFirst:
		return "first"
	case TieBreakSmallestArea:
		return "smallest_area"
	default:
		return fmt.Sprintf("TieBreak(%d)", int(t))
	}
}

// ParseTieBreak reads a policy name as used in configuration.
func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first", "first_match", "input_order":
		return TieBreakFirst, nil
	case "smallest_area", "smallest-area", "area":
		return TieBreakSmallestArea, nil
	default:
		return TieBreakFirst, fmt.Errorf("unknown tie-break policy %q", s)
	}
}

// Match is a resolved zone.
type Match struct {
	ParcelID    string `json:"parcel_id"`
	ZoneCode    string `json:"code"`
	Description string `json:"description"`
}

func matchOf(p *model.ZoningParcel) Match {
	return Match{ParcelID: p.ID, ZoneCode: p.ZoneCode, Description: p.ZoneDescription}
}

// ResolveZone returns the first parcel, in slice order, whose geometry
// contains pt. ok is false when the point is outside every parcel.
func ResolveZone(pt orb.Point, parcels []*model.ZoningParcel) (Match, bool) {
	return Resolve(pt, parcels, TieBreakFirst)
}

// Resolve is ResolveZone with an explicit tie-break policy.
func Resolve(pt orb.Point, parcels []*model.ZoningParcel, policy TieBreak) (Match, bool) {
	if policy != TieBreakSmallestArea {
		for _, p := range parcels {
			if p.Contains(pt) {
				return matchOf(p), true
			}
		}
		return Match{}, false
	}

	var best *model.ZoningParcel
	bestArea := 0.0
	for _, p := range parcels {
		if !p.Contains(pt) {
			continue
		}
		area := geometry.OuterArea(p.Geometry)
		if best == nil || area < bestArea {
			best, bestArea = p, area
		}
	}
	if best == nil {
		return Match{}, false
	}
	return matchOf(best), true
}
