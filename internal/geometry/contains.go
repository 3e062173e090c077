// Package geometry implements the point-in-polygon test behind every zone and
// overlay lookup.
//
// Coordinates are orb.Point values in [longitude, latitude] order, the same
// order GeoJSON uses on the wire. Nothing in this package swaps axes.
package geometry

import (
	"github.com/paulmach/orb"
)

// Contains reports whether pt lies inside g.
//
// Only outer rings are tested, so a point inside a hole is still reported as
// contained. A MultiPolygon contains pt when any of its polygons does.
// Anything that is not a Polygon or MultiPolygon, including nil, yields false.
func Contains(pt orb.Point, g orb.Geometry) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return PolygonContains(pt, geom)
	case orb.MultiPolygon:
		return MultiPolygonContains(pt, geom)
	default:
		return false
	}
}

// PolygonContains tests pt against the outer ring of p. Holes are ignored.
func PolygonContains(pt orb.Point, p orb.Polygon) bool {
	if len(p) == 0 {
		return false
	}
	return RingContains(pt, p[0])
}

// MultiPolygonContains tests pt against the outer ring of every polygon in mp.
func MultiPolygonContains(pt orb.Point, mp orb.MultiPolygon) bool {
	for _, p := range mp {
		if PolygonContains(pt, p) {
			return true
		}
	}
	return false
}

// RingContains runs the even-odd ray cast over r. The ring is treated as
// implicitly closed; a repeated closing vertex is harmless.
// Rings with fewer than three points never contain anything.
func RingContains(pt orb.Point, r orb.Ring) bool {
	n := len(r)
	if n < 3 {
		return false
	}

	lon, lat := pt[0], pt[1]
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := r[i][0], r[i][1]
		xj, yj := r[j][0], r[j][1]

		// yi != yj whenever the edge straddles lat, so the division is safe
		if (yi > lat) != (yj > lat) && lon < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}
