package geometry

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var (
	// ErrUnsupportedGeometry is returned for GeoJSON types other than Polygon
	// and MultiPolygon.
	ErrUnsupportedGeometry = errors.New("unsupported geometry type")

	// ErrDegenerateRing marks an outer ring with fewer than three points.
	ErrDegenerateRing = errors.New("degenerate ring")

	// ErrInvalidCoordinate marks a vertex that is NaN, infinite or outside
	// the [-180,180] x [-90,90] range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Decode parses a GeoJSON geometry object. Empty input and JSON null decode
// to (nil, nil), the "no geometry" state. Callers loading a collection should
// keep the record with a nil geometry when Decode fails, which makes it match
// nothing instead of aborting the load.
func Decode(raw []byte) (orb.Geometry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	g, err := geojson.UnmarshalGeometry(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}

	return Normalize(g.Geometry())
}

// DecodeValid is Decode followed by DropInvalid. Loaders use it so that a
// structurally broken geometry is counted as malformed at load time. The
// result may be a usable geometry together with an error.
func DecodeValid(raw []byte) (orb.Geometry, error) {
	g, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return DropInvalid(g)
}

// DropInvalid validates g. A MultiPolygon keeps its valid parts and the
// error names the dropped ones; it is nil only when no part survives. Any
// other invalid geometry comes back nil.
func DropInvalid(g orb.Geometry) (orb.Geometry, error) {
	mp, ok := g.(orb.MultiPolygon)
	if !ok {
		if err := Validate(g); err != nil {
			return nil, err
		}
		return g, nil
	}

	kept := make(orb.MultiPolygon, 0, len(mp))
	var errs []error
	for i, p := range mp {
		if err := validatePolygon(p); err != nil {
			errs = append(errs, fmt.Errorf("polygon %d: %w", i, err))
			continue
		}
		kept = append(kept, p)
	}
	if len(errs) == 0 {
		return mp, nil
	}
	if len(kept) == 0 {
		return nil, errors.Join(errs...)
	}
	return kept, errors.Join(errs...)
}

// Normalize accepts the two supported geometry kinds and rejects the rest.
func Normalize(g orb.Geometry) (orb.Geometry, error) {
	switch geom := g.(type) {
	case nil:
		return nil, nil
	case orb.Polygon, orb.MultiPolygon:
		return geom, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// Validate reports the first structural problem in g. It is advisory: the
// containment test already treats every problem it finds as "no match".
func Validate(g orb.Geometry) error {
	switch geom := g.(type) {
	case nil:
		return nil
	case orb.Polygon:
		return validatePolygon(geom)
	case orb.MultiPolygon:
		for i, p := range geom {
			if err := validatePolygon(p); err != nil {
				return fmt.Errorf("polygon %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

func validatePolygon(p orb.Polygon) error {
	if len(p) == 0 || len(p[0]) < 3 {
		return ErrDegenerateRing
	}
	for _, pt := range p[0] {
		if !ValidCoordinate(pt) {
			return fmt.Errorf("%w: %v", ErrInvalidCoordinate, pt)
		}
	}
	return nil
}

// ValidCoordinate reports whether pt is a finite lon/lat pair in range.
func ValidCoordinate(pt orb.Point) bool {
	lon, lat := pt[0], pt[1]
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) {
		return false
	}
	return lon >= -180 && lon <= 180 && lat >= -90 && lat <= 90
}

// OuterArea is the planar area of the outer rings of g, in squared degrees.
// Holes are ignored to stay consistent with Contains. Unsupported or nil
// geometry has an area of +Inf so it always loses a smallest-area tie-break.
func OuterArea(g orb.Geometry) float64 {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 {
			return math.Inf(1)
		}
		return math.Abs(planar.Area(geom[0]))
	case orb.MultiPolygon:
		if len(geom) == 0 {
			return math.Inf(1)
		}
		var total float64
		for _, p := range geom {
			if len(p) > 0 {
				total += math.Abs(planar.Area(p[0]))
			}
		}
		return total
	default:
		return math.Inf(1)
	}
}

// Bound returns the bounding box of g and false when g carries no usable
// geometry.
func Bound(g orb.Geometry) (orb.Bound, bool) {
	switch geom := g.(type) {
	case orb.Polygon:
		if len(geom) == 0 || len(geom[0]) == 0 {
			return orb.Bound{}, false
		}
		return geom[0].Bound(), true
	case orb.MultiPolygon:
		var b orb.Bound
		found := false
		for _, p := range geom {
			if len(p) == 0 || len(p[0]) == 0 {
				continue
			}
			if !found {
				b = p[0].Bound()
				found = true
				continue
			}
			b = b.Union(p[0].Bound())
		}
		return b, found
	default:
		return orb.Bound{}, false
	}
}
