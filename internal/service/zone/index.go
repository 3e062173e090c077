package zone

import (
	"sort"

	"zonecheck/internal/geometry"
	"zonecheck/internal/model"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// searchPad is the half-width, in degrees, of the rectangle used to query
// the R-tree for a point. rtreego rejects zero-size rectangles.
const searchPad = 1e-9

// ParcelSpatial represents a parcel with its spatial information for R-tree indexing
type ParcelSpatial struct {
	Seq    int                 // position in the input slice
	Area   float64             // outer-ring area, used by TieBreakSmallestArea
	Parcel *model.ZoningParcel // Reference to the original parcel
	rect   rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface
func (p *ParcelSpatial) Bounds() rtreego.Rect {
	return p.rect
}

// BoundToRect converts an orb.Bound to an rtreego.Rect, padding flat
// dimensions so the rectangle is valid.
func BoundToRect(b orb.Bound) (rtreego.Rect, error) {
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	minX, minY := b.Min[0], b.Min[1]
	if w <= 0 {
		minX -= searchPad
		w = 2 * searchPad
	}
	if h <= 0 {
		minY -= searchPad
		h = 2 * searchPad
	}
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
}

// PointRect is the query rectangle for pt.
func PointRect(pt orb.Point) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{pt[0] - searchPad, pt[1] - searchPad},
		[]float64{2 * searchPad, 2 * searchPad},
	)
}

// Index answers ResolveZone queries through an R-tree over parcel bounds.
// It is immutable once built and safe for concurrent use. For the same
// parcels and policy it returns exactly what Resolve returns.
type Index struct {
	tree    *rtreego.Rtree
	policy  TieBreak
	parcels []*model.ZoningParcel
	indexed int
}

// NewIndex builds the R-tree. Parcels without usable geometry are kept for
// counting but not indexed, since they can never match.
func NewIndex(parcels []*model.ZoningParcel, policy TieBreak) *Index {
	items := make([]rtreego.Spatial, 0, len(parcels))
	for i, p := range parcels {
		b, ok := p.Bounds()
		if !ok {
			continue
		}
		rect, err := BoundToRect(b)
		if err != nil {
			continue
		}
		items = append(items, &ParcelSpatial{
			Seq:    i,
			Area:   geometry.OuterArea(p.Geometry),
			Parcel: p,
			rect:   rect,
		})
	}

	return &Index{
		tree:    rtreego.NewTree(2, 25, 50, items...), // 2D index with min 25, max 50 entries per node
		policy:  policy,
		parcels: parcels,
		indexed: len(items),
	}
}

// Len returns the number of parcels the index was built from.
func (ix *Index) Len() int {
	return len(ix.parcels)
}

// Indexed returns the number of parcels with usable geometry.
func (ix *Index) Indexed() int {
	return ix.indexed
}

// Policy returns the tie-break policy the index applies.
func (ix *Index) Policy() TieBreak {
	return ix.policy
}

// candidates returns the parcels whose bounds touch pt, in input order.
func (ix *Index) candidates(pt orb.Point) []*ParcelSpatial {
	rect, err := PointRect(pt)
	if err != nil {
		return nil
	}
	hits := ix.tree.SearchIntersect(rect)
	if len(hits) == 0 {
		return nil
	}

	out := make([]*ParcelSpatial, len(hits))
	for i, h := range hits {
		out[i] = h.(*ParcelSpatial)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// Resolve returns the zone containing pt under the index policy.
func (ix *Index) Resolve(pt orb.Point) (Match, bool) {
	var best *ParcelSpatial
	for _, c := range ix.candidates(pt) {
		if !c.Parcel.Contains(pt) {
			continue
		}
		if ix.policy != TieBreakSmallestArea {
			return matchOf(c.Parcel), true
		}
		if best == nil || c.Area < best.Area {
			best = c
		}
	}
	if best == nil {
		return Match{}, false
	}
	return matchOf(best.Parcel), true
}

// Nearest returns the parcel whose bounding box is closest to pt in planar
// degrees. It is a diagnostic for points outside every parcel.
func (ix *Index) Nearest(pt orb.Point) (*model.ZoningParcel, bool) {
	if ix.indexed == 0 {
		return nil, false
	}
	hit := ix.tree.NearestNeighbor(rtreego.Point{pt[0], pt[1]})
	if hit == nil {
		return nil, false
	}
	return hit.(*ParcelSpatial).Parcel, true
}
