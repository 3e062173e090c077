package overlay

import (
	"sort"

	"zonecheck/internal/geometry"
	"zonecheck/internal/model"
	"zonecheck/internal/service/zone"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// DistrictSpatial represents an overlay district for R-tree indexing
type DistrictSpatial struct {
	Seq      int
	Area     float64
	District *model.OverlayDistrict
	rect     rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface
func (d *DistrictSpatial) Bounds() rtreego.Rect {
	return d.rect
}

// Index answers ResolveOverlays queries through one R-tree over all
// categories. Immutable once built.
type Index struct {
	tree       *rtreego.Rtree
	policy     zone.TieBreak
	districts  []*model.OverlayDistrict
	indexed    int
	categories map[model.OverlayCategory]int
}

// NewIndex builds the R-tree over district bounds.
func NewIndex(districts []*model.OverlayDistrict, policy zone.TieBreak) *Index {
	items := make([]rtreego.Spatial, 0, len(districts))
	categories := make(map[model.OverlayCategory]int)
	for i, d := range districts {
		if d == nil {
			continue
		}
		categories[d.Category]++
		b, ok := d.Bounds()
		if !ok {
			continue
		}
		rect, err := zone.BoundToRect(b)
		if err != nil {
			continue
		}
		items = append(items, &DistrictSpatial{
			Seq:      i,
			Area:     geometry.OuterArea(d.Geometry),
			District: d,
			rect:     rect,
		})
	}

	return &Index{
		tree:       rtreego.NewTree(2, 25, 50, items...),
		policy:     policy,
		districts:  districts,
		indexed:    len(items),
		categories: categories,
	}
}

// Len returns the number of districts the index was built from.
func (ix *Index) Len() int {
	return len(ix.districts)
}

// Indexed returns the number of districts with usable geometry.
func (ix *Index) Indexed() int {
	return ix.indexed
}

// Categories returns the district count per category.
func (ix *Index) Categories() map[model.OverlayCategory]int {
	out := make(map[model.OverlayCategory]int, len(ix.categories))
	for k, v := range ix.categories {
		out[k] = v
	}
	return out
}

// Resolve returns the overlay set at pt under the index policy.
func (ix *Index) Resolve(pt orb.Point) model.OverlaySet {
	set := model.OverlaySet{}

	rect, err := zone.PointRect(pt)
	if err != nil {
		return set
	}
	hits := ix.tree.SearchIntersect(rect)
	if len(hits) == 0 {
		return set
	}

	candidates := make([]*DistrictSpatial, len(hits))
	for i, h := range hits {
		candidates[i] = h.(*DistrictSpatial)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Seq < candidates[j].Seq })

	best := make(map[model.OverlayCategory]*DistrictSpatial)
	for _, c := range candidates {
		cur, taken := best[c.District.Category]
		if taken && (ix.policy != zone.TieBreakSmallestArea || c.Area >= cur.Area) {
			continue
		}
		if !c.District.Contains(pt) {
			continue
		}
		best[c.District.Category] = c
	}

	for cat, c := range best {
		set[cat] = Extract(c.District)
	}
	return set
}
