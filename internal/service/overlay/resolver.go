// Package overlay resolves overlay districts for a point, one slot per
// category.
package overlay

import (
	"zonecheck/internal/geometry"
	"zonecheck/internal/model"
	"zonecheck/internal/service/zone"

	"github.com/paulmach/orb"
)

// Attribute keys carried by municipal overlay layers.
const (
	AttrHistoricName    = "HD_NAME"
	AttrUrbanDesignName = "UD_NAME"
	AttrLandslideCode   = "POTENTIAL"
)

var defaultNames = map[model.OverlayCategory]string{
	model.OverlayHistoric:    "Historic District",
	model.OverlayHillside:    "Hillside District",
	model.OverlayUrbanDesign: "Urban Design District",
	model.OverlayLandslide:   "Landslide Risk Area",
}

// Extract builds the match recorded for d. The display name prefers the
// category attribute, then the district name, then a generic label.
func Extract(d *model.OverlayDistrict) model.OverlayMatch {
	m := model.OverlayMatch{DistrictID: d.ID, Category: d.Category}

	var name string
	switch d.Category {
	case model.OverlayHistoric:
		name, _ = d.Attr(AttrHistoricName)
	case model.OverlayUrbanDesign:
		name, _ = d.Attr(AttrUrbanDesignName)
	case model.OverlayLandslide:
		m.Risk = model.LandslideRiskFromCode(d.Attributes[AttrLandslideCode])
	}
	if name == "" {
		name = d.Name
	}
	if name == "" {
		name = defaultNames[d.Category]
	}
	if name == "" {
		name = string(d.Category)
	}
	m.Name = name
	return m
}

// ResolveOverlays records, for every category, the first district in slice
// order that contains pt. Categories with no match have no key in the set.
func ResolveOverlays(pt orb.Point, overlays []*model.OverlayDistrict) model.OverlaySet {
	return Resolve(pt, overlays, zone.TieBreakFirst)
}

// Resolve is ResolveOverlays with an explicit tie-break policy, applied per
// category.
func Resolve(pt orb.Point, overlays []*model.OverlayDistrict, policy zone.TieBreak) model.OverlaySet {
	set := model.OverlaySet{}
	var areas map[model.OverlayCategory]float64
	if policy == zone.TieBreakSmallestArea {
		areas = map[model.OverlayCategory]float64{}
	}

	for _, d := range overlays {
		if d == nil {
			continue
		}
		if _, taken := set[d.Category]; taken && areas == nil {
			continue
		}
		if !d.Contains(pt) {
			continue
		}
		if areas != nil {
			area := geometry.OuterArea(d.Geometry)
			if best, taken := areas[d.Category]; taken && area >= best {
				continue
			}
			areas[d.Category] = area
		}
		set[d.Category] = Extract(d)
	}
	return set
}
