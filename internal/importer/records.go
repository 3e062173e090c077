package importer

import (
	"encoding/json"

	"zonecheck/internal/model"
)

// ParcelOptions controls how parcel features are read.
type ParcelOptions struct {
	// Prefix is prepended to record ids, usually the jurisdiction id
	Prefix string
	// ZoneProp overrides the zone code property
	ZoneProp string
}

// Parcels converts features to parcels and their storage rows, both in
// feature order. Features without a zone code are skipped.
func Parcels(features []Feature, opts ParcelOptions) ([]*model.ZoningParcel, []model.ZoningParcelPG, []Issue) {
	codeProps := ZoneCodeProps
	if opts.ZoneProp != "" {
		codeProps = []string{opts.ZoneProp}
	}

	parcels := make([]*model.ZoningParcel, 0, len(features))
	rows := make([]model.ZoningParcelPG, 0, len(features))
	var issues []Issue

	for _, f := range features {
		code, ok := firstProp(f.Properties, codeProps)
		if !ok {
			issues = append(issues, Issue{Index: f.Index, ID: f.ID, Skipped: true, Reason: "no zone code"})
			continue
		}
		desc, _ := firstProp(f.Properties, ZoneDescriptionProps)
		if f.GeometryErr != nil {
			issues = append(issues, f.geometryIssue())
		}

		id := f.recordID(opts.Prefix)
		parcels = append(parcels, model.NewZoningParcel(id, code, desc, f.Geometry))
		rows = append(rows, model.ZoningParcelPG{
			ID:              id,
			Seq:             len(rows),
			ZoneCode:        code,
			ZoneDescription: desc,
			Geometry:        f.GeometryText(),
		})
	}
	return parcels, rows, issues
}

// OverlayOptions controls how overlay features are read.
type OverlayOptions struct {
	Prefix string
	// Category applies to every feature; when empty it is read per feature
	Category model.OverlayCategory
}

// Overlays converts features to overlay districts and their storage rows.
// Every feature property is kept as a district attribute. Features with no
// category are skipped.
func Overlays(features []Feature, opts OverlayOptions) ([]*model.OverlayDistrict, []model.OverlayDistrictPG, []Issue) {
	districts := make([]*model.OverlayDistrict, 0, len(features))
	rows := make([]model.OverlayDistrictPG, 0, len(features))
	var issues []Issue

	for _, f := range features {
		category := opts.Category
		if category == "" {
			raw, ok := firstProp(f.Properties, OverlayTypeProps)
			if !ok {
				issues = append(issues, Issue{Index: f.Index, ID: f.ID, Skipped: true, Reason: "no overlay category"})
				continue
			}
			category = model.ParseOverlayCategory(raw)
		}
		name, _ := firstProp(f.Properties, OverlayNameProps)
		if f.GeometryErr != nil {
			issues = append(issues, f.geometryIssue())
		}

		attrs, err := json.Marshal(f.Properties)
		if err != nil {
			attrs = []byte("{}")
		}

		id := f.recordID(opts.Prefix)
		districts = append(districts, model.NewOverlayDistrict(id, category, name, f.Geometry, f.Properties))
		rows = append(rows, model.OverlayDistrictPG{
			ID:         id,
			Seq:        len(rows),
			Category:   string(category),
			Name:       name,
			Geometry:   f.GeometryText(),
			Attributes: string(attrs),
		})
	}
	return districts, rows, issues
}
