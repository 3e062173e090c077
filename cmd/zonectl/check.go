package main

import (
	"fmt"

	"zonecheck/internal/importer"
	"zonecheck/internal/model"
	"zonecheck/internal/service/jurisdiction"
	"zonecheck/internal/service/lookup"
	"zonecheck/internal/service/zone"
	"zonecheck/internal/standards"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const offlineJurisdiction = "local"

type checkOptions struct {
	parcels         string
	overlays        []string
	overlayCategory string
	zoneProp        string
	lon, lat        float64
	projectType     string
	tieBreak        string
	standardsFile   string
	dedupe          bool

	front, rear, leftSide, rightSide float64
	height, lotArea                  float64
	existingFootprint                float64
	projectFootprint                 float64
}

func newCheckCmd() *cobra.Command {
	opts := checkOptions{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Resolve zone, overlays, requirements and compliance for a point using GeoJSON files",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.parcels, "parcels", "", "parcel FeatureCollection")
	f.StringSliceVar(&opts.overlays, "overlays", nil, "overlay FeatureCollections (repeatable)")
	f.StringVar(&opts.overlayCategory, "overlay-category", "", "category for every overlay feature, read per feature when empty")
	f.StringVar(&opts.zoneProp, "zone-prop", "", "parcel property holding the zone code")
	f.Float64Var(&opts.lon, "lon", 0, "longitude")
	f.Float64Var(&opts.lat, "lat", 0, "latitude")
	f.StringVar(&opts.projectType, "project-type", "", "new_construction, addition, renovation, demolition, tenant_improvement or deck")
	f.StringVar(&opts.tieBreak, "tie-break", "first", "overlap policy: first or smallest_area")
	f.StringVar(&opts.standardsFile, "standards-file", "", "YAML table layered over the built-in standards")
	f.BoolVar(&opts.dedupe, "dedupe", false, "drop repeated requirement entries")

	f.Float64Var(&opts.front, "front", 0, "front setback, ft")
	f.Float64Var(&opts.rear, "rear", 0, "rear setback, ft")
	f.Float64Var(&opts.leftSide, "left-side", 0, "left side setback, ft")
	f.Float64Var(&opts.rightSide, "right-side", 0, "right side setback, ft")
	f.Float64Var(&opts.height, "height", 0, "building height, ft")
	f.Float64Var(&opts.lotArea, "lot-area", 0, "lot area, sq ft")
	f.Float64Var(&opts.existingFootprint, "existing-footprint", 0, "existing footprint, sq ft")
	f.Float64Var(&opts.projectFootprint, "project-footprint", 0, "project footprint, sq ft")

	_ = cmd.MarkFlagRequired("parcels")
	_ = cmd.MarkFlagRequired("lon")
	_ = cmd.MarkFlagRequired("lat")

	return cmd
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	policy, err := zone.ParseTieBreak(opts.tieBreak)
	if err != nil {
		return err
	}
	table, err := standards.Load(opts.standardsFile)
	if err != nil {
		return err
	}

	data, err := loadLocalData(cmd, opts)
	if err != nil {
		return err
	}

	catalog := jurisdiction.NewCatalog(jurisdiction.NewMemorySource(data), policy, zap.NewNop())
	if err := catalog.LoadAll(cmd.Context()); err != nil {
		return err
	}
	svc := lookup.NewService(catalog, table, nil, zap.NewNop(), lookup.Options{})

	req := lookup.Request{
		JurisdictionID: offlineJurisdiction,
		Longitude:      &opts.lon,
		Latitude:       &opts.lat,
		ProjectType:    opts.projectType,
		Measurements:   measurementsFromFlags(cmd.Flags(), opts),
	}

	resp, err := svc.Lookup(cmd.Context(), req)
	if err != nil {
		return err
	}
	if opts.dedupe {
		resp.Requirements = resp.Requirements.Dedup()
	}
	return writeJSON(cmd.OutOrStdout(), resp)
}

func loadLocalData(cmd *cobra.Command, opts checkOptions) (*jurisdiction.Data, error) {
	data := &jurisdiction.Data{
		Jurisdiction: model.Jurisdiction{ID: offlineJurisdiction, Name: "Local files"},
	}

	features, issues, err := importer.ReadFile(opts.parcels)
	if err != nil {
		return nil, err
	}
	parcels, _, more := importer.Parcels(features, importer.ParcelOptions{ZoneProp: opts.zoneProp})
	issues = append(issues, more...)
	data.Parcels = parcels
	data.MalformedParcels = countKept(more)
	reportIssues(cmd, opts.parcels, issues)

	for _, path := range opts.overlays {
		features, issues, err := importer.ReadFile(path)
		if err != nil {
			return nil, err
		}
		districts, _, more := importer.Overlays(features, importer.OverlayOptions{
			Category: model.ParseOverlayCategory(opts.overlayCategory),
		})
		issues = append(issues, more...)
		data.Overlays = append(data.Overlays, districts...)
		data.MalformedOverlays += countKept(more)
		reportIssues(cmd, path, issues)
	}
	return data, nil
}

// countKept counts records kept with missing or partial geometry.
func countKept(issues []importer.Issue) int {
	n := 0
	for _, i := range issues {
		if !i.Skipped {
			n++
		}
	}
	return n
}

func reportIssues(cmd *cobra.Command, path string, issues []importer.Issue) {
	for _, i := range issues {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", path, i)
	}
}

func measurementsFromFlags(flags *pflag.FlagSet, opts checkOptions) *model.MeasurementSet {
	var m model.MeasurementSet
	set := false
	pick := func(name string, v float64) *float64 {
		if !flags.Changed(name) {
			return nil
		}
		set = true
		return model.Float(v)
	}

	m.FrontSetbackFt = pick("front", opts.front)
	m.RearSetbackFt = pick("rear", opts.rear)
	m.LeftSideSetbackFt = pick("left-side", opts.leftSide)
	m.RightSideSetbackFt = pick("right-side", opts.rightSide)
	m.BuildingHeightFt = pick("height", opts.height)
	m.LotAreaSqft = pick("lot-area", opts.lotArea)
	m.ExistingFootprintSqft = pick("existing-footprint", opts.existingFootprint)
	m.ProjectFootprintSqft = pick("project-footprint", opts.projectFootprint)

	if !set {
		return nil
	}
	return &m
}
