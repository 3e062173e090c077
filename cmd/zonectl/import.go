package main

import (
	"errors"
	"fmt"
	"os"

	"zonecheck/internal/importer"
	"zonecheck/internal/logging"
	"zonecheck/internal/model"
	"zonecheck/internal/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	kindParcels  = "parcels"
	kindOverlays = "overlays"
)

type importOptions struct {
	dbURL        string
	jurisdiction string
	name         string
	state        string
	kind         string
	file         string
	zoneProp     string
	category     string
	dryRun       bool
}

func newImportCmd() *cobra.Command {
	opts := importOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace a jurisdiction's parcels or overlays with a GeoJSON FeatureCollection",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.dbURL, "db-url", os.Getenv("DB_URL"), "PostgreSQL URL (defaults to $DB_URL)")
	f.StringVar(&opts.jurisdiction, "jurisdiction", "", "jurisdiction id")
	f.StringVar(&opts.name, "name", "", "jurisdiction display name (defaults to the id)")
	f.StringVar(&opts.state, "state", "", "two-letter state code")
	f.StringVar(&opts.kind, "kind", kindParcels, "what the file holds: parcels or overlays")
	f.StringVar(&opts.file, "file", "", "GeoJSON FeatureCollection")
	f.StringVar(&opts.zoneProp, "zone-prop", "", "parcel property holding the zone code")
	f.StringVar(&opts.category, "category", "", "overlay category for every feature (historic, hillside, urban_design, landslide)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "parse and report without writing")
	_ = cmd.MarkFlagRequired("jurisdiction")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(cmd *cobra.Command, opts importOptions) error {
	if opts.kind != kindParcels && opts.kind != kindOverlays {
		return fmt.Errorf("--kind must be %q or %q, got %q", kindParcels, kindOverlays, opts.kind)
	}

	logger, err := logging.New("info", "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	features, issues, err := importer.ReadFile(opts.file)
	if err != nil {
		return err
	}

	in := &postgres.Import{
		Jurisdiction: model.JurisdictionPG{ID: opts.jurisdiction, Name: opts.name, State: opts.state},
	}
	if in.Jurisdiction.Name == "" {
		in.Jurisdiction.Name = opts.jurisdiction
	}

	var more []importer.Issue
	switch opts.kind {
	case kindParcels:
		_, in.Parcels, more = importer.Parcels(features, importer.ParcelOptions{
			Prefix:   opts.jurisdiction,
			ZoneProp: opts.zoneProp,
		})
	case kindOverlays:
		_, in.Overlays, more = importer.Overlays(features, importer.OverlayOptions{
			Prefix:   opts.jurisdiction,
			Category: model.ParseOverlayCategory(opts.category),
		})
	}
	issues = append(issues, more...)

	for _, issue := range issues {
		logger.Warn("feature issue", zap.String("file", opts.file), zap.String("issue", issue.String()))
	}
	logger.Info("features read",
		zap.String("kind", opts.kind),
		zap.Int("features", len(features)),
		zap.Int("parcels", len(in.Parcels)),
		zap.Int("overlays", len(in.Overlays)),
		zap.Int("issues", len(issues)))

	if opts.dryRun {
		if issues == nil {
			issues = []importer.Issue{}
		}
		return writeJSON(cmd.OutOrStdout(), issues)
	}
	if opts.dbURL == "" {
		return errors.New("--db-url or DB_URL is required")
	}

	db, err := postgres.Init(opts.dbURL, logger)
	if err != nil {
		return err
	}
	defer postgres.Close()

	if err := postgres.ImportJurisdiction(cmd.Context(), db, in); err != nil {
		return fmt.Errorf("import %s: %w", opts.file, err)
	}
	logger.Info("import committed", zap.String("jurisdiction_id", opts.jurisdiction), zap.String("kind", opts.kind))
	return nil
}
