package postgres

import (
	"context"
	"errors"
	"fmt"

	"zonecheck/internal/model"
	"zonecheck/internal/service/jurisdiction"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 500

// Source reads jurisdiction data from PostgreSQL.
type Source struct {
	db     *gorm.DB
	logger *zap.Logger
}

var _ jurisdiction.Source = (*Source)(nil)

// NewSource creates a Source over db.
func NewSource(db *gorm.DB, logger *zap.Logger) *Source {
	return &Source{db: db, logger: logger}
}

// ListJurisdictions returns every jurisdiction ordered by id.
func (s *Source) ListJurisdictions(ctx context.Context) ([]model.Jurisdiction, error) {
	var rows []model.JurisdictionPG
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query jurisdictions: %w", err)
	}

	out := make([]model.Jurisdiction, len(rows))
	for i := range rows {
		out[i] = model.JurisdictionFromPG(&rows[i])
	}
	return out, nil
}

// Load reads one jurisdiction's parcels and overlays in input order. The two
// tables are read concurrently.
func (s *Source) Load(ctx context.Context, id string) (*jurisdiction.Data, error) {
	var j model.JurisdictionPG
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&j).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", jurisdiction.ErrUnknownJurisdiction, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query jurisdiction: %w", err)
	}

	var (
		parcelRows  []model.ZoningParcelPG
		overlayRows []model.OverlayDistrictPG
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.db.WithContext(gctx).
			Where("jurisdiction_id = ?", id).
			Order("seq, id").
			Find(&parcelRows).Error
		if err != nil {
			return fmt.Errorf("query parcels: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		err := s.db.WithContext(gctx).
			Where("jurisdiction_id = ?", id).
			Order("seq, id").
			Find(&overlayRows).Error
		if err != nil {
			return fmt.Errorf("query overlays: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &jurisdiction.Data{
		Jurisdiction: model.JurisdictionFromPG(&j),
		Parcels:      make([]*model.ZoningParcel, 0, len(parcelRows)),
		Overlays:     make([]*model.OverlayDistrict, 0, len(overlayRows)),
	}

	for i := range parcelRows {
		p, err := model.ZoningParcelFromPG(&parcelRows[i])
		if err != nil {
			data.MalformedParcels++
			s.logger.Warn("parcel geometry unusable",
				zap.String("jurisdiction_id", id),
				zap.String("parcel_id", parcelRows[i].ID),
				zap.Error(err))
		}
		data.Parcels = append(data.Parcels, p)
	}

	for i := range overlayRows {
		d, err := model.OverlayDistrictFromPG(&overlayRows[i])
		if err != nil {
			data.MalformedOverlays++
			s.logger.Warn("overlay district unusable",
				zap.String("jurisdiction_id", id),
				zap.String("district_id", overlayRows[i].ID),
				zap.Error(err))
		}
		data.Overlays = append(data.Overlays, d)
	}

	return data, nil
}

// Import is one jurisdiction's dataset ready to be written. A nil slice
// leaves that table untouched; a non-nil one, even empty, replaces it.
type Import struct {
	Jurisdiction model.JurisdictionPG
	Parcels      []model.ZoningParcelPG
	Overlays     []model.OverlayDistrictPG
}

// ImportJurisdiction upserts the jurisdiction and replaces its parcels
// and/or overlays in one transaction. Row Seq and JurisdictionID are set
// from slice order.
func ImportJurisdiction(ctx context.Context, db *gorm.DB, in *Import) error {
	id := in.Jurisdiction.ID
	if id == "" {
		return errors.New("jurisdiction id is required")
	}

	for i := range in.Parcels {
		in.Parcels[i].JurisdictionID = id
		in.Parcels[i].Seq = i
	}
	for i := range in.Overlays {
		in.Overlays[i].JurisdictionID = id
		in.Overlays[i].Seq = i
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "state", "updated_at"}),
		}).Create(&in.Jurisdiction).Error
		if err != nil {
			return fmt.Errorf("upsert jurisdiction: %w", err)
		}

		if in.Parcels != nil {
			if err := tx.Unscoped().Where("jurisdiction_id = ?", id).Delete(&model.ZoningParcelPG{}).Error; err != nil {
				return fmt.Errorf("clear parcels: %w", err)
			}
			if len(in.Parcels) > 0 {
				if err := tx.CreateInBatches(in.Parcels, importBatchSize).Error; err != nil {
					return fmt.Errorf("insert parcels: %w", err)
				}
			}
		}
		if in.Overlays != nil {
			if err := tx.Unscoped().Where("jurisdiction_id = ?", id).Delete(&model.OverlayDistrictPG{}).Error; err != nil {
				return fmt.Errorf("clear overlays: %w", err)
			}
			if len(in.Overlays) > 0 {
				if err := tx.CreateInBatches(in.Overlays, importBatchSize).Error; err != nil {
					return fmt.Errorf("insert overlays: %w", err)
				}
			}
		}
		return nil
	})
}
