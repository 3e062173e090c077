package postgres

import (
	"fmt"
	"time"

	"zonecheck/internal/model"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the global database connection
var DB *gorm.DB

// Init opens the database connection, migrates the zoning tables and sets
// the global DB variable
func Init(url string, log *zap.Logger) (*gorm.DB, error) {
	// Route GORM through zap with a higher slow SQL threshold, since
	// snapshot loads read whole jurisdictions at once
	gormLogger := logger.New(
		zap.NewStdLog(log.Named("gorm")),
		logger.Config{
			SlowThreshold:             time.Millisecond * 500,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// AutoMigrate models
	err = db.AutoMigrate(&model.JurisdictionPG{}, &model.ZoningParcelPG{}, &model.OverlayDistrictPG{})
	if err != nil {
		return nil, fmt.Errorf("migrate zoning models: %w", err)
	}

	// Set global DB variable
	DB = db

	return db, nil
}

// GetDB returns the global database connection
func GetDB() *gorm.DB {
	return DB
}

// Close closes the global database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
