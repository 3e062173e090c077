package model

import (
	"time"

	"gorm.io/gorm"
)

// JurisdictionPG model for PostgreSQL storage
type JurisdictionPG struct {
	ID    string `gorm:"primaryKey;size:64"`
	Name  string `gorm:"size:255;not null"`
	State string `gorm:"size:2"`

	UpdatedAt time.Time      `gorm:"column:updated_at"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index"`
}

// TableName overrides the table name
func (JurisdictionPG) TableName() string {
	return "jurisdictions"
}

// Jurisdiction in-memory model
type Jurisdiction struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	State string `json:"state,omitempty"`
}

// JurisdictionFromPG creates a Jurisdiction from JurisdictionPG
func JurisdictionFromPG(pg *JurisdictionPG) Jurisdiction {
	return Jurisdiction{ID: pg.ID, Name: pg.Name, State: pg.State}
}
