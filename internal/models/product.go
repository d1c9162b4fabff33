package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is a sellable unit, created by admin and immutable in the core.
type Product struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	AirlineID       string `gorm:"index;not null"`
	Kind            ProductKind `gorm:"not null"`
	SupplierCode    string
	DisplayName     string `gorm:"not null"`
	Description     string
	BasePriceNUC    int64   `gorm:"not null"` // integer minor units
	MarginPercent   float64 `gorm:"not null"`
	Active          bool    `gorm:"not null;default:true"`
	MetadataJSON    string  `gorm:"type:jsonb"`
	Version         int     `gorm:"not null;default:1"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Product) TableName() string { return "products" }

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}

// GetMetadata decodes the product's opaque metadata bag. Metadata stays an
// opaque map (never a typed struct) so admin-authored product attributes
// remain forward compatible — only enumerated fields like Kind are typed.
func (p *Product) GetMetadata() (map[string]interface{}, error) {
	if p.MetadataJSON == "" {
		return map[string]interface{}{}, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(p.MetadataJSON), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// SetMetadata encodes and stores the product's opaque metadata bag.
func (p *Product) SetMetadata(m map[string]interface{}) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	p.MetadataJSON = string(b)
	return nil
}
