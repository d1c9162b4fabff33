package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchContext is the frozen search parameters an offer was generated
// from — preserved on the offer so acceptance and audit can see exactly
// what the customer asked for.
type SearchContext struct {
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DepartureDate   string `json:"departure_date"`
	PassengerCount  int    `json:"passenger_count"`
	CabinClass      string `json:"cabin_class,omitempty"`
	UserSegment     string `json:"user_segment,omitempty"`
}

// Offer is a time-bounded priced proposal.
type Offer struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	CustomerID      string `gorm:"index"`
	AirlineID       string `gorm:"index;not null"`
	SearchContextJSON string `gorm:"type:jsonb"`
	TotalNUC        int64       `gorm:"not null"`
	Currency        string      `gorm:"not null;default:USD"`
	Status          OfferStatus `gorm:"not null;index"`
	ExpiresAt       time.Time   `gorm:"not null;index"`
	RankScore       float64
	ExperimentTag   string
	CreatedAt       time.Time

	Items []OfferItem `gorm:"foreignKey:OfferID"`
}

func (Offer) TableName() string { return "offers" }

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.ExpiresAt.IsZero() {
		o.ExpiresAt = time.Now().Add(15 * time.Minute)
	}
	return nil
}

// IsActive reports whether the offer can still be accepted.
func (o *Offer) IsActive(now time.Time) bool {
	return o.Status == OfferActive && now.Before(o.ExpiresAt)
}

// RecalculateTotal enforces total == Σ item.price × item.quantity.
func (o *Offer) RecalculateTotal() {
	var total int64
	for _, it := range o.Items {
		total += it.PriceNUC * int64(it.Quantity)
	}
	o.TotalNUC = total
}

// SetSearchContext encodes and stores the frozen search context.
func (o *Offer) SetSearchContext(ctx SearchContext) error {
	b, err := json.Marshal(ctx)
	if err != nil {
		return err
	}
	o.SearchContextJSON = string(b)
	return nil
}

// GetSearchContext decodes the frozen search context.
func (o *Offer) GetSearchContext() (SearchContext, error) {
	var ctx SearchContext
	if o.SearchContextJSON == "" {
		return ctx, nil
	}
	err := json.Unmarshal([]byte(o.SearchContextJSON), &ctx)
	return ctx, err
}

// OfferItem is a single priced line within an Offer.
type OfferItem struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	OfferID         string `gorm:"index;not null"`
	ProductKind     ProductKind `gorm:"not null"`
	ProductID       string
	DisplayName     string
	PriceNUC        int64 `gorm:"not null"`
	Quantity        int   `gorm:"not null;default:1"`
	MetadataJSON    string `gorm:"type:jsonb"`
}

func (OfferItem) TableName() string { return "offer_items" }

func (i *OfferItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	return nil
}
