package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Fulfillment is a scannable artifact redeemable at point of service.
// Tokens are single-use: Consume sets ConsumedAt exactly once.
type Fulfillment struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	OrderID     string `gorm:"index;not null"`
	OrderItemID string `gorm:"index;not null"`
	Kind        FulfillmentKind `gorm:"not null"`
	Token       string          `gorm:"uniqueIndex;not null"`
	QRPayload   string
	ConsumedAt  *time.Time
	ConsumedAtLocation string
	CreatedAt   time.Time
}

func (Fulfillment) TableName() string { return "fulfillment" }

func (f *Fulfillment) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	return nil
}

// IsConsumed reports whether the token has already been redeemed.
func (f *Fulfillment) IsConsumed() bool {
	return f.ConsumedAt != nil
}
