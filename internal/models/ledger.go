package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LedgerEntry is an immutable append-only financial journal row. Entries
// are never updated or deleted — corrections are additional entries with
// opposing sign (see Order.IsRefundable / involuntary refund flow).
type LedgerEntry struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	OrderID     string `gorm:"index;not null"`
	OrderItemID string `gorm:"index;not null"`
	Type        LedgerTransactionType `gorm:"not null"`
	AmountNUC   int64  `gorm:"not null"`
	Currency    string `gorm:"not null;default:USD"`
	Description string
	Timestamp   time.Time `gorm:"not null;index"`
}

func (LedgerEntry) TableName() string { return "order_ledger" }

func (l *LedgerEntry) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	return nil
}
