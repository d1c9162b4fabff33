package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// LedgerRepository is an append-only store: entries are created, never
// updated or deleted, by design of the revenue recognition model.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append writes a ledger entry within an existing transaction if tx is
// non-nil, otherwise directly against the repository's own connection.
func (r *LedgerRepository) Append(ctx context.Context, tx *gorm.DB, entry *models.LedgerEntry) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	if err := conn.WithContext(ctx).Create(entry).Error; err != nil {
		return altiserr.NewInternal("ledger.append", "failed to append ledger entry", err)
	}
	return nil
}

func (r *LedgerRepository) ListForOrder(ctx context.Context, orderID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("timestamp ASC").
		Find(&entries).Error
	if err != nil {
		return nil, altiserr.NewInternal("ledger.list_for_order", "failed to list ledger entries", err)
	}
	return entries, nil
}

// Balance sums signed amounts for an order: every non-REFUND entry adds its
// amount and every REFUND entry subtracts it.
func (r *LedgerRepository) Balance(ctx context.Context, orderID string) (int64, error) {
	entries, err := r.ListForOrder(ctx, orderID)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		switch e.Type {
		case models.LedgerRefund:
			total -= e.AmountNUC
		default:
			total += e.AmountNUC
		}
	}
	return total, nil
}
