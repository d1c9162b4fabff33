package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// FulfillmentRepository persists issued barcodes/QR tokens and their
// single-use consumption state.
type FulfillmentRepository struct {
	db *gorm.DB
}

func NewFulfillmentRepository(db *gorm.DB) *FulfillmentRepository {
	return &FulfillmentRepository{db: db}
}

func (r *FulfillmentRepository) Create(ctx context.Context, f *models.Fulfillment) error {
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return altiserr.NewInternal("fulfillment.create", "failed to create fulfillment", err)
	}
	return nil
}

func (r *FulfillmentRepository) GetByToken(ctx context.Context, token string) (*models.Fulfillment, error) {
	var f models.Fulfillment
	if err := r.db.WithContext(ctx).First(&f, "token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, altiserr.NewNotFound("fulfillment.get_by_token", "fulfillment token not found")
		}
		return nil, altiserr.NewInternal("fulfillment.get_by_token", "failed to load fulfillment", err)
	}
	return &f, nil
}

func (r *FulfillmentRepository) ListForOrder(ctx context.Context, orderID string) ([]models.Fulfillment, error) {
	var fs []models.Fulfillment
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&fs).Error; err != nil {
		return nil, altiserr.NewInternal("fulfillment.list_for_order", "failed to list fulfillments", err)
	}
	return fs, nil
}

// Consume atomically marks a fulfillment token consumed, failing with
// Conflict if it was already consumed — enforcing single-use at the
// repository layer rather than trusting callers to check first.
func (r *FulfillmentRepository) Consume(ctx context.Context, token, location string) error {
	res := r.db.WithContext(ctx).Model(&models.Fulfillment{}).
		Where("token = ? AND consumed_at IS NULL", token).
		Updates(map[string]interface{}{
			"consumed_at":          gorm.Expr("NOW()"),
			"consumed_at_location": location,
		})
	if res.Error != nil {
		return altiserr.NewInternal("fulfillment.consume", "failed to consume fulfillment", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByToken(ctx, token); err != nil {
			return err
		}
		return altiserr.NewConflict("fulfillment.consume", "fulfillment token already consumed")
	}
	return nil
}
