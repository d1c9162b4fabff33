package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// ProductRepository reads the catalog the Offer Pipeline bundles from.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, altiserr.NewNotFound("product.get", "product not found")
		}
		return nil, altiserr.NewInternal("product.get", "failed to load product", err)
	}
	return &p, nil
}

// ListActiveByKind returns active products of a given kind for an airline,
// the candidate pool the Rule Engine bundles from.
func (r *ProductRepository) ListActiveByKind(ctx context.Context, airlineID string, kind models.ProductKind) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("airline_id = ? AND kind = ? AND active = ?", airlineID, kind, true).
		Find(&products).Error
	if err != nil {
		return nil, altiserr.NewInternal("product.list_by_kind", "failed to list products", err)
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return altiserr.NewInternal("product.create", "failed to create product", err)
	}
	return nil
}
