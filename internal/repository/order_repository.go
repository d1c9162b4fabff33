package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// OrderRepository owns transactional reads/writes of orders and their items.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order with its items in one transaction.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return altiserr.NewInternal("order.create", "failed to create order", err)
		}
		return nil
	})
}

// GetByID loads an order with its items locked FOR UPDATE, so the sequence
// Accept → Pay → Fulfill → Consume is linearisable per order.
func (r *OrderRepository) GetByID(ctx context.Context, id string, forUpdate bool) (*models.Order, error) {
	var order models.Order
	q := r.db.WithContext(ctx).Preload("Items")
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, altiserr.NewNotFound("order.get", "order not found")
		}
		return nil, altiserr.NewInternal("order.get", "failed to load order", err)
	}
	return &order, nil
}

// GetByReference loads an order by its human-presentable booking reference.
func (r *OrderRepository) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "reference = ?", reference).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, altiserr.NewNotFound("order.get_by_reference", "order not found")
		}
		return nil, altiserr.NewInternal("order.get_by_reference", "failed to load order", err)
	}
	return &order, nil
}

// Update persists order-level field changes, enforcing optimistic locking
// via Version, and saves the item slice inside the same transaction.
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := order.Version
		order.Version = currentVersion + 1
		res := tx.Model(&models.Order{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":            order.Status,
				"total_nuc":         order.TotalNUC,
				"payment_method":    order.PaymentMethod,
				"payment_reference": order.PaymentReference,
				"expires_at":        order.ExpiresAt,
				"audit_json":        order.AuditJSON,
				"version":           order.Version,
			})
		if res.Error != nil {
			return altiserr.NewInternal("order.update", "failed to update order", res.Error)
		}
		if res.RowsAffected == 0 {
			return altiserr.NewConflict("order.update", "order was modified concurrently")
		}
		for i := range order.Items {
			if err := tx.Save(&order.Items[i]).Error; err != nil {
				return altiserr.NewInternal("order.update", "failed to update order item", err)
			}
		}
		return nil
	})
}

// ListForCustomer returns a customer's orders, most recent first.
func (r *OrderRepository) ListForCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, altiserr.NewInternal("order.list_for_customer", "failed to list orders", err)
	}
	return orders, nil
}

// GetOrdersReferencingFlight returns PAID/FULFILLED orders with at least
// one ACTIVE item whose metadata references flightID — the disruption
// component's entry point into the durable store.
func (r *OrderRepository) GetOrdersReferencingFlight(ctx context.Context, flightID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("orders.status IN ?", []models.OrderStatus{models.OrderPaid, models.OrderFulfilled}).
		Where("order_items.status = ?", models.ItemActive).
		Where("order_items.metadata_json LIKE ?", "%\"flight_id\":\""+flightID+"\"%").
		Group("orders.id").
		Find(&orders).Error
	if err != nil {
		return nil, altiserr.NewInternal("order.get_by_flight", "failed to query disrupted orders", err)
	}
	return orders, nil
}

// ExpireProposedOrders marks PROPOSED orders whose ExpiresAt has passed as
// EXPIRED. PAYMENT_PENDING orders are immune to this sweep by construction
// (the query never selects them).
func (r *OrderRepository) ExpireProposedOrders(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND expires_at <= NOW()", models.OrderProposed).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, altiserr.NewInternal("order.expire_sweep", "failed to query expired orders", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	err = r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id IN ?", ids).
		Update("status", models.OrderExpired).Error
	if err != nil {
		return nil, altiserr.NewInternal("order.expire_sweep", "failed to mark orders expired", err)
	}
	return ids, nil
}
