// Package fulfillment materialises paid items into scannable artifacts and
// records revenue recognition against the append-only ledger.
package fulfillment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
	"github.com/ThinkGrid-Labs/altis-engine/internal/repository"
)

// OrderFulfiller is the slice of order orchestration this package drives:
// marking an order FULFILLED once all its active items are consumed.
type OrderFulfiller interface {
	ApplyFulfillment(ctx context.Context, orderID string) (*models.Order, error)
}

// Service issues fulfillment artifacts, consumes them, and recognises
// revenue into the ledger.
type Service struct {
	fulfillments *repository.FulfillmentRepository
	ledger       *repository.LedgerRepository
	orders       *repository.OrderRepository
	orderSvc     OrderFulfiller
	log          *logging.Logger
}

func NewService(
	fulfillments *repository.FulfillmentRepository,
	ledger *repository.LedgerRepository,
	orders *repository.OrderRepository,
	orderSvc OrderFulfiller,
	log *logging.Logger,
) *Service {
	return &Service{fulfillments: fulfillments, ledger: ledger, orders: orders, orderSvc: orderSvc, log: log}
}

// IssueForOrder creates one fulfillment row per active item on an order
// just transitioned to PAID.
func (s *Service) IssueForOrder(ctx context.Context, ord *models.Order) ([]models.Fulfillment, error) {
	var issued []models.Fulfillment
	for _, item := range ord.ActiveItems() {
		f := models.Fulfillment{
			OrderID:     ord.ID,
			OrderItemID: item.ID,
			Kind:        models.FulfillmentBarcode,
			Token:       generateToken(ord.ID, item.ID),
		}
		if err := s.fulfillments.Create(ctx, &f); err != nil {
			return nil, err
		}
		issued = append(issued, f)
	}
	return issued, nil
}

// generateToken mints ALTIS-{orderId}-{itemId}-{random8}.
func generateToken(orderID, itemID string) string {
	return fmt.Sprintf("ALTIS-%s-%s-%s", orderID, itemID, uuid.NewString()[:8])
}

// Consume atomically marks token consumed, recognises revenue for the
// associated item, and — if every active item on the order is now
// consumed — drives the order to FULFILLED. Idempotent re-attempts return
// a Conflict error.
func (s *Service) Consume(ctx context.Context, token, location string) (*models.Fulfillment, error) {
	if err := s.fulfillments.Consume(ctx, token, location); err != nil {
		return nil, err
	}
	f, err := s.fulfillments.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.recognizeRevenue(ctx, f.OrderID, f.OrderItemID); err != nil {
		s.log.Error("revenue recognition failed after consume", zap.Error(err))
	}

	if err := s.maybeCompleteFulfillment(ctx, f.OrderID); err != nil {
		s.log.Error("order fulfillment completion check failed", zap.Error(err))
	}

	return f, nil
}

// recognizeRevenue produces a REVENUE_RECOGNITION ledger entry for an item
// currently UNEARNED and flips its revenue status to EARNED. Items already
// EARNED or REFUNDED are skipped.
func (s *Service) recognizeRevenue(ctx context.Context, orderID, itemID string) error {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return err
	}
	var target *models.OrderItem
	for i := range ord.Items {
		if ord.Items[i].ID == itemID {
			target = &ord.Items[i]
			break
		}
	}
	if target == nil {
		return altiserr.NewNotFound("fulfillment.recognize_revenue", "order item not found")
	}
	if target.RevenueStatus != models.RevenueUnearned {
		return nil
	}

	entry := &models.LedgerEntry{
		OrderID:     orderID,
		OrderItemID: itemID,
		Type:        models.LedgerRevenueRecognition,
		AmountNUC:   target.PriceNUC * int64(target.Quantity),
		Currency:    ord.Currency,
		Description: "revenue recognition on consumption",
		Timestamp:   time.Now(),
	}
	if err := s.ledger.Append(ctx, nil, entry); err != nil {
		return err
	}

	target.RevenueStatus = models.RevenueEarned
	if err := s.orders.Update(ctx, ord); err != nil {
		return err
	}
	s.log.BusinessEvent("settlement", entry.ID, map[string]interface{}{
		"order_id":  orderID,
		"item_id":   itemID,
		"amount_nuc": entry.AmountNUC,
	})
	return nil
}

// maybeCompleteFulfillment drives PAID -> FULFILLED once every active item
// has a consumed fulfillment row.
func (s *Service) maybeCompleteFulfillment(ctx context.Context, orderID string) error {
	ord, err := s.orders.GetByID(ctx, orderID, false)
	if err != nil {
		return err
	}
	if ord.Status != models.OrderPaid {
		return nil
	}
	fs, err := s.fulfillments.ListForOrder(ctx, orderID)
	if err != nil {
		return err
	}
	consumedByItem := make(map[string]bool, len(fs))
	for _, f := range fs {
		if f.IsConsumed() {
			consumedByItem[f.OrderItemID] = true
		}
	}
	for _, item := range ord.ActiveItems() {
		if !consumedByItem[item.ID] {
			return nil
		}
	}
	_, err = s.orderSvc.ApplyFulfillment(ctx, orderID)
	return err
}
