package order

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
	"github.com/ThinkGrid-Labs/altis-engine/internal/events"
	"github.com/ThinkGrid-Labs/altis-engine/internal/inventory"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
	"github.com/ThinkGrid-Labs/altis-engine/internal/repository"
)

// FulfillmentIssuer is the slice of the fulfillment package this service
// drives: issuing fulfillment rows the moment an order reaches PAID. It is
// wired in after construction via SetFulfillmentIssuer, since the
// fulfillment service itself depends on an OrderFulfiller implemented by
// this Service, and Go construction order can't satisfy both directions at
// once.
type FulfillmentIssuer interface {
	IssueForOrder(ctx context.Context, ord *models.Order) ([]models.Fulfillment, error)
}

// Service owns order lifecycle orchestration: acceptance, reshop, cancel,
// and the expiry sweep. Payment and fulfillment transitions are driven by
// their respective services calling ApplyPaymentOutcome / ApplyFulfillment
// so this package never imports them directly.
type Service struct {
	orders       *repository.OrderRepository
	offers       *repository.OfferRepository
	ledger       *repository.LedgerRepository
	inventory    *inventory.Manager
	events       events.Publisher
	rules        *businessrules.Rules
	log          *logging.Logger
	fulfillments FulfillmentIssuer
}

func NewService(
	orders *repository.OrderRepository,
	offers *repository.OfferRepository,
	ledger *repository.LedgerRepository,
	inv *inventory.Manager,
	pub events.Publisher,
	rules *businessrules.Rules,
	log *logging.Logger,
) *Service {
	return &Service{orders: orders, offers: offers, ledger: ledger, inventory: inv, events: pub, rules: rules, log: log}
}

// SetFulfillmentIssuer wires the fulfillment service in after both services
// are constructed, breaking the constructor cycle between order and
// fulfillment. Must be called once during boot before any payment outcome
// is applied.
func (s *Service) SetFulfillmentIssuer(f FulfillmentIssuer) {
	s.fulfillments = f
}

// AcceptOfferRequest carries the inputs to accept an offer into an order.
type AcceptOfferRequest struct {
	Offer     *models.Offer
	CustomerID string
	AirlineID  string
	Contact    models.ContactInfo
	Travelers  []models.Traveler
	// FlightSeats maps flight id to seats requested, for the hard-hold step.
	FlightSeats map[string]int64
}

// AcceptOffer implements the acceptance procedure: validate offer is
// active, hard-hold flight inventory with rollback-on-underflow, persist
// order + items in one transaction, and return the new order.
func (s *Service) AcceptOffer(ctx context.Context, req AcceptOfferRequest) (*models.Order, error) {
	if !req.Offer.IsActive(time.Now()) {
		return nil, altiserr.NewGone("order.accept_offer", "offer is no longer active")
	}

	if len(req.FlightSeats) > 0 {
		if err := s.inventory.HardHoldFlight(ctx, req.FlightSeats); err != nil {
			return nil, err
		}
	}

	holdSeconds := s.rules.TripHoldSeconds
	expiresAt := time.Now().Add(time.Duration(holdSeconds) * time.Second)

	ord := &models.Order{
		CustomerID:         req.CustomerID,
		OriginatingOfferID: req.Offer.ID,
		AirlineID:          req.AirlineID,
		Currency:           req.Offer.Currency,
		Status:             models.OrderProposed,
		ExpiresAt:          &expiresAt,
	}
	if err := ord.SetContact(req.Contact); err != nil {
		return nil, altiserr.NewInternal("order.accept_offer", "failed to encode contact", err)
	}
	if err := ord.SetTravelers(req.Travelers); err != nil {
		return nil, altiserr.NewInternal("order.accept_offer", "failed to encode travelers", err)
	}

	for _, item := range req.Offer.Items {
		ord.Items = append(ord.Items, models.OrderItem{
			ProductID:   item.ProductID,
			Kind:        item.ProductKind,
			DisplayName: item.DisplayName,
			PriceNUC:    item.PriceNUC,
			Quantity:    item.Quantity,
			Status:      models.ItemActive,
			MetadataJSON: item.MetadataJSON,
		})
	}
	ord.RecalculateTotal()
	ord.AddAuditEntry("accept_offer", "", string(models.OrderProposed), "offer accepted")

	if err := s.orders.Create(ctx, ord); err != nil {
		return nil, err
	}

	if err := s.offers.MarkAccepted(ctx, req.Offer.ID); err != nil {
		s.log.Warn("offer mark-accepted failed after order creation", zap.Error(err))
	}

	s.log.OrderTransition(ord.ID, "", string(models.OrderProposed), "accept_offer")
	_ = s.events.Publish(ctx, events.TopicOfferAccepted, ord.ID, map[string]interface{}{
		"order_id": ord.ID,
		"offer_id": req.Offer.ID,
	})

	return ord, nil
}

// GetOrder loads an order by id without taking a row lock.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	return s.orders.GetByID(ctx, orderID, false)
}

// ListOrders returns a customer's orders.
func (s *Service) ListOrders(ctx context.Context, customerID string) ([]models.Order, error) {
	return s.orders.ListForCustomer(ctx, customerID)
}

// BeginPayment transitions PROPOSED -> PAYMENT_PENDING, making the order
// immune to the expiry sweep.
func (s *Service) BeginPayment(ctx context.Context, orderID string) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	to, terr := transition(ord.Status, eventBeginPayment)
	if terr != nil {
		return nil, altiserr.NewConflict("order.begin_payment", terr.Error())
	}
	from := ord.Status
	ord.Status = to
	ord.AddAuditEntry("begin_payment", string(from), string(to), "")
	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	s.log.OrderTransition(ord.ID, string(from), string(to), "begin_payment")
	return ord, nil
}

// Cancel transitions PROPOSED -> CANCELLED, releasing held inventory.
func (s *Service) Cancel(ctx context.Context, orderID, reason string, flightSeats map[string]int64, tripID string, seats map[string]string) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	to, terr := transition(ord.Status, eventCancel)
	if terr != nil {
		return nil, altiserr.NewConflict("order.cancel", terr.Error())
	}
	from := ord.Status
	ord.Status = to
	ord.AddAuditEntry("cancel", string(from), string(to), reason)
	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	if err := s.inventory.Release(ctx, tripID, flightSeats, seats); err != nil {
		s.log.Warn("inventory release failed on cancel", zap.Error(err))
	}
	s.log.OrderTransition(ord.ID, string(from), string(to), "cancel")
	return ord, nil
}

// ApplyPaymentOutcome drives PAYMENT_PENDING -> PAID or PAYMENT_PENDING ->
// CANCELLED based on the payment orchestrator's reported outcome. Called
// by the payment package; kept here so the order package remains the only
// writer of order status.
func (s *Service) ApplyPaymentOutcome(ctx context.Context, orderID string, succeeded bool, flightSeats map[string]int64, tripID string, seats map[string]string) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	evt := eventPaymentFailed
	if succeeded {
		evt = eventPaymentSuccess
	}
	to, terr := transition(ord.Status, evt)
	if terr != nil {
		return nil, altiserr.NewConflict("order.apply_payment_outcome", terr.Error())
	}
	from := ord.Status
	ord.Status = to
	ord.AddAuditEntry("payment_outcome", string(from), string(to), "")
	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	if !succeeded {
		if err := s.inventory.Release(ctx, tripID, flightSeats, seats); err != nil {
			s.log.Warn("inventory release failed on payment failure", zap.Error(err))
		}
	} else {
		_ = s.events.Publish(ctx, events.TopicOrderPaid, ord.ID, map[string]interface{}{"order_id": ord.ID})
		if s.fulfillments != nil {
			if _, ferr := s.fulfillments.IssueForOrder(ctx, ord); ferr != nil {
				s.log.Warn("fulfillment issuance failed on payment success", zap.Error(ferr))
			}
		}
	}
	s.log.OrderTransition(ord.ID, string(from), string(to), "payment_outcome")
	return ord, nil
}

// ApplyFulfillment drives PAID -> FULFILLED once every active item has
// been consumed. Called by the fulfillment package.
func (s *Service) ApplyFulfillment(ctx context.Context, orderID string) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	to, terr := transition(ord.Status, eventConsumeAll)
	if terr != nil {
		return nil, altiserr.NewConflict("order.apply_fulfillment", terr.Error())
	}
	from := ord.Status
	ord.Status = to
	ord.AddAuditEntry("consume_all", string(from), string(to), "")
	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	s.log.OrderTransition(ord.ID, string(from), string(to), "consume_all")
	return ord, nil
}

// InvoluntaryRefund transitions PAID/FULFILLED -> CANCELLED, used by the
// disruption flow and by customer-service-initiated involuntary refunds. It
// releases inventory and writes a compensating REFUND ledger entry for every
// item that was still ACTIVE or PROTECTED, flipping those items to REFUNDED
// so the order's item and revenue status stay in sync with the ledger.
func (s *Service) InvoluntaryRefund(ctx context.Context, orderID, reason string, flightSeats map[string]int64, tripID string, seats map[string]string) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	to, terr := transition(ord.Status, eventInvoluntaryRefund)
	if terr != nil {
		return nil, altiserr.NewConflict("order.involuntary_refund", terr.Error())
	}
	from := ord.Status
	ord.Status = to
	ord.AddAuditEntry("involuntary_refund", string(from), string(to), reason)

	for i := range ord.Items {
		item := &ord.Items[i]
		if item.RevenueStatus == models.RevenueRefunded {
			continue
		}
		if item.Status != models.ItemActive && item.Status != models.ItemProtected {
			continue
		}
		entry := &models.LedgerEntry{
			OrderID:     ord.ID,
			OrderItemID: item.ID,
			Type:        models.LedgerRefund,
			AmountNUC:   item.PriceNUC * int64(item.Quantity),
			Currency:    ord.Currency,
			Description: "compensating refund for involuntary cancellation",
			Timestamp:   time.Now(),
		}
		if err := s.ledger.Append(ctx, nil, entry); err != nil {
			return nil, err
		}
		item.Status = models.ItemRefunded
		item.RevenueStatus = models.RevenueRefunded
	}

	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	if err := s.inventory.Release(ctx, tripID, flightSeats, seats); err != nil {
		s.log.Warn("inventory release failed on involuntary refund", zap.Error(err))
	}
	s.log.OrderTransition(ord.ID, string(from), string(to), "involuntary_refund")
	return ord, nil
}

// Archive transitions FULFILLED -> ARCHIVED, a terminal state.
func (s *Service) Archive(ctx context.Context, orderID string) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	to, terr := transition(ord.Status, eventArchive)
	if terr != nil {
		return nil, altiserr.NewConflict("order.archive", terr.Error())
	}
	from := ord.Status
	ord.Status = to
	ord.AddAuditEntry("archive", string(from), string(to), "")
	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	s.log.OrderTransition(ord.ID, string(from), string(to), "archive")
	return ord, nil
}

// RefundItem flips an item to REFUNDED and recomputes the active total.
// The order total always equals the sum of ACTIVE item prices.
func (s *Service) RefundItem(ctx context.Context, orderID, itemID string) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	if !ord.IsRefundable() {
		return nil, altiserr.NewConflict("order.refund_item", "order is not in a refundable state")
	}
	found := false
	for i := range ord.Items {
		if ord.Items[i].ID == itemID {
			ord.Items[i].Status = models.ItemRefunded
			found = true
			break
		}
	}
	if !found {
		return nil, altiserr.NewNotFound("order.refund_item", "order item not found")
	}
	ord.RecalculateTotal()
	ord.AddAuditEntry("refund_item", "", "", itemID)
	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	return ord, nil
}

// ChangeFlight refunds the old flight item and adds a new one at the
// supplied price, recomputing the active total.
func (s *Service) ChangeFlight(ctx context.Context, orderID, oldItemID string, newItem models.OrderItem) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	if !ord.IsModifiable() {
		return nil, altiserr.NewConflict("order.change_flight", "order is not modifiable")
	}
	found := false
	for i := range ord.Items {
		if ord.Items[i].ID == oldItemID {
			ord.Items[i].Status = models.ItemRefunded
			found = true
			break
		}
	}
	if !found {
		return nil, altiserr.NewNotFound("order.change_flight", "order item not found")
	}
	newItem.Status = models.ItemActive
	ord.Items = append(ord.Items, newItem)
	ord.RecalculateTotal()
	ord.AddAuditEntry("change_flight", "", "", oldItemID)
	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	return ord, nil
}

// AcceptReaccommodation confirms a REACCOMMODATED item the disruption flow
// attached, flipping it to ACTIVE and recomputing the total. Items stay
// REACCOMMODATED (not counted toward the total) until the customer
// confirms, so a proposed reroute is never silently billed.
func (s *Service) AcceptReaccommodation(ctx context.Context, orderID, itemID string) (*models.Order, error) {
	ord, err := s.orders.GetByID(ctx, orderID, true)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range ord.Items {
		if ord.Items[i].ID == itemID && ord.Items[i].Status == models.ItemReaccommodated {
			ord.Items[i].Status = models.ItemActive
			found = true
			break
		}
	}
	if !found {
		return nil, altiserr.NewNotFound("order.accept_reaccommodation", "no pending reaccommodation item found")
	}
	ord.RecalculateTotal()
	ord.AddAuditEntry("accept_reaccommodation", "", "", itemID)
	if err := s.orders.Update(ctx, ord); err != nil {
		return nil, err
	}
	return ord, nil
}

// ExpireOldOrders sweeps PROPOSED orders whose hold has lapsed, marking them
// EXPIRED. Inventory is released only for expired orders that have an entry
// in releaseByOrder; with a nil or empty map no held inventory is returned.
// PAYMENT_PENDING orders are immune by construction.
func (s *Service) ExpireOldOrders(ctx context.Context, releaseByOrder map[string]inventoryRelease) (int, error) {
	ids, err := s.orders.ExpireProposedOrders(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		s.log.OrderTransition(id, string(models.OrderProposed), string(models.OrderExpired), "expire")
		if rel, ok := releaseByOrder[id]; ok {
			if err := s.inventory.Release(ctx, rel.TripID, rel.FlightSeats, rel.Seats); err != nil {
				s.log.Warn("inventory release failed during expiry sweep", zap.Error(err))
			}
		}
	}
	return len(ids), nil
}

// inventoryRelease bundles the arguments ExpireOldOrders needs to release
// an expired order's held inventory, since the expiry query only returns
// IDs and the trip/seat bookkeeping lives in the caller (which still holds
// the in-memory hold state for not-yet-persisted-as-lost holds).
type inventoryRelease struct {
	TripID      string
	FlightSeats map[string]int64
	Seats       map[string]string
}
