// Package payment implements the Payment Orchestrator: a provider-agnostic
// facade over adapters, each call guarded by a named circuit breaker.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
	"github.com/ThinkGrid-Labs/altis-engine/internal/logging"
	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// OrderTransitioner is the slice of the order service the orchestrator
// needs: applying a payment outcome. Depending on the interface rather
// than *order.Service keeps this package testable without a database and
// avoids a payment->order->payment import cycle risk.
type OrderTransitioner interface {
	ApplyPaymentOutcome(ctx context.Context, orderID string, succeeded bool, flightSeats map[string]int64, tripID string, seats map[string]string) (*models.Order, error)
}

// Adapter is the provider contract: create intent, fetch intent, capture,
// process a synchronous payment.
type Adapter interface {
	CreateIntent(ctx context.Context, orderID string, amountNUC int64, currency string) (*models.PaymentIntent, error)
	GetIntent(ctx context.Context, intentID string) (*models.PaymentIntent, error)
	ProcessPayment(ctx context.Context, intent *models.PaymentIntent) (models.PaymentStatus, error)
	Capture(ctx context.Context, intentID string) error
}

// InventoryRelease bundles the arguments needed to release inventory when
// a payment fails, mirroring the order package's own release bundle so
// callers don't have to thread trip/seat bookkeeping through two layers.
type InventoryRelease struct {
	TripID      string
	FlightSeats map[string]int64
	Seats       map[string]string
}

// Orchestrator insulates the order state machine from provider choice and
// enforces safe failure via per-dependency circuit breakers.
type Orchestrator struct {
	adapters map[string]Adapter
	defaultAdapter string
	orders   OrderTransitioner
	rules    *businessrules.Rules
	log      *logging.Logger

	paymentBreaker *gobreaker.CircuitBreaker
}

// New builds an Orchestrator with the given named adapters (keyed by
// currency/region selector) and a default fallback, wiring the "payment"
// circuit breaker per business-rule thresholds.
func New(adapters map[string]Adapter, defaultAdapter string, orders OrderTransitioner, rules *businessrules.Rules, log *logging.Logger) *Orchestrator {
	settings := gobreaker.Settings{
		Name:        "payment",
		MaxRequests: 1,
		Interval:    0,
		Timeout:     rules.PaymentBreakerResetTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= rules.PaymentBreakerFailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.BreakerEvent(name, from.String(), to.String())
		},
	}
	return &Orchestrator{
		adapters:       adapters,
		defaultAdapter: defaultAdapter,
		orders:         orders,
		rules:          rules,
		log:            log,
		paymentBreaker: gobreaker.NewCircuitBreaker(settings),
	}
}

func (o *Orchestrator) adapterFor(currency string) Adapter {
	if a, ok := o.adapters[currency]; ok {
		return a
	}
	return o.adapters[o.defaultAdapter]
}

// CreateIntent opens a payment intent with the provider for an order's
// current total, guarded by the same breaker as Pay.
func (o *Orchestrator) CreateIntent(ctx context.Context, ord *models.Order) (*models.PaymentIntent, error) {
	adapter := o.adapterFor(ord.Currency)
	result, err := o.paymentBreaker.Execute(func() (interface{}, error) {
		return adapter.CreateIntent(ctx, ord.ID, ord.TotalNUC, ord.Currency)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, altiserr.NewDependencyUnavailable("payment.create_intent", "payment provider unavailable", err, 30*time.Second)
		}
		return nil, altiserr.Wrap(altiserr.Internal, "payment.create_intent", "failed to create payment intent", err)
	}
	return result.(*models.PaymentIntent), nil
}

// Pay runs the synchronous pay flow: the caller must have already
// transitioned the order to PAYMENT_PENDING. The breaker guards the
// adapter call; a breaker trip surfaces as a retryable DependencyUnavailable
// error without mutating order state.
func (o *Orchestrator) Pay(ctx context.Context, ord *models.Order, rel InventoryRelease) (*models.Order, error) {
	adapter := o.adapterFor(ord.Currency)
	intent := &models.PaymentIntent{
		OrderID:   ord.ID,
		AmountNUC: ord.TotalNUC,
		Currency:  ord.Currency,
	}

	result, err := o.paymentBreaker.Execute(func() (interface{}, error) {
		return adapter.ProcessPayment(ctx, intent)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, altiserr.NewDependencyUnavailable("payment.pay", "payment provider unavailable", err, 30*time.Second)
		}
		return nil, altiserr.Wrap(altiserr.Internal, "payment.pay", "payment processing failed", err)
	}

	status := result.(models.PaymentStatus)
	switch status {
	case models.PaymentSucceeded:
		return o.orders.ApplyPaymentOutcome(ctx, ord.ID, true, rel.FlightSeats, rel.TripID, rel.Seats)
	case models.PaymentProcessing:
		// Stay in PAYMENT_PENDING; the webhook flow will resolve this.
		// Per design, an order stuck PROCESSING is never auto-cancelled —
		// only a webhook or explicit human action transitions it further.
		return ord, nil
	case models.PaymentRequiresAction:
		return ord, nil
	case models.PaymentFailed, models.PaymentCanceled:
		return o.orders.ApplyPaymentOutcome(ctx, ord.ID, false, rel.FlightSeats, rel.TripID, rel.Seats)
	default:
		return ord, nil
	}
}

// HandleWebhook looks up the provider's current status for intentID and
// drives the corresponding order transition.
func (o *Orchestrator) HandleWebhook(ctx context.Context, ord *models.Order, intentID string, rel InventoryRelease) (*models.Order, error) {
	adapter := o.adapterFor(ord.Currency)

	result, err := o.paymentBreaker.Execute(func() (interface{}, error) {
		return adapter.GetIntent(ctx, intentID)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests || errors.Is(err, context.DeadlineExceeded) {
			return nil, altiserr.NewDependencyUnavailable("payment.webhook", "payment provider unavailable", err, 30*time.Second)
		}
		return nil, altiserr.Wrap(altiserr.Internal, "payment.webhook", "failed to fetch payment intent", err)
	}

	intent := result.(*models.PaymentIntent)
	switch intent.Status {
	case models.PaymentSucceeded:
		return o.orders.ApplyPaymentOutcome(ctx, ord.ID, true, rel.FlightSeats, rel.TripID, rel.Seats)
	case models.PaymentFailed, models.PaymentCanceled:
		return o.orders.ApplyPaymentOutcome(ctx, ord.ID, false, rel.FlightSeats, rel.TripID, rel.Seats)
	default:
		return ord, nil
	}
}
