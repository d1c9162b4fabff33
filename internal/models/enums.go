package models

// ProductKind enumerates sellable unit kinds.
type ProductKind string

const (
	ProductFlight       ProductKind = "FLIGHT"
	ProductSeat         ProductKind = "SEAT"
	ProductBag          ProductKind = "BAG"
	ProductMeal         ProductKind = "MEAL"
	ProductLounge       ProductKind = "LOUNGE"
	ProductCarbonOffset ProductKind = "CARBON_OFFSET"
	ProductInsurance    ProductKind = "INSURANCE"
	ProductFastTrack    ProductKind = "FAST_TRACK"
)

// OfferStatus is the lifecycle of an Offer.
type OfferStatus string

const (
	OfferActive    OfferStatus = "ACTIVE"
	OfferExpired   OfferStatus = "EXPIRED"
	OfferAccepted  OfferStatus = "ACCEPTED"
	OfferCancelled OfferStatus = "CANCELLED"
)

// OrderStatus is the lifecycle of an Order.
type OrderStatus string

const (
	OrderProposed        OrderStatus = "PROPOSED"
	OrderPaymentPending  OrderStatus = "PAYMENT_PENDING"
	OrderPaid            OrderStatus = "PAID"
	OrderFulfilled       OrderStatus = "FULFILLED"
	OrderArchived        OrderStatus = "ARCHIVED"
	OrderCancelled       OrderStatus = "CANCELLED"
	OrderExpired         OrderStatus = "EXPIRED"
)

// OrderItemStatus is the per-item lifecycle within an Order.
type OrderItemStatus string

const (
	ItemActive         OrderItemStatus = "ACTIVE"
	ItemRefunded       OrderItemStatus = "REFUNDED"
	ItemProtected      OrderItemStatus = "PROTECTED"
	ItemReaccommodated OrderItemStatus = "REACCOMMODATED"
	ItemCancelled      OrderItemStatus = "CANCELLED"
)

// RevenueStatus tracks ledger recognition per item.
type RevenueStatus string

const (
	RevenueUnearned RevenueStatus = "UNEARNED"
	RevenueEarned   RevenueStatus = "EARNED"
	RevenueRefunded RevenueStatus = "REFUNDED"
)

// PaymentStatus mirrors the provider-side intent status.
type PaymentStatus string

const (
	PaymentRequiresMethod PaymentStatus = "REQUIRES_PAYMENT_METHOD"
	PaymentRequiresAction PaymentStatus = "REQUIRES_ACTION"
	PaymentProcessing     PaymentStatus = "PROCESSING"
	PaymentSucceeded      PaymentStatus = "SUCCEEDED"
	PaymentCanceled       PaymentStatus = "CANCELED"
	PaymentFailed         PaymentStatus = "FAILED"
)

// FulfillmentKind is the artifact kind issued at payment.
type FulfillmentKind string

const (
	FulfillmentBarcode FulfillmentKind = "BARCODE"
	FulfillmentQR      FulfillmentKind = "QR"
)

// LedgerTransactionType tags a ledger entry's financial meaning.
type LedgerTransactionType string

const (
	LedgerRevenueRecognition LedgerTransactionType = "REVENUE_RECOGNITION"
	LedgerRefund             LedgerTransactionType = "REFUND"
	LedgerPayment            LedgerTransactionType = "PAYMENT"
	LedgerCommission         LedgerTransactionType = "COMMISSION"
)

// HoldStatus is the lifecycle of a trip hold.
type HoldStatus string

const (
	HoldDraft     HoldStatus = "DRAFT"
	HoldConfirmed HoldStatus = "CONFIRMED"
	HoldReleased  HoldStatus = "RELEASED"
)

// BreakerState mirrors gobreaker's three states by name, for
// logging/telemetry purposes (the breaker itself is gobreaker.CircuitBreaker,
// not reimplemented here).
type BreakerState string

const (
	BreakerClosed   BreakerState = "CLOSED"
	BreakerOpen     BreakerState = "OPEN"
	BreakerHalfOpen BreakerState = "HALF_OPEN"
)
