package models

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactInfo is the purchaser's contact details on an order.
type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Traveler is one passenger on the order.
type Traveler struct {
	ID        string `json:"id"`
	GivenName string `json:"given_name"`
	Surname   string `json:"surname"`
	PTC       string `json:"ptc"` // ADT, CHD, INF
}

// AuditEntry records one order-level state change in its embedded audit
// trail.
type AuditEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Detail    string    `json:"detail,omitempty"`
}

// Order is the authoritative purchase record.
type Order struct {
	ID                string `gorm:"primaryKey;type:uuid"`
	Reference         string `gorm:"uniqueIndex;not null"`
	CustomerID        string `gorm:"index;not null"`
	OriginatingOfferID string `gorm:"index"`
	AirlineID         string `gorm:"index;not null"`
	ContactJSON       string `gorm:"type:jsonb"`
	TravelersJSON     string `gorm:"type:jsonb"`
	TotalNUC          int64       `gorm:"not null"`
	Currency          string      `gorm:"not null;default:USD"`
	Status            OrderStatus `gorm:"not null;index"`
	PaymentMethod     string
	PaymentReference  string
	ExpiresAt         *time.Time `gorm:"index"`
	Version           int        `gorm:"not null;default:1"`
	AuditJSON         string     `gorm:"type:jsonb"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.Reference == "" {
		o.Reference = generateOrderReference()
	}
	if o.Version == 0 {
		o.Version = 1
	}
	if o.Status == "" {
		o.Status = OrderProposed
	}
	return nil
}

// generateOrderReference mints a human-presentable booking reference:
// ALTIS-prefixed, time-ordered, with a short random suffix to break ties
// within the same millisecond.
func generateOrderReference() string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("ALTIS-%d-%x", time.Now().UnixNano()/int64(time.Millisecond), buf)
}

// GetContact decodes the order's contact info.
func (o *Order) GetContact() (ContactInfo, error) {
	var c ContactInfo
	if o.ContactJSON == "" {
		return c, nil
	}
	err := json.Unmarshal([]byte(o.ContactJSON), &c)
	return c, err
}

// SetContact encodes and stores the order's contact info.
func (o *Order) SetContact(c ContactInfo) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	o.ContactJSON = string(b)
	return nil
}

// GetTravelers decodes the order's traveler list.
func (o *Order) GetTravelers() ([]Traveler, error) {
	var ts []Traveler
	if o.TravelersJSON == "" {
		return ts, nil
	}
	err := json.Unmarshal([]byte(o.TravelersJSON), &ts)
	return ts, err
}

// SetTravelers encodes and stores the order's traveler list.
func (o *Order) SetTravelers(ts []Traveler) error {
	b, err := json.Marshal(ts)
	if err != nil {
		return err
	}
	o.TravelersJSON = string(b)
	return nil
}

// GetAudit decodes the order's audit trail.
func (o *Order) GetAudit() ([]AuditEntry, error) {
	var entries []AuditEntry
	if o.AuditJSON == "" {
		return entries, nil
	}
	err := json.Unmarshal([]byte(o.AuditJSON), &entries)
	return entries, err
}

// AddAuditEntry appends an entry to the order's audit trail.
func (o *Order) AddAuditEntry(event, from, to, detail string) error {
	entries, err := o.GetAudit()
	if err != nil {
		return err
	}
	entries = append(entries, AuditEntry{
		Timestamp: time.Now(),
		Event:     event,
		From:      from,
		To:        to,
		Detail:    detail,
	})
	b, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	o.AuditJSON = string(b)
	return nil
}

// RecalculateTotal enforces total == Σ ACTIVE items' price × quantity.
func (o *Order) RecalculateTotal() {
	var total int64
	for _, it := range o.Items {
		if it.Status == ItemActive {
			total += it.PriceNUC * int64(it.Quantity)
		}
	}
	o.TotalNUC = total
}

// IsModifiable reports whether the order can accept reshop (change-flight)
// calls.
func (o *Order) IsModifiable() bool {
	switch o.Status {
	case OrderProposed, OrderPaymentPending, OrderPaid:
		return true
	default:
		return false
	}
}

// IsCancellable reports whether the order can still reach CANCELLED by some
// event (cancel, payment failure or involuntary refund); the cancel event
// itself is legal only from PROPOSED.
func (o *Order) IsCancellable() bool {
	switch o.Status {
	case OrderProposed, OrderPaymentPending, OrderPaid, OrderFulfilled:
		return true
	default:
		return false
	}
}

// IsRefundable reports whether an involuntary refund may be applied.
func (o *Order) IsRefundable() bool {
	return o.Status == OrderPaid || o.Status == OrderFulfilled
}

// ActiveItems returns the items currently counted toward the order total.
func (o *Order) ActiveItems() []OrderItem {
	out := make([]OrderItem, 0, len(o.Items))
	for _, it := range o.Items {
		if it.Status == ItemActive {
			out = append(out, it)
		}
	}
	return out
}

// ItemsReferencingFlight returns active items whose metadata references the
// given flight id — used by disruption handling to find affected items.
func (o *Order) ItemsReferencingFlight(flightID string) []*OrderItem {
	var out []*OrderItem
	for i := range o.Items {
		it := &o.Items[i]
		if it.Status != ItemActive {
			continue
		}
		meta, err := it.GetMetadata()
		if err != nil {
			continue
		}
		if fid, ok := meta["flight_id"].(string); ok && fid == flightID {
			out = append(out, it)
		}
	}
	return out
}

// OrderItem is a purchased line within an Order.
type OrderItem struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	OrderID         string `gorm:"index;not null"`
	ProductID       string
	Kind            ProductKind `gorm:"not null"`
	Code            string
	DisplayName     string
	Description     string
	PriceNUC        int64 `gorm:"not null"`
	Quantity        int   `gorm:"not null;default:1"`
	Status          OrderItemStatus `gorm:"not null;index"`
	RevenueStatus   RevenueStatus   `gorm:"not null"`
	OperatingCarrier string
	NetRateNUC      int64
	CommissionNUC   int64
	MetadataJSON    string `gorm:"type:jsonb"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.Quantity == 0 {
		i.Quantity = 1
	}
	if i.Status == "" {
		i.Status = ItemActive
	}
	if i.RevenueStatus == "" {
		i.RevenueStatus = RevenueUnearned
	}
	return nil
}

// GetMetadata decodes the item's metadata snapshot.
func (i *OrderItem) GetMetadata() (map[string]interface{}, error) {
	if i.MetadataJSON == "" {
		return map[string]interface{}{}, nil
	}
	var m map[string]interface{}
	err := json.Unmarshal([]byte(i.MetadataJSON), &m)
	return m, err
}

// SetMetadata encodes and stores the item's metadata snapshot.
func (i *OrderItem) SetMetadata(m map[string]interface{}) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	i.MetadataJSON = string(b)
	return nil
}
