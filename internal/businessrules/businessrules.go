// Package businessrules holds the runtime-tunable business parameters: hold
// durations, tax/fee rates, pricing clamp bounds and circuit breaker
// thresholds. Defaults are built in; values may be overridden from the
// business_rules table at boot.
package businessrules

import (
	"strconv"
	"time"
)

// Rules is a plain value, not a hidden singleton — callers receive it
// through constructor injection.
type Rules struct {
	TripHoldSeconds    int
	SeatHoldSeconds    int
	TaxRate            float64
	BookingFee         int64 // NUC minor units
	PricingMultiplier  float64
	PricingAdjustment  float64
	SaleStart          *time.Time
	SaleEnd            *time.Time

	MinPriceMultiplier float64
	MaxPriceMultiplier float64

	OfferExpirySeconds int

	PaymentBreakerFailureThreshold uint32
	PaymentBreakerResetTimeout     time.Duration
	NDCBreakerFailureThreshold     uint32
	NDCBreakerResetTimeout         time.Duration
}

// Default returns the built-in defaults used before any override is loaded.
func Default() *Rules {
	return &Rules{
		TripHoldSeconds:    300,
		SeatHoldSeconds:    300,
		TaxRate:            0.075,
		BookingFee:         500,
		PricingMultiplier:  1.0,
		PricingAdjustment:  0.0,
		MinPriceMultiplier: 0.5,
		MaxPriceMultiplier: 3.0,
		OfferExpirySeconds: 15 * 60,

		PaymentBreakerFailureThreshold: 3,
		PaymentBreakerResetTimeout:     30 * time.Second,
		NDCBreakerFailureThreshold:     5,
		NDCBreakerResetTimeout:         60 * time.Second,
	}
}

// OverrideRow is one row of the business_rules table, as loaded at startup.
type OverrideRow struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (OverrideRow) TableName() string { return "business_rules" }

// ApplyOverrides mutates r in place from a set of key/value rows loaded
// from the business_rules table.
func (r *Rules) ApplyOverrides(rows []OverrideRow) {
	for _, row := range rows {
		applyOne(r, row.Key, row.Value)
	}
}

func applyOne(r *Rules, key, value string) {
	switch key {
	case "trip_hold_seconds":
		r.TripHoldSeconds = atoiOr(value, r.TripHoldSeconds)
	case "seat_hold_seconds":
		r.SeatHoldSeconds = atoiOr(value, r.SeatHoldSeconds)
	case "tax_rate":
		r.TaxRate = atofOr(value, r.TaxRate)
	case "booking_fee":
		r.BookingFee = int64(atoiOr(value, int(r.BookingFee)))
	case "pricing_multiplier":
		r.PricingMultiplier = atofOr(value, r.PricingMultiplier)
	case "pricing_adjustment":
		r.PricingAdjustment = atofOr(value, r.PricingAdjustment)
	}
}

func atoiOr(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func atofOr(s string, def float64) float64 {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}
