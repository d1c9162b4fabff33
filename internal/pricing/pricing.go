// Package pricing implements continuous pricing: base price adjusted by a
// demand × time × segment multiplier, clamped to a configured range and
// rounded to the nearest minor-unit increment. Intermediate arithmetic uses
// shopspring/decimal, with the final result converted to an integer NUC
// minor unit at the boundary.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
)

// Context is the pricing context a continuous-pricing call is evaluated
// against.
type Context struct {
	Timestamp         time.Time
	IsBundled         bool
	UserSegment       string
	TimeMultiplier    float64 // e.g. advance-purchase / last-minute factor
	SeatUtilisation   float64 // 0..1, drives the demand curve
	SegmentMultiplier float64
	RoundingIncrement int64 // NUC minor-unit increment to round to, e.g. 100
}

// DemandMultiplier implements the quadratic demand curve: 1 + utilisation² × 2.
func DemandMultiplier(utilisation float64) float64 {
	if utilisation < 0 {
		utilisation = 0
	}
	if utilisation > 1 {
		utilisation = 1
	}
	return 1 + utilisation*utilisation*2
}

// Calculate computes demand × time × segment, clamps it to the business
// rules' [min,max] multiplier bounds, applies it to basePriceNUC, and
// rounds to the nearest configured minor-unit increment.
func Calculate(basePriceNUC int64, ctx Context, rules *businessrules.Rules) int64 {
	demand := DemandMultiplier(ctx.SeatUtilisation)
	timeMult := ctx.TimeMultiplier
	if timeMult == 0 {
		timeMult = 1
	}
	segMult := ctx.SegmentMultiplier
	if segMult == 0 {
		segMult = 1
	}

	multiplier := decimal.NewFromFloat(demand).
		Mul(decimal.NewFromFloat(timeMult)).
		Mul(decimal.NewFromFloat(segMult))

	minBound := decimal.NewFromFloat(rules.MinPriceMultiplier)
	maxBound := decimal.NewFromFloat(rules.MaxPriceMultiplier)
	if multiplier.LessThan(minBound) {
		multiplier = minBound
	}
	if multiplier.GreaterThan(maxBound) {
		multiplier = maxBound
	}

	adjusted := decimal.NewFromInt(basePriceNUC).Mul(multiplier)

	increment := ctx.RoundingIncrement
	if increment <= 0 {
		increment = 1
	}
	incrementDec := decimal.NewFromInt(increment)
	rounded := adjusted.Div(incrementDec).Round(0).Mul(incrementDec)

	return rounded.IntPart()
}

// ApplyDiscount reduces priceNUC by fraction (e.g. 0.10 for 10% off),
// rounding down to whole minor units. Used by the Rule Engine's Discount
// action on a bundled product's base price.
func ApplyDiscount(priceNUC int64, fraction float64) int64 {
	if fraction <= 0 {
		return priceNUC
	}
	if fraction > 1 {
		fraction = 1
	}
	discounted := decimal.NewFromInt(priceNUC).Mul(decimal.NewFromFloat(1 - fraction))
	return discounted.Floor().IntPart()
}
