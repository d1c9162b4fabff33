package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
)

func TestDemandMultiplier_ClampsAndCurves(t *testing.T) {
	assert.Equal(t, 1.0, DemandMultiplier(0))
	assert.Equal(t, 3.0, DemandMultiplier(1))
	assert.InDelta(t, 1.5, DemandMultiplier(0.5), 0.0001)
	assert.Equal(t, 1.0, DemandMultiplier(-1))
	assert.Equal(t, 3.0, DemandMultiplier(2))
}

func TestCalculate_ClampsToConfiguredBounds(t *testing.T) {
	rules := businessrules.Default()
	rules.MinPriceMultiplier = 0.5
	rules.MaxPriceMultiplier = 3.0

	price := Calculate(10000, Context{
		SeatUtilisation:   1.0, // demand multiplier 3.0
		TimeMultiplier:    2.0, // would push multiplier to 6.0 without clamp
		SegmentMultiplier: 1.0,
		RoundingIncrement: 100,
	}, rules)

	assert.Equal(t, int64(30000), price)
}

func TestCalculate_RoundsToIncrement(t *testing.T) {
	rules := businessrules.Default()
	price := Calculate(9999, Context{
		SeatUtilisation:   0,
		TimeMultiplier:    1,
		SegmentMultiplier: 1,
		RoundingIncrement: 500,
	}, rules)

	assert.Equal(t, int64(0), price%500)
}

func TestApplyDiscount(t *testing.T) {
	assert.Equal(t, int64(9000), ApplyDiscount(10000, 0.10))
	assert.Equal(t, int64(10000), ApplyDiscount(10000, 0))
	assert.Equal(t, int64(0), ApplyDiscount(10000, 1.5))
}
