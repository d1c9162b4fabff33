package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

func TestEvaluate_BundlesAndDiscountsCombineByMax(t *testing.T) {
	engine := NewEngine([]Rule{
		{
			ID:       "low-priority-bag-discount",
			Priority: 1,
			Conditions: []Condition{{Field: "segment", Operator: "eq", Value: "leisure"}},
			Actions: []Action{
				{Kind: ActionBundle, ProductKind: models.ProductBag},
				{Kind: ActionDiscount, ProductKind: models.ProductBag, DiscountFraction: 0.10},
			},
		},
		{
			ID:       "high-priority-bag-discount",
			Priority: 10,
			Conditions: []Condition{{Field: "segment", Operator: "eq", Value: "leisure"}},
			Actions: []Action{
				{Kind: ActionDiscount, ProductKind: models.ProductBag, DiscountFraction: 0.25},
			},
		},
	})

	result := engine.Evaluate(Context{Segment: "leisure"})

	assert.Equal(t, []models.ProductKind{models.ProductBag}, result.BundleKinds)
	assert.Equal(t, 0.25, result.Discounts[models.ProductBag])
}

func TestEvaluate_ConditionMismatchSkipsRule(t *testing.T) {
	engine := NewEngine([]Rule{
		{
			ID:         "corporate-only",
			Priority:   5,
			Conditions: []Condition{{Field: "segment", Operator: "eq", Value: "corporate"}},
			Actions:    []Action{{Kind: ActionBundle, ProductKind: models.ProductLounge}},
		},
	})

	result := engine.Evaluate(Context{Segment: "leisure"})

	assert.Empty(t, result.BundleKinds)
}

func TestEvaluate_MinPassengersCondition(t *testing.T) {
	engine := NewEngine([]Rule{
		{
			ID:         "group-bundle",
			Priority:   1,
			Conditions: []Condition{{Field: "min_passengers", Operator: "gte", Value: 3}},
			Actions:    []Action{{Kind: ActionBundle, ProductKind: models.ProductMeal}},
		},
	})

	assert.Empty(t, engine.Evaluate(Context{PassengerCount: 2}).BundleKinds)
	assert.Equal(t, []models.ProductKind{models.ProductMeal}, engine.Evaluate(Context{PassengerCount: 3}).BundleKinds)
}

func TestEvaluate_AddMetadata(t *testing.T) {
	engine := NewEngine([]Rule{
		{
			ID:         "tag-origin",
			Priority:   1,
			Conditions: nil,
			Actions:    []Action{{Kind: ActionAddMetadata, MetadataKey: "channel", MetadataValue: "mobile"}},
		},
	})

	result := engine.Evaluate(Context{})

	assert.Equal(t, "mobile", result.Metadata["channel"])
}
