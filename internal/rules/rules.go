// Package rules implements the bundling/discount Rule Engine used by the
// Offer Pipeline: an ordered list of rules, each a conjunction of
// conditions evaluated short-circuit by descending priority, producing
// Bundle, Discount and AddMetadata actions.
package rules

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ThinkGrid-Labs/altis-engine/internal/models"
)

// Condition is one clause in a rule's conjunction.
type Condition struct {
	Field    string      `yaml:"field"` // segment, origin, destination, min_passengers, price_range
	Operator string      `yaml:"operator"` // not consulted: each Field has a fixed comparison
	Value    interface{} `yaml:"value"`
}

// ActionKind enumerates the action vocabulary the rule engine allows.
type ActionKind string

const (
	ActionBundle      ActionKind = "bundle"
	ActionDiscount    ActionKind = "discount"
	ActionAddMetadata ActionKind = "add_metadata"
)

// Action is one effect applied when a rule's conditions all hold.
type Action struct {
	Kind             ActionKind         `yaml:"kind"`
	ProductKind      models.ProductKind `yaml:"product_kind,omitempty"`
	DiscountFraction float64            `yaml:"discount_fraction,omitempty"`
	MetadataKey      string             `yaml:"metadata_key,omitempty"`
	MetadataValue    interface{}        `yaml:"metadata_value,omitempty"`
}

// Rule is an ordered (by Priority, descending) conjunction of Conditions
// with a list of Actions applied when all conditions hold.
type Rule struct {
	ID         string      `yaml:"id"`
	Priority   int         `yaml:"priority"`
	Conditions []Condition `yaml:"conditions"`
	Actions    []Action    `yaml:"actions"`
}

// seedFile is the on-disk shape of a rule set: a plain list under a single
// top-level key, so the file reads as a reviewable table of rules rather
// than a bare YAML array.
type seedFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadSeed reads a rule set from a YAML file at boot. Business staff edit
// this file to add bundling/discount rules without a deploy.
func LoadSeed(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: failed to read seed file %s: %w", path, err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("rules: failed to parse seed file %s: %w", path, err)
	}
	return seed.Rules, nil
}

// Context is the subset of the search context and offer-construction state
// rules may condition on.
type Context struct {
	Segment        string
	Origin         string
	Destination    string
	PassengerCount int
	BasePriceNUC   int64
}

// Result is the accumulated effect of evaluating every matching rule.
type Result struct {
	BundleKinds []models.ProductKind
	Discounts   map[models.ProductKind]float64 // combined by maximum
	Metadata    map[string]interface{}
}

// Engine holds an ordered rule set, shared by every offer strategy.
type Engine struct {
	rules []Rule
}

// NewEngine sorts rules by descending priority once, at construction, so
// Evaluate never has to re-sort per call.
func NewEngine(rules []Rule) *Engine {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority > sorted[j].Priority })
	return &Engine{rules: sorted}
}

// Evaluate runs every rule against ctx in priority order. Each rule's
// conjunction is evaluated short-circuit: the first failing condition stops
// that rule's evaluation immediately. Matching rules' actions accumulate;
// discounts on the same product kind combine by maximum, never compound.
func (e *Engine) Evaluate(ctx Context) Result {
	result := Result{
		Discounts: map[models.ProductKind]float64{},
		Metadata:  map[string]interface{}{},
	}
	bundled := map[models.ProductKind]bool{}

	for _, rule := range e.rules {
		if !conditionsHold(rule.Conditions, ctx) {
			continue
		}
		for _, action := range rule.Actions {
			switch action.Kind {
			case ActionBundle:
				if !bundled[action.ProductKind] {
					bundled[action.ProductKind] = true
					result.BundleKinds = append(result.BundleKinds, action.ProductKind)
				}
			case ActionDiscount:
				if current, ok := result.Discounts[action.ProductKind]; !ok || action.DiscountFraction > current {
					result.Discounts[action.ProductKind] = action.DiscountFraction
				}
			case ActionAddMetadata:
				result.Metadata[action.MetadataKey] = action.MetadataValue
			}
		}
	}
	return result
}

// conditionsHold evaluates a rule's conjunction short-circuit: the first
// condition that fails stops evaluation and the rule does not match.
func conditionsHold(conditions []Condition, ctx Context) bool {
	for _, cond := range conditions {
		if !conditionHolds(cond, ctx) {
			return false
		}
	}
	return true
}

func conditionHolds(cond Condition, ctx Context) bool {
	switch cond.Field {
	case "segment":
		return equalString(cond, ctx.Segment)
	case "origin":
		return equalString(cond, ctx.Origin)
	case "destination":
		return equalString(cond, ctx.Destination)
	case "min_passengers":
		min, ok := toInt(cond.Value)
		return ok && ctx.PassengerCount >= min
	case "price_range":
		lo, hi, ok := priceBounds(cond.Value)
		return ok && ctx.BasePriceNUC >= lo && ctx.BasePriceNUC <= hi
	default:
		return false
	}
}

func equalString(cond Condition, actual string) bool {
	v, ok := cond.Value.(string)
	return ok && v == actual
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}

// priceBounds extracts a [low, high] pair from a price_range condition's
// value. YAML sequences decode into []interface{}, never a fixed-size array,
// so a two-element slice is the only shape worth accepting.
func priceBounds(v interface{}) (int64, int64, bool) {
	seq, ok := v.([]interface{})
	if !ok || len(seq) != 2 {
		return 0, 0, false
	}
	lo, ok := toInt64(seq[0])
	if !ok {
		return 0, 0, false
	}
	hi, ok := toInt64(seq[1])
	if !ok {
		return 0, 0, false
	}
	return lo, hi, true
}
