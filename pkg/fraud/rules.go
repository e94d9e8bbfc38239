// Package fraud screens completed orders for abuse. Rule evaluation is pure:
// it sees an order plus pre-computed aggregates and produces advisory
// findings. Flags never block order creation or payout generation; they feed
// a human review queue.
package fraud

import (
	"fmt"

	"github.com/creatorcart/backend/pkg/store"
)

// Thresholds the rules evaluate against
const (
	// BurstWindowMinutes is the trailing window for the burst-orders rule
	BurstWindowMinutes = 5

	// BurstOrderThreshold flags a creator with this many completed orders
	// inside the burst window
	BurstOrderThreshold = 5

	// AmountAnomalyMultiplier flags orders above this multiple of the
	// global average completed-order amount
	AmountAnomalyMultiplier = 3.0

	// MinPlausibleAmount flags orders below this amount as card-testing
	// probes (smallest currency unit)
	MinPlausibleAmount = 100

	// SameOriginThreshold flags repeated orders from one network origin
	SameOriginThreshold = 3
)

// Facts is the order under evaluation, reduced to what the rules need
type Facts struct {
	OrderID   string
	CreatorID *string
	BrandID   string
	Amount    int64
	Origin    string
}

// Context carries the aggregates a single order cannot provide by itself.
// Zero values mean "unknown": rules that depend on an aggregate simply do
// not fire when it is missing.
type Context struct {
	// RecentCreatorOrders is the count of the creator's completed orders
	// in the trailing burst window, including this one
	RecentCreatorOrders int

	// GlobalAverageAmount is the average completed-order amount across the
	// platform; nil when no baseline exists yet
	GlobalAverageAmount *float64

	// SameOriginOrders is the count of orders from this order's network
	// origin, including this one; zero when the origin is unknown
	SameOriginOrders int
}

// Finding is one triggered rule's verdict
type Finding struct {
	Rule     string
	Reason   string
	Severity string
}

// Rule inspects an order and returns at most one finding, or nil
type Rule func(f Facts, ctx Context) *Finding

// DefaultRules returns the rule set in evaluation order
func DefaultRules() []Rule {
	return []Rule{
		selfDealingRule,
		burstOrdersRule,
		amountAnomalyRule,
		lowAmountProbeRule,
		sameOriginBurstRule,
	}
}

// Evaluate runs every rule and collects all findings. Rules are independent;
// one firing never short-circuits the rest.
func Evaluate(f Facts, ctx Context) []Finding {
	var findings []Finding
	for _, rule := range DefaultRules() {
		if finding := rule(f, ctx); finding != nil {
			findings = append(findings, *finding)
		}
	}
	return findings
}

// selfDealingRule: the attributed creator owns the product's brand
func selfDealingRule(f Facts, _ Context) *Finding {
	if f.CreatorID == nil || *f.CreatorID != f.BrandID {
		return nil
	}
	return &Finding{
		Rule:     "self_dealing",
		Reason:   "creator is the owner of the purchased product's brand",
		Severity: store.SeverityHigh,
	}
}

// burstOrdersRule: too many completed orders for one creator in the window
func burstOrdersRule(f Facts, ctx Context) *Finding {
	if f.CreatorID == nil || ctx.RecentCreatorOrders < BurstOrderThreshold {
		return nil
	}
	return &Finding{
		Rule: "burst_orders",
		Reason: fmt.Sprintf("%d completed orders for creator in the last %d minutes",
			ctx.RecentCreatorOrders, BurstWindowMinutes),
		Severity: store.SeverityMedium,
	}
}

// amountAnomalyRule: order amount far above the platform baseline
func amountAnomalyRule(f Facts, ctx Context) *Finding {
	if ctx.GlobalAverageAmount == nil || *ctx.GlobalAverageAmount <= 0 {
		// No baseline yet: do not fire rather than guess
		return nil
	}
	if float64(f.Amount) <= AmountAnomalyMultiplier*(*ctx.GlobalAverageAmount) {
		return nil
	}
	return &Finding{
		Rule: "amount_anomaly",
		Reason: fmt.Sprintf("amount %d exceeds %gx the global average of %.0f",
			f.Amount, AmountAnomalyMultiplier, *ctx.GlobalAverageAmount),
		Severity: store.SeverityLow,
	}
}

// lowAmountProbeRule: suspiciously small orders look like card testing
func lowAmountProbeRule(f Facts, _ Context) *Finding {
	if f.Amount >= MinPlausibleAmount {
		return nil
	}
	return &Finding{
		Rule:     "low_amount_probe",
		Reason:   fmt.Sprintf("amount %d is below the %d minimum", f.Amount, MinPlausibleAmount),
		Severity: store.SeverityLow,
	}
}

// sameOriginBurstRule: repeated orders from a single network origin
func sameOriginBurstRule(f Facts, ctx Context) *Finding {
	if f.Origin == "" || ctx.SameOriginOrders < SameOriginThreshold {
		return nil
	}
	return &Finding{
		Rule:     "same_origin_burst",
		Reason:   fmt.Sprintf("%d orders from origin %s", ctx.SameOriginOrders, f.Origin),
		Severity: store.SeverityMedium,
	}
}
