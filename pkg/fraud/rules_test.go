package fraud

import (
	"testing"

	"github.com/creatorcart/backend/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func TestSelfDealingRule(t *testing.T) {
	t.Run("Fires when creator owns the brand", func(t *testing.T) {
		f := Facts{
			OrderID:   "order-1",
			CreatorID: strPtr("user-1"),
			BrandID:   "user-1",
			Amount:    5000,
		}

		finding := selfDealingRule(f, Context{})

		require.NotNil(t, finding)
		assert.Equal(t, "self_dealing", finding.Rule)
		assert.Equal(t, store.SeverityHigh, finding.Severity)
	})

	t.Run("Silent for distinct creator and brand", func(t *testing.T) {
		f := Facts{
			CreatorID: strPtr("user-1"),
			BrandID:   "user-2",
			Amount:    5000,
		}

		assert.Nil(t, selfDealingRule(f, Context{}))
	})

	t.Run("Silent for unattributed orders", func(t *testing.T) {
		f := Facts{BrandID: "user-2", Amount: 5000}

		assert.Nil(t, selfDealingRule(f, Context{}))
	})
}

func TestBurstOrdersRule(t *testing.T) {
	tests := []struct {
		name         string
		creatorID    *string
		recentOrders int
		wantFinding  bool
	}{
		{"Below threshold", strPtr("user-1"), BurstOrderThreshold - 1, false},
		{"At threshold", strPtr("user-1"), BurstOrderThreshold, true},
		{"Above threshold", strPtr("user-1"), BurstOrderThreshold + 3, true},
		{"No creator attribution", nil, BurstOrderThreshold + 3, false},
		{"Missing aggregate", strPtr("user-1"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Facts{CreatorID: tt.creatorID, Amount: 5000}
			ctx := Context{RecentCreatorOrders: tt.recentOrders}

			finding := burstOrdersRule(f, ctx)

			if tt.wantFinding {
				require.NotNil(t, finding)
				assert.Equal(t, "burst_orders", finding.Rule)
				assert.Equal(t, store.SeverityMedium, finding.Severity)
			} else {
				assert.Nil(t, finding)
			}
		})
	}
}

func TestAmountAnomalyRule(t *testing.T) {
	tests := []struct {
		name        string
		amount      int64
		average     *float64
		wantFinding bool
	}{
		{"Just above multiplier", 3001, floatPtr(1000), true},
		{"Exactly at multiplier", 3000, floatPtr(1000), false},
		{"Below multiplier", 2999, floatPtr(1000), false},
		{"No baseline yet", 1000000, nil, false},
		{"Zero baseline", 1000000, floatPtr(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Facts{Amount: tt.amount}
			ctx := Context{GlobalAverageAmount: tt.average}

			finding := amountAnomalyRule(f, ctx)

			if tt.wantFinding {
				require.NotNil(t, finding)
				assert.Equal(t, "amount_anomaly", finding.Rule)
				assert.Equal(t, store.SeverityLow, finding.Severity)
			} else {
				assert.Nil(t, finding)
			}
		})
	}
}

func TestLowAmountProbeRule(t *testing.T) {
	t.Run("Fires below the minimum", func(t *testing.T) {
		finding := lowAmountProbeRule(Facts{Amount: MinPlausibleAmount - 1}, Context{})

		require.NotNil(t, finding)
		assert.Equal(t, "low_amount_probe", finding.Rule)
	})

	t.Run("Silent at the minimum", func(t *testing.T) {
		assert.Nil(t, lowAmountProbeRule(Facts{Amount: MinPlausibleAmount}, Context{}))
	})
}

func TestSameOriginBurstRule(t *testing.T) {
	t.Run("Fires at the threshold", func(t *testing.T) {
		f := Facts{Origin: "203.0.113.7", Amount: 5000}
		ctx := Context{SameOriginOrders: SameOriginThreshold}

		finding := sameOriginBurstRule(f, ctx)

		require.NotNil(t, finding)
		assert.Equal(t, "same_origin_burst", finding.Rule)
	})

	t.Run("Silent without an origin", func(t *testing.T) {
		f := Facts{Amount: 5000}
		ctx := Context{SameOriginOrders: SameOriginThreshold + 5}

		assert.Nil(t, sameOriginBurstRule(f, ctx))
	})

	t.Run("Silent below the threshold", func(t *testing.T) {
		f := Facts{Origin: "203.0.113.7", Amount: 5000}
		ctx := Context{SameOriginOrders: SameOriginThreshold - 1}

		assert.Nil(t, sameOriginBurstRule(f, ctx))
	})
}

func TestEvaluateCollectsAllFindings(t *testing.T) {
	// Self-dealing plus a low amount: two independent rules, two findings
	f := Facts{
		CreatorID: strPtr("user-1"),
		BrandID:   "user-1",
		Amount:    50,
	}

	findings := Evaluate(f, Context{})

	require.Len(t, findings, 2)
	rules := []string{findings[0].Rule, findings[1].Rule}
	assert.Contains(t, rules, "self_dealing")
	assert.Contains(t, rules, "low_amount_probe")
}

func TestEvaluateCleanOrder(t *testing.T) {
	f := Facts{
		CreatorID: strPtr("user-1"),
		BrandID:   "user-2",
		Amount:    5000,
		Origin:    "198.51.100.4",
	}
	ctx := Context{
		RecentCreatorOrders: 1,
		GlobalAverageAmount: floatPtr(4800),
		SameOriginOrders:    1,
	}

	assert.Empty(t, Evaluate(f, ctx))
}
