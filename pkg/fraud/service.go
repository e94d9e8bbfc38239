package fraud

import (
	"context"
	"fmt"
	"time"

	"github.com/creatorcart/backend/pkg/logger"
	"github.com/creatorcart/backend/pkg/metrics"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/google/uuid"
)

// Service builds the evaluation context for an order, runs the rule engine,
// and persists the resulting flags
type Service struct {
	db      *store.Client
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewService creates a new fraud service
func NewService(db *store.Client, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{db: db, logger: log, metrics: m}
}

// EvaluateOrder loads the order, gathers contextual aggregates, runs every
// rule, and inserts one FraudFlag row per finding. The returned flags are the
// rows that were written.
func (s *Service) EvaluateOrder(ctx context.Context, orderID string) ([]store.FraudFlag, error) {
	var order store.Order
	if err := s.db.DB.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	var product store.Product
	if err := s.db.DB.WithContext(ctx).First(&product, "id = ?", order.ProductID).Error; err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", order.ProductID, err)
	}

	facts := Facts{
		OrderID:   order.ID,
		CreatorID: order.CreatorID,
		BrandID:   product.BrandID,
		Amount:    order.Amount,
		Origin:    order.Origin,
	}

	evalCtx, err := s.buildContext(ctx, order)
	if err != nil {
		return nil, err
	}

	findings := Evaluate(facts, evalCtx)
	if len(findings) == 0 {
		return nil, nil
	}

	flags := make([]store.FraudFlag, 0, len(findings))
	for _, finding := range findings {
		flag := store.FraudFlag{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			CreatorID: order.CreatorID,
			BrandID:   &product.BrandID,
			Reason:    finding.Reason,
			Severity:  finding.Severity,
			CreatedAt: time.Now(),
		}
		if err := s.db.DB.WithContext(ctx).Create(&flag).Error; err != nil {
			return flags, fmt.Errorf("failed to insert fraud flag: %w", err)
		}
		flags = append(flags, flag)

		s.logger.Warn("fraud flag raised",
			"order_id", order.ID,
			"rule", finding.Rule,
			"severity", finding.Severity)
	}

	if s.metrics != nil {
		s.metrics.FraudFlagsRaised.Add(float64(len(flags)))
	}

	return flags, nil
}

// buildContext computes the aggregates the rules need. A missing aggregate
// is left at its zero value so the dependent rule stays quiet.
func (s *Service) buildContext(ctx context.Context, order store.Order) (Context, error) {
	var evalCtx Context

	if order.CreatorID != nil {
		windowStart := order.CreatedAt.Add(-BurstWindowMinutes * time.Minute)

		var count int64
		err := s.db.DB.WithContext(ctx).
			Model(&store.Order{}).
			Where("creator_id = ? AND status = ? AND created_at >= ?",
				*order.CreatorID, store.OrderStatusCompleted, windowStart).
			Count(&count).Error
		if err != nil {
			return evalCtx, fmt.Errorf("failed to count recent creator orders: %w", err)
		}
		evalCtx.RecentCreatorOrders = int(count)
	}

	// Global average excludes the order under evaluation so a platform's
	// very first order is never compared against itself.
	var avg *float64
	err := s.db.DB.WithContext(ctx).
		Model(&store.Order{}).
		Where("status = ? AND id <> ?", store.OrderStatusCompleted, order.ID).
		Select("AVG(amount)").
		Scan(&avg).Error
	if err != nil {
		return evalCtx, fmt.Errorf("failed to compute global average amount: %w", err)
	}
	evalCtx.GlobalAverageAmount = avg

	if order.Origin != "" {
		var count int64
		err := s.db.DB.WithContext(ctx).
			Model(&store.Order{}).
			Where("origin = ?", order.Origin).
			Count(&count).Error
		if err != nil {
			return evalCtx, fmt.Errorf("failed to count same-origin orders: %w", err)
		}
		evalCtx.SameOriginOrders = int(count)
	}

	return evalCtx, nil
}

// ReviewFlag records a human reviewer's verdict on a flag. Reviewed and Note
// are the only fields ever mutated after insertion.
func (s *Service) ReviewFlag(ctx context.Context, flagID string, reviewed bool, note string) (*store.FraudFlag, error) {
	var flag store.FraudFlag
	if err := s.db.DB.WithContext(ctx).First(&flag, "id = ?", flagID).Error; err != nil {
		return nil, fmt.Errorf("failed to load fraud flag %s: %w", flagID, err)
	}

	flag.Reviewed = reviewed
	flag.Note = note

	err := s.db.DB.WithContext(ctx).
		Model(&store.FraudFlag{}).
		Where("id = ?", flagID).
		Updates(map[string]interface{}{"reviewed": reviewed, "note": note}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update fraud flag: %w", err)
	}

	return &flag, nil
}

// ListFlags returns flags for review, newest first, optionally only
// unreviewed ones
func (s *Service) ListFlags(ctx context.Context, unreviewedOnly bool, limit int) ([]store.FraudFlag, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.db.DB.WithContext(ctx).Model(&store.FraudFlag{}).Order("created_at DESC").Limit(limit)
	if unreviewedOnly {
		query = query.Where("reviewed = ?", false)
	}

	var flags []store.FraudFlag
	if err := query.Find(&flags).Error; err != nil {
		return nil, fmt.Errorf("failed to list fraud flags: %w", err)
	}
	return flags, nil
}
