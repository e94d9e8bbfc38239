// Package payouts converts completed orders into settlement records. Payout
// generation is idempotent by construction: the order-id unique index allows
// at most one payout per order, and an existing payout is a silent skip, not
// an error, so retried webhooks and repeated batch runs are safe.
package payouts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creatorcart/backend/pkg/logger"
	"github.com/creatorcart/backend/pkg/metrics"
	"github.com/creatorcart/backend/pkg/revshare"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/go-redsync/redsync/v4"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound is returned when the order does not exist
	ErrOrderNotFound = errors.New("order not found")

	// ErrOrderNotCompleted is returned when payout generation targets an
	// order that never completed
	ErrOrderNotCompleted = errors.New("order is not completed")

	// ErrBatchInProgress is returned when another process holds the batch lock
	ErrBatchInProgress = errors.New("a payout batch run is already in progress")
)

// batchLockName is the distributed mutex serializing batch runs across processes
const batchLockName = "payouts:batch"

// Service generates payout records from completed orders
type Service struct {
	db      *store.Client
	rs      *redsync.Redsync
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewService creates a new payouts service. rs may be nil, in which case
// batch runs are only serialized within this process by the store's
// uniqueness constraint.
func NewService(db *store.Client, rs *redsync.Redsync, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{db: db, rs: rs, logger: log, metrics: m}
}

// BatchResult summarizes one batch run
type BatchResult struct {
	Considered int `json:"considered"`
	Generated  int `json:"generated"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// GenerateForOrder produces the payout for one completed order. When a
// payout already exists the existing row is returned unchanged.
func (s *Service) GenerateForOrder(ctx context.Context, orderID string) (*store.Payout, error) {
	var existing store.Payout
	err := s.db.DB.WithContext(ctx).First(&existing, "order_id = ?", orderID).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up existing payout: %w", err)
	}

	var order store.Order
	if err := s.db.DB.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	if order.Status != store.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order %s is %s", ErrOrderNotCompleted, order.ID, order.Status)
	}

	return s.generate(ctx, order)
}

// GenerateBatch settles every completed order that has no payout yet.
// A distributed lock keeps concurrent batch runs from duplicating work;
// individual order failures are logged and counted, not fatal.
func (s *Service) GenerateBatch(ctx context.Context) (*BatchResult, error) {
	if s.rs != nil {
		mutex := s.rs.NewMutex(batchLockName, redsync.WithExpiry(2*time.Minute))
		if err := mutex.LockContext(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBatchInProgress, err)
		}
		defer func() {
			if _, err := mutex.UnlockContext(ctx); err != nil {
				s.logger.Warn("failed to release payout batch lock", "error", err)
			}
		}()
	}

	// Exclude already-settled orders before computing any splits
	var pending []store.Order
	err := s.db.DB.WithContext(ctx).
		Where("status = ?", store.OrderStatusCompleted).
		Where("id NOT IN (?)", s.db.DB.Model(&store.Payout{}).Select("order_id")).
		Order("created_at ASC").
		Find(&pending).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list unsettled orders: %w", err)
	}

	result := &BatchResult{Considered: len(pending)}

	for _, order := range pending {
		if _, err := s.generate(ctx, order); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				result.Skipped++
				continue
			}
			result.Failed++
			s.logger.Error("failed to generate payout",
				"order_id", order.ID, "error", err)
			continue
		}
		result.Generated++
	}

	s.logger.Info("payout batch complete",
		"considered", result.Considered,
		"generated", result.Generated,
		"skipped", result.Skipped,
		"failed", result.Failed)

	return result, nil
}

// ListByStatus returns payouts in a given status, newest first
func (s *Service) ListByStatus(ctx context.Context, status string, limit int) ([]store.Payout, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []store.Payout
	err := s.db.DB.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return rows, nil
}

// ProductForOrder loads the product an order settled against
func (s *Service) ProductForOrder(ctx context.Context, order *store.Order) (*store.Product, error) {
	var product store.Product
	if err := s.db.DB.WithContext(ctx).First(&product, "id = ?", order.ProductID).Error; err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", order.ProductID, err)
	}
	return &product, nil
}

// generate computes the split and inserts the payout row. An order without
// creator attribution settles with a zero creator share: there is nobody to
// pay it to, so the brand keeps it.
func (s *Service) generate(ctx context.Context, order store.Order) (*store.Payout, error) {
	product, err := s.ProductForOrder(ctx, &order)
	if err != nil {
		return nil, err
	}

	var breakdown revshare.Breakdown
	if order.CreatorID == nil {
		zero := 0.0
		breakdown, err = revshare.SplitWithDefaults(order.Amount, &zero, product.PlatformTakeRate)
	} else {
		breakdown, err = revshare.SplitWithDefaults(order.Amount, product.CreatorShareRate, product.PlatformTakeRate)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to split order %s: %w", order.ID, err)
	}

	payout := store.Payout{
		ID:             uuid.NewString(),
		OrderID:        order.ID,
		CreatorID:      order.CreatorID,
		BrandID:        product.BrandID,
		GrossAmount:    breakdown.GrossAmount,
		CreatorAmount:  breakdown.CreatorAmount,
		PlatformAmount: breakdown.PlatformAmount,
		BrandAmount:    breakdown.BrandAmount,
		Status:         store.PayoutStatusPending,
		CreatedAt:      time.Now(),
	}

	if err := s.db.DB.WithContext(ctx).Create(&payout).Error; err != nil {
		// Lost a race with another generator: the existing row wins
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var existing store.Payout
			if lookupErr := s.db.DB.WithContext(ctx).First(&existing, "order_id = ?", order.ID).Error; lookupErr == nil {
				return &existing, nil
			}
			return nil, err
		}
		return nil, fmt.Errorf("failed to insert payout: %w", err)
	}

	s.logger.Info("payout generated",
		"payout_id", payout.ID,
		"order_id", order.ID,
		"creator_amount", payout.CreatorAmount,
		"platform_amount", payout.PlatformAmount,
		"brand_amount", payout.BrandAmount)

	if s.metrics != nil {
		s.metrics.PayoutsGenerated.Inc()
	}

	return &payout, nil
}
