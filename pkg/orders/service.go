// Package orders is the ingestion side of the settlement pipeline. Both
// entry points — direct creation and payment-processor confirmation — uphold
// the same invariant: one real-world payment, one order row.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/creatorcart/backend/pkg/affiliates"
	"github.com/creatorcart/backend/pkg/logger"
	"github.com/creatorcart/backend/pkg/metrics"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrInvalidAmount is returned when the order amount is not positive
	ErrInvalidAmount = errors.New("order amount must be positive")

	// ErrProductNotFound is returned when the referenced product does not exist
	ErrProductNotFound = errors.New("product not found")

	// ErrProductInactive is returned when direct creation targets an
	// inactive product
	ErrProductInactive = errors.New("product is not active")

	// ErrOrderNotFound is returned when an order lookup misses
	ErrOrderNotFound = errors.New("order not found")
)

// FraudEnqueuer hands an order off for asynchronous fraud evaluation.
// Enqueue must never block; a false return means the evaluation was dropped.
type FraudEnqueuer interface {
	Enqueue(orderID string) bool
}

// Service handles order ingestion
type Service struct {
	db         *store.Client
	affiliates *affiliates.Service
	fraudQueue FraudEnqueuer
	logger     logger.Logger
	metrics    *metrics.Metrics
}

// NewService creates a new orders service
func NewService(db *store.Client, aff *affiliates.Service, fq FraudEnqueuer, log logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		db:         db,
		affiliates: aff,
		fraudQueue: fq,
		logger:     log,
		metrics:    m,
	}
}

// CreateInput describes a direct order creation request
type CreateInput struct {
	ProductID     string
	Amount        int64
	AffiliateCode string
	Origin        string
}

// Create writes a completed order on behalf of a creator-class actor.
// An affiliate code, when present, resolves to the attributed creator; fraud
// evaluation is enqueued fire-and-forget after the row is durable.
func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (*store.Order, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, in.Amount)
	}

	var product store.Product
	if err := s.db.DB.WithContext(ctx).First(&product, "id = ?", in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}
	if product.Status != store.ProductStatusActive {
		return nil, ErrProductInactive
	}

	order := store.Order{
		ID:        uuid.NewString(),
		ProductID: product.ID,
		Amount:    in.Amount,
		Status:    store.OrderStatusCompleted,
		Origin:    in.Origin,
		CreatedAt: time.Now(),
	}

	if in.AffiliateCode != "" {
		link, err := s.affiliates.ResolveCode(ctx, in.AffiliateCode)
		if err != nil {
			return nil, err
		}
		order.CreatorID = &link.CreatorID
		order.AffiliateLinkID = &link.ID
	}

	if err := s.db.DB.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created",
		"order_id", order.ID,
		"product_id", order.ProductID,
		"amount", order.Amount,
		"actor_id", actorID)

	if s.metrics != nil {
		s.metrics.OrdersCreated.WithLabelValues("direct").Inc()
	}

	s.enqueueFraudEvaluation(order.ID)

	return &order, nil
}

// CheckoutSessionInput is the structured payload extracted from a confirmed
// payment session
type CheckoutSessionInput struct {
	SessionID     string
	ProductID     string
	Amount        int64
	AffiliateCode string
	CreatorID     *string
	Origin        string
}

// ProcessCheckoutSession converts a confirmed payment session into an order,
// exactly once. Redelivered confirmations find the existing row by session id
// and return it unchanged; the caller cannot tell the two cases apart, which
// is the point.
func (s *Service) ProcessCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*store.Order, error) {
	if in.SessionID == "" {
		return nil, errors.New("payment session id is required")
	}
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, in.Amount)
	}

	// Idempotency-by-lookup first; the unique index on the session id is
	// the backstop for the narrow race below.
	if existing, err := s.findBySessionID(ctx, in.SessionID); err == nil {
		if s.metrics != nil {
			s.metrics.OrdersCreated.WithLabelValues("webhook_duplicate").Inc()
		}
		s.logger.Info("duplicate payment session, reusing order",
			"session_id", in.SessionID,
			"order_id", existing.ID)
		return existing, nil
	} else if !errors.Is(err, ErrOrderNotFound) {
		return nil, err
	}

	var product store.Product
	if err := s.db.DB.WithContext(ctx).First(&product, "id = ?", in.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	sessionID := in.SessionID
	order := store.Order{
		ID:                uuid.NewString(),
		ProductID:         product.ID,
		Amount:            in.Amount,
		Status:            store.OrderStatusCompleted,
		CheckoutSessionID: &sessionID,
		Origin:            in.Origin,
		CreatedAt:         time.Now(),
	}

	switch {
	case in.AffiliateCode != "":
		link, err := s.affiliates.ResolveCode(ctx, in.AffiliateCode)
		if err != nil && !errors.Is(err, affiliates.ErrLinkNotFound) {
			return nil, err
		}
		// An unresolvable code means the attribution is lost, not that
		// the payment is invalid: the order still settles.
		if err == nil {
			order.CreatorID = &link.CreatorID
			order.AffiliateLinkID = &link.ID
		}
	case in.CreatorID != nil && *in.CreatorID != "":
		order.CreatorID = in.CreatorID
	}

	if err := s.db.DB.WithContext(ctx).Create(&order).Error; err != nil {
		// A concurrent delivery may have won the insert; the unique
		// session-id index turns that into a duplicate-key error, which
		// is the idempotency signal.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.findBySessionID(ctx, in.SessionID)
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.logger.Info("order created from payment confirmation",
		"order_id", order.ID,
		"session_id", in.SessionID,
		"amount", order.Amount)

	if s.metrics != nil {
		s.metrics.OrdersCreated.WithLabelValues("webhook").Inc()
	}

	s.enqueueFraudEvaluation(order.ID)

	return &order, nil
}

// GetByID loads a single order
func (s *Service) GetByID(ctx context.Context, orderID string) (*store.Order, error) {
	var order store.Order
	if err := s.db.DB.WithContext(ctx).First(&order, "id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

func (s *Service) findBySessionID(ctx context.Context, sessionID string) (*store.Order, error) {
	var order store.Order
	err := s.db.DB.WithContext(ctx).First(&order, "checkout_session_id = ?", sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to look up order by session id: %w", err)
	}
	return &order, nil
}

// enqueueFraudEvaluation is fire-and-forget: a full queue or absent worker
// never delays or fails the order response.
func (s *Service) enqueueFraudEvaluation(orderID string) {
	if s.fraudQueue == nil {
		return
	}
	s.fraudQueue.Enqueue(orderID)
}
