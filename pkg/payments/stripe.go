// Package payments is the payment-processor intake. It verifies Stripe
// webhook signatures, extracts the settlement payload from completed checkout
// sessions, and hands off to order ingestion and payout generation. Both
// downstream calls are idempotent, so Stripe redeliveries are harmless.
package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/creatorcart/backend/pkg/logger"
	"github.com/creatorcart/backend/pkg/metrics"
	"github.com/creatorcart/backend/pkg/orders"
	"github.com/creatorcart/backend/pkg/payouts"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

var (
	// ErrInvalidSignature is returned when webhook signature verification fails
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrMissingField is returned when a required payload field is absent
	ErrMissingField = errors.New("required webhook field missing")
)

// StripeConfig holds Stripe configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// Service handles Stripe payment events
type Service struct {
	orders  *orders.Service
	payouts *payouts.Service
	config  *StripeConfig
	logger  logger.Logger
	metrics *metrics.Metrics
}

// NewService creates a new payments service
func NewService(orderService *orders.Service, payoutService *payouts.Service, config *StripeConfig, log logger.Logger, m *metrics.Metrics) *Service {
	stripe.Key = config.SecretKey

	return &Service{
		orders:  orderService,
		payouts: payoutService,
		config:  config,
		logger:  log,
		metrics: m,
	}
}

// HandleWebhook verifies and processes a Stripe webhook delivery
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.config.WebhookSecret)
	if err != nil {
		if s.metrics != nil {
			s.metrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		}
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	s.logger.Info("stripe webhook received", "type", event.Type)

	switch event.Type {
	case "checkout.session.completed":
		return s.handleCheckoutCompleted(ctx, event)
	default:
		s.logger.Debug("unhandled webhook event type", "type", event.Type)
		if s.metrics != nil {
			s.metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		}
	}

	return nil
}

// handleCheckoutCompleted turns a confirmed checkout session into a durable
// order plus its payout. Returning an error makes Stripe redeliver, which is
// safe: the session id dedupes the order and the order id dedupes the payout.
func (s *Service) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return fmt.Errorf("failed to unmarshal checkout session: %w", err)
	}

	productID, ok := sess.Metadata["product_id"]
	if !ok || productID == "" {
		return fmt.Errorf("%w: product_id", ErrMissingField)
	}
	if sess.ID == "" {
		return fmt.Errorf("%w: session id", ErrMissingField)
	}

	input := orders.CheckoutSessionInput{
		SessionID:     sess.ID,
		ProductID:     productID,
		Amount:        sess.AmountTotal,
		AffiliateCode: sess.Metadata["affiliate_code"],
	}
	if creatorID := sess.Metadata["creator_id"]; creatorID != "" {
		input.CreatorID = &creatorID
	}

	order, err := s.orders.ProcessCheckoutSession(ctx, input)
	if err != nil {
		if s.metrics != nil {
			s.metrics.WebhookEvents.WithLabelValues("checkout.session.completed", "rejected").Inc()
		}
		return fmt.Errorf("failed to process checkout session %s: %w", sess.ID, err)
	}

	s.checkRateDrift(ctx, sess, order)

	// Settlement rides the same delivery. GenerateForOrder skips silently
	// when a previous delivery already produced the payout.
	if _, err := s.payouts.GenerateForOrder(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to generate payout for order %s: %w", order.ID, err)
	}

	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues("checkout.session.completed", "processed").Inc()
	}

	return nil
}

// checkRateDrift compares the rates frozen into the checkout metadata with
// the product's current rates. Settlement always uses the product's rates;
// drift only means the product was re-configured between checkout and
// confirmation, which is worth a warning.
func (s *Service) checkRateDrift(ctx context.Context, sess stripe.CheckoutSession, order *store.Order) {
	metaCreator, okCreator := parseRate(sess.Metadata["creator_share_rate"])
	metaPlatform, okPlatform := parseRate(sess.Metadata["platform_take_rate"])
	if !okCreator && !okPlatform {
		return
	}

	product, err := s.payouts.ProductForOrder(ctx, order)
	if err != nil {
		return
	}

	if okCreator && product.CreatorShareRate != nil && *product.CreatorShareRate != metaCreator {
		s.logger.Warn("creator rate drift between checkout and settlement",
			"order_id", order.ID,
			"checkout_rate", metaCreator,
			"product_rate", *product.CreatorShareRate)
	}
	if okPlatform && product.PlatformTakeRate != nil && *product.PlatformTakeRate != metaPlatform {
		s.logger.Warn("platform rate drift between checkout and settlement",
			"order_id", order.ID,
			"checkout_rate", metaPlatform,
			"product_rate", *product.PlatformTakeRate)
	}
}

func parseRate(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate < 0 || rate > 1 {
		return 0, false
	}
	return rate, true
}
