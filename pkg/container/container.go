package container

import (
	"time"

	"github.com/creatorcart/backend/config"
	"github.com/creatorcart/backend/pkg/affiliates"
	"github.com/creatorcart/backend/pkg/api/handlers"
	"github.com/creatorcart/backend/pkg/cache"
	"github.com/creatorcart/backend/pkg/fraud"
	"github.com/creatorcart/backend/pkg/logger"
	"github.com/creatorcart/backend/pkg/metrics"
	"github.com/creatorcart/backend/pkg/orders"
	"github.com/creatorcart/backend/pkg/payments"
	"github.com/creatorcart/backend/pkg/payouts"
	"github.com/creatorcart/backend/pkg/ratelimit"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/creatorcart/backend/pkg/tournaments"
	"github.com/go-redsync/redsync/v4"
	goredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger logger.Logger

	// Infrastructure
	DB      *store.Client
	Cache   *cache.Client
	Metrics *metrics.Metrics

	// Services
	AffiliateService  *affiliates.Service
	OrderService      *orders.Service
	PaymentService    *payments.Service
	PayoutService     *payouts.Service
	FraudService      *fraud.Service
	TournamentService *tournaments.Service

	// Background fraud evaluation
	FraudWorker *fraud.Worker

	// Rate limiters
	APILimiter   *ratelimit.KeyedLimiter
	FraudLimiter *ratelimit.KeyedLimiter

	// Handlers
	OrderHandler      *handlers.OrderHandler
	PaymentHandler    *handlers.PaymentHandler
	PayoutHandler     *handlers.PayoutHandler
	FraudHandler      *handlers.FraudHandler
	TournamentHandler *handlers.TournamentHandler
	AffiliateHandler  *handlers.AffiliateHandler
}

// New creates and initializes all application dependencies
func New(cfg *config.Config) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger.New(cfg.LogLevel, cfg.LogFormat),
		Metrics: metrics.New(),
	}

	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	c.initServices()
	c.initHandlers()

	c.Logger.Info("Container initialized",
		"environment", cfg.APIEnvironment,
		"database", "connected",
		"cache", "connected")

	return c, nil
}

// initInfrastructure initializes database and cache connections
func (c *Container) initInfrastructure() error {
	var err error

	c.DB, err = store.NewClient(c.Config.DatabaseURL)
	if err != nil {
		c.Logger.Error("Failed to connect to database", "error", err)
		return err
	}

	c.Cache, err = cache.NewClient(c.Config.RedisURL)
	if err != nil {
		c.Logger.Error("Failed to connect to cache", "error", err)
		return err
	}

	return nil
}

// initServices initializes all domain services
func (c *Container) initServices() {
	rs := redsync.New(goredis.NewPool(c.Cache.Redis))

	c.AffiliateService = affiliates.NewService(c.DB)
	c.FraudService = fraud.NewService(c.DB, c.Logger, c.Metrics)
	c.FraudWorker = fraud.NewWorker(c.FraudService, c.Logger, 256)
	c.PayoutService = payouts.NewService(c.DB, rs, c.Logger, c.Metrics)
	c.OrderService = orders.NewService(c.DB, c.AffiliateService, c.FraudWorker, c.Logger, c.Metrics)
	c.TournamentService = tournaments.NewService(c.DB, c.Cache, c.Logger, c.Metrics)

	c.PaymentService = payments.NewService(
		c.OrderService,
		c.PayoutService,
		&payments.StripeConfig{
			SecretKey:     c.Config.StripeSecretKey,
			WebhookSecret: c.Config.StripeWebhookSecret,
		},
		c.Logger,
		c.Metrics,
	)

	c.APILimiter = ratelimit.New(
		c.Config.RateLimitRequestsPerMinute,
		time.Minute,
		c.Config.RateLimitBurst,
	)
	c.FraudLimiter = ratelimit.New(
		c.Config.FraudRateLimitRequests,
		time.Duration(c.Config.FraudRateLimitWindowMin)*time.Minute,
		c.Config.FraudRateLimitRequests,
	)

	c.Logger.Info("Services initialized",
		"order_service", "ready",
		"payout_service", "ready",
		"fraud_service", "ready",
		"tournament_service", "ready")
}

// initHandlers initializes all HTTP handlers
func (c *Container) initHandlers() {
	c.OrderHandler = handlers.NewOrderHandler(c.OrderService)
	c.PaymentHandler = handlers.NewPaymentHandler(c.PaymentService)
	c.PayoutHandler = handlers.NewPayoutHandler(c.PayoutService)
	c.FraudHandler = handlers.NewFraudHandler(c.FraudService)
	c.TournamentHandler = handlers.NewTournamentHandler(c.TournamentService)
	c.AffiliateHandler = handlers.NewAffiliateHandler(c.AffiliateService)

	c.Logger.Info("Handlers initialized")
}

// Close closes all resources (database, cache connections)
func (c *Container) Close() error {
	c.Logger.Info("Shutting down container...")

	if err := c.DB.Close(); err != nil {
		c.Logger.Error("Failed to close database", "error", err)
		return err
	}

	if err := c.Cache.Close(); err != nil {
		c.Logger.Error("Failed to close cache", "error", err)
		return err
	}

	c.Logger.Info("Container shutdown complete")
	return nil
}
