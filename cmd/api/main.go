package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creatorcart/backend/config"
	"github.com/creatorcart/backend/pkg/container"
	"github.com/creatorcart/backend/pkg/jobs"
	custommiddleware "github.com/creatorcart/backend/pkg/middleware"
	"github.com/creatorcart/backend/pkg/ratelimit"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize all application dependencies
	c, err := container.New(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}
	defer c.Close()

	// Background fraud evaluation worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	go c.FraudWorker.Run(workerCtx)

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Webhook traffic gets its own, higher limit
	webhookLimiter := ratelimit.New(100, time.Minute, 20)

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(c.Metrics.Middleware())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowCredentials: true,
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
		},
	}))

	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())

	// Health check endpoints (public)
	e.GET("/", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, map[string]any{
			"name":        "CreatorCart API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(ec echo.Context) error {
		if err := c.DB.Ping(ec.Request().Context()); err != nil {
			return ec.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}

		if err := c.Cache.Ping(ec.Request().Context()); err != nil {
			return ec.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}

		return ec.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	// Prometheus metrics endpoint (public)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Initialize cron manager for payout sweeps and tournament transitions
	cronManager := jobs.NewCronManager(c.PayoutService, c.TournamentService, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()
	log.Printf("✅ Cron jobs started")

	// API v1 routes
	v1 := e.Group("/api/v1")
	v1.Use(ratelimit.Middleware(c.APILimiter, c.Metrics))

	v1.GET("/ping", func(ec echo.Context) error {
		return ec.JSON(http.StatusOK, map[string]string{
			"message": "pong",
		})
	})

	// Order ingestion (authenticated creators)
	ordersGroup := v1.Group("/orders")
	ordersGroup.Use(custommiddleware.JWT(cfg.JWTSecret))
	ordersGroup.Use(custommiddleware.RequireRole(store.RoleCreator, store.RoleAdmin))
	{
		ordersGroup.POST("", c.OrderHandler.Create)
	}

	// Affiliate links (authenticated creators)
	affiliatesGroup := v1.Group("/affiliate-links")
	affiliatesGroup.Use(custommiddleware.JWT(cfg.JWTSecret))
	affiliatesGroup.Use(custommiddleware.RequireRole(store.RoleCreator))
	{
		affiliatesGroup.POST("", c.AffiliateHandler.CreateLink)
		affiliatesGroup.GET("", c.AffiliateHandler.ListLinks)
	}

	// Stripe webhook, signature-verified inside the handler
	v1.POST("/webhook/stripe", c.PaymentHandler.HandleWebhook, ratelimit.Middleware(webhookLimiter, c.Metrics))

	// Fraud evaluation trigger: internal callers or admins, tight limit
	fraudGroup := v1.Group("/fraud")
	{
		fraudGroup.POST("/evaluate", c.FraudHandler.Evaluate,
			custommiddleware.InternalOrRole(cfg.InternalTaskToken, cfg.JWTSecret, store.RoleAdmin),
			ratelimit.Middleware(c.FraudLimiter, c.Metrics))

		flagsGroup := fraudGroup.Group("/flags")
		flagsGroup.Use(custommiddleware.JWT(cfg.JWTSecret))
		flagsGroup.Use(custommiddleware.RequireRole(store.RoleAdmin))
		{
			flagsGroup.GET("", c.FraudHandler.ListFlags)
			flagsGroup.POST("/:id/review", c.FraudHandler.ReviewFlag)
		}
	}

	// Tournaments (public; my_rank appears for authenticated creators)
	tournamentsGroup := v1.Group("/tournaments")
	tournamentsGroup.Use(custommiddleware.OptionalJWT(cfg.JWTSecret))
	{
		tournamentsGroup.GET("", c.TournamentHandler.List)
		tournamentsGroup.GET("/:slug", c.TournamentHandler.Get)
		tournamentsGroup.GET("/:slug/rankings", c.TournamentHandler.Rankings)
	}

	// Admin routes
	adminGroup := v1.Group("/admin")
	adminGroup.Use(custommiddleware.JWT(cfg.JWTSecret))
	adminGroup.Use(custommiddleware.RequireRole(store.RoleAdmin))
	{
		adminGroup.POST("/payouts/generate", c.PayoutHandler.Generate)
		adminGroup.GET("/payouts", c.PayoutHandler.List)
	}

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 CreatorCart API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d)", cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	log.Printf("⏰ Cron jobs: hourly payout sweep, per-minute tournament transitions")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	stopWorker()
	log.Println("✅ Background jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
