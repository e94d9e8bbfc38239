package ratelimit

import (
	"net/http"

	"github.com/creatorcart/backend/pkg/metrics"
	"github.com/creatorcart/backend/pkg/models"
	"github.com/labstack/echo/v4"
)

// Middleware rejects requests once their (actor, origin, endpoint) key
// exhausts the limiter. Unauthenticated callers share the "anonymous" actor
// slot, still separated by origin.
func Middleware(limiter Limiter, m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			endpoint := c.Request().Method + " " + c.Path()

			actor := "anonymous"
			if userID, ok := c.Get("user_id").(string); ok && userID != "" {
				actor = userID
			}

			origin := c.RealIP()
			if origin == "" {
				origin = c.Request().RemoteAddr
			}

			key := actor + "|" + origin + "|" + endpoint

			if !limiter.Allow(key) {
				if m != nil {
					m.RateLimitHits.WithLabelValues(endpoint).Inc()
				}
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Error:   "rate_limit_exceeded",
					Message: "Too many requests. Please try again later.",
				})
			}

			return next(c)
		}
	}
}
