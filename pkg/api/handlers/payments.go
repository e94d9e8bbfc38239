package handlers

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/creatorcart/backend/pkg/api/errors"
	"github.com/creatorcart/backend/pkg/models"
	"github.com/creatorcart/backend/pkg/payments"
	"github.com/labstack/echo/v4"
)

// PaymentHandler handles payment-processor webhooks
type PaymentHandler struct {
	paymentService *payments.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *payments.Service) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// HandleWebhook processes a Stripe webhook delivery. Signature failures are
// validation errors; anything downstream returns 500 so Stripe redelivers.
func (h *PaymentHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_body",
			Message: "Failed to read request body",
		})
	}

	signature := c.Request().Header.Get("Stripe-Signature")
	if signature == "" {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: "missing_signature",
		})
	}

	if err := h.paymentService.HandleWebhook(c.Request().Context(), body, signature); err != nil {
		if stderrors.Is(err, payments.ErrInvalidSignature) || stderrors.Is(err, payments.ErrMissingField) {
			return errors.ValidationError(c, err)
		}
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, models.SuccessResponse{
		Success: true,
		Message: "Webhook processed successfully",
	})
}
