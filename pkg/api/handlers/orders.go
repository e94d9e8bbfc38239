package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/creatorcart/backend/pkg/affiliates"
	"github.com/creatorcart/backend/pkg/api/errors"
	"github.com/creatorcart/backend/pkg/middleware"
	"github.com/creatorcart/backend/pkg/models"
	"github.com/creatorcart/backend/pkg/orders"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// OrderHandler handles order creation endpoints
type OrderHandler struct {
	orderService *orders.Service
	validator    *validator.Validate
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *orders.Service) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		validator:    validator.New(),
	}
}

// Create handles direct order creation by a creator-class actor
func (h *OrderHandler) Create(c echo.Context) error {
	actorID, ok := c.Get(middleware.ContextUserID).(string)
	if !ok || actorID == "" {
		return errors.UnauthorizedError(c)
	}

	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	order, err := h.orderService.Create(c.Request().Context(), actorID, orders.CreateInput{
		ProductID:     req.ProductID,
		Amount:        req.Amount,
		AffiliateCode: req.AffiliateCode,
		Origin:        c.RealIP(),
	})
	if err != nil {
		switch {
		case stderrors.Is(err, orders.ErrInvalidAmount),
			stderrors.Is(err, orders.ErrProductInactive):
			return errors.ValidationError(c, err)
		case stderrors.Is(err, orders.ErrProductNotFound):
			return errors.NotFoundError(c, "product")
		case stderrors.Is(err, affiliates.ErrLinkNotFound):
			return errors.NotFoundError(c, "affiliate link")
		default:
			return errors.InternalError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

func toOrderResponse(order *store.Order) models.OrderResponse {
	return models.OrderResponse{
		ID:              order.ID,
		ProductID:       order.ProductID,
		CreatorID:       order.CreatorID,
		AffiliateLinkID: order.AffiliateLinkID,
		Amount:          order.Amount,
		Status:          order.Status,
		CreatedAt:       order.CreatedAt,
	}
}
