package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/creatorcart/backend/pkg/api/errors"
	"github.com/creatorcart/backend/pkg/models"
	"github.com/creatorcart/backend/pkg/payouts"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/labstack/echo/v4"
)

// PayoutHandler handles administrative payout endpoints
type PayoutHandler struct {
	payoutService *payouts.Service
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(payoutService *payouts.Service) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// Generate runs payout generation: for one order when order_id is given,
// otherwise for every completed order still lacking a payout
func (h *PayoutHandler) Generate(c echo.Context) error {
	var req models.GeneratePayoutsRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx := c.Request().Context()

	if req.OrderID != "" {
		payout, err := h.payoutService.GenerateForOrder(ctx, req.OrderID)
		if err != nil {
			switch {
			case stderrors.Is(err, payouts.ErrOrderNotFound):
				return errors.NotFoundError(c, "order")
			case stderrors.Is(err, payouts.ErrOrderNotCompleted):
				return errors.ValidationError(c, err)
			default:
				return errors.InternalError(c, err)
			}
		}
		return c.JSON(http.StatusOK, toPayoutResponse(payout))
	}

	result, err := h.payoutService.GenerateBatch(ctx)
	if err != nil {
		if stderrors.Is(err, payouts.ErrBatchInProgress) {
			return errors.ConflictError(c, "A payout batch run is already in progress")
		}
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, result)
}

// List returns payouts filtered by status (default pending)
func (h *PayoutHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = store.PayoutStatusPending
	}
	if status != store.PayoutStatusPending && status != store.PayoutStatusPaid {
		return errors.ValidationError(c, stderrors.New("invalid payout status"))
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return errors.ValidationError(c, err)
		}
		limit = parsed
	}

	rows, err := h.payoutService.ListByStatus(c.Request().Context(), status, limit)
	if err != nil {
		return errors.InternalError(c, err)
	}

	out := make([]models.PayoutResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toPayoutResponse(&rows[i]))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"payouts": out})
}

func toPayoutResponse(payout *store.Payout) models.PayoutResponse {
	return models.PayoutResponse{
		ID:             payout.ID,
		OrderID:        payout.OrderID,
		CreatorID:      payout.CreatorID,
		BrandID:        payout.BrandID,
		GrossAmount:    payout.GrossAmount,
		CreatorAmount:  payout.CreatorAmount,
		PlatformAmount: payout.PlatformAmount,
		BrandAmount:    payout.BrandAmount,
		Status:         payout.Status,
		CreatedAt:      payout.CreatedAt,
	}
}
