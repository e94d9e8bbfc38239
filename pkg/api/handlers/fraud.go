package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/creatorcart/backend/pkg/api/errors"
	"github.com/creatorcart/backend/pkg/fraud"
	"github.com/creatorcart/backend/pkg/models"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// FraudHandler handles fraud evaluation and review endpoints
type FraudHandler struct {
	fraudService *fraud.Service
	validator    *validator.Validate
}

// NewFraudHandler creates a new fraud handler
func NewFraudHandler(fraudService *fraud.Service) *FraudHandler {
	return &FraudHandler{
		fraudService: fraudService,
		validator:    validator.New(),
	}
}

// Evaluate runs the rule engine against one order and persists any flags.
// Reached only through the internal-or-admin middleware and the rate limiter.
func (h *FraudHandler) Evaluate(c echo.Context) error {
	var req models.EvaluateFraudRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	flags, err := h.fraudService.EvaluateOrder(c.Request().Context(), req.OrderID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFoundError(c, "order")
		}
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"order_id": req.OrderID,
		"flags":    toFraudFlagResponses(flags),
	})
}

// ListFlags returns fraud flags for the review queue
func (h *FraudHandler) ListFlags(c echo.Context) error {
	unreviewedOnly := c.QueryParam("unreviewed") == "true"

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return errors.ValidationError(c, err)
		}
		limit = parsed
	}

	flags, err := h.fraudService.ListFlags(c.Request().Context(), unreviewedOnly, limit)
	if err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"flags": toFraudFlagResponses(flags),
	})
}

// ReviewFlag records a reviewer's verdict on one flag
func (h *FraudHandler) ReviewFlag(c echo.Context) error {
	flagID := c.Param("id")

	var req models.ReviewFraudFlagRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	flag, err := h.fraudService.ReviewFlag(c.Request().Context(), flagID, req.Reviewed, req.Note)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFoundError(c, "fraud flag")
		}
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, toFraudFlagResponse(*flag))
}

func toFraudFlagResponses(flags []store.FraudFlag) []models.FraudFlagResponse {
	out := make([]models.FraudFlagResponse, 0, len(flags))
	for _, flag := range flags {
		out = append(out, toFraudFlagResponse(flag))
	}
	return out
}

func toFraudFlagResponse(flag store.FraudFlag) models.FraudFlagResponse {
	return models.FraudFlagResponse{
		ID:        flag.ID,
		OrderID:   flag.OrderID,
		CreatorID: flag.CreatorID,
		BrandID:   flag.BrandID,
		Reason:    flag.Reason,
		Severity:  flag.Severity,
		Reviewed:  flag.Reviewed,
		Note:      flag.Note,
		CreatedAt: flag.CreatedAt,
	}
}
