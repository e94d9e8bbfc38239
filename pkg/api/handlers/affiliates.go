package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/creatorcart/backend/pkg/affiliates"
	"github.com/creatorcart/backend/pkg/api/errors"
	"github.com/creatorcart/backend/pkg/middleware"
	"github.com/creatorcart/backend/pkg/models"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// AffiliateHandler handles creator-facing affiliate link endpoints
type AffiliateHandler struct {
	affiliateService *affiliates.Service
	validator        *validator.Validate
}

// NewAffiliateHandler creates a new affiliate handler
func NewAffiliateHandler(affiliateService *affiliates.Service) *AffiliateHandler {
	return &AffiliateHandler{
		affiliateService: affiliateService,
		validator:        validator.New(),
	}
}

// CreateLink mints a new affiliate code for the authenticated creator
func (h *AffiliateHandler) CreateLink(c echo.Context) error {
	creatorID, ok := c.Get(middleware.ContextUserID).(string)
	if !ok || creatorID == "" {
		return errors.UnauthorizedError(c)
	}

	var req models.CreateAffiliateLinkRequest
	if err := c.Bind(&req); err != nil {
		return errors.ValidationError(c, err)
	}
	if err := h.validator.Struct(&req); err != nil {
		return errors.ValidationError(c, err)
	}

	link, err := h.affiliateService.CreateLink(c.Request().Context(), creatorID, req.ProductID)
	if err != nil {
		switch {
		case stderrors.Is(err, affiliates.ErrProductNotFound):
			return errors.NotFoundError(c, "product")
		case stderrors.Is(err, affiliates.ErrSelfAffiliation):
			return errors.ValidationError(c, err)
		default:
			return errors.InternalError(c, err)
		}
	}

	return c.JSON(http.StatusCreated, toAffiliateLinkResponse(link))
}

// ListLinks returns the authenticated creator's affiliate links
func (h *AffiliateHandler) ListLinks(c echo.Context) error {
	creatorID, ok := c.Get(middleware.ContextUserID).(string)
	if !ok || creatorID == "" {
		return errors.UnauthorizedError(c)
	}

	links, err := h.affiliateService.ListByCreator(c.Request().Context(), creatorID)
	if err != nil {
		return errors.InternalError(c, err)
	}

	out := make([]models.AffiliateLinkResponse, 0, len(links))
	for i := range links {
		out = append(out, toAffiliateLinkResponse(&links[i]))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"links": out})
}

func toAffiliateLinkResponse(link *store.AffiliateLink) models.AffiliateLinkResponse {
	return models.AffiliateLinkResponse{
		ID:        link.ID,
		ProductID: link.ProductID,
		Code:      link.Code,
		CreatedAt: link.CreatedAt,
	}
}
