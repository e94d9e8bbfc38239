package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/creatorcart/backend/pkg/api/errors"
	"github.com/creatorcart/backend/pkg/middleware"
	"github.com/creatorcart/backend/pkg/models"
	"github.com/creatorcart/backend/pkg/store"
	"github.com/creatorcart/backend/pkg/tournaments"
	"github.com/labstack/echo/v4"
)

// TournamentHandler handles tournament listing and leaderboard endpoints
type TournamentHandler struct {
	tournamentService *tournaments.Service
}

// NewTournamentHandler creates a new tournament handler
func NewTournamentHandler(tournamentService *tournaments.Service) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

// List returns tournaments, newest start first
func (h *TournamentHandler) List(c echo.Context) error {
	limit := 20
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return errors.ValidationError(c, err)
		}
		limit = parsed
	}

	rows, err := h.tournamentService.List(c.Request().Context(), limit)
	if err != nil {
		return errors.InternalError(c, err)
	}

	out := make([]models.TournamentResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toTournamentResponse(&rows[i]))
	}

	return c.JSON(http.StatusOK, map[string]interface{}{"tournaments": out})
}

// Get returns a single tournament by slug
func (h *TournamentHandler) Get(c echo.Context) error {
	tournament, err := h.tournamentService.GetBySlug(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if stderrors.Is(err, tournaments.ErrTournamentNotFound) {
			return errors.NotFoundError(c, "tournament")
		}
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, toTournamentResponse(tournament))
}

// Rankings returns a tournament leaderboard. When the caller is an
// authenticated creator, my_rank carries their own standing; it is null for
// anonymous or unranked callers.
func (h *TournamentHandler) Rankings(c echo.Context) error {
	ctx := c.Request().Context()

	tournament, err := h.tournamentService.GetBySlug(ctx, c.Param("slug"))
	if err != nil {
		if stderrors.Is(err, tournaments.ErrTournamentNotFound) {
			return errors.NotFoundError(c, "tournament")
		}
		return errors.InternalError(c, err)
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return errors.ValidationError(c, err)
		}
		limit = parsed
	}

	rows, err := h.tournamentService.Rankings(ctx, tournament, limit)
	if err != nil {
		return errors.InternalError(c, err)
	}

	resp := models.RankingResponse{
		Tournament: toTournamentResponse(tournament),
		Rankings:   make([]models.RankingEntry, 0, len(rows)),
	}
	for _, row := range rows {
		resp.Rankings = append(resp.Rankings, toRankingEntry(row))
	}

	if callerID, ok := c.Get(middleware.ContextUserID).(string); ok && callerID != "" {
		if mine := tournaments.RankFor(rows, callerID); mine != nil {
			entry := toRankingEntry(*mine)
			resp.MyRank = &entry
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func toTournamentResponse(t *store.Tournament) models.TournamentResponse {
	return models.TournamentResponse{
		ID:        t.ID,
		Slug:      t.Slug,
		Name:      t.Name,
		StartAt:   t.StartAt,
		EndAt:     t.EndAt,
		Status:    t.Status,
		ProductID: t.ProductID,
	}
}

func toRankingEntry(row tournaments.RankingRow) models.RankingEntry {
	return models.RankingEntry{
		Rank:        row.Rank,
		CreatorID:   row.CreatorID,
		OrderCount:  row.OrderCount,
		TotalAmount: row.TotalAmount,
	}
}
