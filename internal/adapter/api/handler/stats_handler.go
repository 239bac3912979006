package handler

import (
	"github.com/labstack/echo/v4"

	"motiv8/internal/adapter/api/middleware"
	"motiv8/internal/domain/entity"
	"motiv8/internal/usecase"
	"motiv8/pkg/errors"
	"motiv8/pkg/response"
	"motiv8/pkg/utils"
)

type StatsHandler struct {
	statsUseCase       *usecase.StatsUseCase
	levelRewardUseCase *usecase.LevelRewardUseCase
}

func NewStatsHandler(statsUseCase *usecase.StatsUseCase, levelRewardUseCase *usecase.LevelRewardUseCase) *StatsHandler {
	return &StatsHandler{
		statsUseCase:       statsUseCase,
		levelRewardUseCase: levelRewardUseCase,
	}
}

type levelRewardRequest struct {
	Option string `json:"option" validate:"required,oneof=coins xp cupon"`
}

func (h *StatsHandler) GetMyStats(c echo.Context) error {
	userID := c.Get(middleware.ContextUID).(string)

	stats, err := h.statsUseCase.GetStats(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"stats":               stats,
		"canClaimLevelReward": usecase.Eligible(stats),
	})
}

func (h *StatsHandler) ClaimLevelReward(c echo.Context) error {
	var req levelRewardRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get(middleware.ContextUID).(string)

	result, err := h.levelRewardUseCase.GrantLevelReward(c.Request().Context(), userID, entity.RewardOption(req.Option))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *StatsHandler) GetLeaderboard(c echo.Context) error {
	limit := utils.GetLimitParam(c)

	entries, err := h.statsUseCase.Leaderboard(c.Request().Context(), limit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, entries, len(entries), limit)
}
