package handler

import (
	"github.com/labstack/echo/v4"

	"motiv8/internal/adapter/api/middleware"
	"motiv8/internal/usecase"
	"motiv8/pkg/errors"
	"motiv8/pkg/response"
)

type MissionHandler struct {
	missionUseCase *usecase.MissionUseCase
	rewardUseCase  *usecase.RewardUseCase
	catalogUseCase *usecase.CatalogUseCase
}

func NewMissionHandler(
	missionUseCase *usecase.MissionUseCase,
	rewardUseCase *usecase.RewardUseCase,
	catalogUseCase *usecase.CatalogUseCase,
) *MissionHandler {
	return &MissionHandler{
		missionUseCase: missionUseCase,
		rewardUseCase:  rewardUseCase,
		catalogUseCase: catalogUseCase,
	}
}

type progressRequest struct {
	Amount *float64 `json:"amount" validate:"required"`
	Unit   string   `json:"unit" validate:"required"`
}

func missionParam(c echo.Context) (string, error) {
	missionID := c.Param("missionId")
	if missionID == "" {
		return "", errors.BadRequest("Mission ID is required", nil)
	}
	return missionID, nil
}

func (h *MissionHandler) GetCatalog(c echo.Context) error {
	templates, err := h.catalogUseCase.ListCatalog(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.List(c, templates, len(templates), 0)
}

func (h *MissionHandler) GetActiveMissions(c echo.Context) error {
	userID := c.Get(middleware.ContextUID).(string)

	missions, err := h.missionUseCase.GetActiveMissions(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"missions": missions,
	})
}

func (h *MissionHandler) AssignMission(c echo.Context) error {
	userID := c.Get(middleware.ContextUID).(string)

	mission, err := h.missionUseCase.AssignOne(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, mission)
}

func (h *MissionHandler) AssignThreeMissions(c echo.Context) error {
	userID := c.Get(middleware.ContextUID).(string)

	result, err := h.missionUseCase.AssignThree(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *MissionHandler) UpdateProgress(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req progressRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get(middleware.ContextUID).(string)

	missions, err := h.missionUseCase.ApplyProgress(c.Request().Context(), userID, missionID, *req.Amount, req.Unit)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"missions": missions,
	})
}

func (h *MissionHandler) CompleteMission(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	userID := c.Get(middleware.ContextUID).(string)

	result, err := h.rewardUseCase.CompleteAndReward(c.Request().Context(), userID, missionID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *MissionHandler) ClaimMission(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	userID := c.Get(middleware.ContextUID).(string)

	result, err := h.rewardUseCase.Claim(c.Request().Context(), userID, missionID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func (h *MissionHandler) MarkCompleted(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	userID := c.Get(middleware.ContextUID).(string)

	missions, err := h.rewardUseCase.MarkCompletedForGroup(c.Request().Context(), userID, missionID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"missions": missions,
	})
}
