package handler

import (
	"github.com/labstack/echo/v4"

	"motiv8/internal/adapter/api/middleware"
	"motiv8/internal/usecase"
	"motiv8/pkg/response"
)

type MatchHandler struct {
	matchUseCase *usecase.MatchUseCase
}

func NewMatchHandler(matchUseCase *usecase.MatchUseCase) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
	}
}

func (h *MatchHandler) StartMatch(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	members, err := h.matchUseCase.Start(c.Request().Context(), middleware.IdentityFrom(c), missionID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"missionId": missionID,
		"members":   members,
	})
}

func (h *MatchHandler) StopMatch(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	identity := middleware.IdentityFrom(c)
	if err := h.matchUseCase.Stop(c.Request().Context(), identity.UID, missionID, identity.DisplayName); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"missionId": missionID,
		"left":      true,
	})
}

func (h *MatchHandler) ListMembers(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	members := h.matchUseCase.ListMembers(c.Request().Context(), missionID)
	return response.List(c, members, len(members), 0)
}

func (h *MatchHandler) ListEvents(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	events := h.matchUseCase.ListEvents(missionID)
	return response.List(c, events, len(events), 0)
}
