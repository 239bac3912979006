package handler

import (
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"motiv8/internal/domain/entity"
	"motiv8/internal/usecase"
	"motiv8/pkg/errors"
	"motiv8/pkg/response"
)

const maxCatalogUpload = 1 << 20

type CatalogHandler struct {
	catalogUseCase *usecase.CatalogUseCase
}

func NewCatalogHandler(catalogUseCase *usecase.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{
		catalogUseCase: catalogUseCase,
	}
}

func (h *CatalogHandler) GetTemplate(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	template, err := h.catalogUseCase.GetTemplate(c.Request().Context(), missionID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, template)
}

func (h *CatalogHandler) CreateTemplate(c echo.Context) error {
	var req entity.MissionTemplate
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	template, err := h.catalogUseCase.CreateTemplate(c.Request().Context(), &req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, template)
}

func (h *CatalogHandler) UpdateTemplate(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req entity.MissionTemplate
	if err := c.Bind(&req); err != nil {
		return response.Error(c, errors.BadRequest("Invalid request body", err))
	}

	template, err := h.catalogUseCase.UpdateTemplate(c.Request().Context(), missionID, &req)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, template)
}

func (h *CatalogHandler) DeleteTemplate(c echo.Context) error {
	missionID, err := missionParam(c)
	if err != nil {
		return response.Error(c, err)
	}

	if err := h.catalogUseCase.DeleteTemplate(c.Request().Context(), missionID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"id":      missionID,
		"deleted": true,
	})
}

// ImportCatalog accepts a YAML or JSON document as the raw request body.
// Pass ?dryRun=true to validate without writing.
func (h *CatalogHandler) ImportCatalog(c echo.Context) error {
	dryRun, _ := strconv.ParseBool(c.QueryParam("dryRun"))

	data, err := io.ReadAll(io.LimitReader(c.Request().Body, maxCatalogUpload+1))
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read catalog", err))
	}
	if len(data) > maxCatalogUpload {
		return response.Error(c, errors.BadRequest("Catalog is too large", nil))
	}

	result, err := h.catalogUseCase.ImportCatalog(c.Request().Context(), data, dryRun)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
