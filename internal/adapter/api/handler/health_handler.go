package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// StorageProbe checks that the backing store answers.
type StorageProbe func(ctx context.Context) error

type HealthHandler struct {
	driver string
	probe  StorageProbe
}

func NewHealthHandler(driver string, probe StorageProbe) *HealthHandler {
	return &HealthHandler{
		driver: driver,
		probe:  probe,
	}
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "Server is running",
		"storage": h.driver,
		"time":    time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckStorageHealth(c echo.Context) error {
	if h.probe == nil {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "No storage probe configured",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.probe(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Storage connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Storage connected successfully",
	})
}
