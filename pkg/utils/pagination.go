package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ClampLimit keeps a requested page size inside [1, MaxLimit], falling back to DefaultLimit.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// GetLimitParam reads ?limit= from the request and clamps it.
func GetLimitParam(c echo.Context) int {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return ClampLimit(limit)
}
