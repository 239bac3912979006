package handler

import (
	"context"
	"strconv"

	"github.com/labstack/echo/v4"

	"motiv8/pkg/errors"
	"motiv8/pkg/response"
)

// DevTokenMinter issues custom tokens for local testing.
type DevTokenMinter interface {
	GenerateDevToken(ctx context.Context, uid string, admin bool) (string, error)
}

type DevTokenHandler struct {
	minter DevTokenMinter
}

func NewDevTokenHandler(minter DevTokenMinter) *DevTokenHandler {
	return &DevTokenHandler{
		minter: minter,
	}
}

// GenerateToken returns a custom token for ?uid=, with the admin claim when
// ?admin=true. Exchange it for an ID token with the Firebase client SDK.
func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	uid := c.QueryParam("uid")
	if uid == "" {
		return response.Error(c, errors.BadRequest("uid is required", nil))
	}
	admin, _ := strconv.ParseBool(c.QueryParam("admin"))

	token, err := h.minter.GenerateDevToken(c.Request().Context(), uid, admin)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to generate token", err))
	}

	return response.Success(c, map[string]interface{}{
		"customToken": token,
		"uid":         uid,
		"admin":       admin,
	})
}
