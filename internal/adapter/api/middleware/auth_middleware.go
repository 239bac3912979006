package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"motiv8/internal/domain/entity"
	"motiv8/pkg/errors"
	"motiv8/pkg/response"
)

// Context keys set by Authenticate.
const (
	ContextUID         = "uid"
	ContextDisplayName = "displayName"
	ContextAdmin       = "admin"
)

// TokenVerifier turns a bearer token into the caller's identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*entity.Identity, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
}

func NewAuthMiddleware(verifier TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := bearerToken(c)
		if err != nil {
			return response.Error(c, err)
		}

		identity, err := m.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		c.Set(ContextUID, identity.UID)
		c.Set(ContextDisplayName, identity.DisplayName)
		c.Set(ContextAdmin, identity.Admin)

		return next(c)
	}
}

// bearerToken reads the Authorization header. Browsers cannot set headers
// on a websocket handshake, so a token query parameter is accepted as well.
func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		if token := c.QueryParam("token"); token != "" {
			return token, nil
		}
		return "", errors.Unauthorized("Authorization header is required", nil)
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.Unauthorized("Invalid authorization format", nil)
	}

	return parts[1], nil
}

// IdentityFrom rebuilds the identity stored by Authenticate.
func IdentityFrom(c echo.Context) entity.Identity {
	uid, _ := c.Get(ContextUID).(string)
	name, _ := c.Get(ContextDisplayName).(string)
	admin, _ := c.Get(ContextAdmin).(bool)
	return entity.Identity{UID: uid, DisplayName: name, Admin: admin}
}
